package messaging

import "strings"

// MessageType classifies what an automated message is for.
type MessageType string

const (
	TypeReminder      MessageType = "reminder"
	TypeFollowup      MessageType = "followup"
	TypeConsent       MessageType = "consent"
	TypeQuestionnaire MessageType = "questionnaire"
	TypeCustom        MessageType = "custom"
)

// Template is a reusable message body. Variables appear in the content as
// [NAME] placeholders and are substituted at render time.
type Template struct {
	ID        string
	Name      string
	Type      MessageType
	Content   string
	Variables []string
}

// Render substitutes the template's placeholders. Placeholders without a
// value stay in the text, which makes a forgotten variable visible instead of
// silently vanishing.
func (t Template) Render(variables map[string]string) string {
	content := t.Content
	for key, value := range variables {
		content = strings.ReplaceAll(content, "["+key+"]", value)
	}
	return content
}

// templates are the clinic's standard automated messages, keyed by id.
var templates = map[string]Template{
	"reminder-24h": {
		ID:   "reminder-24h",
		Name: "Recordatorio 24h",
		Type: TypeReminder,
		Content: `*Recordatorio de Cita*

Hola [NOMBRE], le recordamos que tiene cita en *Rubio García Dental*:

Fecha: [FECHA_CITA]
Hora: [HORA_CITA]
Doctor: [DOCTOR]
Tratamiento: [TRATAMIENTO]

¿Confirma asistencia? Responda *SÍ* o *NO*`,
		Variables: []string{"NOMBRE", "FECHA_CITA", "HORA_CITA", "DOCTOR", "TRATAMIENTO"},
	},
	"reminder-1h": {
		ID:   "reminder-1h",
		Name: "Recordatorio 1h",
		Type: TypeReminder,
		Content: `*Recordatorio Urgente*

Hola [NOMBRE], su cita es en *1 hora*:

Rubio García Dental
[HORA_CITA]
[DOCTOR]

¡Le esperamos!`,
		Variables: []string{"NOMBRE", "HORA_CITA", "DOCTOR"},
	},
	"followup-48h": {
		ID:   "followup-48h",
		Name: "Seguimiento 48h",
		Type: TypeFollowup,
		Content: `Hola [NOMBRE],

Han pasado 48 horas desde su tratamiento de *[TRATAMIENTO]*.

¿Cómo se encuentra? ¿Tiene alguna molestia o pregunta?

Estamos aquí para ayudarle. Puede responder a este mensaje o llamarnos.

*Rubio García Dental*`,
		Variables: []string{"NOMBRE", "TRATAMIENTO"},
	},
	"consent-implant": {
		ID:   "consent-implant",
		Name: "Consentimiento Implantes",
		Type: TypeConsent,
		Content: `*Consentimiento Informado*

Estimado/a [NOMBRE],

Antes de su cita de implantes, necesitamos su consentimiento informado.

Por favor, lea el documento y confirme con *ACEPTO*:

[LINK_DOCUMENTO]

Si tiene dudas, estaremos encantados de resolverlas en consulta.`,
		Variables: []string{"NOMBRE", "LINK_DOCUMENTO"},
	},
	"questionnaire-new-patient": {
		ID:   "questionnaire-new-patient",
		Name: "Cuestionario Nuevo Paciente",
		Type: TypeQuestionnaire,
		Content: `*Bienvenido a Rubio García Dental*

Hola [NOMBRE],

Para poder atenderle de la mejor manera, necesitamos algunos datos.

Por favor, complete nuestro cuestionario de salud:
[LINK_CUESTIONARIO]

Sus datos están protegidos según RGPD.`,
		Variables: []string{"NOMBRE", "LINK_CUESTIONARIO"},
	},
}

// GetTemplate returns the template with the given id.
func GetTemplate(id string) (Template, bool) {
	t, ok := templates[id]
	return t, ok
}
