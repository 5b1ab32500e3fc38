package chat

import (
	"strings"
	"testing"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
)

func TestSystemPromptAdmin(t *testing.T) {
	prompt := SystemPrompt(models.ModeAdmin)

	for _, want := range []string{"execute_sql", "schedule_reminder", "Pacientes", "DCitas", "tagged sql", "tagged table"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("admin prompt missing %q", want)
		}
	}
}

func TestSystemPromptPatient(t *testing.T) {
	prompt := SystemPrompt(models.ModePatient)

	for _, tool := range []string{"execute_sql", "schedule_reminder"} {
		if strings.Contains(prompt, tool) {
			t.Errorf("patient prompt must not mention tool %q", tool)
		}
	}
	// The schema never reaches patient sessions.
	for _, leaked := range []string{"Pacientes", "DCitas", "GELITE"} {
		if strings.Contains(prompt, leaked) {
			t.Errorf("patient prompt leaks schema term %q", leaked)
		}
	}
	if !strings.Contains(prompt, "no data access") {
		t.Error("patient prompt should state the data-access ban")
	}
}
