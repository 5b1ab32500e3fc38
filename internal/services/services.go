package services

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/assistant"
	"github.com/rubiogarciadental/iadental/internal/config"
	"github.com/rubiogarciadental/iadental/internal/connections"
	"github.com/rubiogarciadental/iadental/internal/infrastructure/clinicdb"
	"github.com/rubiogarciadental/iadental/internal/infrastructure/openai"
	"github.com/rubiogarciadental/iadental/internal/infrastructure/redis"
	"github.com/rubiogarciadental/iadental/internal/infrastructure/whatsapp"
	"github.com/rubiogarciadental/iadental/internal/services/chat"
	"github.com/rubiogarciadental/iadental/internal/services/messaging"
	"github.com/rubiogarciadental/iadental/internal/services/session"
	"github.com/rubiogarciadental/iadental/internal/services/tools"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	assistantService *assistant.Service
	chatService      *chat.Implementation
	clinicDBService  *clinicdb.Service
	connManager      *connections.Manager
	messagingService *messaging.Service
	openAIService    *openai.Service
	redisService     *redis.Service
	sessionService   *session.Service
	toolService      *tools.Service
	whatsappService  *whatsapp.Service
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Optional infrastructure: Redis for surface sessions, SQLite mirror for
	// admin data queries, WhatsApp worker for automated messaging. All degrade
	// gracefully when absent.
	redisService := redis.NewService()
	clinicDBService := clinicdb.NewService()
	whatsappService := whatsapp.NewService()

	var messagingService *messaging.Service
	if whatsappService != nil {
		messagingService = messaging.NewService(whatsappService, config.GetMessagingQueueInterval())
		messagingService.Start()
		log.Info().Msg("Initializing messaging service")
	}

	toolService := tools.NewService(clinicDBService, messagingService)
	log.Info().Msg("Initializing tool service")

	sessionService := session.NewService(redisService)
	log.Info().Msg("Initializing surface session service")

	// OpenAI service is required
	openAIService := openai.NewService()
	if openAIService == nil {
		log.Fatal().Msg("Failed to initialize OpenAI service - service is required for core functionality")
	}

	chatService, err := chat.NewService(openAIService, toolService)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize chat service - required for message processing")
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}
	log.Info().Msg("Initializing chat service")

	connManager := connections.NewManager(connections.DefaultTimeouts)

	assistantService := assistant.NewService(
		chatService,
		config.GetAssistantTimeout(),
		config.GetAssistantHistoryWindow(),
		config.GetAssistantSessionTTL(),
		func(ev assistant.Event) {
			connManager.Broadcast(ev.SessionID, ev)
		},
	)
	log.Info().Msg("Initializing assistant session service")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		assistantService: assistantService,
		chatService:      chatService,
		clinicDBService:  clinicDBService,
		connManager:      connManager,
		messagingService: messagingService,
		openAIService:    openAIService,
		redisService:     redisService,
		sessionService:   sessionService,
		toolService:      toolService,
		whatsappService:  whatsappService,
	}, nil
}

// GetAssistantService returns the assistant session registry
func (s *Services) GetAssistantService() *assistant.Service {
	return s.assistantService
}

// GetChatService returns the chat service
func (s *Services) GetChatService() *chat.Implementation {
	return s.chatService
}

// GetSessionService returns the surface session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetConnectionManager returns the websocket connection manager
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connManager
}

// GetToolService returns the tool service
func (s *Services) GetToolService() *tools.Service {
	return s.toolService
}

// GetMessagingService returns the automated messaging service, or nil when
// the WhatsApp worker is not configured
func (s *Services) GetMessagingService() *messaging.Service {
	return s.messagingService
}
