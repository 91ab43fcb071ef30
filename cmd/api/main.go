package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/cache"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/database"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/events"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/providers/llm"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/api/handlers"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/api/middleware"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/api/routes"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/application/services"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/ollama"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/openai"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/redis"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/observability"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/config"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/secrets"
)

func main() {
	// Pull provider credentials from Vault before configuration is read
	vaultCtx, vaultCancel := context.WithTimeout(context.Background(), 10*time.Second)
	vaultResult, err := secrets.ApplyVaultSecrets(vaultCtx, secrets.LoadVaultConfigFromEnv(""))
	vaultCancel()
	if err != nil {
		log.Printf("Warning: Vault secrets unavailable: %v", err)
	} else if vaultResult.Enabled {
		log.Printf("Loaded %d secrets from Vault (%d already set)", vaultResult.Loaded, vaultResult.Skipped)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	dbClient, err := dbclient.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	if err := database.EnsureSchema(ctx, dbClient); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Initialize Redis client. The service runs without it; response
	// caching and event-driven invalidation just switch off.
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis client: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Redis client initialized successfully")
		}
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	}

	// Initialize adapters
	patientAdapter := database.NewPatientAdapter(dbClient)
	clinicalAdapter := database.NewClinicalDataAdapter(dbClient)
	summaryAdapter := database.NewSummaryAdapter(dbClient)
	documentAdapter := database.NewDocumentAdapter(dbClient)
	cachedAnswerAdapter := database.NewCachedAnswerAdapter(dbClient)

	// Initialize the generative backend. A nil provider is valid: every
	// question then resolves through cached answers or the fallback
	// synthesizer.
	llmProvider, err := llm.NewLLMProvider(cfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize AI provider: %v", err)
		llmProvider = nil
	} else if llmProvider != nil {
		log.Printf("AI provider initialized: %s", llmProvider.Name())
	} else {
		log.Println("AI provider disabled; answers use cached QA pairs and fallback synthesis")
	}

	// Initialize services
	contextService := services.NewContextService(
		patientAdapter,
		clinicalAdapter,
		summaryAdapter,
		cfg.Retrieval.VitalsLimit,
		cfg.Retrieval.LabsLimit,
	)
	retrievalService := services.NewRetrievalService(documentAdapter, cfg.Retrieval.TopK)
	answerService := services.NewAnswerService(
		contextService,
		retrievalService,
		cachedAnswerAdapter,
		documentAdapter,
		llmProvider,
		metrics,
	)
	summaryService := services.NewSummaryService(contextService, summaryAdapter, llmProvider, eventBus)

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Printf("Warning: Failed to start cache invalidation service: %v", err)
		} else {
			log.Println("Cache invalidation service started successfully")
		}
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	patientHandler := handlers.NewPatientHandler(patientAdapter, clinicalAdapter, summaryAdapter, documentAdapter)
	qaHandler := handlers.NewQAHandler(answerService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	aiStatusHandler := handlers.NewAIStatusHandler(cfg.AI.Provider, aiBackends(cfg)...)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
		log.Println("Cache middleware initialized successfully")
	}

	var rateLimiter *middleware.IPRateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewIPRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	}

	// Set up router
	router := routes.NewRouter(
		healthHandler,
		patientHandler,
		qaHandler,
		summaryHandler,
		aiStatusHandler,
		cacheMiddleware,
		rateLimiter,
		cfg.HTTP.Origins(),
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// The write timeout must outlast a full answer-generation attempt
		WriteTimeout: time.Duration(cfg.AI.TimeoutSeconds+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Stop cache invalidation before the event bus closes under it
	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}

// aiBackends describes the generative backends for the status endpoint.
// Probes are built directly on the clients so each backend reports its
// own liveness, independent of failover composition.
func aiBackends(cfg *config.Config) []handlers.BackendStatus {
	ollamaStatus := handlers.BackendStatus{
		Name:       "ollama",
		Configured: true,
		Model:      cfg.Ollama.Model,
		URL:        cfg.Ollama.BaseURL,
		Prober:     ollama.NewClient(&cfg.Ollama, cfg.AI.TimeoutSeconds),
	}

	openaiStatus := handlers.BackendStatus{
		Name:       "openai",
		Configured: cfg.OpenAI.APIKey != "",
		Model:      cfg.OpenAI.Model,
	}
	if openaiStatus.Configured {
		client, err := openai.NewClient(&cfg.OpenAI, cfg.AI.TimeoutSeconds)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI status probe: %v", err)
		} else {
			openaiStatus.Prober = client
		}
	}

	return []handlers.BackendStatus{openaiStatus, ollamaStatus}
}
