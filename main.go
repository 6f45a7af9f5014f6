// File: tailortalk/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailortalk/config"
	"tailortalk/cron"
	"tailortalk/handlers"
	"tailortalk/middleware"
	"tailortalk/routes"
	"tailortalk/services/booking"
	"tailortalk/services/calendar"
	ai "tailortalk/services/intelligence"
	"tailortalk/services/session"
	"tailortalk/services/speech"
	"tailortalk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg := config.AppConfig
	loc := cfg.Location()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	probes := map[string]utils.Probe{}
	maintenance := cron.NewMaintenance(loc)

	// session store.
	var store session.Store
	switch cfg.SessionBackend {
	case "redis":
		client, err := utils.GetSessionCacheClient()
		if err != nil {
			logger.Fatal("main: redis session store unavailable", zap.Error(err))
		}
		store = session.NewRedisStore(client, cfg.SessionTTL())
		probes["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	default:
		memStore := session.NewMemoryStore(cfg.SessionTTL(), cfg.SessionCapacity)
		if err := maintenance.AddSessionSweep(cfg.SessionSweepSpec, memStore); err != nil {
			logger.Fatal("main: invalid SESSION_SWEEP_SPEC", zap.String("spec", cfg.SessionSweepSpec), zap.Error(err))
		}
		store = memStore
	}

	// calendar collaborator.
	cal := newCalendar(cfg, loc, logger)
	probes["calendar"] = func(ctx context.Context) error {
		if st := cal.Status(ctx); !st.Connected {
			return calendar.ErrUnavailable
		}
		return nil
	}
	oracle := calendar.NewOracle(cal, cfg.BusinessHoursStart, cfg.BusinessHoursEnd, cfg.WeekdaysOnly)

	// slot extraction.
	extractor := newExtractor(cfg, logger)

	engine := booking.NewConversationEngine(store, extractor, oracle, cal, cfg.ExternalCallTimeout())
	engine.Now = func() time.Time { return time.Now().In(loc) }

	transcriber := speech.NewGoogleTranscriber(cfg.GoogleSpeechCredentialsPath)

	if err := maintenance.AddHealthChecks("@every 1m", probes); err != nil {
		logger.Fatal("main: failed to schedule health checks", zap.Error(err))
	}
	maintenance.Start()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewChatHandler(engine, transcriber),
		handlers.NewCalendarHandler(cal, oracle, loc),
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting %s on %s...", utils.AppName, srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	maintenance.Stop()

	logger.Sugar().Info("main: server stopped gracefully")
}

// newCalendar builds the configured calendar, degrading to Unavailable so
// the conversation keeps working on its fallback paths.
func newCalendar(cfg config.Config, loc *time.Location, logger *zap.Logger) calendar.Calendar {
	if cfg.CalendarBackend == "memory" {
		logger.Info("main: using in-memory calendar")
		return calendar.NewMemoryCalendar()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ExternalCallTimeout())
	defer cancel()
	gcal, err := calendar.NewGoogleCalendar(ctx, cfg.GoogleCalendarCredentialsPath, cfg.GoogleCalendarID, loc)
	if err != nil {
		logger.Error("main: google calendar unavailable, availability checks will fail over", zap.Error(err))
		return calendar.Unavailable{Reason: err.Error(), Timezone: loc.String()}
	}
	return gcal
}

// newExtractor picks the LLM backend once at startup.
func newExtractor(cfg config.Config, logger *zap.Logger) *ai.SlotExtractor {
	kind, err := ai.ParseBackendKind(cfg.LLMBackend)
	if err != nil {
		logger.Warn("main: falling back to pattern extraction", zap.Error(err))
	}
	if kind == ai.BackendNone {
		return ai.NewSlotExtractor(ai.BackendNone, nil, nil)
	}

	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn("main: GEMINI_API_KEY not set")
			return ai.NewSlotExtractor(ai.BackendNone, nil, nil)
		}
		client, err := ai.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("main: gemini client unavailable", zap.Error(err))
			return ai.NewSlotExtractor(ai.BackendNone, nil, nil)
		}
		return ai.NewSlotExtractor(kind, client, client)
	default:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("main: OPENAI_API_KEY not set")
			return ai.NewSlotExtractor(ai.BackendNone, nil, nil)
		}
		client := ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		return ai.NewSlotExtractor(kind, client, client)
	}
}
