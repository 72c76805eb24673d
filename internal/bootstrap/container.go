package bootstrap

import (
	"context"
	"log"

	"jarvis-ai-be/internal/config"
	"jarvis-ai-be/internal/controller"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/unitofwork"
	"jarvis-ai-be/internal/service"
	"jarvis-ai-be/pkg/aiconfig"
	"jarvis-ai-be/pkg/assistant/classifier"
	"jarvis-ai-be/pkg/assistant/engine"
	"jarvis-ai-be/pkg/assistant/events"
	"jarvis-ai-be/pkg/assistant/usage"
	"jarvis-ai-be/pkg/report"
	"jarvis-ai-be/pkg/report/erp"

	pktNats "jarvis-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	SettingsController controller.ISettingsController
	ExportController   controller.IExportController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	UsageAudit      *service.UsageAuditService
	ResetJob        *usage.ResetJob

	closers []func()
}

// NewContainer wires the assistant. db holds the assistant tables, erpDB is the
// ERP read model and may be the same connection.
func NewContainer(db *gorm.DB, erpDB *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	loc := cfg.App.Location()

	// 2. Event Bus (in-process, insight jobs)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS
	var closers []func()
	var bus events.Bus
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		bus = natsPub
		closers = append(closers, natsPub.Close)
	}
	var auditSub service.EventSubscriber
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		auditSub = natsSub
		closers = append(closers, natsSub.Close)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	var reportCache report.Cache
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, report cache disabled: %v", err)
		_ = rdb.Close()
	} else {
		reportCache = report.NewRedisCache(rdb)
		closers = append(closers, func() { _ = rdb.Close() })
	}

	// 4. Assistant components
	usagePublisher := events.NewNatsPublisher(bus, sysLogger)

	configStore := aiconfig.NewStore(uowFactory, aiconfig.Defaults{
		Provider:        cfg.Ai.Provider,
		DefaultModel:    cfg.Ai.DefaultModel,
		BaselineModel:   cfg.Ai.BaselineModel,
		PremiumPrefixes: cfg.Ai.PremiumPrefixes,
		OpenAIAPIKey:    cfg.Ai.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.Ai.OpenAIBaseURL,
		AnthropicAPIKey: cfg.Ai.AnthropicAPIKey,
		OllamaBaseURL:   cfg.Ai.OllamaBaseURL,
	}, cfg.Ai.ConfigCacheTTL, sysLogger)
	configManager := aiconfig.NewManager(configStore)

	policy := usage.NewPolicy(uowFactory, usage.Defaults{
		Model:             cfg.Ai.DefaultModel,
		DailyPremiumLimit: cfg.Ai.DailyPremiumLimit,
	}, loc, sysLogger)
	resetJob := usage.NewResetJob(policy, usagePublisher, sysLogger, cfg.Jobs.UsageResetInterval)

	cls, err := classifier.New()
	if err != nil {
		log.Fatalf("[FATAL] Failed to load classifier rules: %v", err)
	}

	source := erp.NewSource(erpDB)
	registry := report.NewDefaultRegistry(source, cls, report.Options{
		LowStockThreshold: float64(cfg.Report.LowStockThreshold),
		ForecastMonths:    cfg.Report.ForecastMonths,
	}, reportCache, cfg.Report.CacheTTL, sysLogger)
	log.Printf("[INFO] Report registry ready (%d categories)", len(registry.Categories()))

	publisherService := service.NewPublisherService(cfg.App.InsightTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.InsightTopic,
		uowFactory,
		configStore,
		engine.DefaultProviderFactory,
		sysLogger,
	)

	chatEngine := engine.New(engine.Deps{
		UOWFactory: uowFactory,
		Configs:    configStore,
		Policy:     policy,
		Classifier: cls,
		Reports:    registry,
		Companies:  source,
		Providers:  engine.DefaultProviderFactory,
		Events:     usagePublisher,
		Insights:   publisherService,
		Logger:     sysLogger,
		Timeout:    cfg.Ai.RequestTimeout,
		Location:   loc,
	})

	// 5. Services
	chatService := service.NewChatService(uowFactory, chatEngine, loc, sysLogger)
	settingsService := service.NewSettingsService(uowFactory, policy, configStore, configManager, loc, sysLogger)
	exportService := service.NewExportService(uowFactory, loc, sysLogger)

	auditLogger := logger.NewIsolatedLogger("logs/usage_audit.log")
	usageAudit := service.NewUsageAuditService(uowFactory, auditSub, auditLogger)

	// 6. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService, cfg.App.DefaultCompanyId),
		SettingsController: controller.NewSettingsController(settingsService, cfg.App.DefaultCompanyId),
		ExportController:   controller.NewExportController(exportService),

		ConsumerService: consumerService,
		UsageAudit:      usageAudit,
		ResetJob:        resetJob,

		closers: append(closers, func() { _ = pubSub.Close() }, func() { _ = sysLogger.Sync() }),
	}
}

// Close stops the background jobs and releases the bus and cache connections.
func (c *Container) Close() {
	c.ResetJob.Stop()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
