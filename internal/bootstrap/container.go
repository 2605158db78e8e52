package bootstrap

import (
	"context"
	"time"

	"research-rag-be/internal/config"
	"research-rag-be/internal/controller"
	"research-rag-be/internal/pkg/logger"
	"research-rag-be/internal/pkg/serverutils"
	"research-rag-be/internal/repository/unitofwork"
	"research-rag-be/internal/service"
	pktNats "research-rag-be/pkg/nats"
	"research-rag-be/pkg/rag/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const searchCacheTTL = 5 * time.Minute

type Container struct {
	// Controllers
	HealthController   controller.IHealthController
	DocumentController controller.IDocumentController
	SearchController   controller.ISearchController
	ChatController     controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger  logger.ILogger
	closers []func()
}

// Close releases the event bus and external connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	var rdb *redis.Client
	if cfg.Embedding.Cache == "redis" {
		rdb = NewRedisClient(cfg.App.RedisURL, sysLogger)
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	pipeline, err := NewPipeline(cfg, rdb, sysLogger)
	if err != nil {
		return nil, err
	}

	// Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { pubSub.Close() })

	var relay service.EventRelay
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS unavailable, events stay in process", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			relay = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	publisherService := service.NewPublisherService(pubSub, service.DocumentEventsTopic, sysLogger)

	engine := retrieval.NewEngine(
		service.NewCorpusLoader(uowFactory),
		pipeline.Embedder,
		pipeline.LLM,
		sysLogger,
		retrieval.WithChatTopK(cfg.Search.ChatTopK),
	)

	documentService := service.NewDocumentService(
		service.DocumentServiceConfig{
			UploadDir:      cfg.App.UploadDir,
			ImageDir:       cfg.App.ImageDir,
			MaxUploadBytes: int64(cfg.App.MaxUploadMB) << 20,
		},
		uowFactory,
		pipeline.Extractor,
		pipeline.Chunker,
		pipeline.Embedder,
		publisherService,
		sysLogger,
	)
	searchService := service.NewSearchService(engine, cfg.Search.TopK, searchCacheTTL, sysLogger)
	chatService := service.NewChatService(uowFactory, engine, sysLogger)

	c.ConsumerService = service.NewConsumerService(pubSub, service.DocumentEventsTopic, relay, sysLogger, searchService)

	checks := map[string]controller.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	auth := serverutils.JwtMiddleware(cfg.Auth.JWTSecret)
	c.HealthController = controller.NewHealthController(checks)
	c.DocumentController = controller.NewDocumentController(documentService, auth)
	c.SearchController = controller.NewSearchController(searchService, auth)
	c.ChatController = controller.NewChatController(chatService, auth)
	return c, nil
}
