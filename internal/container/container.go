package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/audit"
	auditstore "github.com/serroba/shortlink/internal/audit/store"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortlink"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

// auditConsumerGroup is the Redis stream consumer group for audit consumers.
const auditConsumerGroup = "shortlink-audit"

type Options struct {
	Port                  int    `default:"8888"                  help:"Port to listen on"                            short:"p"`
	BaseURL               string `default:"http://localhost:8888" help:"Public base URL used to build short links"`
	CodeLength            int    `default:"6"                     help:"Initial length of generated short codes"      short:"c"`
	RedisAddr             string `default:"localhost:6379"        help:"Redis server address"                         short:"r"`
	PostgresDSN           string `default:""                      help:"Postgres DSN; empty runs the in-memory store"`
	CacheTTL              int    `default:"3600"                  help:"Redis cache TTL for resolved links, in seconds"`
	KeyspaceCheckInterval int    `default:"300"                   help:"Seconds between keyspace occupancy checks"`
	AuditFile             string `default:""                      help:"Audit log path; empty logs events instead"`
	LogFormat             string `default:"console"               enum:"console,json"                                 help:"Log output format"`
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client shared by the cache, the event
// stream and the health check.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		}), nil
	})
}

// PostgresPackage provides the pgx pool. The pool is only built when a
// repository or health check asks for it, so memory-store deployments never
// dial Postgres.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if err := store.RunMigrations(options.PostgresDSN, logger); err != nil {
			return nil, err
		}

		pool, err := pgxpool.New(context.Background(), options.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		return pool, nil
	})
}

// RepositoryPackage provides the link repository: Postgres when a DSN is
// configured, in-memory otherwise, both behind the Redis read cache.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortlink.Repository, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var repo shortlink.Repository

		if options.PostgresDSN == "" {
			logger.Warn("no postgres dsn configured, links will not survive a restart")

			repo = store.NewMemoryStore()
		} else {
			repo = store.NewPostgresStore(do.MustInvoke[*pgxpool.Pool](i))
		}

		ttl := time.Duration(options.CacheTTL) * time.Second

		return store.NewRedisCacheRepository(repo, do.MustInvoke[*redis.Client](i), ttl), nil
	})
}

// ShortlinkPackage provides the code generator, target validator, link
// service and keyspace monitor.
func ShortlinkPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortlink.Base62Generator, error) {
		options := do.MustInvoke[*Options](i)

		return shortlink.NewBase62Generator(options.CodeLength)
	})

	do.Provide(injector, func(i *do.Injector) (*shortlink.TargetValidator, error) {
		options := do.MustInvoke[*Options](i)

		return shortlink.NewTargetValidator(options.BaseURL)
	})

	do.Provide(injector, func(i *do.Injector) (*shortlink.Service, error) {
		return shortlink.NewService(
			do.MustInvoke[shortlink.Repository](i),
			do.MustInvoke[*shortlink.Base62Generator](i),
			do.MustInvoke[*shortlink.TargetValidator](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortlink.KeyspaceMonitor, error) {
		options := do.MustInvoke[*Options](i)
		interval := time.Duration(options.KeyspaceCheckInterval) * time.Second

		return shortlink.NewKeyspaceMonitor(
			do.MustInvoke[shortlink.Repository](i),
			do.MustInvoke[*shortlink.Base62Generator](i),
			interval,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// PublisherGroupPackage provides the Redis stream publisher and the typed
// publish functions for the audit topics.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: do.MustInvoke[*redis.Client](i)},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[audit.LinkCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[audit.LinkCreatedEvent](group.Publisher(), audit.TopicLinkCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[audit.LinkUpdatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[audit.LinkUpdatedEvent](group.Publisher(), audit.TopicLinkUpdated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[audit.LinkDeletedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[audit.LinkDeletedEvent](group.Publisher(), audit.TopicLinkDeleted), nil
	})
}

// ConsumerGroupPackage provides the audit sink and the consumer group that
// drains the audit topics into it.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (audit.Store, error) {
		options := do.MustInvoke[*Options](i)

		if options.AuditFile == "" {
			return auditstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
		}

		return auditstore.NewFile(options.AuditFile)
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*redis.Client](i),
				ConsumerGroup: auditConsumerGroup,
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		recorder := audit.NewRecorder(do.MustInvoke[audit.Store](i))

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, audit.TopicLinkCreated, recorder.HandleLinkCreated, logger))
		group.Add(messaging.NewConsumer(subscriber, audit.TopicLinkUpdated, recorder.HandleLinkUpdated, logger))
		group.Add(messaging.NewConsumer(subscriber, audit.TopicLinkDeleted, recorder.HandleLinkDeleted, logger))

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with all routes
// registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Short Link Service", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		linkHandler := handlers.NewLinkHandler(
			do.MustInvoke[*shortlink.Service](i),
			options.BaseURL,
			do.MustInvoke[messaging.Publish[audit.LinkCreatedEvent]](i),
			do.MustInvoke[messaging.Publish[audit.LinkUpdatedEvent]](i),
			do.MustInvoke[messaging.Publish[audit.LinkDeletedEvent]](i),
			logger,
		)
		handlers.RegisterRoutes(api, linkHandler)

		var database health.Checker
		if options.PostgresDSN != "" {
			database = health.NewPoolChecker(do.MustInvoke[*pgxpool.Pool](i))
		}

		redisChecker := health.NewRedisChecker(do.MustInvoke[*redis.Client](i))
		health.RegisterRoutes(api, health.NewHandler(redisChecker, database))

		return api, nil
	})
}
