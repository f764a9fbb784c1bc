// Package container builds the shared components once at startup and hands
// them to the router and commands.
package container

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/oksasatya/clubhub/config"
	"github.com/oksasatya/clubhub/internal/application"
	repo "github.com/oksasatya/clubhub/internal/domain/repository"
	"github.com/oksasatya/clubhub/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/clubhub/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/clubhub/internal/infrastructure/postgres"
	"github.com/oksasatya/clubhub/internal/infrastructure/queue"
	"github.com/oksasatya/clubhub/internal/infrastructure/search"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

// Store is the credential store together with the elevation path used by the seed command.
type Store interface {
	repo.UserRepository
	repo.RoleAssigner
}

type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Metrics *helpers.Metrics

	Users   Store
	Tokens  *helpers.TokenManager
	Hasher  *helpers.PasswordHasher
	Redis   *redis.Client            // nil when rate limiting is disabled or unreachable
	ES      *elasticsearch.Client    // nil without ELASTICSEARCH_ADDRS
	Indexer *search.UserIndexer      // nil without ES
	Rabbit  *helpers.RabbitPublisher // nil when mail sending is disabled

	closers []func()
}

// Options select the optional integrations; the seed command turns them off.
type Options struct {
	Redis        bool
	Search       bool
	Notification bool
}

func AllOptions() Options { return Options{Redis: true, Search: true, Notification: true} }

// Build opens the configured store and the optional integrations. Optional
// integrations that fail to connect are logged and left nil.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts Options) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		Tokens: helpers.NewTokenManager(cfg.TokenConfig()),
		Hasher: helpers.NewPasswordHasher(cfg.BcryptCost),
	}
	if cfg.MetricsEnabled {
		c.Metrics = helpers.NewMetrics(cfg.AppName)
	}

	users, err := c.openStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Users = users

	if opts.Redis && cfg.RateLimitEnabled {
		c.connectRedis(ctx)
	}
	if opts.Search && len(cfg.ESAddrs()) > 0 {
		c.connectSearch(ctx)
	}
	if opts.Notification && cfg.MailSendEnabled {
		c.connectRabbit()
	}
	return c, nil
}

func (c *Container) openStore(ctx context.Context) (Store, error) {
	cfg := c.Config
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		c.onClose(func() { _ = mongoinfra.Disconnect(client) })
		db := client.Database(cfg.MongoDB)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		c.Logger.WithField("db", cfg.MongoDB).Info("mongo store ready")
		return mongoStore(db), nil

	case config.StorePostgres:
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, c.Logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		c.onClose(pool.Close)
		c.Logger.WithField("db", cfg.DBName).Info("postgres store ready")
		return postgresStore(pool), nil

	case config.StoreMemory:
		c.Logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewUserRepository(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func mongoStore(db *mongodrv.Database) Store { return mongoinfra.NewUserRepository(db) }
func postgresStore(pool *pgxpool.Pool) Store { return pginfra.NewUserRepository(pool) }

func (c *Container) connectRedis(ctx context.Context) {
	rdb := helpers.NewRedisClient(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		c.Logger.WithError(err).Warn("redis unavailable, rate limiting disabled")
		_ = rdb.Close()
		return
	}
	c.Redis = rdb
	c.onClose(func() { _ = rdb.Close() })
}

func (c *Container) connectSearch(ctx context.Context) {
	es, err := helpers.NewESClient(c.Config.ESAddrs(), c.Config.ElasticsearchUser, c.Config.ElasticsearchPass)
	if err != nil {
		c.Logger.WithError(err).Warn("elasticsearch client init failed, member search disabled")
		return
	}
	idx := search.NewUserIndexer(es, c.Config.ESUsersIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		c.Logger.WithError(err).Warn("elasticsearch index setup failed, member search disabled")
		return
	}
	c.ES = es
	c.Indexer = idx
}

func (c *Container) connectRabbit() {
	pub, err := helpers.NewRabbitPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQEmailQueue)
	if err != nil {
		c.Logger.WithError(err).Warn("rabbitmq unavailable, notifications disabled")
		return
	}
	c.Rabbit = pub
	c.onClose(pub.Close)
}

// AuthService wires the optional integrations into the auth flows.
func (c *Container) AuthService() *application.AuthService {
	svc := application.NewAuthService(c.Users, c.Hasher, c.Tokens, c.Logger)
	svc.Metrics = c.Metrics
	if c.Rabbit != nil {
		svc.Notifier = queue.NewNotifier(c.Rabbit, c.Config.AppName, c.Config.ClubName)
	}
	if c.Indexer != nil {
		svc.Indexer = c.Indexer
	}
	return svc
}

func (c *Container) DirectoryService() *application.DirectoryService {
	if c.Indexer != nil {
		return application.NewDirectoryService(c.Users, c.Indexer, c.Logger)
	}
	return application.NewDirectoryService(c.Users, nil, c.Logger)
}

func (c *Container) onClose(fn func()) { c.closers = append(c.closers, fn) }

// Close releases connections in reverse order of opening.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
