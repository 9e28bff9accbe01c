package container

import (
	"context"
	"fmt"
	"time"

	"cosme/crawler/internal/client"
	"cosme/crawler/internal/config"
	"cosme/crawler/internal/proxy"
	"cosme/crawler/internal/repository"
	"cosme/crawler/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Fetcher    *client.HTTPFetcher
	Client     client.CatalogClient
	Repository repository.RecordRepository

	Service *service.Service
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	proxySupplier := proxy.NewProxySupplier(ctx, cfg.Crawler.Proxies, cfg.Crawler.BaseURL)

	container.Fetcher = client.NewHTTPFetcher(cfg.Crawler, proxySupplier)
	container.Client = client.NewCosmeClient(cfg.Crawler, container.Fetcher)

	repo, err := newRepository(ctx, cfg, time.Now())
	if err != nil {
		_ = container.Fetcher.Close()
		return nil, err
	}
	container.Repository = repo

	container.Service = service.NewService(
		container.Client,
		cfg.Crawler.LandingURL(),
		cfg.Crawler.CategoryRetries,
	)

	return container, nil
}

func newRepository(ctx context.Context, cfg *config.Config, startedAt time.Time) (repository.RecordRepository, error) {
	switch cfg.Output.Sink {
	case config.SinkPostgres:
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		repo := repository.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		log.Info("✅ Connected to PostgreSQL successfully")
		return repo, nil

	case config.SinkSQLite:
		repo, err := repository.NewSQLiteRepository(ctx, cfg.Output.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Infof("✅ Writing records to SQLite database %s", cfg.Output.SQLitePath)
		return repo, nil

	case config.SinkRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")
		return repository.NewRedisRepository(rdb, cfg.Redis.Stream, cfg.Redis.MaxLength), nil

	default:
		repo, err := repository.NewCSVFileRepository(cfg.Output.Dir, startedAt, cfg.Output.LocalizeHeaders)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

// Run crawls the selected primary category, or every category when selected is empty
func (c *Container) Run(ctx context.Context, selected string) (*service.Report, error) {
	return c.Service.Run(ctx, selected, c.Repository)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	var firstErr error
	if err := c.Repository.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close repository: %w", err)
	}
	if err := c.Fetcher.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close HTTP client: %w", err)
	}

	log.Info("Container shut down successfully")
	return firstErr
}
