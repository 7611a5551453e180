// Package bootstrap wires configuration into the storage, notifier and
// scrape components shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"twse-announcements/internal/config"
	"twse-announcements/internal/dedup"
	"twse-announcements/internal/extractor"
	"twse-announcements/internal/repository"
	"twse-announcements/internal/service"
	"twse-announcements/internal/twse"
	"twse-announcements/pkg/common"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/mailer"
	"twse-announcements/pkg/mongo"
	"twse-announcements/pkg/postgres"
	"twse-announcements/pkg/redis"
	"twse-announcements/pkg/telegram"
)

// Storage bundles the repositories of the configured driver.
type Storage struct {
	Announcements repository.AnnouncementRepository
	ClauseCodes   repository.ClauseCodeRepository
	ScrapeRuns    repository.ScrapeRunRepository

	close func() error
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// PostgresConfig maps the database section onto the connection config.
func PostgresConfig(cfg *config.Config) postgres.Config {
	return postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
}

// OpenStorage connects to the configured storage driver.
func OpenStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case common.StorageDriverPostgres:
		db, err := postgres.NewDB(PostgresConfig(cfg))
		if err != nil {
			return nil, err
		}
		log.Info("Connected to postgres", logger.StringField("host", cfg.Database.Host), logger.StringField("database", cfg.Database.DBName))
		return &Storage{
			Announcements: repository.NewAnnouncementRepository(db.DB),
			ClauseCodes:   repository.NewClauseCodeRepository(db.DB),
			ScrapeRuns:    repository.NewScrapeRunRepository(db.DB),
			close: func() error {
				sqlDB, err := db.DB.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil

	case common.StorageDriverMongo:
		var timeout time.Duration
		if cfg.Mongo.ConnectTimeout != "" {
			d, err := time.ParseDuration(cfg.Mongo.ConnectTimeout)
			if err != nil {
				return nil, fmt.Errorf("invalid mongo.connect_timeout %q: %w", cfg.Mongo.ConnectTimeout, err)
			}
			timeout = d
		}
		client, err := mongo.NewClient(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, ConnectTimeout: timeout})
		if err != nil {
			return nil, err
		}

		announcements := client.DB.Collection(cfg.Mongo.Collection)
		clauseCodes := client.DB.Collection(cfg.Mongo.ClauseCodeCollection)
		if err := repository.EnsureAnnouncementIndexes(ctx, announcements); err != nil {
			log.Warn("Failed to create announcement indexes", logger.ErrorField(err))
		}
		if err := repository.EnsureClauseCodeIndexes(ctx, clauseCodes); err != nil {
			log.Warn("Failed to create clause code indexes", logger.ErrorField(err))
		}
		log.Info("Connected to mongo", logger.StringField("database", cfg.Mongo.Database), logger.StringField("collection", cfg.Mongo.Collection))

		return &Storage{
			Announcements: repository.NewMongoAnnouncementRepository(announcements),
			ClauseCodes:   repository.NewMongoClauseCodeRepository(clauseCodes),
			ScrapeRuns:    repository.NewMongoScrapeRunRepository(client.DB.Collection(cfg.Mongo.ScrapeRunCollection)),
			close: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return client.Close(ctx)
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

// OpenRedis connects to the configured Redis server.
func OpenRedis(cfg *config.Config) (*redis.Client, error) {
	return redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
}

// Notifiers builds the enabled digest notifiers. A notifier that cannot be
// built is logged and left out.
func Notifiers(cfg *config.Config, log *logger.Logger) []service.Notifier {
	var notifiers []service.Notifier
	if cfg.Telegram.Enabled {
		n, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Warn("Telegram notifier disabled", logger.ErrorField(err))
		} else {
			notifiers = append(notifiers, n)
		}
	}
	if cfg.Mail.Enabled {
		s, err := mailer.NewSender(mailer.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
		})
		if err != nil {
			log.Warn("Mail notifier disabled", logger.ErrorField(err))
		} else {
			notifiers = append(notifiers, s)
		}
	}
	return notifiers
}

// Fetcher builds the rate-limited portal client.
func Fetcher(cfg *config.Config, log *logger.Logger) *twse.Client {
	return twse.NewClient(twse.Config{
		BaseURL:           cfg.TWSE.BaseURL,
		UserAgent:         cfg.TWSE.UserAgent,
		Timeout:           cfg.TWSE.Timeout,
		RequestsPerMinute: cfg.TWSE.RequestsPerMinute,
		CacheTTL:          cfg.TWSE.DocumentCacheTTL,
	}, log)
}

// Services are the components built over one Storage.
type Services struct {
	ClauseCodes   service.ClauseCodeService
	Scrapes       service.ScrapeService
	Announcements service.AnnouncementService
}

// NewServices builds the scrape and read services over storage.
func NewServices(cfg *config.Config, storage *Storage, log *logger.Logger) *Services {
	clauseCodes := service.NewClauseCodeService(storage.ClauseCodes, log)
	scrapes := service.NewScrapeService(
		Fetcher(cfg, log),
		extractor.NewWalker(log),
		dedup.NewWriter(storage.Announcements, log),
		clauseCodes,
		storage.ScrapeRuns,
		Notifiers(cfg, log),
		log,
	)
	return &Services{
		ClauseCodes:   clauseCodes,
		Scrapes:       scrapes,
		Announcements: service.NewAnnouncementService(storage.Announcements, log),
	}
}

// NewExtractOnly builds a ScrapeService usable only for Extract, for runs
// that never touch storage.
func NewExtractOnly(cfg *config.Config, log *logger.Logger) service.ScrapeService {
	return service.NewScrapeService(Fetcher(cfg, log), extractor.NewWalker(log), nil, nil, nil, nil, log)
}
