package bootstrap

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/config"
	"github.com/noah-isme/qazaq-teachers/internal/database"
	cloud "github.com/noah-isme/qazaq-teachers/pkg/cloudinary"
	"github.com/noah-isme/qazaq-teachers/pkg/events"
)

// OpenInfra connects the store, runs migrations and dials the optional
// broker and mirror. The returned closer releases every connection.
func OpenInfra(cfg config.Config, logger zerolog.Logger) (Infra, func(), error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return Infra{}, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db, logger); err != nil {
		return Infra{}, nil, err
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		return Infra{}, nil, fmt.Errorf("connect redis: %w", err)
	}

	infra := Infra{DB: db, Redis: redisClient, Publisher: events.Nop{}}

	if cfg.NATSURL != "" {
		publisher, err := events.Connect(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("assignment events disabled")
		} else {
			infra.Publisher = publisher
		}
	}

	if cfg.MirrorEnabled() {
		mirror, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("material mirror disabled")
		} else {
			infra.Mirror = mirror
		}
	}

	closer := func() {
		infra.Publisher.Close()
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis")
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	return infra, closer, nil
}
