// main.go
package main

import (
	"context"
	"log"

	"vessel-booking/cmd"
	"vessel-booking/internal/data/repository"
	"vessel-booking/internal/wire"
	"vessel-booking/pkg/database"
	"vessel-booking/pkg/notify"
	"vessel-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("db_driver", config.Database.Driver),
	)

	// Storage
	var repos *repository.Repository
	switch config.Database.Driver {
	case utils.DriverMemory:
		repos = repository.NewMemoryRepository(logger)
		logger.Warn("Using in-memory storage, data is lost on restart")
	case utils.DriverPostgres:
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if config.Database.AutoMigrate {
			if err := database.Migrate(context.Background(), db); err != nil {
				logger.Fatal("Failed to apply schema", zap.Error(err))
			}
			logger.Info("Database schema applied")
		}

		logger.Info("Database connected successfully")
		repos = repository.NewRepository(db, logger)
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", config.Database.Driver))
	}

	// Notifications
	var notifier notify.Notifier
	if len(config.Kafka.Brokers) > 0 {
		notifier = notify.NewKafkaNotifier(config.Kafka.Brokers, config.Kafka.NotificationTopic, logger)
		logger.Info("Publishing notifications to Kafka",
			zap.Strings("brokers", config.Kafka.Brokers),
			zap.String("topic", config.Kafka.NotificationTopic),
		)
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	// Wire all dependencies
	app := wire.Wiring(repos, config, notifier, logger)
	defer func() {
		// drains queued notifications before closing the notifier
		if err := app.Service.Close(); err != nil {
			logger.Warn("Failed to close notifier", zap.Error(err))
		}
	}()

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
