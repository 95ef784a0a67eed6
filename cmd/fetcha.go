package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/robfig/cron/v3"

	"fetcha/internal/client"
	"fetcha/internal/configuration"
	"fetcha/internal/database"
	"fetcha/internal/logger"
	"fetcha/internal/server"
	"fetcha/internal/session"
	"fetcha/internal/tracker"
)

func main() {
	if err := runApp(); err != nil {
		time.Sleep(3 * time.Second)
		os.Exit(1)
	}
}

func runApp() error {
	appContext := context.Background()
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelInfo, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("fetcha_backend.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	if config.LogLevel >= logger.LevelDebug {
		conf, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			appLogger.Error("Error marshalling Config to JSON:", err)
			return err
		}
		appLogger.Debugf("Config:\n%s", conf)
	}

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(appContext, config.DatabaseURI)
	if err != nil {
		appLogger.Error("Error connecting to DB:", err)
		return err
	}
	defer func() {
		if err := dbConn.Disconnect(appContext); err != nil {
			appLogger.Error("Error disconnecting from DB:", err)
		}
	}()

	redisOpts, err := redis.ParseURL(config.RedisURI)
	if err != nil {
		appLogger.Error("Error parsing Redis URI:", err)
		return err
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Error closing Redis client:", err)
		}
	}()

	db := database.Database{Database: dbConn.Database(database.Name)}
	apiClient := client.Client{
		Client:           &http.Client{Timeout: config.ExtractTimeout},
		ExtractorURL:     config.ExtractorURL,
		TelegramAPIURL:   config.TelegramAPIURL,
		TelegramBotToken: config.TelegramBotToken,
		Logger:           appLogger,
	}

	srv := &server.Server{
		DB: db,
		Tracker: tracker.Engine{
			DB:                     db,
			TierLimit:              config.FreeTierLimit,
			ChangeThresholdPercent: config.ChangeThresholdPercent,
		},
		Sessions:       session.Store{Client: redisClient, TTL: config.SessionTTL},
		Extractor:      apiClient,
		Notifier:       apiClient,
		Logger:         appLogger,
		AuthSecretKey:  config.AuthSecretKey,
		ExtractTimeout: config.ExtractTimeout,
		CheckPace:      config.CheckPace,
	}

	appLogger.Info("Starting price checker with interval:", config.CheckInterval)
	checkCron := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	checkCron.Schedule(cron.Every(config.CheckInterval), cron.FuncJob(func() {
		srv.CheckAllPrices(appContext)
	}))
	checkCron.Start()
	defer checkCron.Stop()
	time.AfterFunc(config.CheckInitialDelay, func() {
		srv.CheckAllPrices(appContext)
	})

	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	appLogger.Info("Serving on", httpSrv.Addr)
	return httpSrv.ListenAndServe()
}
