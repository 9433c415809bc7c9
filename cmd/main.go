package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/marketplace-service/internal/db"
	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/repository/mongodb"
	"github.com/senyabanana/marketplace-service/internal/router"
	"github.com/senyabanana/marketplace-service/internal/router/config"
	"github.com/senyabanana/marketplace-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	runDBMigration(cfg.MigrationURL, dbPool.Config().ConnString())

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	var historyRepo mongodb.HistoryRepository = mongodb.NopHistoryRepository{}
	if cfg.MongoURI != "" {
		mongoClient, err := db.ConnectMongo(cfg.MongoURI)
		if err != nil {
			log.Fatalf("error initializing MongoDB: %v", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				logger.Println("failed to disconnect MongoDB:", err)
			}
		}()
		historyRepo = mongodb.NewMongoHistoryRepository(mongoClient, cfg.MongoDatabase)
	} else {
		logger.Println("MONGO_URI is not set, order history is disabled")
	}

	offerRepo := repository.NewPostgresOfferRepository(dbPool)
	profileRepo := repository.NewPostgresProfileRepository(dbPool)
	orderRepo := repository.NewPostgresOrderRepository(dbPool)
	reviewRepo := repository.NewPostgresReviewRepository(dbPool)
	statsRepo := repository.NewPostgresStatsRepository(dbPool)

	offerService := services.NewOfferService(offerRepo, cfg.OfferListRequireFilter)
	profileService := services.NewProfileService(profileRepo)
	orderService := services.NewOrderService(orderRepo, offerRepo, profileRepo, historyRepo, logger)
	reviewService := services.NewReviewService(reviewRepo, profileRepo)
	baseInfoService := services.NewBaseInfoService(statsRepo)

	routes := router.InitRoutes(router.Handlers{
		Ping:     handlers.PingHandler(dbPool, logger, cfg.RequestTimeout),
		Offers:   handlers.NewOfferHandler(offerService, profileService, logger, cfg.RequestTimeout, cfg.OfferPageSize, cfg.OfferMaxPageSize),
		Profiles: handlers.NewProfileHandler(profileService, logger, cfg.RequestTimeout),
		Orders:   handlers.NewOrderHandler(orderService, profileService, logger, cfg.RequestTimeout),
		Reviews:  handlers.NewReviewHandler(reviewService, profileService, logger, cfg.RequestTimeout),
		BaseInfo: handlers.NewBaseInfoHandler(baseInfoService, profileService, logger, cfg.RequestTimeout),
	}, []byte(cfg.JWTSecret), logger)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	go func() {
		log.Printf("server is listening on %s...", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	log.Println("server exited properly")
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
