package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/b2bquote/rfq-service/internal/db"
	"github.com/b2bquote/rfq-service/internal/events"
	"github.com/b2bquote/rfq-service/internal/handlers"
	"github.com/b2bquote/rfq-service/internal/repository"
	"github.com/b2bquote/rfq-service/internal/router"
	"github.com/b2bquote/rfq-service/internal/router/config"
	"github.com/b2bquote/rfq-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	dispatcher := initDispatcher(cfg, logger)

	rfqRepo := repository.NewPostgresRFQRepository(dbPool)
	offerRepo := repository.NewPostgresOfferRepository(dbPool)
	negotiationRepo := repository.NewPostgresNegotiationRepository(dbPool)
	orderRepo := repository.NewPostgresOrderRepository(dbPool)
	statisticsRepo := repository.NewPostgresStatisticsRepository(dbPool)

	rfqService := services.NewRFQService(rfqRepo, offerRepo)
	offerService := services.NewOfferService(offerRepo, rfqRepo, dispatcher)
	negotiationService := services.NewNegotiationService(negotiationRepo, offerRepo, rfqRepo, dispatcher)
	orderService := services.NewOrderService(orderRepo, offerRepo, rfqRepo, dispatcher)
	statisticsService := services.NewStatisticsService(statisticsRepo)

	rfqHandler := handlers.NewRFQHandler(rfqService, logger, 5*time.Second)
	offerHandler := handlers.NewOfferHandler(offerService, logger, 5*time.Second)
	negotiationHandler := handlers.NewNegotiationHandler(negotiationService, logger, 5*time.Second)
	orderHandler := handlers.NewOrderHandler(orderService, logger, 5*time.Second)
	statisticsHandler := handlers.NewStatisticsHandler(statisticsService, logger, 5*time.Second)

	routes := router.InitRoutes(rfqHandler, offerHandler, negotiationHandler, orderHandler, statisticsHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// initDispatcher подключает Kafka-продюсер, когда брокеры настроены,
// иначе события пишутся в лог.
func initDispatcher(cfg config.Config, logger *log.Logger) events.Dispatcher {
	if cfg.EventBrokers == "" {
		return &events.LogDispatcher{Logger: logger}
	}

	brokers := strings.Split(cfg.EventBrokers, ",")
	topic := cfg.EventTopic
	if topic == "" {
		topic = "rfq-events"
	}

	dispatcher, err := events.NewSaramaDispatcher(brokers, topic, logger)
	if err != nil {
		log.Printf("cannot connect to event brokers, falling back to log dispatcher: %v", err)
		return &events.LogDispatcher{Logger: logger}
	}
	return dispatcher
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
