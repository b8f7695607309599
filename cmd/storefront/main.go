package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

var shopLocation = time.FixedZone("ICT", 7*60*60)

func main() {
	config.LoadDotenv(".env")
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).
		With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	r := &repo.GormRepo{DB: db}

	dispatcher, closeDispatcher := buildDispatcher(cfg, logger)
	searcher := buildSearch(cfg, logger)

	orderSvc := &service.OrderService{
		Repo:     r,
		Notifier: dispatcher,
		Targets: notify.Targets{
			AdminEmail:  cfg.AdminEmail,
			ChatWebhook: cfg.ChatWebhookURL != "",
		},
		Location: shopLocation,
	}
	catalogSvc := &service.CatalogService{Repo: r}
	if searcher != nil {
		catalogSvc.Search = searcher
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler:    &httpserver.OrderHTTP{Svc: orderSvc},
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: catalogSvc},
		CustomerHandler: &httpserver.CustomerHTTP{Svc: &service.CustomerService{Repo: r}},
		AuthHandler:     &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: r, JWTSecret: cfg.JWTAccessSecret}},
		JWTSecret:       cfg.JWTAccessSecret,
		Ready: func(ctx context.Context) error {
			return pkgdb.Ping(ctx, db)
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	closeDispatcher()
	closeDB(db)

	logger.Info("storefront stopped")
}

// buildDispatcher publishes to Kafka when brokers are configured and falls
// back to in-process delivery otherwise.
func buildDispatcher(cfg config.Config, logger *slog.Logger) (notify.Dispatcher, func()) {
	if len(cfg.KafkaBrokers) > 0 {
		q := &notify.Queue{W: notify.NewAsyncWriter(cfg.KafkaBrokers, cfg.NotifyTopic, logger)}
		logger.Info("notifications via kafka", "topic", cfg.NotifyTopic)
		return q, func() {
			if err := q.Close(); err != nil {
				logger.Warn("kafka writer close", "error", err)
			}
		}
	}

	sender, err := notify.NewRouter(cfg)
	if err != nil {
		log.Fatalf("notify: %v", err)
	}
	inline := notify.NewInline(sender, notify.DefaultRetryPolicy())
	logger.Warn("KAFKA_BROKERS not set, delivering notifications in process")
	return inline, inline.Wait
}

func buildSearch(cfg config.Config, logger *slog.Logger) *search.ProductIndex {
	if cfg.ESURL == "" {
		logger.Warn("ES_URL not set, product search uses the database")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := search.NewClient(ctx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		logger.Error("elasticsearch unavailable, product search uses the database", "error", err)
		return nil
	}
	idx := &search.ProductIndex{ES: client, Name: cfg.ESIndex}
	if err := idx.EnsureIndex(ctx); err != nil {
		logger.Error("elasticsearch index setup failed", "index", cfg.ESIndex, "error", err)
		return nil
	}
	return idx
}

func closeDB(db *gorm.DB) {
	if err := pkgdb.Close(db); err != nil {
		slog.Warn("db close", "error", err)
	}
}
