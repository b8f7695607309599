package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

func main() {
	config.LoadDotenv(".env")
	cfg := config.Load()
	config.MustNonEmptyList(cfg.KafkaBrokers, "KAFKA_BROKERS")

	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).
		With("service", cfg.ServiceName+"-notifier")
	slog.SetDefault(logger)

	router, err := notify.NewRouter(cfg)
	if err != nil {
		log.Fatalf("notify: %v", err)
	}
	if _, ok := router[notify.KindAdminEmail]; !ok {
		logger.Warn("SMTP_HOST not set, email notifications go to the dead-letter topic")
	}

	reader := notify.NewReader(cfg.KafkaBrokers, cfg.NotifyTopic, cfg.NotifyGroup)
	dlq := notify.NewWriter(cfg.KafkaBrokers, cfg.NotifyTopic+notify.DLQSuffix)

	w := &notify.Worker{
		Reader: reader,
		DLQ:    dlq,
		Sender: router,
		Policy: notify.DefaultRetryPolicy(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	logger.Info("notifier started", "topic", cfg.NotifyTopic, "group", cfg.NotifyGroup)
	runErr := w.Run(ctx)

	if err := reader.Close(); err != nil {
		logger.Warn("kafka reader close", "error", err)
	}
	if err := dlq.Close(); err != nil {
		logger.Warn("kafka writer close", "error", err)
	}
	if runErr != nil {
		log.Fatalf("notifier: %v", runErr)
	}
	logger.Info("notifier stopped")
}
