package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/PetCafe/config"
	consoleapi "github.com/BearBump/PetCafe/internal/api/console_api"
	"github.com/BearBump/PetCafe/internal/broker/kafka"
	"github.com/BearBump/PetCafe/internal/cache/rediscache"
	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	apifake "github.com/BearBump/PetCafe/internal/integrations/cafeapi/fake"
	"github.com/BearBump/PetCafe/internal/integrations/upload"
	uploadfake "github.com/BearBump/PetCafe/internal/integrations/upload/fake"
	"github.com/BearBump/PetCafe/internal/services/assignments"
	"github.com/BearBump/PetCafe/internal/services/cart"
	"github.com/BearBump/PetCafe/internal/services/checkout"
	"github.com/BearBump/PetCafe/internal/services/petgroups"
	"github.com/BearBump/PetCafe/internal/services/pets"
	"github.com/BearBump/PetCafe/internal/storage/pgconsole"
)

// backend is everything the console needs from the café API.
type backend interface {
	pets.Backend
	petgroups.Backend
	checkout.OrderBackend
	consoleapi.Catalog
}

type consoleApp struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   consoleOpts
	api    *consoleapi.ConsoleAPI

	cartConsumer  *kafka.Consumer
	orderConsumer *kafka.Consumer
	closers       []func()
}

func setupLogger(service string) {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h).With("service", service))
}

func mustBootstrapConsole() *consoleApp {
	setupLogger("cafe-console")

	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("failed to parse config: %v", err))
	}

	httpAddr := cfg.Cafe.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.Cafe.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "cafe-console"
	}
	cartTopic := cfg.Kafka.CartUpdatedTopicName
	if cartTopic == "" {
		cartTopic = "cart.updated"
	}
	orderTopic := cfg.Kafka.OrderUpdatedTopicName
	if orderTopic == "" {
		orderTopic = "order.updated"
	}
	cartTTL := time.Duration(cfg.Cafe.CartTTLHours) * time.Hour
	if cartTTL <= 0 {
		cartTTL = 24 * time.Hour
	}

	app := &consoleApp{}

	st := mustOpenPostgresWithRetry(cfg.PostgresDSN(), 60*time.Second)
	app.closers = append(app.closers, st.Close)

	rc := rediscache.New(cfg.RedisAddr())
	app.closers = append(app.closers, func() { _ = rc.Close() })

	api := newBackend(cfg)
	uploader := newUploader(cfg)

	var producer *kafka.Producer
	if cfg.Kafka.Host != "" {
		producer = kafka.NewProducer(cfg.KafkaBrokers())
		app.closers = append(app.closers, func() { _ = producer.Close() })
		group := consumerGroup + "-" + hostname()
		// cart.updated is a broadcast: every instance reads all of it.
		app.cartConsumer = kafka.NewConsumer(cfg.KafkaBrokers(), cartTopic, group)
		app.orderConsumer = kafka.NewConsumer(cfg.KafkaBrokers(), orderTopic, consumerGroup)
	}

	var pub cart.Publisher
	if producer != nil {
		pub = producer
	}
	store := cart.NewStore(rc, cartTTL, pub, cartTopic)

	app.api = consoleapi.New(consoleapi.Deps{
		Pets:   pets.New(api, uploader),
		Groups: petgroups.New(api, rc, cfg.Cafe.MembershipConcurrency),
		Cart:   store,
		Checkout: checkout.New(api, store, st, checkout.Config{
			RedirectBaseURL: cfg.Cafe.CheckoutRedirectBaseURL,
			Bank: checkout.Bank{
				Code:        cfg.Cafe.BankCode,
				AccountNo:   cfg.Cafe.BankAccountNo,
				AccountName: cfg.Cafe.BankAccountName,
			},
		}),
		Assignments: assignments.New(st),
		Catalog:     api,
	})

	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app.opts = consoleOpts{
		httpAddr:      httpAddr,
		swaggerPath:   swaggerPath,
		cartTopic:     cartTopic,
		orderTopic:    orderTopic,
		consumerGroup: consumerGroup,
	}
	return app
}

func newBackend(cfg *config.Config) backend {
	if cfg.Cafe.APIBaseURL == "" {
		slog.Warn("api_base_url is empty, using in-memory café backend")
		return apifake.NewSeeded()
	}
	return cafeapi.New(cfg.Cafe.APIBaseURL, time.Duration(cfg.Cafe.APIReadTimeoutSeconds)*time.Second)
}

func newUploader(cfg *config.Config) upload.Uploader {
	if cfg.Upload.BaseURL == "" {
		return uploadfake.New("")
	}
	return upload.New(cfg.Upload.BaseURL, cfg.Upload.APIKey, cfg.Upload.Folder)
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "local"
	}
	return h
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgconsole.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgconsole.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *consoleApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.cartConsumer != nil {
		_ = a.cartConsumer.Close()
	}
	if a.orderConsumer != nil {
		_ = a.orderConsumer.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *consoleApp) Run() error {
	var cartC, orderC kafkaConsumer
	if a.cartConsumer != nil {
		cartC = a.cartConsumer
	}
	if a.orderConsumer != nil {
		orderC = a.orderConsumer
	}
	return runConsole(a.ctx, a.opts, a.api, cartC, orderC)
}
