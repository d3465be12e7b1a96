package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	consoleapi "github.com/BearBump/PetCafe/internal/api/console_api"
	"github.com/BearBump/PetCafe/internal/broker/messages"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

type consoleOpts struct {
	httpAddr    string
	swaggerPath string

	cartTopic     string
	orderTopic    string
	consumerGroup string

	onListen func(httpAddr string)
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

// runConsole serves the console API and relays cart.updated / order.updated
// into the services. Nil consumers are skipped.
func runConsole(ctx context.Context, opts consoleOpts, api *consoleapi.ConsoleAPI, cartConsumer, orderConsumer kafkaConsumer) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	if cartConsumer != nil {
		go consumeLoop(ctx, opts.cartTopic, opts.consumerGroup, cartConsumer, func(_key, value []byte) error {
			var m messages.CartUpdated
			if err := json.Unmarshal(value, &m); err != nil {
				slog.Warn("skip malformed cart.updated", "error", err.Error())
				return nil
			}
			return api.Cart.ApplyRemote(m)
		})
	}
	if orderConsumer != nil {
		go consumeLoop(ctx, opts.orderTopic, opts.consumerGroup, orderConsumer, func(_key, value []byte) error {
			var m messages.OrderUpdated
			if err := json.Unmarshal(value, &m); err != nil {
				slog.Warn("skip malformed order.updated", "error", err.Error())
				return nil
			}
			return api.Checkout.ApplyOrderUpdate(ctx, m)
		})
	}

	return runHTTPServer(ctx, lis, api, opts.swaggerPath)
}

// consumeLoop restarts the consumer after a failed handler until ctx ends.
// The failed message was not committed, so it is read again.
func consumeLoop(ctx context.Context, topic, group string, c kafkaConsumer, handler func(key, value []byte) error) {
	slog.Info("kafka consumer started", "topic", topic, "group", group)
	for {
		err := c.Consume(ctx, handler)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			slog.Error("kafka consumer stopped", "topic", topic, "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func runHTTPServer(ctx context.Context, lis net.Listener, api *consoleapi.ConsoleAPI, swaggerPath string) error {
	r := chi.NewRouter()
	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, swaggerPath)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger.json"),
	))
	r.Mount("/", api.Router())

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("console HTTP listening", "addr", lis.Addr().String())
	err := srv.Serve(lis)
	if err == http.ErrServerClosed {
		return ctx.Err()
	}
	return err
}
