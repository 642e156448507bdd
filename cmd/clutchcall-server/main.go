package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	clutchcall "github.com/cjlopez27/ClutchCall"
	"github.com/cjlopez27/ClutchCall/httpapi"
)

type serverConfig struct {
	Addr        string `env:"AUTH_ADDR" envDefault:":8080"`
	RedisAddr   string `env:"AUTH_REDIS_ADDR" envDefault:"localhost:6379"`
	TokenSecret string `env:"AUTH_TOKEN_SECRET,required"`
	Issuer      string `env:"AUTH_ISSUER" envDefault:"ClutchCall"`
	DevMode     bool   `env:"AUTH_DEV_MODE" envDefault:"false"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clutchcall-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{cfg.RedisAddr},
	})
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	gwCfg := clutchcall.DefaultConfig()
	gwCfg.Token.Issuer = cfg.Issuer

	gateway, err := clutchcall.New().
		WithConfig(gwCfg).
		WithSecret([]byte(cfg.TokenSecret)).
		WithRedis(client).
		WithAuditSink(clutchcall.NewJSONWriterSink(os.Stderr)).
		Build()
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}
	defer gateway.Close()

	handler := httpapi.NewServer(gateway, httpapi.Config{
		Secure: !cfg.DevMode,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		fmt.Printf("listening on %s (redis %s)\n", cfg.Addr, cfg.RedisAddr)
		errC <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errC:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		fmt.Printf("received %s, shutting down\n", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	if dropped := gateway.AuditDropped(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "audit events dropped: %d\n", dropped)
	}
	return nil
}
