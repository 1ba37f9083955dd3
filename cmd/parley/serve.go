package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	attrhandler "parley/internal/attributes/handler"
	"parley/internal/messaging"
	"parley/internal/platform/httpserver"
	"parley/internal/platform/kafka"
	"parley/internal/platform/kafka/consumer"
	"parley/internal/platform/kafka/producer"
	"parley/internal/platform/telemetry"
	reqhandler "parley/internal/requests/handler"
	"parley/pkg/platform/middleware/auth"
)

func serveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when brokers are configured, the message transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c)
		},
	}
}

func serve(ctx context.Context, c *cli) error {
	cfg, logger := c.cfg, c.logger

	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, logger)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			logger.Error("closing engine resources", "error", err)
		}
	}()

	validator := auth.NewHMACValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience)
	requests := reqhandler.New(a.outgoing, a.incoming, logger, validator, a.identity.Address())

	g, gctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka, logger); err != nil {
			return err
		}
		prod, err := producer.New(cfg.Kafka)
		if err != nil {
			return err
		}
		defer prod.Close()
		requests.WithCourier(messaging.NewCourier(prod, a.identity, a.outgoing, a.incoming, logger))

		dispatcher := messaging.NewDispatcher(a.identity, a.incoming, a.outgoing,
			messaging.WithDispatcherLogger(logger),
			messaging.WithDispatcherMetrics(a.metrics),
		)
		cons, err := consumer.New(cfg.Kafka, dispatcher, logger)
		if err != nil {
			return err
		}
		defer cons.Close()
		g.Go(func() error {
			logger.InfoContext(gctx, "consuming envelopes",
				"topic", cfg.Kafka.Topic,
				"group", cfg.Kafka.ConsumerGroup,
			)
			return cons.Run(gctx)
		})
	}

	router := httpserver.NewRouter(logger, a.metrics, a.registry, a.healthChecks()...)
	requests.Register(router)
	attrhandler.New(a.attributes, logger, validator, cfg.Server.AdminToken, a.identity.Address()).Register(router)

	srv := httpserver.New(cfg.Server, router)
	g.Go(func() error {
		logger.InfoContext(gctx, "listening", "addr", cfg.Server.Addr, "address", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.InfoContext(shutdownCtx, "shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return shutdownTracer(shutdownCtx)
	})
	return g.Wait()
}
