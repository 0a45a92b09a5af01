// amqp2http bridges an AMQP message bus to HTTP endpoints: for each
// configured (integration, upstream exchange, routing key) triple it
// delivers incoming messages as HTTP POST requests and translates the
// response into an ack, requeue or reject on the bus.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-amqp2http/pkg/amqpbus"
	"github.com/illmade-knight/go-amqp2http/pkg/config"
	"github.com/illmade-knight/go-amqp2http/pkg/dispatch"
	"github.com/illmade-knight/go-amqp2http/pkg/microservice"
	"github.com/illmade-knight/go-amqp2http/pkg/topology"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	stderrLogger := zerolog.New(os.Stderr)

	cfg, err := config.Load(*configFile)
	if err != nil {
		stderrLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger, err := config.SetupLogging(cfg.LogLevel)
	if err != nil {
		stderrLogger.Fatal().Err(err).Msg("Failed to configure logging")
	}

	eventMapping, err := config.LoadEventMapping(cfg.EventMappingPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load event mapping")
	}

	health := microservice.NewHealthRegistry()
	var ready atomic.Bool
	health.AddCheck("AMQP", ready.Load)

	dispatcher := dispatch.NewDispatcher(dispatch.DispatcherConfig{
		BackpressureDelay: cfg.Dispatch.BackpressureDelay,
		HTTPTimeout:       cfg.Dispatch.HTTPTimeout,
	}, logger)

	factory := amqpbus.Factory(amqpbus.ConsumerGroupConfig{
		URL:           cfg.AMQP.URL,
		PrefetchCount: cfg.AMQP.PrefetchCount,
	}, logger)

	builder, err := topology.NewBuilder(dispatcher, factory, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create topology builder")
	}
	topo, err := builder.Build(eventMapping, health)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build consumer-group topology")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := topo.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start consumer groups")
	}

	server := microservice.NewServer(logger, cfg.HTTPPort, health)
	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}

	ready.Store(true)
	logger.Info().Int("consumer_groups", topo.GroupCount()).Msg("amqp2http bridge running")

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received")
	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := topo.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error stopping consumer groups")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error stopping HTTP server")
	}
	logger.Info().Msg("amqp2http bridge stopped")
}
