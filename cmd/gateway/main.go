package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/chattersys/chatter/internal/bus"
	"github.com/chattersys/chatter/internal/config"
	"github.com/chattersys/chatter/internal/gateway"
	"github.com/chattersys/chatter/internal/metrics"
	"github.com/chattersys/chatter/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("gateway")
	}
}

func run() error {
	logCfg := config.LoadLogConfig()
	observability.InitLogger(logCfg.Path, logCfg.Level)

	baseCtx := context.Background()
	obsCfg := config.LoadObsConfig("chat-gateway")
	if shutdown, err := observability.InitOTel(baseCtx, obsCfg); err != nil {
		log.Warn().Err(err).Msg("otel_init_failed_continuing_without_observability")
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	gwCfg := gateway.LoadConfig()
	streams := config.LoadStreams()
	busCfg := config.LoadBusConfig("chat-gateway-" + randomSuffix())
	groupName := config.Getenv("GATEWAY_GROUP", "chat-gateway")
	httpAddr := config.Getenv("GATEWAY_HTTP_ADDR", ":8080")

	patterns, err := config.ValidateModerationPatterns(gwCfg.PatternsFile)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	validator, err := config.ValidateMessageSchema(gwCfg.MessageSchemaPath)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	fanOut := gateway.NewFanOut(gwCfg.BroadcastQueueSize)
	go fanOut.Run()
	defer fanOut.Close()

	counters := &gateway.IngestCounters{}
	consumer := &gateway.IngestConsumer{
		Validator:    validator,
		Patterns:     patterns,
		MaxChars:     gwCfg.ContentMaxLength,
		FirehoseName: streams.Firehose,
		FanOut:       fanOut,
		Counters:     counters,
	}

	ctx, cancel := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", metrics.HealthzHandler)
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		metrics.JSONHandler(struct {
			Ingest *gateway.IngestCounters `json:"ingest"`
			FanOut gateway.Stats           `json:"fan_out"`
		}{counters, fanOut.Snapshot()})(w, r)
	})
	mux.HandleFunc("/ws", fanOut.ServeSubscribe(gwCfg.DefaultRoomID, gwCfg.SubscribeTimeout))
	server := &http.Server{Addr: httpAddr, Handler: mux}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", httpAddr).Msg("gateway_http_listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("gateway http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		rl := bus.RunLoopConfig{
			Stream:   streams.Ingest,
			Group:    groupName,
			Consumer: busCfg.ConsumerName,
			Count:    busCfg.ReadCount,
			BlockMS:  busCfg.ReadBlock.Milliseconds(),
		}
		return bus.RunLoop(gctx, busCfg, rl, consumer.Handle())
	})

	if err := group.Wait(); err != nil && gctx.Err() == nil {
		return err
	}
	log.Info().Msg("gateway_stopped")
	return nil
}

func randomSuffix() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "instance"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
