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
	"github.com/chattersys/chatter/internal/llmprovider"
	"github.com/chattersys/chatter/internal/metrics"
	"github.com/chattersys/chatter/internal/observability"
	"github.com/chattersys/chatter/internal/perceiver"
	"github.com/chattersys/chatter/internal/reply"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("stream_perceiver")
	}
}

func run() error {
	logCfg := config.LoadLogConfig()
	observability.InitLogger(logCfg.Path, logCfg.Level)

	baseCtx := context.Background()
	obsCfg := config.LoadObsConfig("chat-stream-perceiver")
	if shutdown, err := observability.InitOTel(baseCtx, obsCfg); err != nil {
		log.Warn().Err(err).Msg("otel_init_failed_continuing_without_observability")
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	streams := config.LoadStreams()
	instanceID := "stream-perceiver-" + randomSuffix()
	busCfg := config.LoadBusConfig(instanceID)
	groupName := config.Getenv("STREAM_PERCEIVER_GROUP", "chat-stream-perceiver")
	httpAddr := config.Getenv("STREAM_PERCEIVER_HTTP_ADDR", ":8082")

	schemaPath := config.Getenv("STREAM_OBSERVATION_SCHEMA", "configs/schemas/stream_observation.schema.json")
	validator, err := config.ValidateMessageSchema(schemaPath)
	if err != nil {
		return fmt.Errorf("stream_perceiver: %w", err)
	}

	provider := llmprovider.FromEnv()

	var template *reply.LoadedTemplate
	if manifestPath := config.Getenv("REPLY_PROMPT_MANIFEST", ""); manifestPath != "" {
		baseDir := config.Getenv("REPLY_PROMPT_BASE_DIR", "configs/prompts")
		templates, err := reply.LoadManifest(manifestPath, baseDir)
		if err != nil {
			return fmt.Errorf("stream_perceiver: invalid prompt manifest %s: %w", manifestPath, err)
		}
		if t, ok := templates["stream_observation"]; ok {
			template = &t
		}
	}

	counters := &perceiver.Counters{}
	worker := &perceiver.Worker{
		Cfg: perceiver.Config{
			RepoRoot:               config.Getenv("STREAM_REPO_ROOT", "."),
			AppAlias:               config.Getenv("STREAM_APP_ALIAS", "/app/"),
			TranscriptJoinWindowMS: config.GetenvDuration("STREAM_TRANSCRIPT_JOIN_WINDOW", 15*time.Second).Milliseconds(),
			ObservationsStream:     streams.Observations,
		},
		Joins:      perceiver.NewJoins(config.GetenvDuration("STREAM_TRANSCRIPT_RETENTION", 2*time.Minute).Milliseconds()),
		Validator:  validator,
		Provider:   provider,
		Template:   template,
		Counters:   counters,
		InstanceID: instanceID,
	}

	ctx, cancel := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", metrics.PerceiverHealthzHandler)
	mux.HandleFunc("/stats", metrics.JSONHandler(counters))
	server := &http.Server{Addr: httpAddr, Handler: mux}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", httpAddr).Msg("stream_perceiver_http_listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("stream perceiver http server: %w", err)
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
			Stream:   streams.Transcripts,
			Group:    groupName,
			Consumer: busCfg.ConsumerName + "-transcripts",
			Count:    busCfg.ReadCount,
			BlockMS:  busCfg.ReadBlock.Milliseconds(),
		}
		return bus.RunLoop(gctx, busCfg, rl, worker.HandleTranscript())
	})
	group.Go(func() error {
		rl := bus.RunLoopConfig{
			Stream:   streams.Frames,
			Group:    groupName,
			Consumer: busCfg.ConsumerName + "-frames",
			Count:    busCfg.ReadCount,
			BlockMS:  busCfg.ReadBlock.Milliseconds(),
		}
		return bus.RunLoop(gctx, busCfg, rl, worker.HandleFrame())
	})

	if err := group.Wait(); err != nil && gctx.Err() == nil {
		return err
	}
	log.Info().Msg("stream_perceiver_stopped")
	return nil
}

func randomSuffix() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "instance"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
