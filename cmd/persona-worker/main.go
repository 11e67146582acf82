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
	"github.com/chattersys/chatter/internal/memory"
	"github.com/chattersys/chatter/internal/metrics"
	"github.com/chattersys/chatter/internal/observability"
	"github.com/chattersys/chatter/internal/persona"
	"github.com/chattersys/chatter/internal/reply"
	"github.com/chattersys/chatter/internal/state"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("persona_worker")
	}
}

func run() error {
	logCfg := config.LoadLogConfig()
	observability.InitLogger(logCfg.Path, logCfg.Level)

	baseCtx := context.Background()
	obsCfg := config.LoadObsConfig("chat-persona-worker")
	if shutdown, err := observability.InitOTel(baseCtx, obsCfg); err != nil {
		log.Warn().Err(err).Msg("otel_init_failed_continuing_without_observability")
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	streams := config.LoadStreams()
	instanceID := "persona-worker-" + randomSuffix()
	busCfg := config.LoadBusConfig(instanceID)
	groupName := config.Getenv("PERSONA_WORKER_GROUP", "chat-persona-worker")
	httpAddr := config.Getenv("PERSONA_WORKER_HTTP_ADDR", ":8081")

	personaCfgs, err := persona.LoadConfigDir(config.Getenv("PERSONA_CONFIG_DIR", "configs/personas"))
	if err != nil {
		return fmt.Errorf("persona_worker: load persona configs: %w", err)
	}
	roomCfgs, err := persona.LoadRoomConfigDir(config.Getenv("ROOM_CONFIG_DIR", "configs/rooms"))
	if err != nil {
		return fmt.Errorf("persona_worker: load room configs: %w", err)
	}
	log.Info().Int("personas", len(personaCfgs)).Int("rooms", len(roomCfgs)).Msg("persona_worker_configs_loaded")

	provider := llmprovider.FromEnv()
	generator, err := reply.FromEnv(provider)
	if err != nil {
		return fmt.Errorf("persona_worker: %w", err)
	}

	mentionWindowMS := config.GetenvDuration("PERSONA_MENTION_WINDOW", 10*time.Minute).Milliseconds()
	botBudgetWindowMS := config.GetenvDuration("ROOM_BOT_BUDGET_WINDOW", 10*time.Second).Milliseconds()
	momentumWindowMS := config.GetenvDuration("ROOM_MOMENTUM_WINDOW", time.Minute).Milliseconds()
	maxRecent := config.GetenvInt("ROOM_MAX_RECENT_MESSAGES", 50)
	avoidRepeatLastN := config.GetenvInt("AUTO_AVOID_REPEAT_LAST_N", 2)

	var extractor *persona.Extractor
	if config.GetenvBool("MEMORY_EXTRACTION_ENABLED", true) {
		extractor = &persona.Extractor{
			Store:    memory.FromEnv(),
			Policy:   memory.LoadPolicyConfig(),
			Patterns: memory.DefaultRedactionPatterns(),
			Provider: provider,
		}
	}

	counters := &persona.WorkerCounters{}
	worker := &persona.Worker{
		Dedupe:      state.NewDedupeCache(config.GetenvInt("PERSONA_DEDUPE_CAPACITY", 10000)),
		Rooms:       state.NewRooms(func() *state.RoomState { return state.NewRoomState(maxRecent, botBudgetWindowMS, momentumWindowMS) }),
		Personas:    state.NewPersonaStore(func() *state.PersonaStats { return state.NewPersonaStats(mentionWindowMS) }),
		RoomConfigs: roomCfgs,
		PersonaCfgs: personaCfgs,
		Generator:   generator,
		Extractor:   extractor,
		IngestName:  streams.Ingest,
		Counters:    counters,
		InstanceID:  instanceID,
		AutoStates:  persona.NewAutoStateRegistry(avoidRepeatLastN),
	}

	ctx, cancel := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", metrics.HealthzHandler)
	mux.HandleFunc("/stats", metrics.JSONHandler(counters))
	server := &http.Server{Addr: httpAddr, Handler: mux}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", httpAddr).Msg("persona_worker_http_listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("persona worker http server: %w", err)
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
			Stream:   streams.Firehose,
			Group:    groupName,
			Consumer: busCfg.ConsumerName,
			Count:    busCfg.ReadCount,
			BlockMS:  busCfg.ReadBlock.Milliseconds(),
		}
		return bus.RunLoop(gctx, busCfg, rl, worker.Handle())
	})
	group.Go(func() error {
		rl := bus.RunLoopConfig{
			Stream:   streams.Observations,
			Group:    groupName,
			Consumer: busCfg.ConsumerName + "-obs",
			Count:    busCfg.ReadCount,
			BlockMS:  busCfg.ReadBlock.Milliseconds(),
		}
		return bus.RunLoop(gctx, busCfg, rl, worker.HandleObservation())
	})

	if err := group.Wait(); err != nil && gctx.Err() == nil {
		return err
	}
	log.Info().Msg("persona_worker_stopped")
	return nil
}

func randomSuffix() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "instance"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
