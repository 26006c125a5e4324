// Command newsletter generates a periodic research newsletter for a
// configured knowledge domain by running a multi-agent LLM pipeline:
// retrieve, score/filter, summarize, executive-summary, review,
// knowledge-graph extraction, then compose Markdown/HTML/JSON output.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/oncopulse/newsletter/internal/scheduler"
	"github.com/oncopulse/newsletter/pkg/checkpoint"
	"github.com/oncopulse/newsletter/pkg/cleanup"
	"github.com/oncopulse/newsletter/pkg/config"
	"github.com/oncopulse/newsletter/pkg/engine"
	"github.com/oncopulse/newsletter/pkg/llmgateway"
	"github.com/oncopulse/newsletter/pkg/masking"
	"github.com/oncopulse/newsletter/pkg/nodes"
	"github.com/oncopulse/newsletter/pkg/notify"
	"github.com/oncopulse/newsletter/pkg/prompt"
	"github.com/oncopulse/newsletter/pkg/retrieval"
	"github.com/oncopulse/newsletter/pkg/state"
	"github.com/oncopulse/newsletter/pkg/telemetry"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	maskingService := masking.NewService()
	base := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(masking.NewRedactingHandler(base, maskingService)))

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		slog.Info("loaded environment file", "path", envPath)
	}

	slog.Info("starting newsletter pipeline", "config_dir", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	metrics := telemetry.NewMetrics()
	shutdownTracing, err := telemetry.InitTracerProvider("newsletter")
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracer provider shutdown failed", "error", err)
		}
	}()

	gateway, err := llmgateway.New(cfg.LLMProviders, cfg.Engine.MaxInFlightLLMCalls)
	if err != nil {
		log.Fatalf("failed to build LLM gateway: %v", err)
	}
	gateway.SetMetrics(metrics)

	userPrompts, err := prompt.LoadCatalog(cfg.PromptsPath)
	if err != nil {
		log.Fatalf("failed to load prompt catalog: %v", err)
	}
	prompts := prompt.NewRegistry(userPrompts)

	retriever := buildRetriever(cfg)
	retriever.SetMetrics(metrics)

	sink := buildCheckpointSink(cfg)

	cleanupSvc := cleanupServiceOrNil(cfg)
	if cleanupSvc != nil {
		cleanupSvc.Start(ctx)
		defer cleanupSvc.Stop()
	}

	notifySvc := notify.NewService(notify.ServiceConfig{
		Token:   os.Getenv("SLACK_BOT_TOKEN"),
		Channel: cfg.SlackChannel,
	})

	deps := &nodes.Deps{
		Config:    cfg,
		Gateway:   gateway,
		Prompts:   prompts,
		Retriever: retriever,
		Ontology:  cfg.Ontology,
		Metrics:   metrics,
	}

	eng := buildEngine(cfg, sink, deps)

	runOnce := func(ctx context.Context) error {
		return runPipeline(ctx, eng, cfg, notifySvc)
	}

	if cfg.Features.EnableScheduler && cfg.ScheduleCron != "" {
		sched, err := scheduler.NewService(cfg.ScheduleCron, runOnce)
		if err != nil {
			log.Fatalf("failed to build scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()

		slog.Info("scheduler active, blocking on this process; send SIGINT/SIGTERM to stop")
		select {}
	}

	if err := runOnce(ctx); err != nil {
		log.Fatalf("pipeline run failed: %v", err)
	}
}

func runPipeline(ctx context.Context, eng *engine.Engine, cfg *config.Config, notifySvc *notify.Service) error {
	runID := uuid.NewString()
	s := state.New(runID, cfg.MainTopic, time.Now())

	threadTS := notifySvc.NotifyRunStarted(ctx, runID, cfg.MainTopic)

	err := eng.Run(ctx, s)

	notifySvc.NotifyRunCompleted(ctx, s, threadTS)

	if err != nil {
		return err
	}
	slog.Info("pipeline run completed", "run_id", runID, "stage", s.CurrentStage)
	return nil
}

func buildEngine(cfg *config.Config, sink checkpoint.Sink, deps *nodes.Deps) *engine.Engine {
	eng := engine.New(cfg.Engine, sink)

	eng.RegisterNode("initialize", nodes.Initialize(deps), engine.Policy{})
	eng.RegisterNode("fetch_all_topics", nodes.FetchAllTopics(deps), engine.Policy{})
	eng.RegisterNode("score_and_filter", nodes.ScoreAndFilter(deps), engine.Policy{})
	eng.RegisterNode("summarize_topics", nodes.SummarizeTopics(deps), engine.Policy{})
	eng.RegisterNode("executive_summary", nodes.ExecutiveSummary(deps), engine.Policy{})
	eng.RegisterNode("review", nodes.Review(deps), engine.Policy{})
	eng.RegisterNode("extract_graph", nodes.ExtractGraph(deps), engine.Policy{})
	eng.RegisterNode("compose_outputs", nodes.ComposeOutputs(deps, nil), engine.Policy{})
	eng.RegisterNode("finalize_on_failure", nodes.FinalizeOnFailure(deps), engine.Policy{})

	eng.AddEdge("initialize", "fetch_all_topics")
	eng.AddConditionalEdge("fetch_all_topics", nodes.RouteOnFatalError("score_and_filter"))
	eng.AddEdge("score_and_filter", "summarize_topics")
	eng.AddEdge("summarize_topics", "executive_summary")
	eng.AddEdge("executive_summary", "review")
	eng.AddEdge("review", "extract_graph")
	eng.AddEdge("extract_graph", "compose_outputs")

	eng.SetMetrics(deps.Metrics)
	return eng
}

// buildRetriever wires every retrieval.Retriever this pipeline knows how
// to talk to, split into the domain group (PubMed, journal feeds) and the
// generic group (web search), per §4.6. Feed URLs and the web-search
// endpoints live in environment variables rather than config.Config: this
// pipeline has no topic-level retriever-selection surface.
func buildRetriever(cfg *config.Config) *retrieval.MetaRetriever {
	var domain []retrieval.Retriever
	domain = append(domain, retrieval.NewPubMedRetriever())
	if feedURLs := os.Getenv("NEWSLETTER_FEED_URLS"); feedURLs != "" {
		domain = append(domain, retrieval.NewFeedRetriever(strings.Split(feedURLs, ",")))
	}

	var generic []retrieval.Retriever
	if endpoint := os.Getenv("NEWSLETTER_WEBSEARCH_ENDPOINT"); endpoint != "" {
		generic = append(generic, retrieval.NewWebSearchRetriever(endpoint, "NEWSLETTER_WEBSEARCH_API_KEY"))
	}
	if endpoint := os.Getenv("NEWSLETTER_WEBSEARCH_FAILOVER_ENDPOINT"); endpoint != "" {
		generic = append(generic, retrieval.NewWebSearchRetriever(endpoint, "NEWSLETTER_WEBSEARCH_FAILOVER_API_KEY"))
	}

	return retrieval.NewMetaRetriever(domain, generic, cfg.Features.UseDomainSources, cfg.Defaults.MinDomainResults,
		retrieval.WithRateLimit(3, 5))
}

// cleanupServiceOrNil builds the output-artifact retention sweeper, or nil
// if no retention policy or output directory is configured.
func cleanupServiceOrNil(cfg *config.Config) *cleanup.Service {
	if cfg.Retention == nil || cfg.OutputDir == "" {
		return nil
	}
	return cleanup.NewService(cfg.Retention, cfg.OutputDir)
}

// buildCheckpointSink uses Redis when REDIS_ADDR is set, falling back to
// an in-process MemorySink (no resume-after-restart) otherwise. Returns
// nil when checkpointing is disabled, which engine.New documents as
// "checkpointing off": no persistence, no Resume.
func buildCheckpointSink(cfg *config.Config) checkpoint.Sink {
	if !cfg.Features.Checkpointing {
		slog.Info("checkpointing disabled by feature flag")
		return nil
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		slog.Info("REDIS_ADDR not set, using in-memory checkpoint sink")
		return checkpoint.NewMemorySink()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	slog.Info("using redis checkpoint sink", "addr", addr)
	return checkpoint.NewRedisSink(client, 7*24*time.Hour)
}
