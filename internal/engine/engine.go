package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mattepiu/cortex/internal/causal"
	"github.com/mattepiu/cortex/internal/concurrency"
	"github.com/mattepiu/cortex/internal/consolidation"
	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/decay"
	"github.com/mattepiu/cortex/internal/embedding"
	"github.com/mattepiu/cortex/internal/logging"
	"github.com/mattepiu/cortex/internal/retrieval"
	"github.com/mattepiu/cortex/internal/sanitizer"
	"github.com/mattepiu/cortex/internal/storage"
	"github.com/mattepiu/cortex/internal/telemetry"
	"github.com/mattepiu/cortex/internal/validation"
	"github.com/mattepiu/cortex/pkg/config"
)

var log = logging.GetLogger("engine")

// Engine is the constructed, running memory system: one Store plus every
// subsystem built on top of it. Callers (cmd/cortexd, or an embedder)
// build one Engine at startup and hold it for the process lifetime.
type Engine struct {
	cfg *config.Config

	Store         *storage.Store
	Causal        *causal.Service
	Embedder      embedding.Provider
	Retrieval     *retrieval.Pipeline
	Consolidation *consolidation.Pipeline
	Validation    *validation.Engine
	Sanitizer     sanitizer.Sanitizer
	Sync          *concurrency.Engine
	Sessions      *concurrency.SessionManager
	Reclassifier  *concurrency.Reclassifier
	detector      *concurrency.SessionDetector
	HalfLives     decay.HalfLives

	Metrics *telemetry.Metrics
	Tracer  telemetry.Tracer

	clock coretypes.Clock
}

// New constructs every subsystem from cfg and wires them together. The
// caller owns the returned Engine's lifetime and must call Close.
func New(cfg *config.Config) (*Engine, error) {
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	clock := coretypes.SystemClock{}

	store, err := storage.Open(storage.Options{
		Path:          cfg.Database.Path,
		WALMode:       cfg.Database.WALMode,
		MmapSizeBytes: cfg.Database.MmapSizeBytes,
		CacheSizeKB:   cfg.Database.CacheSizeKB,
		BusyTimeoutMs: cfg.Database.BusyTimeoutMs,
		ReadPoolSize:  cfg.Database.ReadPoolSize,
		Clock:         clock,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	causalSvc, err := causal.NewService(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build causal service: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build embedding provider: %w", err)
	}

	halfLives := decay.DefaultHalfLives().WithOverrides(parseHalfLifeOverrides(cfg.Decay.HalfLifeOverrides))

	retrievalPipeline := retrieval.NewPipeline(store, embedder, cfg.Retrieval.RRFK, nil, clock)

	consolidationPipeline := consolidation.NewPipeline(store, causalSvc.Graph(), consolidation.Config{
		MinClusterSize:      cfg.Consolidation.MinClusterSize,
		SimilarityThreshold: cfg.Consolidation.SimilarityThreshold,
		NoveltyThreshold:    cfg.Consolidation.NoveltyThreshold,
		LLMPolish:           cfg.Consolidation.LLMPolish,
	})

	validationCfg := validation.DefaultConfig()
	validationCfg.HalfLives = halfLives
	validationEngine := validation.NewEngine(validationCfg, validation.OSFileMetadata{}, storePatternIndex{store: store})

	metrics := telemetry.NewMetrics()
	tracer := telemetry.NewTracer(cfg.Observability.TracingEnabled)

	detector := concurrency.NewSessionDetector(concurrency.SessionStrategy(cfg.Session.Strategy))
	detector.ManualID = cfg.Session.ManualID

	e := &Engine{
		cfg:           cfg,
		Store:         store,
		Causal:        causalSvc,
		Embedder:      embedder,
		Retrieval:     retrievalPipeline,
		Consolidation: consolidationPipeline,
		Validation:    validationEngine,
		Sanitizer:     sanitizer.NewRegexSanitizer(),
		Sync:          concurrency.NewEngine(),
		Sessions:      concurrency.NewSessionManager(),
		Reclassifier:  concurrency.NewReclassifier(),
		detector:      detector,
		HalfLives:     halfLives,
		Metrics:       metrics,
		Tracer:        tracer,
		clock:         clock,
	}

	log.Info("engine constructed", "db_path", cfg.Database.Path, "embedding_provider", cfg.Embedding.Provider)

	return e, nil
}

// Close releases every subsystem resource that owns one (presently just
// the storage connection pool).
func (e *Engine) Close() error {
	return e.Store.Close()
}

// Health aggregates every subsystem probe into one SystemHealth, per
// spec.md §6's health interface. Only storage currently exposes a deep
// probe (WAL checkpoint + integrity check); the rest report OK as long
// as they were constructed successfully, since they hold no independent
// liveness state of their own.
func (e *Engine) Health(ctx context.Context) coretypes.SystemHealth {
	now := e.clock.Now()
	components := []coretypes.ComponentHealth{e.Store.Health()}
	components = append(components, e.embeddingHealth(ctx, now))
	return coretypes.SystemHealth{Components: components}
}

// availabilityChecker is satisfied by providers (presently OllamaProvider)
// that front a remote model server and can report on its reachability.
// Providers with no such dependency (the hashing test provider) simply
// don't implement it, and embeddingHealth reports them OK unconditionally.
type availabilityChecker interface {
	IsAvailable(ctx context.Context) bool
}

func (e *Engine) embeddingHealth(ctx context.Context, now time.Time) coretypes.ComponentHealth {
	checker, ok := e.Embedder.(availabilityChecker)
	if !ok {
		return coretypes.ComponentHealth{Component: "embedding", Status: coretypes.HealthOK, CheckedAt: now}
	}
	if checker.IsAvailable(ctx) {
		return coretypes.ComponentHealth{Component: "embedding", Status: coretypes.HealthOK, CheckedAt: now}
	}
	return coretypes.ComponentHealth{
		Component: "embedding",
		Status:    coretypes.HealthDegraded,
		CheckedAt: now,
		Detail:    fmt.Sprintf("%s unreachable", e.Embedder.Name()),
	}
}

// DetectSessionID returns a session id for the caller's working
// directory per cfg.Session.Strategy, registering a fresh SessionContext
// for it in Sessions when auto-generation is enabled and none exists yet.
// Callers that already track their own session id should pass it
// directly to Sessions.Start instead of calling this.
func (e *Engine) DetectSessionID() string {
	id := e.detector.DetectSessionID()
	if e.cfg.Session.AutoGenerate {
		if _, ok := e.Sessions.GetSession(id); !ok {
			e.Sessions.CreateSession(id, e.clock.Now())
		}
	}
	return id
}

// storePatternIndex satisfies validation.PatternIndex by checking the
// store directly: a pattern "exists" if its memory is present and not
// archived.
type storePatternIndex struct {
	store *storage.Store
}

func (p storePatternIndex) PatternExists(patternID string) bool {
	m, err := p.store.Get(patternID)
	if err != nil || m == nil {
		return false
	}
	return !m.Archived
}

func parseHalfLifeOverrides(days map[string]float64) map[coretypes.Kind]time.Duration {
	out := make(map[coretypes.Kind]time.Duration, len(days))
	for k, v := range days {
		out[coretypes.Kind(k)] = time.Duration(v * float64(24*time.Hour))
	}
	return out
}
