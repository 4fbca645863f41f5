package retrieval

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/embedding"
	"github.com/mattepiu/cortex/internal/storage"
)

// DefaultBudget is the token budget used when a Request leaves Budget
// nil. An explicit Budget pointing at 0 is a deliberate caller choice
// (spec.md §8: "a budget of 0 returns the empty context"), distinct
// from "unset" — a plain int field couldn't tell the two apart.
const DefaultBudget = 4000

// searchStore is the narrow slice of *storage.Store the pipeline needs,
// mirroring internal/causal's causalStore: a consumer-defined interface
// rather than a direct struct dependency, so this package can be tested
// against a fake without importing sqlite.
type searchStore interface {
	SearchFTS(query, namespace string, limit int) ([]storage.LexicalHit, error)
	SearchVector(query []float32, namespace string, topK int) ([]storage.VectorHit, error)
	QueryBy(f storage.QueryFilters) ([]*coretypes.Memory, error)
	GetBulk(ids []string) ([]*coretypes.Memory, error)
}

// RerankFunc is the optional cross-encoder re-rank hook (spec.md §4.3,
// an external collaborator per SPEC_FULL.md §11). When nil the pipeline
// skips straight from scoring to dedup.
type RerankFunc func(ctx context.Context, query string, candidates []*coretypes.Memory) ([]*coretypes.Memory, error)

// Request is one retrieval call's parameters.
type Request struct {
	Query       string
	Namespace   string
	SessionID   string
	ActiveFiles []string
	Tags        []string
	// Budget is the token budget for the assembled GenerationContext.
	// nil uses DefaultBudget. A non-nil pointer to 0 is an explicit
	// request for an empty context, per spec.md §8.
	Budget *int
	TopK   int
}

// Pipeline wires intent classification, expansion, parallel lexical +
// vector + entity retrieval, RRF fusion, scoring, optional re-rank,
// session dedup, and compression into GenerationContext.Retrieve, per
// spec.md §4.3's pipeline list.
type Pipeline struct {
	store    searchStore
	embedder embedding.Provider
	rrfK     int
	rerank   RerankFunc
	dedup    *SessionDedup
	hyde     HypotheticalDocumentFunc
	clock    coretypes.Clock
}

// NewPipeline constructs a Pipeline. rrfK <= 0 falls back to
// DefaultRRFK. rerank may be nil. clock nil falls back to
// coretypes.SystemClock{}; every other time-dependent engine (decay,
// reclassification, cache TTL) takes a Clock rather than calling
// time.Now() directly, so this pipeline does too.
func NewPipeline(store searchStore, embedder embedding.Provider, rrfK int, rerank RerankFunc, clock coretypes.Clock) *Pipeline {
	if rrfK <= 0 {
		rrfK = DefaultRRFK
	}
	if clock == nil {
		clock = coretypes.SystemClock{}
	}
	return &Pipeline{
		store:    store,
		embedder: embedder,
		rrfK:     rrfK,
		rerank:   rerank,
		dedup:    NewSessionDedup(),
		clock:    clock,
	}
}

// WithHyDE sets the hypothetical-document-generation hook used during
// query expansion.
func (p *Pipeline) WithHyDE(fn HypotheticalDocumentFunc) *Pipeline {
	p.hyde = fn
	return p
}

// Retrieve runs the full pipeline and returns an assembled
// GenerationContext fit to req.Budget.
func (p *Pipeline) Retrieve(ctx context.Context, req Request) (GenerationContext, error) {
	budget := DefaultBudget
	if req.Budget != nil {
		budget = *req.Budget
	}
	if req.TopK <= 0 {
		req.TopK = 50
	}

	intent := ClassifyIntent(req.Query)
	if budget <= 0 {
		return GenerationContext{Query: req.Query, Intent: intent, Budget: budget}, nil
	}
	expanded := Expand(req.Query, p.hyde)

	lists, err := p.fanOutSearch(ctx, req, expanded)
	if err != nil {
		return GenerationContext{}, coretypes.NewSearchFailed("retrieval fan-out", err)
	}

	fused := FuseRRF(lists, p.rrfK)
	normalized := NormalizeRRF(fused)

	ids := make([]string, len(fused))
	for i, h := range fused {
		ids[i] = h.MemoryID
	}
	memories, err := p.store.GetBulk(ids)
	if err != nil {
		return GenerationContext{}, coretypes.NewSearchFailed("retrieval hydrate", err)
	}
	byID := make(map[string]*coretypes.Memory, len(memories))
	for _, m := range memories {
		byID[m.ID] = m
	}

	scoreCtx := ScoreContext{
		Intent:      intent,
		QueryTags:   req.Tags,
		ActiveFiles: req.ActiveFiles,
		Now:         p.clock.Now(),
	}

	selector := NewTopKSelector(req.TopK)
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			continue
		}
		score := Score(m, normalized[id], scoreCtx)
		selector.Add(ScoredItem{MemoryID: id, Score: score})
	}

	top := selector.Items()
	ranked := make([]*coretypes.Memory, 0, len(top))
	for _, item := range top {
		ranked = append(ranked, byID[item.MemoryID])
	}

	if p.rerank != nil {
		reranked, err := p.rerank(ctx, req.Query, ranked)
		if err == nil && len(reranked) > 0 {
			ranked = reranked
		}
	}

	gc := AssembleGenerationContext(req.Query, intent, budget, ranked)

	var allEntries []Rendered
	for _, alloc := range gc.Allocations {
		allEntries = append(allEntries, alloc.Entries...)
	}
	dedupResult := p.dedup.Filter(req.SessionID, allEntries)
	gc.TokensSaved = dedupResult.TokensSaved

	return gc, nil
}

// fanOutSearch runs lexical, vector, and entity-expansion retrieval
// concurrently via errgroup (spec.md §4.3: "parallel lexical FTS +
// vector search + entity-expansion"), returning one ranked id list per
// retriever and per expanded query variant.
func (p *Pipeline) fanOutSearch(ctx context.Context, req Request, expanded []string) ([]RankedList, error) {
	g, gctx := errgroup.WithContext(ctx)
	lists := make([]RankedList, len(expanded)*2+1)

	for i, variant := range expanded {
		i, variant := i, variant
		g.Go(func() error {
			hits, err := p.store.SearchFTS(variant, req.Namespace, req.TopK)
			if err != nil {
				return err
			}
			lists[i*2] = lexicalRankedList(hits)
			return nil
		})
		g.Go(func() error {
			if p.embedder == nil {
				return nil
			}
			vec, err := p.embedder.Embed(gctx, variant)
			if err != nil {
				return nil // embedding degradation: drop this signal, don't fail the query
			}
			hits, err := p.store.SearchVector(vec, req.Namespace, req.TopK)
			if err != nil {
				return err
			}
			lists[i*2+1] = vectorRankedList(hits)
			return nil
		})
	}

	entityIdx := len(expanded) * 2
	g.Go(func() error {
		if len(req.Tags) == 0 {
			return nil
		}
		memories, err := p.store.QueryBy(storage.QueryFilters{
			Namespace: req.Namespace,
			Tags:      req.Tags,
			Limit:     req.TopK,
		})
		if err != nil {
			return err
		}
		list := make(RankedList, len(memories))
		for i, m := range memories {
			list[i] = m.ID
		}
		lists[entityIdx] = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]RankedList, 0, len(lists))
	for _, l := range lists {
		if l != nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func lexicalRankedList(hits []storage.LexicalHit) RankedList {
	list := make(RankedList, len(hits))
	for i, h := range hits {
		list[i] = h.MemoryID
	}
	return list
}

func vectorRankedList(hits []storage.VectorHit) RankedList {
	list := make(RankedList, len(hits))
	for i, h := range hits {
		list[i] = h.MemoryID
	}
	return list
}
