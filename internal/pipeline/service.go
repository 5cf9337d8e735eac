package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"factoriowiki/internal"
	"factoriowiki/internal/extract"
	"factoriowiki/internal/facts"
	"factoriowiki/internal/registry"
	"factoriowiki/internal/storage"
	"factoriowiki/internal/wiki"
)

// Ledger records runs. Write failures are logged and never fail a command.
type Ledger interface {
	InsertRun(run internal.RunRow) (int64, error)
	SetMetadata(key, value string) error
}

type Service struct {
	registry  *registry.Registry
	items     *storage.ItemStore
	fetcher   wiki.Fetcher
	extractor extract.Extractor
	ledger    Ledger
}

// NewService wires a pipeline. A nil extractor means extract.HTML.
func NewService(reg *registry.Registry, items *storage.ItemStore, fetcher wiki.Fetcher, extractor extract.Extractor, ledger Ledger) *Service {
	if extractor == nil {
		extractor = extract.HTML{}
	}
	return &Service{registry: reg, items: items, fetcher: fetcher, extractor: extractor, ledger: ledger}
}

type Options struct {
	Locale internal.Locale
	Mode   internal.GameMode
	// Depth is how many levels of registered materials to follow.
	Depth int
	// HTMLFile replaces the fetch of the top-level page.
	HTMLFile string
}

type Result struct {
	Identity internal.Identity
	URL      string
	Depth    int
	Recipe   *internal.RecipeFact
	Volume   *internal.VolumeFact
	Record   internal.ItemRecord
	Path     string
}

// Run extracts kind facts for one item and, when opts.Depth > 0, for the
// registered materials of its recipe. Each code is processed at most once.
// Only the top-level item's failure is returned.
func (s *Service) Run(ctx context.Context, kind internal.RunKind, nameOrCode string, opts Options) ([]Result, error) {
	switch kind {
	case internal.RunRecipe, internal.RunVolume, internal.RunFacts:
	default:
		return nil, fmt.Errorf("unsupported run kind %q", kind)
	}

	id, err := s.registry.Lookup(nameOrCode, opts.Locale)
	if err != nil {
		return nil, err
	}

	r := &run{
		svc:     s,
		kind:    kind,
		opts:    opts,
		traceID: uuid.NewString(),
		visited: map[string]struct{}{},
	}
	if err := r.process(ctx, id, 0); err != nil {
		return r.results, err
	}
	return r.results, nil
}

type run struct {
	svc     *Service
	kind    internal.RunKind
	opts    Options
	traceID string
	visited map[string]struct{}
	results []Result
}

func (r *run) process(ctx context.Context, id internal.Identity, depth int) error {
	if _, seen := r.visited[id.Code]; seen {
		slog.DebugContext(ctx, "already processed", "code", id.Code)
		return nil
	}
	r.visited[id.Code] = struct{}{}

	started := time.Now()
	pageURL := r.svc.registry.URLFor(id, r.opts.Locale)
	row := internal.RunRow{
		TraceID:  r.traceID,
		ItemCode: id.Code,
		Kind:     r.kind,
		URL:      pageURL,
		Status:   "ok",
	}

	res, page, err := r.extract(ctx, id, pageURL, depth)
	row.DurationMs = time.Since(started).Milliseconds()
	if err != nil {
		msg := err.Error()
		row.Status = "failed"
		row.Error = &msg
		r.svc.record(ctx, row)
		return err
	}
	if res.Recipe != nil {
		row.Warnings = res.Recipe.Warnings
		row.Materials = len(res.Recipe.Materials)
	}
	r.svc.record(ctx, row)
	r.results = append(r.results, res)

	if depth >= r.opts.Depth {
		return nil
	}
	for _, code := range r.materialCodes(res, page) {
		material, ok := r.svc.registry.FindByCode(code)
		if !ok {
			slog.DebugContext(ctx, "material not registered, not following", "code", code)
			continue
		}
		if err := r.process(ctx, material, depth+1); err != nil {
			slog.WarnContext(ctx, "material extraction failed", "code", code, "err", err)
		}
	}
	return nil
}

func (r *run) extract(ctx context.Context, id internal.Identity, pageURL string, depth int) (Result, extract.Document, error) {
	res := Result{Identity: id, URL: pageURL, Depth: depth}

	var (
		html string
		err  error
	)
	if depth == 0 && r.opts.HTMLFile != "" {
		html, err = ReadHTML(r.opts.HTMLFile)
	} else {
		html, err = r.svc.fetcher.Fetch(ctx, pageURL)
	}
	if err != nil {
		return res, nil, err
	}

	page, err := r.svc.extractor.Parse(html)
	if err != nil {
		return res, nil, err
	}

	if r.kind == internal.RunRecipe || r.kind == internal.RunFacts {
		table, found := page.Recipe(r.opts.Mode)
		if !found {
			slog.WarnContext(ctx, "no recipe found", "code", id.Code, "mode", r.opts.Mode)
		}
		fact := facts.BuildRecipeFact(id, r.opts.Locale, table, found)
		res.Recipe = &fact
	}
	if r.kind == internal.RunVolume || r.kind == internal.RunFacts {
		capacity := page.RocketCapacity()
		if capacity == nil {
			slog.InfoContext(ctx, "no rocket capacity on page", "code", id.Code)
		}
		fact := facts.BuildVolumeFact(id, r.opts.Locale, capacity)
		res.Volume = &fact
	}

	existing, err := r.svc.items.Load(id.Code)
	if err != nil {
		return res, nil, err
	}
	res.Record = facts.Merge(existing, id, r.opts.Locale, res.Recipe, res.Volume)
	res.Path, err = r.svc.items.Save(res.Record)
	if err != nil {
		return res, nil, fmt.Errorf("save %s: %w", id.Code, err)
	}
	slog.InfoContext(ctx, "item saved", "code", id.Code, "kind", r.kind, "path", res.Path)
	return res, page, nil
}

// materialCodes lists what to follow. Volume runs read the recipe from the
// same page without storing it.
func (r *run) materialCodes(res Result, page extract.Document) []string {
	var codes []string
	if res.Recipe != nil {
		for _, m := range res.Recipe.Materials {
			codes = append(codes, m.ItemCode)
		}
		return codes
	}
	if page == nil {
		return nil
	}
	table, _ := page.Recipe(r.opts.Mode)
	for _, m := range table.Materials {
		codes = append(codes, m.Code)
	}
	return codes
}

func (s *Service) record(ctx context.Context, row internal.RunRow) {
	if s.ledger == nil {
		return
	}
	if _, err := s.ledger.InsertRun(row); err != nil {
		slog.WarnContext(ctx, "run ledger write failed", "code", row.ItemCode, "err", err)
	}
}
