package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"factoriowiki/internal"
	"factoriowiki/internal/extract"
	"factoriowiki/internal/registry"
	"factoriowiki/internal/storage"
	"factoriowiki/internal/wiki"
)

var ErrEmptyListing = errors.New("listing page has no item links")

type Bootstrapper struct {
	registry  *registry.Registry
	fetcher   wiki.Fetcher
	extractor extract.Extractor
	ledger    Ledger
	baseURL   string
}

// NewBootstrapper wires a bootstrapper. A nil extractor means extract.HTML.
func NewBootstrapper(reg *registry.Registry, fetcher wiki.Fetcher, extractor extract.Extractor, ledger Ledger, baseURL string) *Bootstrapper {
	if extractor == nil {
		extractor = extract.HTML{}
	}
	return &Bootstrapper{registry: reg, fetcher: fetcher, extractor: extractor, ledger: ledger, baseURL: baseURL}
}

// Bootstrap fetches the listing page and replaces the registry with the
// identities found on it. An empty listing leaves the registry untouched.
func (b *Bootstrapper) Bootstrap(ctx context.Context, listingURL, htmlFile string) ([]internal.Identity, error) {
	started := time.Now()
	row := internal.RunRow{
		TraceID:  uuid.NewString(),
		ItemCode: "*",
		Kind:     internal.RunBootstrap,
		URL:      listingURL,
		Status:   "ok",
	}

	items, err := b.collect(ctx, listingURL, htmlFile)
	if err == nil {
		err = b.registry.Replace(items)
	}
	row.DurationMs = time.Since(started).Milliseconds()
	row.Materials = len(items)
	if err != nil {
		msg := err.Error()
		row.Status = "failed"
		row.Error = &msg
	}
	b.record(ctx, row)
	if err != nil {
		return nil, err
	}

	if b.ledger != nil {
		now := time.Now().UTC().Format(time.RFC3339)
		if err := b.ledger.SetMetadata(storage.MetaLastBootstrap, now); err != nil {
			slog.WarnContext(ctx, "ledger metadata write failed", "err", err)
		}
		if err := b.ledger.SetMetadata(storage.MetaLastBootstrapCount, strconv.Itoa(len(items))); err != nil {
			slog.WarnContext(ctx, "ledger metadata write failed", "err", err)
		}
	}
	slog.InfoContext(ctx, "registry bootstrapped", "items", len(items), "path", b.registry.Path())
	return items, nil
}

func (b *Bootstrapper) collect(ctx context.Context, listingURL, htmlFile string) ([]internal.Identity, error) {
	var (
		html string
		err  error
	)
	if htmlFile != "" {
		html, err = ReadHTML(htmlFile)
	} else {
		html, err = b.fetcher.Fetch(ctx, listingURL)
	}
	if err != nil {
		return nil, err
	}

	page, err := b.extractor.Parse(html)
	if err != nil {
		return nil, err
	}
	items := page.Listing(b.baseURL)
	if len(items) == 0 {
		return nil, ErrEmptyListing
	}
	return items, nil
}

func (b *Bootstrapper) record(ctx context.Context, row internal.RunRow) {
	if b.ledger == nil {
		return
	}
	if _, err := b.ledger.InsertRun(row); err != nil {
		slog.WarnContext(ctx, "run ledger write failed", "err", err)
	}
}
