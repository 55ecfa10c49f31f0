package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Merco74/ScoutPlateform/internal/metrics"
	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Renderer produces the authorization and sanitary PDFs of a record. It
// holds no per-call state and is safe for concurrent use.
type Renderer struct {
	fs         afero.Fs
	logoPath   string
	categories registration.CategoryTable
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	loc        *time.Location
}

type Option func(*Renderer)

func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) { r.loc = loc }
}

// NewRenderer reads the logo from fsys at logoPath on every render. An
// empty logoPath renders documents without logos.
func NewRenderer(
	fsys afero.Fs,
	logoPath string,
	categories registration.CategoryTable,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Renderer {
	r := &Renderer{
		fs:         fsys,
		logoPath:   logoPath,
		categories: categories,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Layouts returns the content of both documents for rec.
func (r *Renderer) Layouts(rec *registration.Record, issuedAt time.Time) (Layout, Layout) {
	rule, ok := r.categories.Lookup(rec.Category)
	if !ok {
		rule = registration.CategoryRule{DisplayName: string(rec.Category)}
	}
	return AuthorizationLayout(rec, rule, issuedAt), SanitaryLayout(rec, rule, issuedAt)
}

// Render builds both documents concurrently. Either both are returned or
// neither is.
func (r *Renderer) Render(ctx context.Context, rec *registration.Record) (*registration.Rendered, error) {
	var logo *Asset
	if r.logoPath != "" {
		var err error
		logo, err = LoadAsset(r.fs, r.logoPath)
		if err != nil {
			r.logger.ErrorContext(ctx, "logo unavailable", "path", r.logoPath, "error", err)
			return nil, err
		}
	}

	issuedAt := r.now().In(r.loc)
	authorization, sanitary := r.Layouts(rec, issuedAt)

	var rendered registration.Rendered
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := r.render(ctx, authorization, logo, issuedAt)
		rendered.Authorization = data
		return err
	})
	g.Go(func() error {
		data, err := r.render(ctx, sanitary, logo, issuedAt)
		rendered.Sanitary = data
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &rendered, nil
}

func (r *Renderer) render(ctx context.Context, layout Layout, logo *Asset, issuedAt time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signature, err := DecodeSignature(layout.Signature.DataURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %s signature: %w", registration.ErrRenderFailure, layout.Kind, err)
	}

	start := time.Now()
	data, err := writePDF(layout, logo, signature, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", registration.ErrRenderFailure, layout.Kind, err)
	}

	r.metrics.RecordDocumentRendered(ctx, string(layout.Kind))
	r.logger.DebugContext(ctx, "document rendered",
		"document", layout.Kind,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}
