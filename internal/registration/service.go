package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Upload is one file received with a submission. Open is called by the
// upload store once the submission has passed validation.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type Submission struct {
	Form    Form
	Uploads []Upload
}

type Result struct {
	Record    *Record
	Documents Documents
}

// Rendered holds the two PDFs produced for one record.
type Rendered struct {
	Authorization []byte
	Sanitary      []byte
}

type Renderer interface {
	Render(ctx context.Context, rec *Record) (*Rendered, error)
}

// DocumentStore persists a rendered PDF and returns its public location.
type DocumentStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

type UploadStore interface {
	Store(ctx context.Context, uploads []Upload) (FileRefs, error)
	Discard(ctx context.Context, refs FileRefs) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}

// RegistrationCreated is published once a registration and its documents
// are stored.
type RegistrationCreated struct {
	ID             uuid.UUID `json:"id"`
	Category       Category  `json:"categorie"`
	Surname        string    `json:"nom"`
	GivenName      string    `json:"prenom"`
	Age            int       `json:"age"`
	PdfURL         string    `json:"pdfUrl"`
	SanitaryPdfURL string    `json:"sanitaryPdfUrl"`
	RegisteredAt   time.Time `json:"dateInscription"`
}

type Service interface {
	Register(ctx context.Context, sub Submission) (*Result, error)
	List(ctx context.Context, category Category) ([]Record, error)
	Get(ctx context.Context, category Category, id uuid.UUID) (*Record, error)
}

type Option func(*service)

// WithClock replaces the submission clock.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLocation sets the time zone used for ages and signature dates.
func WithLocation(loc *time.Location) Option {
	return func(s *service) { s.loc = loc }
}

// WithPublisher enables registration events.
func WithPublisher(p Publisher) Option {
	return func(s *service) { s.publisher = p }
}

// WithRegistrationPlace sets the place used when the form leaves it empty.
func WithRegistrationPlace(place string) Option {
	return func(s *service) { s.place = place }
}

type service struct {
	repo       Repository
	renderer   Renderer
	documents  DocumentStore
	uploads    UploadStore
	publisher  Publisher
	categories CategoryTable
	logger     *slog.Logger
	now        func() time.Time
	loc        *time.Location
	place      string
}

func NewService(
	repo Repository,
	renderer Renderer,
	documents DocumentStore,
	uploads UploadStore,
	categories CategoryTable,
	logger *slog.Logger,
	opts ...Option,
) Service {
	s := &service{
		repo:       repo,
		renderer:   renderer,
		documents:  documents,
		uploads:    uploads,
		categories: categories,
		logger:     logger,
		now:        time.Now,
		loc:        time.Local,
		place:      DefaultRegistrationPlace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, sub Submission) (*Result, error) {
	now := s.now().In(s.loc)

	fields := Normalize(sub.Form, now)
	if fields.RegistrationPlace == "" {
		fields.RegistrationPlace = s.place
	}

	validated, err := Validate(fields, s.categories)
	if err != nil {
		return nil, err
	}

	files, err := s.uploads.Store(ctx, sub.Uploads)
	if err != nil {
		return nil, err
	}

	rec := Build(validated, files, now)
	rec.ID = uuid.New()

	rendered, err := s.renderer.Render(ctx, rec)
	if err != nil {
		s.discard(ctx, files)
		if !errors.Is(err, ErrMissingAsset) && !errors.Is(err, ErrRenderFailure) {
			err = fmt.Errorf("%w: %w", ErrRenderFailure, err)
		}
		return nil, err
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		s.discard(ctx, files)
		return nil, fmt.Errorf("%w: insert registration: %w", ErrPersistence, err)
	}

	docs, err := s.saveDocuments(ctx, rec.ID, rendered)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDocuments(ctx, rec.ID, docs); err != nil {
		return nil, fmt.Errorf("%w: attach documents: %w", ErrPersistence, err)
	}
	rec.AuthorizationPdfURL = docs.AuthorizationURL
	rec.SanitaryPdfURL = docs.SanitaryURL

	s.logger.InfoContext(ctx, "registration stored",
		"id", rec.ID,
		"category", rec.Category,
		"surname", rec.Surname,
	)

	s.publish(ctx, rec)

	return &Result{Record: rec, Documents: docs}, nil
}

func (s *service) saveDocuments(ctx context.Context, id uuid.UUID, rendered *Rendered) (Documents, error) {
	var docs Documents
	var err error

	docs.AuthorizationURL, err = s.documents.Save(ctx, fmt.Sprintf("%s-auth.pdf", id), rendered.Authorization)
	if err != nil {
		return docs, fmt.Errorf("%w: save authorization: %w", ErrPersistence, err)
	}

	docs.SanitaryURL, err = s.documents.Save(ctx, fmt.Sprintf("%s-sanitary.pdf", id), rendered.Sanitary)
	if err != nil {
		return docs, fmt.Errorf("%w: save sanitary sheet: %w", ErrPersistence, err)
	}

	return docs, nil
}

func (s *service) discard(ctx context.Context, files FileRefs) {
	if err := s.uploads.Discard(ctx, files); err != nil {
		s.logger.WarnContext(ctx, "failed to discard uploads", "error", err)
	}
}

func (s *service) publish(ctx context.Context, rec *Record) {
	if s.publisher == nil {
		return
	}

	event := RegistrationCreated{
		ID:             rec.ID,
		Category:       rec.Category,
		Surname:        rec.Surname,
		GivenName:      rec.GivenName,
		Age:            rec.Age,
		PdfURL:         rec.AuthorizationPdfURL,
		SanitaryPdfURL: rec.SanitaryPdfURL,
		RegisteredAt:   rec.RegisteredAt,
	}
	if err := s.publisher.Publish(ctx, rec.ID.String(), event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish registration event", "id", rec.ID, "error", err)
	}
}

func (s *service) List(ctx context.Context, category Category) ([]Record, error) {
	if _, ok := s.categories.Lookup(category); !ok {
		return nil, &ValidationError{Kind: ErrInvalidCategory, Category: category}
	}

	records, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	SortBySurname(records)
	return records, nil
}

func (s *service) Get(ctx context.Context, category Category, id uuid.UUID) (*Record, error) {
	if _, ok := s.categories.Lookup(category); !ok {
		return nil, &ValidationError{Kind: ErrInvalidCategory, Category: category}
	}
	return s.repo.GetByID(ctx, category, id)
}

// SortBySurname orders records by surname then given name using French
// collation, so that accented names sort next to their unaccented form.
func SortBySurname(records []Record) {
	c := collate.New(language.French, collate.IgnoreCase)
	sort.SliceStable(records, func(i, j int) bool {
		if cmp := c.CompareString(records[i].Surname, records[j].Surname); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(records[i].GivenName, records[j].GivenName) < 0
	})
}
