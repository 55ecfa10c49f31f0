package registration_test

import (
	"context"
	"errors"
	"sync"

	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu        sync.Mutex
	records   map[uuid.UUID]registration.Record
	createErr error
	updateErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[uuid.UUID]registration.Record)}
}

func (r *memoryRepository) Create(_ context.Context, rec *registration.Record) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = *rec
	return nil
}

func (r *memoryRepository) UpdateDocuments(_ context.Context, id uuid.UUID, docs registration.Documents) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return registration.ErrRecordNotFound
	}
	rec.AuthorizationPdfURL = docs.AuthorizationURL
	rec.SanitaryPdfURL = docs.SanitaryURL
	r.records[id] = rec
	return nil
}

func (r *memoryRepository) ListByCategory(_ context.Context, category registration.Category) ([]registration.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []registration.Record
	for _, rec := range r.records {
		if rec.Category == category {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryRepository) GetByID(_ context.Context, category registration.Category, id uuid.UUID) (*registration.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Category != category {
		return nil, registration.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type stubRenderer struct {
	err   error
	calls int
}

func (s *stubRenderer) Render(_ context.Context, rec *registration.Record) (*registration.Rendered, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &registration.Rendered{
		Authorization: []byte("%PDF auth " + rec.Surname),
		Sanitary:      []byte("%PDF sanitary " + rec.Surname),
	}, nil
}

type memoryDocumentStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemoryDocumentStore() *memoryDocumentStore {
	return &memoryDocumentStore{files: make(map[string][]byte)}
}

func (s *memoryDocumentStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	return "/pdfs/" + name, nil
}

type stubUploadStore struct {
	refs      registration.FileRefs
	err       error
	stored    int
	discarded int
}

func (s *stubUploadStore) Store(_ context.Context, uploads []registration.Upload) (registration.FileRefs, error) {
	if s.err != nil {
		return registration.FileRefs{}, s.err
	}
	s.stored += len(uploads)
	return s.refs, nil
}

func (s *stubUploadStore) Discard(_ context.Context, _ registration.FileRefs) error {
	s.discarded++
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []interface{}
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return p.err
}

var errBoom = errors.New("boom")
