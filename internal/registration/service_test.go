package registration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipeline struct {
	repo      *memoryRepository
	renderer  *stubRenderer
	documents *memoryDocumentStore
	uploads   *stubUploadStore
	publisher *recordingPublisher
	service   registration.Service
}

func newPipeline(now time.Time) *pipeline {
	p := &pipeline{
		repo:      newMemoryRepository(),
		renderer:  &stubRenderer{},
		documents: newMemoryDocumentStore(),
		uploads:   &stubUploadStore{refs: registration.FileRefs{VaccinationProof: "/uploads/v.pdf"}},
		publisher: &recordingPublisher{},
	}
	p.service = registration.NewService(
		p.repo, p.renderer, p.documents, p.uploads,
		registration.DefaultCategories(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		registration.WithClock(func() time.Time { return now }),
		registration.WithLocation(time.UTC),
		registration.WithPublisher(p.publisher),
	)
	return p
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		p := newPipeline(date(2024, time.September, 1))

		result, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
		require.NoError(t, err)

		id := result.Record.ID
		assert.NotEqual(t, uuid.Nil, id)
		assert.Equal(t, fmt.Sprintf("/pdfs/%s-auth.pdf", id), result.Documents.AuthorizationURL)
		assert.Equal(t, fmt.Sprintf("/pdfs/%s-sanitary.pdf", id), result.Documents.SanitaryURL)

		stored, err := p.repo.GetByID(ctx, registration.CategoryCub, id)
		require.NoError(t, err)
		assert.Equal(t, 10, stored.Age)
		assert.Equal(t, registration.CategoryCub, stored.Category)
		assert.Equal(t, "/uploads/v.pdf", stored.VaccinationProof)
		assert.Equal(t, result.Documents.AuthorizationURL, stored.AuthorizationPdfURL)
		assert.Equal(t, result.Documents.SanitaryURL, stored.SanitaryPdfURL)

		assert.Len(t, p.documents.files, 2)
		assert.Equal(t, []string{id.String()}, p.publisher.keys)
		event, ok := p.publisher.events[0].(registration.RegistrationCreated)
		require.True(t, ok)
		assert.Equal(t, "Durand", event.Surname)
		assert.Equal(t, result.Documents.SanitaryURL, event.SanitaryPdfURL)
	})

	t.Run("AgeOutOfRangePersistsNothing", func(t *testing.T) {
		p := newPipeline(date(2026, time.June, 1))

		_, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
		require.ErrorIs(t, err, registration.ErrAgeOutOfRange)
		assert.Contains(t, err.Error(), "age 12")

		assert.Zero(t, p.repo.count())
		assert.Zero(t, p.renderer.calls)
		assert.Zero(t, p.uploads.stored)
		assert.Empty(t, p.documents.files)
		assert.Empty(t, p.publisher.events)
	})

	t.Run("UnknownCategoryPersistsNothing", func(t *testing.T) {
		p := newPipeline(date(2024, time.September, 1))
		form := validForm()
		form["categorie"] = "pirate"

		_, err := p.service.Register(ctx, registration.Submission{
			Form:    form,
			Uploads: []registration.Upload{{Field: "vaccinScan", Filename: "v.pdf"}},
		})
		require.ErrorIs(t, err, registration.ErrInvalidCategory)

		assert.Zero(t, p.repo.count())
		assert.Zero(t, p.uploads.stored)
		assert.Zero(t, p.renderer.calls)
	})

	t.Run("MissingAssetAborts", func(t *testing.T) {
		p := newPipeline(date(2024, time.September, 1))
		p.renderer.err = fmt.Errorf("logo: %w", registration.ErrMissingAsset)

		_, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
		require.ErrorIs(t, err, registration.ErrMissingAsset)

		assert.Zero(t, p.repo.count())
		assert.Empty(t, p.documents.files)
		assert.Equal(t, 1, p.uploads.discarded)
	})

	t.Run("UnexpectedRenderErrorIsRenderFailure", func(t *testing.T) {
		p := newPipeline(date(2024, time.September, 1))
		p.renderer.err = errBoom

		_, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
		require.ErrorIs(t, err, registration.ErrRenderFailure)
		assert.ErrorIs(t, err, errBoom)
		assert.Zero(t, p.repo.count())
	})

	t.Run("InsertFailureIsPersistenceFailure", func(t *testing.T) {
		p := newPipeline(date(2024, time.September, 1))
		p.repo.createErr = errBoom

		_, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
		require.ErrorIs(t, err, registration.ErrPersistence)
		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, p.documents.files)
	})

	t.Run("DocumentSaveFailureLeavesRecordWithoutDocuments", func(t *testing.T) {
		p := newPipeline(date(2024, time.September, 1))
		p.documents.err = errBoom

		_, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
		require.ErrorIs(t, err, registration.ErrPersistence)

		records, err := p.repo.ListByCategory(ctx, registration.CategoryCub)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Empty(t, records[0].AuthorizationPdfURL)
	})

	t.Run("PublishFailureIsIgnored", func(t *testing.T) {
		p := newPipeline(date(2024, time.September, 1))
		p.publisher.err = errBoom

		_, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
		assert.NoError(t, err)
		assert.Equal(t, 1, p.repo.count())
	})

	t.Run("UploadRejected", func(t *testing.T) {
		p := newPipeline(date(2024, time.September, 1))
		p.uploads.err = fmt.Errorf("%w: virus.exe", registration.ErrInvalidUpload)

		_, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
		require.ErrorIs(t, err, registration.ErrInvalidUpload)
		assert.True(t, registration.IsValidation(err))
		assert.Zero(t, p.renderer.calls)
	})
}

func TestService_AgeUsesConfiguredLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// 22:30 UTC on 9 May is already 10 May in Paris
	now := time.Date(2022, time.May, 9, 22, 30, 0, 0, time.UTC)
	form := validForm()
	form["dateNaissance"] = "2014-05-10"

	svc := registration.NewService(
		newMemoryRepository(), &stubRenderer{}, newMemoryDocumentStore(), &stubUploadStore{},
		registration.DefaultCategories(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		registration.WithClock(func() time.Time { return now }),
		registration.WithLocation(paris),
	)

	result, err := svc.Register(context.Background(), registration.Submission{Form: form})
	require.NoError(t, err)
	assert.Equal(t, 8, result.Record.Age)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(date(2024, time.September, 1))

	for _, name := range []string{"Zola", "Émile", "durand", "Dupont", "Eymard"} {
		form := validForm()
		form["nom"] = name
		_, err := p.service.Register(ctx, registration.Submission{Form: form})
		require.NoError(t, err)
	}

	records, err := p.service.List(ctx, registration.CategoryCub)
	require.NoError(t, err)

	var names []string
	for _, rec := range records {
		names = append(names, rec.Surname)
	}
	assert.Equal(t, []string{"Dupont", "durand", "Émile", "Eymard", "Zola"}, names)

	records, err = p.service.List(ctx, registration.CategoryScout)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = p.service.List(ctx, registration.ParseCategory("pirate"))
	assert.ErrorIs(t, err, registration.ErrInvalidCategory)
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(date(2024, time.September, 1))

	result, err := p.service.Register(ctx, registration.Submission{Form: validForm()})
	require.NoError(t, err)

	rec, err := p.service.Get(ctx, registration.CategoryCub, result.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Léa", rec.GivenName)

	_, err = p.service.Get(ctx, registration.CategoryScout, result.Record.ID)
	assert.ErrorIs(t, err, registration.ErrRecordNotFound)
}

func TestSortBySurname_GivenNameTieBreak(t *testing.T) {
	records := []registration.Record{
		{Surname: "Martin", GivenName: "Zoé"},
		{Surname: "martin", GivenName: "Élodie"},
		{Surname: "Martin", GivenName: "Adam"},
	}
	registration.SortBySurname(records)

	var given []string
	for _, rec := range records {
		given = append(given, strings.ToLower(rec.GivenName))
	}
	assert.Equal(t, []string{"adam", "élodie", "zoé"}, given)
}
