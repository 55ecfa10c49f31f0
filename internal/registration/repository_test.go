package registration_test

import (
	"context"
	"testing"
	"time"

	commonmetrics "github.com/Merco74/ScoutPlateform/common/metrics"
	"github.com/Merco74/ScoutPlateform/internal/registration"
	"github.com/Merco74/ScoutPlateform/testing/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, category registration.Category, surname string) *registration.Record {
	t.Helper()

	form := validForm()
	form["nom"] = surname
	form["categorie"] = string(category)
	form["dateNaissance"] = "2012-01-15"
	form["contactUrgenceSecondaireNom"] = "Petit"
	form["remarqueSection1"] = "Très motivée"

	v, err := registration.Validate(registration.Normalize(form, date(2024, time.September, 1)), registration.DefaultCategories())
	require.NoError(t, err)

	rec := registration.Build(v, registration.FileRefs{
		VaccinationProof: "/uploads/a.pdf",
		MedicationScans:  []string{"/uploads/b.png", "/uploads/c.png"},
	}, date(2024, time.September, 1))
	rec.ID = uuid.New()
	return rec
}

func TestRepository_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, registration.Migrate)

	repo := registration.NewRepository(pgContainer.DB, commonmetrics.NewMock())
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		rec := newRecord(t, registration.CategoryScout, "Durand")
		require.NoError(t, repo.Create(ctx, rec))
		assert.False(t, rec.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, registration.CategoryScout, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "Durand", got.Surname)
		assert.Equal(t, 12, got.Age)
		assert.Equal(t, "OK", got.Vaccines.Polio)
		assert.Equal(t, []string{"/uploads/b.png", "/uploads/c.png"}, got.MedicationScans)
		assert.Equal(t, []string{"Très motivée"}, got.SectionRemarks)
		require.NotNil(t, got.SecondaryEmergency)
		assert.Equal(t, "Petit", got.SecondaryEmergency.Surname)
		assert.Nil(t, got.Guardian2)
		assert.Equal(t, signature, got.SanitarySignature)
		assert.Equal(t, "2012-01-15", got.BirthDate.Format(time.DateOnly))
	})

	t.Run("GetByID_WrongCategory", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		rec := newRecord(t, registration.CategoryScout, "Durand")
		require.NoError(t, repo.Create(ctx, rec))

		_, err := repo.GetByID(ctx, registration.CategoryGuide, rec.ID)
		assert.ErrorIs(t, err, registration.ErrRecordNotFound)
	})

	t.Run("UpdateDocuments", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		rec := newRecord(t, registration.CategoryGuide, "Martin")
		require.NoError(t, repo.Create(ctx, rec))

		err := repo.UpdateDocuments(ctx, rec.ID, registration.Documents{
			AuthorizationURL: "/pdfs/a-auth.pdf",
			SanitaryURL:      "/pdfs/a-sanitary.pdf",
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, registration.CategoryGuide, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "/pdfs/a-auth.pdf", got.AuthorizationPdfURL)
		assert.Equal(t, "/pdfs/a-sanitary.pdf", got.SanitaryPdfURL)
	})

	t.Run("UpdateDocuments_NotFound", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		err := repo.UpdateDocuments(ctx, uuid.New(), registration.Documents{})
		assert.ErrorIs(t, err, registration.ErrRecordNotFound)
	})

	t.Run("ListByCategory", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		for _, name := range []string{"Zola", "Bernard", "Arnaud"} {
			require.NoError(t, repo.Create(ctx, newRecord(t, registration.CategoryScout, name)))
		}
		require.NoError(t, repo.Create(ctx, newRecord(t, registration.CategoryGuide, "Claude")))

		records, err := repo.ListByCategory(ctx, registration.CategoryScout)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "Arnaud", records[0].Surname)
		assert.Equal(t, "Zola", records[2].Surname)

		records, err = repo.ListByCategory(ctx, registration.CategoryCub)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
