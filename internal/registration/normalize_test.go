package registration_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"trims", "  Durand \t", "Durand"},
		{"strips markup", `<script>alert("x")</script>`, "scriptalert(x)/script"},
		{"strips ampersand and quote", "Tom & Jerry's", "Tom  Jerrys"},
		{"keeps accents", " Léa Noël ", "Léa Noël"},
		{"trims after stripping", "< Durand >", "Durand"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registration.Sanitize(tt.input))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		`"'<>&`,
		" < a > ",
		"&lt;b&gt;",
		"Jean-Pierre O'Neil",
		"\n\t<x>\n",
		"  ' '  ",
	}

	for _, in := range inputs {
		once := registration.Sanitize(in)
		assert.Equal(t, once, registration.Sanitize(once), "input %q", in)
		assert.False(t, strings.ContainsAny(once, `<>&"'`), "input %q", in)
	}
}

func TestCoerceBoolean(t *testing.T) {
	assert.True(t, registration.CoerceBoolean("on"))
	assert.True(t, registration.CoerceBoolean("true"))
	assert.False(t, registration.CoerceBoolean(""))
	assert.False(t, registration.CoerceBoolean("off"))
	assert.False(t, registration.CoerceBoolean("false"))
	assert.False(t, registration.CoerceBoolean("yes"))
}

func TestComputeAge(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		now   time.Time
		want  int
	}{
		{"day before birthday", date(2010, time.March, 1), date(2025, time.February, 28), 14},
		{"on birthday", date(2010, time.March, 1), date(2025, time.March, 1), 15},
		{"after birthday", date(2010, time.March, 1), date(2025, time.December, 31), 15},
		{"leap day in common year", date(2012, time.February, 29), date(2025, time.February, 28), 12},
		{"leap day reached in march", date(2012, time.February, 29), date(2025, time.March, 1), 13},
		{"leap day in leap year", date(2012, time.February, 29), date(2024, time.February, 29), 12},
		{"same month earlier day", date(2014, time.May, 10), date(2024, time.May, 9), 9},
		{"born today", date(2020, time.June, 1), date(2020, time.June, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registration.ComputeAge(tt.birth, tt.now))
		})
	}
}

func TestParseBirthDate(t *testing.T) {
	d, ok := registration.ParseBirthDate("2014-05-10")
	require.True(t, ok)
	assert.Equal(t, time.Date(2014, time.May, 10, 0, 0, 0, 0, time.UTC), d)

	d, ok = registration.ParseBirthDate("2014-05-10T00:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 10, d.Day())

	_, ok = registration.ParseBirthDate("10/05/2014")
	assert.False(t, ok)
}

func TestParseSex(t *testing.T) {
	assert.Equal(t, registration.SexMale, registration.ParseSex("Masculin"))
	assert.Equal(t, registration.SexFemale, registration.ParseSex("Féminin"))
	assert.Equal(t, registration.SexFemale, registration.ParseSex(" f "))
	assert.Equal(t, registration.Sex(""), registration.ParseSex("autre"))
}

func TestNormalize(t *testing.T) {
	now := date(2024, time.September, 1)

	t.Run("Fallbacks", func(t *testing.T) {
		f := registration.Normalize(registration.Form{
			"ville":              "Cluses",
			"codePostal":         "74300",
			"parentEmail":        "parent@example.fr",
			"responsable1Nom":    "Durand",
			"responsable1Prenom": "Marc",
			"droitImage":         "on",
		}, now)

		assert.Equal(t, "Cluses 74300", f.Address)
		assert.Equal(t, "parent@example.fr", f.Email)
		assert.Equal(t, "Durand Marc", f.ParentName)
		assert.True(t, f.ImageRights)
		assert.True(t, f.DiffusionRights)
	})

	t.Run("ExplicitValuesWin", func(t *testing.T) {
		f := registration.Normalize(registration.Form{
			"adresse":         "3 rue du Lac",
			"ville":           "Cluses",
			"email":           "famille@example.fr",
			"parentEmail":     "parent@example.fr",
			"parentNomPrenom": "Martin Claire",
			"droitImage":      "on",
			"droitDiffusion":  "",
		}, now)

		assert.Equal(t, "3 rue du Lac", f.Address)
		assert.Equal(t, "famille@example.fr", f.Email)
		assert.Equal(t, "Martin Claire", f.ParentName)
		assert.True(t, f.ImageRights)
		assert.False(t, f.DiffusionRights)
	})

	t.Run("DerivesAge", func(t *testing.T) {
		f := registration.Normalize(registration.Form{"dateNaissance": "2014-05-10"}, now)
		assert.True(t, f.HasBirth)
		assert.Equal(t, 10, f.Age)

		f = registration.Normalize(registration.Form{"dateNaissance": "pas une date"}, now)
		assert.False(t, f.HasBirth)
		assert.Equal(t, "pas une date", f.BirthRaw)
	})

	t.Run("CategoryIsLowercased", func(t *testing.T) {
		f := registration.Normalize(registration.Form{"categorie": " Louveteau "}, now)
		assert.Equal(t, "louveteau", f.CategoryRaw)
	})

	t.Run("SecondaryContactOnlyWhenNamed", func(t *testing.T) {
		f := registration.Normalize(registration.Form{"contactUrgenceSecondaireTel": "0600000000"}, now)
		assert.Nil(t, f.SecondaryEmergency)

		f = registration.Normalize(registration.Form{
			"contactUrgenceSecondaireNom":  "Petit",
			"contactUrgenceSecondaireTel":  "0600000000",
			"contactUrgenceSecondaireLien": "Famille",
		}, now)
		require.NotNil(t, f.SecondaryEmergency)
		assert.Equal(t, "Petit", f.SecondaryEmergency.Surname)
		assert.Equal(t, "Famille", f.SecondaryEmergency.Relation)
	})

	t.Run("SanitizesFreeText", func(t *testing.T) {
		f := registration.Normalize(registration.Form{
			"nom":              " <b>Durand</b> ",
			"allergiesDetails": `"arachides" & kiwi`,
			"remarqueSection2": " rien ",
			"vaccinBcg":        "Non fait",
		}, now)

		assert.Equal(t, "bDurand/b", f.Surname)
		assert.Equal(t, "arachides  kiwi", f.Medical.AllergyDetails)
		assert.Equal(t, []string{"rien"}, f.SectionRemarks)
		assert.Equal(t, map[string]string{"bcg": "Non fait"}, f.VaccineOverrides)
	})
}

func TestFormFromValues(t *testing.T) {
	form := registration.FormFromValues(url.Values{
		"nom":   {"Durand", "ignored"},
		"empty": {},
	})

	assert.Equal(t, "Durand", form["nom"])
	_, ok := form["empty"]
	assert.False(t, ok)
}
