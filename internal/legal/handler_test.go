package legal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Merco74/ScoutPlateform/internal/legal"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Notice(t *testing.T) {
	h, err := legal.NewHandler(legal.Notice{
		Organization: "Association Scouts & Guides de Cluses - RNA W741000XXX",
		Manager:      "Mathéo D.",
		Host:         "OVH",
		Contact:      "contact@scouts-cluses.fr",
	})
	require.NoError(t, err)

	router := chi.NewRouter()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mentions-legales", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<h1>Mentions légales</h1>")
	assert.Contains(t, body, "Association Scouts &amp; Guides de Cluses - RNA W741000XXX")
	assert.Contains(t, body, "Responsable : Mathéo D.")
	assert.Contains(t, body, "Hébergeur : OVH")
	assert.Contains(t, body, "RGPD respecté. Contact : contact@scouts-cluses.fr")
	assert.Contains(t, body, `<a href="/">Retour</a>`)
}

func TestHandler_EscapesConfiguredText(t *testing.T) {
	h, err := legal.NewHandler(legal.Notice{Organization: "<script>x</script>"})
	require.NoError(t, err)

	router := chi.NewRouter()
	h.RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mentions-legales", nil))

	assert.NotContains(t, w.Body.String(), "<script>")
}
