package legal

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/Merco74/ScoutPlateform/common/httputil"

	"github.com/go-chi/chi/v5"
)

var page = template.Must(template.New("mentions").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Mentions légales</title></head>
<body>
<h1>Mentions légales</h1>
<p>{{.Organization}}</p>
<p>Responsable : {{.Manager}}</p>
<p>Hébergeur : {{.Host}}</p>
<p>RGPD respecté. Contact : {{.Contact}}</p>
<p><a href="/">Retour</a></p>
</body>
</html>
`))

// Notice holds the publisher details shown on the legal page.
type Notice struct {
	Organization string
	Manager      string
	Host         string
	Contact      string
}

type Handler struct {
	body string
}

// NewHandler renders the page once; its content only changes with config.
func NewHandler(notice Notice) (*Handler, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, notice); err != nil {
		return nil, err
	}
	return &Handler{body: buf.String()}, nil
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/mentions-legales", h.Notice)
}

func (h *Handler) Notice(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithHTML(w, http.StatusOK, h.body)
}
