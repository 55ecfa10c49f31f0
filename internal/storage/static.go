package storage

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
)

// FileServer serves the files of dir without directory listings.
func FileServer(fs afero.Fs, dir string) http.Handler {
	files := http.FileServer(afero.NewHttpFs(fs).Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// Mount serves dir under prefix, e.g. /pdfs/<name>.
func Mount(router chi.Router, prefix string, fs afero.Fs, dir string) {
	prefix = strings.TrimSuffix(prefix, "/")
	router.Handle(prefix+"/*", http.StripPrefix(prefix, FileServer(fs, dir)))
}
