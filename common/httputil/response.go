package httputil

import (
	"encoding/json"
	"net/http"
)

// Result is the envelope returned by form submission endpoints.
type Result struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	PdfURL         string `json:"pdfUrl,omitempty"`
	SanitaryPdfURL string `json:"sanitaryPdfUrl,omitempty"`
}

// RespondWithError writes an error response in JSON format
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithFailure writes a {success:false, message} envelope.
func RespondWithFailure(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Result{Success: false, Message: message})
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithHTML writes a static HTML document.
func RespondWithHTML(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(body))
}
