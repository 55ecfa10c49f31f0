package registration

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/Merco74/ScoutPlateform/common/httputil"
	"github.com/Merco74/ScoutPlateform/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgSuccess          = "Inscription réussie ! PDF générés."
	msgMissingFields    = "Champs obligatoires manquants"
	msgInvalidBirthDate = "Date de naissance invalide"
	msgInvalidCategory  = "Catégorie invalide"
	msgConsent          = "La mention « Lu et approuvé » est requise"
	msgSignature        = "Signatures manquantes"
	msgInvalidUpload    = "PDF, JPG, PNG uniquement"
	msgNotFound         = "Inscription introuvable"
	msgServerError      = "Erreur serveur."
)

// UploadFields are the multipart fields accepted as attachments.
var UploadFields = []string{"vaccinScan", "medicationScan", "otherDocuments"}

// multipart parts beyond this size are spooled to disk by net/http
const maxMemory = 32 << 20

type Handler struct {
	service       Service
	validate      *validator.Validate
	logger        *slog.Logger
	metrics       *metrics.Metrics
	maxUploadSize int64
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics, maxUploadSize int64) *Handler {
	return &Handler{
		service:       service,
		validate:      validator.New(),
		logger:        logger,
		metrics:       m,
		maxUploadSize: maxUploadSize,
	}
}

// RegisterRoutes mounts the public submission endpoint.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/inscription", h.Submit)
}

// RegisterStaffRoutes mounts the listing endpoints. The caller is
// responsible for placing them behind authentication.
func (h *Handler) RegisterStaffRoutes(router chi.Router) {
	router.Get("/registrations/{category}", h.ListByCategory)
	router.Get("/registrations/{category}/{id}", h.GetRegistration)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sub, err := h.parseSubmission(w, r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "unreadable submission", "error", err)
		httputil.RespondWithFailure(w, http.StatusBadRequest, msgInvalidUpload)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	result, err := h.service.Register(r.Context(), sub)
	if err != nil {
		h.metrics.RecordRejection(r.Context(), Reason(err))
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordRegistration(r.Context(), string(result.Record.Category))

	httputil.RespondWithJSON(w, http.StatusCreated, httputil.Result{
		Success:        true,
		Message:        msgSuccess,
		PdfURL:         result.Documents.AuthorizationURL,
		SanitaryPdfURL: result.Documents.SanitaryURL,
	})
}

func (h *Handler) parseSubmission(w http.ResponseWriter, r *http.Request) (Submission, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return Submission{}, err
		}
		return Submission{Form: FormFromValues(r.PostForm)}, nil
	}

	if h.maxUploadSize > 0 {
		// every attachment at its limit plus room for the text fields
		limit := h.maxUploadSize*int64(1+2*MaxAttachments) + maxMemory
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return Submission{}, fmt.Errorf("parse multipart form: %w", err)
	}

	sub := Submission{Form: FormFromValues(r.MultipartForm.Value)}
	for _, field := range UploadFields {
		for _, fh := range r.MultipartForm.File[field] {
			open := fh.Open
			sub.Uploads = append(sub.Uploads, Upload{
				Field:       field,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open:        func() (io.ReadCloser, error) { return open() },
			})
		}
	}
	return sub, nil
}

func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := ParseCategory(chi.URLParam(r, "category"))

	h.logger.InfoContext(r.Context(), "fetching registrations", "category", category)
	records, err := h.service.List(r.Context(), category)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordListingViewed(r.Context(), string(category))

	httputil.RespondWithJSON(w, http.StatusOK, records)
}

func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	if err := h.validate.Var(rawID, "required,uuid"); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Identifiant invalide")
		return
	}
	id := uuid.MustParse(rawID)
	category := ParseCategory(chi.URLParam(r, "category"))

	h.logger.InfoContext(r.Context(), "fetching registration", "category", category, "id", id)
	rec, err := h.service.Get(r.Context(), category, id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		h.logger.InfoContext(ctx, "registration rejected", "reason", Reason(err), "error", err)
		httputil.RespondWithFailure(w, http.StatusBadRequest, validationMessage(ve))
	case errors.Is(err, ErrInvalidUpload):
		h.logger.InfoContext(ctx, "upload rejected", "error", err)
		httputil.RespondWithFailure(w, http.StatusBadRequest, msgInvalidUpload)
	case errors.Is(err, ErrRecordNotFound):
		h.logger.InfoContext(ctx, "registration not found")
		httputil.RespondWithFailure(w, http.StatusNotFound, msgNotFound)
	default:
		h.logger.ErrorContext(ctx, "registration failed", "reason", Reason(err), "error", err)
		httputil.RespondWithFailure(w, http.StatusInternalServerError, msgServerError)
	}
}

func validationMessage(ve *ValidationError) string {
	switch {
	case errors.Is(ve.Kind, ErrMissingRequiredField):
		return msgMissingFields
	case errors.Is(ve.Kind, ErrInvalidBirthDate):
		return msgInvalidBirthDate
	case errors.Is(ve.Kind, ErrInvalidCategory):
		return msgInvalidCategory
	case errors.Is(ve.Kind, ErrAgeOutOfRange):
		return fmt.Sprintf("Âge non conforme pour %s", ve.Category)
	case errors.Is(ve.Kind, ErrConsentNotAcknowledged):
		return msgConsent
	case errors.Is(ve.Kind, ErrMissingSignature):
		return msgSignature
	default:
		return strings.TrimSpace(ve.Error())
	}
}
