package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/namaniisc/CloudDrop/internal/common"
	"github.com/namaniisc/CloudDrop/internal/logging"
	"github.com/namaniisc/CloudDrop/internal/server/blob"
	"github.com/namaniisc/CloudDrop/internal/server/models"
	"github.com/namaniisc/CloudDrop/internal/server/services"
)

// uploadField is the multipart form field carrying the payload.
const uploadField = "myfile"

type transferService interface {
	Create(ctx context.Context, meta *services.PayloadMeta) (*models.Transfer, error)
	FindByID(ctx context.Context, id string) (*models.Transfer, error)
}

type shareService interface {
	Share(ctx context.Context, id, sender, receiver string) (*models.Transfer, error)
}

// Handler serves the public HTTP API.
type Handler struct {
	transfers     transferService
	shares        shareService
	blobs         blob.Store
	baseURL       string
	maxUploadSize int64
	logger        logging.Logger
}

func NewHandler(t transferService, s shareService, b blob.Store, baseURL string, maxUploadSize int64, l logging.Logger) *Handler {
	return &Handler{
		transfers:     t,
		shares:        s,
		blobs:         b,
		baseURL:       baseURL,
		maxUploadSize: maxUploadSize,
		logger:        l.With("module", "rest_handler"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service-level errors onto HTTP statuses.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "File not found.")
	case errors.Is(err, common.ErrorAlreadyShared):
		writeError(w, http.StatusUnprocessableEntity, "Email already sent.")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusUnprocessableEntity, "All fields are required.")
	case errors.Is(err, common.ErrorNotificationDelivery):
		writeError(w, http.StatusBadGateway, "Could not send the email.")
	default:
		h.logger.Error(ctx, "request failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// Upload ingests a multipart payload and responds with the permanent link.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large.")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "All fields are required.")
		return
	}
	defer file.Close()

	saved, err := h.blobs.Save(ctx, header.Filename, file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, common.ErrorFileTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large.")
			return
		}
		h.logger.Error(ctx, "payload save failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	t, err := h.transfers.Create(ctx, &services.PayloadMeta{
		Filename:    header.Filename,
		StoragePath: saved.Path,
		Size:        saved.Size,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	uploadsTotal.Inc()
	writeJSON(w, http.StatusCreated, map[string]string{
		"file": fmt.Sprintf("%s/files/%s", h.baseURL, t.ID),
	})
}

type sendRequest struct {
	UUID      string `json:"uuid"`
	EmailTo   string `json:"emailTo"`
	EmailFrom string `json:"emailFrom"`
}

// Send performs the one-time share and emails the access link.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	_, err := h.shares.Share(ctx, req.UUID, req.EmailFrom, req.EmailTo)
	if err != nil {
		sharesTotal.WithLabelValues(shareResult(err)).Inc()
		h.writeServiceError(ctx, w, err)
		return
	}

	sharesTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func shareResult(err error) string {
	switch {
	case errors.Is(err, common.ErrorAlreadyShared):
		return "already_shared"
	case errors.Is(err, common.ErrorValidation):
		return "invalid"
	case errors.Is(err, common.ErrorNotFound):
		return "not_found"
	case errors.Is(err, common.ErrorNotificationDelivery):
		return "delivery_failed"
	default:
		return "error"
	}
}

type transferResponse struct {
	UUID     string `json:"uuid"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Link     string `json:"link"`
	Shared   bool   `json:"shared"`
}

// Get returns the metadata of a transfer record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	t, err := h.transfers.FindByID(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, transferResponse{
		UUID:     t.ID,
		Filename: t.Filename,
		Size:     t.Size,
		Link:     fmt.Sprintf("%s/files/download/%s", h.baseURL, t.ID),
		Shared:   t.Shared(),
	})
}

// Download streams the stored payload back as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	t, err := h.transfers.FindByID(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	rc, err := h.blobs.Open(ctx, t.StoragePath)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "File not found.")
			return
		}
		h.logger.Error(ctx, "payload open failed", "transfer_id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(t.Size, 10))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error(ctx, "payload stream interrupted", "transfer_id", id, "error", err.Error())
	}
}

// Ping reports liveness.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
