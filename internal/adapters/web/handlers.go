package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shop-agent/internal/app"
)

const maxBodyBytes = 10 << 20 // voice uploads included

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	logger *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, logger *zap.Logger) http.Handler {
	h := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(RequestBodyLimit(maxBodyBytes))

	r.Get("/healthz", h.health)
	r.Post("/api/v1/message", h.message)
	r.Post("/api/v1/voice", h.voice)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type messageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type messageResponse struct {
	Intent     string              `json:"intent"`
	State      string              `json:"state"`
	Reply      string              `json:"reply"`
	Transcript string              `json:"transcript,omitempty"`
	VoiceAudio string              `json:"voice_audio,omitempty"` // base64 mp3
	Document   *attachmentResponse `json:"document,omitempty"`
}

type attachmentResponse struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Data     string `json:"data"` // base64
}

func toResponse(res *app.MessageResult) messageResponse {
	out := messageResponse{
		Intent:     string(res.Intent),
		State:      string(res.State),
		Reply:      res.Reply,
		Transcript: res.Transcript,
	}
	if len(res.VoiceAudio) > 0 {
		out.VoiceAudio = base64.StdEncoding.EncodeToString(res.VoiceAudio)
	}
	if res.Document != nil {
		out.Document = &attachmentResponse{
			Filename: res.Document.Filename,
			MIME:     res.Document.MIME,
			Data:     base64.StdEncoding.EncodeToString(res.Document.Data),
		}
	}
	return out
}

func (h *Handler) message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Text = strings.TrimSpace(req.Text)
	if req.UserID == "" || req.Text == "" {
		writeError(w, r, "user_id and text are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	res, err := h.svc.HandleMessage(r.Context(), req.UserID, req.Text)
	if err != nil {
		h.logger.Error("handle message failed",
			zap.String("request_id", requestIDFromContext(r.Context())), zap.Error(err))
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toResponse(res))
}

func (h *Handler) voice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeError(w, r, "invalid multipart body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	userID := strings.TrimSpace(r.FormValue("user_id"))
	if userID == "" {
		writeError(w, r, "user_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, r, "audio file is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := header.Filename
	if filename == "" {
		filename = "voice.ogg"
	}
	res, err := h.svc.HandleVoice(r.Context(), userID, file, filename)
	if err != nil {
		h.logger.Error("handle voice failed",
			zap.String("request_id", requestIDFromContext(r.Context())), zap.Error(err))
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toResponse(res))
}
