package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/kango-hamed/musia-guide/internal/api/response"
	"github.com/kango-hamed/musia-guide/internal/service"
)

var validate = validator.New()

// ConversationHandler handles conversation endpoints
type ConversationHandler struct {
	conversations *service.ConversationService
	maxAudioBytes int64
	rateWindowSec int
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversations *service.ConversationService, maxAudioMB, rateWindowSec int) *ConversationHandler {
	if maxAudioMB <= 0 {
		maxAudioMB = 10
	}
	return &ConversationHandler{
		conversations: conversations,
		maxAudioBytes: int64(maxAudioMB) << 20,
		rateWindowSec: rateWindowSec,
	}
}

type startRequest struct {
	ArtworkID string `json:"artwork_id"`
}

type textRequest struct {
	SessionID string `json:"session_id" validate:"required,max=100"`
	Message   string `json:"message" validate:"required,max=1000"`
}

// Start opens a new conversation session
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.conversations.Start(r.Context(), req.ArtworkID)
	if err != nil {
		response.FromError(w, err, h.rateWindowSec)
		return
	}

	response.OK(w, result)
}

// AskText answers a typed question
func (h *ConversationHandler) AskText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.conversations.AskText(r.Context(), req.SessionID, req.Message)
	if err != nil {
		response.FromError(w, err, h.rateWindowSec)
		return
	}

	response.OK(w, result)
}

// AskAudio answers a spoken question uploaded as multipart form data with
// a session_id field and an audio_file part
func (h *ConversationHandler) AskAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes)
	if err := r.ParseMultipartForm(h.maxAudioBytes); err != nil {
		response.BadRequest(w, "invalid multipart form or audio too large")
		return
	}

	sessionID := r.FormValue("session_id")

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		response.BadRequest(w, "no audio file uploaded")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read audio file")
		return
	}

	result, err := h.conversations.AskAudio(r.Context(), sessionID, audio, header.Filename)
	if err != nil {
		response.FromError(w, err, h.rateWindowSec)
		return
	}

	response.OK(w, result)
}

// History returns a session's conversation turns
func (h *ConversationHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.conversations.History(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err, h.rateWindowSec)
		return
	}

	response.OK(w, history)
}

// Interactions returns the analytics log entries for a session, newest
// first (query parameter "limit", default 50)
func (h *ConversationHandler) Interactions(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	interactions, err := h.conversations.Interactions(r.Context(), sessionID, limit)
	if err != nil {
		response.FromError(w, err, h.rateWindowSec)
		return
	}

	response.OK(w, interactions)
}

// End deletes a session
func (h *ConversationHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.conversations.End(r.Context(), sessionID); err != nil {
		response.FromError(w, err, h.rateWindowSec)
		return
	}

	response.OK(w, map[string]string{"status": "deleted"})
}
