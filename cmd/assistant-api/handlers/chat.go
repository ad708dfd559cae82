package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropedev/MeuAssistente/internal/assistant"
	"github.com/dropedev/MeuAssistente/internal/conversation"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

// Assistant is the chat backend used by the handlers.
type Assistant interface {
	Process(ctx context.Context, userID, query string) (*assistant.Result, error)
	History(userID string) []conversation.Entry
	ClearHistory(userID string) int
}

// ChatHandler handles chat and history requests.
type ChatHandler struct {
	logger    *observability.Logger
	assistant Assistant
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, a Assistant) *ChatHandler {
	return &ChatHandler{logger: logger, assistant: a}
}

// ChatRequestDTO is the POST /chat body.
type ChatRequestDTO struct {
	Query  string `json:"query"`
	UserID string `json:"user_id,omitempty"`
}

// ChatResponseDTO is the POST /chat reply.
type ChatResponseDTO struct {
	Intent   string         `json:"intent"`
	Response string         `json:"response"`
	Data     map[string]any `json:"data"`
}

// HistoryResponseDTO is the GET /history/{user_id} reply.
type HistoryResponseDTO struct {
	UserID  string               `json:"user_id"`
	History []conversation.Entry `json:"history"`
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.WithContext(ctx)

	var req ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	res, err := h.assistant.Process(ctx, req.UserID, req.Query)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	data := res.Data
	if data == nil {
		data = map[string]any{}
	}

	writeJSON(w, http.StatusOK, ChatResponseDTO{
		Intent:   string(res.Intent),
		Response: res.Response,
		Data:     data,
	})
}

// History handles GET /history/{user_id}.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	writeJSON(w, http.StatusOK, HistoryResponseDTO{
		UserID:  userID,
		History: h.assistant.History(userID),
	})
}

// ClearHistory handles DELETE /history/{user_id}.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	removed := h.assistant.ClearHistory(userID)

	h.logger.WithContext(r.Context()).Info().
		Str("user_id", userID).
		Int("removed", removed).
		Msg("History cleared")

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Histórico do usuário %s limpo com sucesso", userID),
	})
}
