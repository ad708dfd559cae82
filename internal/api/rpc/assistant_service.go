// Package rpc provides the Connect service implementation for the assistant.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/dropedev/MeuAssistente/internal/assistant"
	"github.com/dropedev/MeuAssistente/internal/conversation"
	"github.com/dropedev/MeuAssistente/internal/domain"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

// ServiceName is the fully qualified Connect service name.
const ServiceName = "assistant.v1.AssistantService"

// Procedure paths.
const (
	ChatProcedure         = "/" + ServiceName + "/Chat"
	HistoryProcedure      = "/" + ServiceName + "/History"
	ClearHistoryProcedure = "/" + ServiceName + "/ClearHistory"
)

// Backend is what the service needs from the assistant.
type Backend interface {
	Process(ctx context.Context, userID, query string) (*assistant.Result, error)
	History(userID string) []conversation.Entry
	ClearHistory(userID string) int
}

// AssistantService implements the Connect assistant service.
type AssistantService struct {
	logger  *observability.Logger
	backend Backend
}

// NewAssistantService creates a new assistant service.
func NewAssistantService(logger *observability.Logger, backend Backend) *AssistantService {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &AssistantService{logger: logger, backend: backend}
}

// ChatRequest is the Chat request message.
type ChatRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id,omitempty"`
}

// ChatResponse is the Chat response message.
type ChatResponse struct {
	Intent   string         `json:"intent"`
	Response string         `json:"response"`
	Data     map[string]any `json:"data,omitempty"`
}

// HistoryRequest identifies a user.
type HistoryRequest struct {
	UserID string `json:"user_id"`
}

// HistoryResponse carries a user's entries.
type HistoryResponse struct {
	UserID  string               `json:"user_id"`
	History []conversation.Entry `json:"history"`
}

// ClearHistoryResponse reports how many entries were removed.
type ClearHistoryResponse struct {
	UserID  string `json:"user_id"`
	Removed int32  `json:"removed"`
}

// Chat answers one query.
func (s *AssistantService) Chat(ctx context.Context, req *connect.Request[ChatRequest]) (*connect.Response[ChatResponse], error) {
	res, err := s.backend.Process(ctx, req.Msg.UserID, req.Msg.Query)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	return connect.NewResponse(&ChatResponse{
		Intent:   string(res.Intent),
		Response: res.Response,
		Data:     res.Data,
	}), nil
}

// History returns a user's conversation history.
func (s *AssistantService) History(ctx context.Context, req *connect.Request[HistoryRequest]) (*connect.Response[HistoryResponse], error) {
	userID := userOrDefault(req.Msg.UserID)
	return connect.NewResponse(&HistoryResponse{
		UserID:  userID,
		History: s.backend.History(userID),
	}), nil
}

// ClearHistory drops a user's conversation history.
func (s *AssistantService) ClearHistory(ctx context.Context, req *connect.Request[HistoryRequest]) (*connect.Response[ClearHistoryResponse], error) {
	userID := userOrDefault(req.Msg.UserID)
	removed := s.backend.ClearHistory(userID)

	s.logger.WithContext(ctx).Info().
		Str("user_id", userID).
		Int("removed", removed).
		Msg("History cleared")

	return connect.NewResponse(&ClearHistoryResponse{
		UserID:  userID,
		Removed: int32(removed),
	}), nil
}

// Handler returns the mount path and HTTP handler for the service.
func (s *AssistantService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ChatProcedure, connect.NewUnaryHandler(ChatProcedure, s.Chat, opts...))
	mux.Handle(HistoryProcedure, connect.NewUnaryHandler(HistoryProcedure, s.History, opts...))
	mux.Handle(ClearHistoryProcedure, connect.NewUnaryHandler(ClearHistoryProcedure, s.ClearHistory, opts...))

	return "/" + ServiceName + "/", mux
}

func (s *AssistantService) toConnectError(ctx context.Context, err error) error {
	if domain.IsType(err, domain.ErrorTypeValidation) {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return connect.NewError(connect.CodeInvalidArgument, errors.New(de.Message))
		}
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	s.logger.WithContext(ctx).Error().Err(err).Msg("Chat failed")
	return connect.NewError(connect.CodeInternal, err)
}

func userOrDefault(userID string) string {
	if strings.TrimSpace(userID) == "" {
		return conversation.DefaultUserID
	}
	return userID
}

// JSONCodec marshals plain Go structs as JSON. It replaces Connect's default
// JSON codec, which only accepts protobuf messages.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
