// Package handlers provides HTTP handlers for the assistant API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dropedev/MeuAssistente/internal/domain"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps validation errors to 400 and everything else to 500.
func writeDomainError(w http.ResponseWriter, logger *observability.Logger, err error) {
	var de *domain.DomainError
	if domain.IsType(err, domain.ErrorTypeValidation) && errors.As(err, &de) {
		writeError(w, http.StatusBadRequest, de.Message, de.Message)
		return
	}

	logger.Error().Err(err).Msg("Request failed")
	writeError(w, http.StatusInternalServerError, "Erro interno", "Erro interno: "+err.Error())
}
