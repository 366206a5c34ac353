package controller

import (
	"errors"
	"net/http"

	chat "go-courier/internal/pkg/chat/application/domain"
	"go-courier/internal/pkg/chat/application/usecase"
)

// httpStatus maps use case errors onto HTTP status codes. Persistence
// failures stay generic so driver details never leak to clients.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrNotParticipant), errors.Is(err, chat.ErrNotSender):
		return http.StatusForbidden
	case errors.Is(err, chat.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrLastOwner):
		return http.StatusConflict
	case errors.Is(err, chat.ErrExternalService):
		return http.StatusBadGateway
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func errorBody(err error) map[string]string {
	if httpStatus(err) == http.StatusInternalServerError {
		return map[string]string{"error": "temporary storage failure"}
	}
	return map[string]string{"error": err.Error()}
}
