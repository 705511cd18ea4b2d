package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/goshop/internal/service"
	"github.com/linemk/goshop/internal/storage"
)

var validate = validator.New()

// messageResponse — тело любой ошибки API
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError переводит ошибку сервисного слоя в HTTP-статус и тело {message},
// тексты сообщений совпадают с исходным API.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, storage.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, storage.ErrProductNotFound):
		writeMessage(w, http.StatusNotFound, "Product Not Found")
	case errors.Is(err, storage.ErrDuplicateReview):
		writeMessage(w, http.StatusBadRequest, "You already submitted a review")
	case errors.Is(err, storage.ErrOrderNotFound):
		writeMessage(w, http.StatusNotFound, "Order Not Found")
	case errors.Is(err, storage.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User Not Found")
	case errors.Is(err, service.ErrEmptyCart):
		writeMessage(w, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	default:
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
