package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/goshop/internal/domain/models"
	"github.com/linemk/goshop/internal/storage"
)

// ListUsersHandler обрабатывает GET /users (только админ)
func ListUsersHandler(log *slog.Logger, userRepo storage.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := userRepo.ListUsers(r.Context())
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			writeError(w, err)
			return
		}
		if users == nil {
			users = []*models.User{}
		}
		writeJSON(w, http.StatusOK, users)
	}
}
