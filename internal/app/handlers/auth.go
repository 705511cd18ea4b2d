package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/goshop/internal/domain/models"
	"github.com/linemk/goshop/internal/service"
)

// SigninRequest представляет структуру запроса для входа с тегами валидации
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest — запрос на регистрацию
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserResponse — ответ на вход и регистрацию, формат исходного API
type UserResponse struct {
	ID      int64  `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

func userResponse(user *models.User, token string) UserResponse {
	return UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}
}

// SigninHandler – обработчик POST /users/signin
func SigninHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SigninHandler"
		logger := log.With(slog.String("op", op))

		var req SigninRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "invalid request")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "validation error")
			return
		}

		user, token, err := authService.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Warn("signin failed", slog.Any("error", err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, userResponse(user, token))
	}
}

// SignupHandler – обработчик POST /users/signup
func SignupHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignupHandler"
		logger := log.With(slog.String("op", op))

		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "invalid request")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "validation error")
			return
		}

		user, token, err := authService.SignUp(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			logger.Error("signup failed", slog.Any("error", err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, userResponse(user, token))
	}
}
