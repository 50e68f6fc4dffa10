package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/MovieApp/internal/usecase"
	"github.com/google/uuid"
)

// AuthHandler — обработчик HTTP-запросов регистрации и входа.
type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler создаёт новый экземпляр AuthHandler.
func NewAuthHandler(uc usecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authUseCase: uc, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// credentialResponse — ответ на register/login: только id и имя,
// хэш пароля не покидает сервер.
type credentialResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Register — создает учетную запись с хэшированным паролем.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}

	user, err := h.authUseCase.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondDomainError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, credentialResponse{ID: user.ID, Username: user.Username}, h.logger)
}

// Login — проверяет имя и пароль, возвращает id и имя пользователя.
// Сессии и токены не выпускаются: аутентификация одношаговая.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}

	user, err := h.authUseCase.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondDomainError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, credentialResponse{ID: user.ID, Username: user.Username}, h.logger)
}
