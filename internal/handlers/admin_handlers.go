package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	"taskbot/internal/service"
)

// AdminHandler — пользователи, группы, флаги уведомлений и статистика
type AdminHandler struct {
	Directory   *service.DirectoryService
	TaskService *service.TaskService
}

func NewAdminHandler(directory *service.DirectoryService, taskService *service.TaskService) AdminHandler {
	return AdminHandler{
		Directory:   directory,
		TaskService: taskService,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.Directory.ListUsers(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("users", users))
}

func (h *AdminHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	username := chi.URLParam(r, "username")

	var request UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	user := &models.User{
		Username: username,
		FullName: request.FullName,
		Groups:   request.Groups,
	}
	if err := h.Directory.UpsertUser(r.Context(), user); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "upsert_user"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Пользователь сохранён",
		zap.String("username", user.Username),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("success", true),
		toPayload("user", user),
	)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	username := chi.URLParam(r, "username")
	if err := h.Directory.DeleteUser(r.Context(), username); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "delete_user"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("success", true))
}

func (h *AdminHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	groups, err := h.Directory.ListGroups(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("groups", groups))
}

func (h *AdminHandler) UpsertGroup(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request UpsertGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	group := &models.Group{
		ID:   chi.URLParam(r, "id"),
		Name: request.Name,
	}
	if err := h.Directory.UpsertGroup(r.Context(), group); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "upsert_group"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("success", true),
		toPayload("group", group),
	)
}

func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	cfg, err := h.Directory.GetConfig(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("config", cfg))
}

func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if err := h.Directory.SetConfig(r.Context(), request); err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "update_config"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Конфигурация обновлена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("success", true),
		toPayload("config", request),
	)
}

func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	stats, err := h.TaskService.GetStats(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("stats", stats))
}
