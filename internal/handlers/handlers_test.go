package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/access"
	"taskbot/internal/logger"
	"taskbot/internal/middleware"
	"taskbot/internal/models"
	"taskbot/internal/repository/inmemory"
	"taskbot/internal/service"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	defer logger.Sync()
	os.Exit(m.Run())
}

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()

	storage := inmemory.New()
	require.NoError(t, storage.UpsertGroup(context.Background(), &models.Group{ID: "-100500", Name: "Разработка"}))

	acl, err := access.NewFileStore(filepath.Join(t.TempDir(), "access.yml"))
	require.NoError(t, err)
	require.NoError(t, acl.AddAdmin("@boss"))

	tasks := service.NewTaskService(storage, nil)
	directory := service.NewDirectoryService(storage)
	taskHandler := NewTaskHandler(tasks)
	adminHandler := NewAdminHandler(directory, tasks)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.ListTasks)
		r.Post("/", taskHandler.PostTaskGroup)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)
			r.Delete("/", taskHandler.DeleteTaskByID)
			r.Post("/complete", taskHandler.CompleteTask)
			r.Post("/reopen", taskHandler.ReopenTask)
		})
	})
	r.Route("/api/groups/{id}", func(r chi.Router) {
		r.Get("/", taskHandler.GetTaskGroupByID)
		r.Put("/", taskHandler.UpdateTaskGroupByID)
		r.Delete("/", taskHandler.DeleteTaskGroupByID)
		r.Post("/assignees", taskHandler.AddAssignees)
	})
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.AdminOnly(acl))
		r.Get("/users", adminHandler.ListUsers)
		r.Put("/users/{username}", adminHandler.UpsertUser)
		r.Delete("/users/{username}", adminHandler.DeleteUser)
		r.Get("/groups", adminHandler.ListGroups)
		r.Put("/groups/{id}", adminHandler.UpsertGroup)
		r.Get("/config", adminHandler.GetConfig)
		r.Put("/config", adminHandler.UpdateConfig)
		r.Get("/stats", adminHandler.GetStats)
	})
	r.Get("/health", taskHandler.HealthCheck)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

// TestPostTaskGroupHTTP проверяет создание задач через HTTP API
func TestPostTaskGroupHTTP(t *testing.T) {
	router := newRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/tasks", CreateTaskGroupRequest{
		TaskText:   "Подготовить отчёт",
		Deadline:   "05.09.2026",
		GroupID:    "-100500",
		AssignedTo: []string{"ivan", "petr"},
		AssignedBy: "boss",
	}, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["group_task_id"])
	assert.Len(t, body["tasks"], 2)

	t.Run("валидация даёт 400", func(t *testing.T) {
		rec, body := doJSON(t, router, http.MethodPost, "/api/tasks", CreateTaskGroupRequest{
			TaskText:   "",
			Deadline:   "05.09.2026",
			AssignedTo: []string{"ivan"},
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, service.CodeValidationError, body["error"])
	})

	t.Run("неизвестная группа даёт 404", func(t *testing.T) {
		rec, body := doJSON(t, router, http.MethodPost, "/api/tasks", CreateTaskGroupRequest{
			TaskText:   "Отчёт",
			Deadline:   "05.09.2026",
			GroupID:    "-999",
			AssignedTo: []string{"ivan"},
		}, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, service.CodeNotFound, body["error"])
	})

	t.Run("без Content-Type даёт 415", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString("{}"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

// TestTaskLifecycleHTTP проверяет завершение, переоткрытие и удаление задачи
func TestTaskLifecycleHTTP(t *testing.T) {
	router := newRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/tasks", CreateTaskGroupRequest{
		TaskText: "Отчёт", Deadline: "05.09.2026", GroupID: "-100500",
		AssignedTo: []string{"ivan", "petr"}, AssignedBy: "boss",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := doJSON(t, router, http.MethodPost, "/api/tasks/1/complete", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task := body["task"].(map[string]any)
	assert.Equal(t, "completed", task["status"])

	rec, body = doJSON(t, router, http.MethodPost, "/api/tasks/1/reopen", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task = body["task"].(map[string]any)
	assert.Equal(t, "active", task["status"])

	rec, body = doJSON(t, router, http.MethodDelete, "/api/tasks/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["remaining_in_group"])

	t.Run("повторное удаление даёт 404", func(t *testing.T) {
		rec, _ := doJSON(t, router, http.MethodDelete, "/api/tasks/1", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("нечисловой id даёт 400", func(t *testing.T) {
		rec, _ := doJSON(t, router, http.MethodGet, "/api/tasks/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestTaskGroupHTTP проверяет чтение, обновление и удаление групповой задачи
func TestTaskGroupHTTP(t *testing.T) {
	router := newRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/tasks", CreateTaskGroupRequest{
		TaskText: "Отчёт", Deadline: "05.09.2026", GroupID: "-100500",
		AssignedTo: []string{"ivan"}, AssignedBy: "boss",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	newText := "Отчёт за квартал"
	rec, body := doJSON(t, router, http.MethodPut, "/api/groups/1", UpdateTaskGroupRequest{TaskText: &newText}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tg := body["task_group"].(map[string]any)
	assert.Equal(t, newText, tg["task_text"])

	rec, body = doJSON(t, router, http.MethodPost, "/api/groups/1/assignees", AddAssigneesRequest{
		AssignedTo: []string{"petr"}, AssignedBy: "boss",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, body["tasks"], 1)

	rec, _ = doJSON(t, router, http.MethodDelete, "/api/groups/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/groups/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestAdminGate проверяет доступ к админским ручкам по заголовку
func TestAdminGate(t *testing.T) {
	router := newRouter(t)
	asAdmin := map[string]string{middleware.AdminHeader: "@boss"}

	t.Run("без заголовка 403", func(t *testing.T) {
		rec, body := doJSON(t, router, http.MethodGet, "/api/admin/users", nil, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "forbidden", body["error"])
	})

	t.Run("не администратор 403", func(t *testing.T) {
		rec, _ := doJSON(t, router, http.MethodGet, "/api/admin/users", nil,
			map[string]string{middleware.AdminHeader: "@ivan"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("администратор проходит", func(t *testing.T) {
		rec, body := doJSON(t, router, http.MethodPut, "/api/admin/users/ivan",
			UpsertUserRequest{FullName: "Иван Иванов", Groups: []string{"-100500"}}, asAdmin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])

		rec, body = doJSON(t, router, http.MethodGet, "/api/admin/users", nil, asAdmin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["users"], 1)
	})
}

// TestAdminConfigAndStats проверяет флаги уведомлений и статистику
func TestAdminConfigAndStats(t *testing.T) {
	router := newRouter(t)
	asAdmin := map[string]string{middleware.AdminHeader: "@boss"}

	rec, body := doJSON(t, router, http.MethodGet, "/api/admin/config", nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := body["config"].(map[string]any)
	assert.Equal(t, true, cfg["task_created"])

	rec, _ = doJSON(t, router, http.MethodPut, "/api/admin/config",
		models.Config{TaskCreated: true, TaskCompleted: false, TaskDeleted: true, OverdueReminder: true}, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, http.MethodGet, "/api/admin/config", nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg = body["config"].(map[string]any)
	assert.Equal(t, false, cfg["task_completed"])

	_, _ = doJSON(t, router, http.MethodPost, "/api/tasks", CreateTaskGroupRequest{
		TaskText: "Отчёт", Deadline: "05.09.2026", GroupID: "-100500",
		AssignedTo: []string{"ivan"}, AssignedBy: "boss",
	}, nil)

	rec, body = doJSON(t, router, http.MethodGet, "/api/admin/stats", nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["total_tasks"])
	assert.Equal(t, float64(1), stats["active_tasks"])
}

// TestHealthHTTP проверяет ручку здоровья
func TestHealthHTTP(t *testing.T) {
	router := newRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}
