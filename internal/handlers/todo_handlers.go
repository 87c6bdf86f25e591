package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"

	"go.uber.org/zap"
)

const (
	healthyBody   = "Healthy!"
	deletedBody   = "Todo deleted successfully"
	maxJSONBody   = 1 << 20
	invalidIDBody = "invalid todo id"
)

type TodoHandler struct {
	TodoService TodoService
}

func NewTodoHandler(todoService TodoService) *TodoHandler {
	return &TodoHandler{
		TodoService: todoService,
	}
}

// HealthCheck is a liveness probe and never touches the store.
func (h *TodoHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")
	responseWithText(w, http.StatusOK, healthyBody)
}

// Ready pings the repository.
func (h *TodoHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.TodoService.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: readiness check failed", zap.Error(err))
		responseWithError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	responseWithText(w, http.StatusOK, "Ready")
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter := todo.Filter{
		Status:   queryParam(r, "status"),
		Priority: queryParam(r, "priority"),
		Search:   queryParam(r, "search"),
	}

	todos, err := h.TodoService.ListTodos(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err, "list_todos")
		return
	}

	logger.Info("HTTP_OUT: todos listed",
		zap.Int("count", len(todos)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTodoList(todos))
}

func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := todoID(r)
	if !ok {
		logger.Warn("HTTP: invalid id", zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, invalidIDBody)
		return
	}

	t, err := h.TodoService.GetTodo(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_todo")
		return
	}

	logger.Info("HTTP_OUT: todo fetched",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTodo(t))
}

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: unsupported content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var request dto.CreateTodoRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.TodoService.CreateTodo(r.Context(), request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "create_todo")
		return
	}

	logger.Info("HTTP_OUT: todo created",
		zap.Int64("todo_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, dto.FromTodo(created))
}

// UpdateTodo serves both PUT and PATCH; either way only the sent keys change.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := todoID(r)
	if !ok {
		logger.Warn("HTTP: invalid id", zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, invalidIDBody)
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: unsupported content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var request dto.UpdateTodoRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if len(request) == 0 {
		responseWithError(w, http.StatusBadRequest, "No update data provided")
		return
	}

	// shape errors in the values are reported by the service after the existence check
	updated, err := h.TodoService.UpdateTodo(r.Context(), id, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_todo")
		return
	}

	logger.Info("HTTP_OUT: todo updated",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTodo(updated))
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := todoID(r)
	if !ok {
		logger.Warn("HTTP: invalid id", zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, invalidIDBody)
		return
	}

	if err := h.TodoService.DeleteTodo(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_todo")
		return
	}

	logger.Info("HTTP_OUT: todo deleted",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.MessageResponse{Message: deletedBody})
}

// decodeJSON reads the body into dst and answers 413 or 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if isTooLarge(err) {
			logger.Warn("HTTP: request body too large",
				zap.Int64("limit", maxJSONBody),
				zap.String("client_ip", r.RemoteAddr))
			responseWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		logger.Warn("HTTP: failed to decode JSON", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func queryParam(r *http.Request, key string) *string {
	values, ok := r.URL.Query()[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
