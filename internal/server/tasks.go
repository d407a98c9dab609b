package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gantt/internal/models"
	"gantt/internal/storage/sqlite"
)

// handleListTasks returns all tasks in chart order.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleGetTask returns a single task.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondTaskError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleCreateTask validates and stores a new task.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req models.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.ID = 0

	task, err := s.store.CreateTask(c.Request.Context(), req)
	if err != nil {
		s.respondTaskError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

// handleUpdateTask applies a partial update; omitted fields keep their values.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		s.respondTaskError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task; related tasks are not touched.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), id); err != nil {
		s.respondTaskError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleDateRange reports the chart window. Store failures degrade to the
// default window instead of a 500.
func (s *Server) handleDateRange(c *gin.Context) {
	today := models.NewDate(s.now())
	window, err := s.store.DateRange(c.Request.Context(), today)
	if err != nil {
		s.logger.Error("date range failed, using default window", slog.String("error", err.Error()))
		window = sqlite.DefaultDateRange(today)
	}
	respondSuccess(c, http.StatusOK, window)
}

func (s *Server) respondTaskError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		s.logger.Warn("task rejected", slog.String("path", c.FullPath()), slog.Any("violations", verr.Messages))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": verr.Messages})
	case errors.Is(err, sqlite.ErrTaskNotFound):
		s.respondError(c, http.StatusNotFound, "Task not found", err)
	default:
		s.respondError(c, http.StatusInternalServerError, "internal error", err)
	}
}
