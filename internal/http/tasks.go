package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/tasks"
)

// TaskStatusReader reports the state of a queued task.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles task queue endpoints.
type TasksController struct {
	client TaskStatusReader
}

// NewTasksController creates a new TasksController.
func NewTasksController(client TaskStatusReader) *TasksController {
	return &TasksController{client: client}
}

// GetTaskStatus handles GET /api/tasks/:id.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondError(c, http.StatusNotFound, "Task not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}
