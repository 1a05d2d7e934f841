package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	taskdomain "github.com/verlyx/hub/internal/task/domain"
)

func (s *Server) CreateTask(c *gin.Context) {
	var req taskdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	task, err := s.taskSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (s *Server) ListTasks(c *gin.Context) {
	var req taskdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.taskSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) GetTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := s.taskSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (s *Server) UpdateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req taskdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	task, err := s.taskSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (s *Server) DeleteTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.taskSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// GetTaskStats passes the stored procedure's JSON through untouched.
func (s *Server) GetTaskStats(c *gin.Context) {
	companyID, ok := pathID(c, "myCompanyId")
	if !ok {
		return
	}
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}

	stats, err := s.taskSvc.Stats(c.Request.Context(), companyID, projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", stats)
}

func (s *Server) ListOverdueTasks(c *gin.Context) {
	companyID, ok := pathID(c, "myCompanyId")
	if !ok {
		return
	}

	tasks, err := s.taskSvc.Overdue(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (s *Server) GetTaskHierarchy(c *gin.Context) {
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	tree, err := s.taskSvc.Hierarchy(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

func isTaskValidationError(err error) bool {
	switch {
	case errors.Is(err, taskdomain.ErrInvalidCompany),
		errors.Is(err, taskdomain.ErrInvalidTitle),
		errors.Is(err, taskdomain.ErrInvalidStatus),
		errors.Is(err, taskdomain.ErrInvalidPriority),
		errors.Is(err, taskdomain.ErrInvalidHours),
		errors.Is(err, taskdomain.ErrInvalidProgress),
		errors.Is(err, taskdomain.ErrInvalidParent):
		return true
	default:
		return false
	}
}
