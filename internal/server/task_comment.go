package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	taskcommentdomain "github.com/verlyx/hub/internal/taskcomment/domain"
)

func (s *Server) CreateTaskComment(c *gin.Context) {
	var req taskcommentdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	comment, err := s.taskCommentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (s *Server) ListTaskComments(c *gin.Context) {
	taskID, ok := queryID(c, "taskId")
	if !ok {
		return
	}
	if taskID == nil {
		AbortWithError(c, taskcommentdomain.ErrInvalidTask)
		return
	}

	comments, err := s.taskCommentSvc.ListByTask(c.Request.Context(), *taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (s *Server) GetTaskComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comment, err := s.taskCommentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (s *Server) UpdateTaskComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req taskcommentdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	comment, err := s.taskCommentSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (s *Server) DeleteTaskComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.taskCommentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (s *Server) AddTaskCommentReaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req taskcommentdomain.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	comment, err := s.taskCommentSvc.AddReaction(c.Request.Context(), id, req.Emoji)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (s *Server) RemoveTaskCommentReaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comment, err := s.taskCommentSvc.RemoveReaction(c.Request.Context(), id, c.Param("emoji"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func isTaskCommentValidationError(err error) bool {
	switch {
	case errors.Is(err, taskcommentdomain.ErrInvalidTask),
		errors.Is(err, taskcommentdomain.ErrInvalidContent),
		errors.Is(err, taskcommentdomain.ErrInvalidEmoji),
		errors.Is(err, taskcommentdomain.ErrInvalidParent):
		return true
	default:
		return false
	}
}
