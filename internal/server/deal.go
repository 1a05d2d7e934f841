package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	dealdomain "github.com/verlyx/hub/internal/deal/domain"
)

func (s *Server) CreateDeal(c *gin.Context) {
	var req dealdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deal, err := s.dealSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deal)
}

func (s *Server) ListDeals(c *gin.Context) {
	var req dealdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deals, err := s.dealSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, deals)
}

func (s *Server) GetDeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	deal, err := s.dealSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

func (s *Server) UpdateDeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dealdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deal, err := s.dealSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

func (s *Server) DeleteDeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.dealSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deal deleted successfully"})
}

func (s *Server) GetPipelineStats(c *gin.Context) {
	companyID, ok := pathID(c, "myCompanyId")
	if !ok {
		return
	}

	stats, err := s.dealSvc.PipelineStats(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) MoveDealStage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dealdomain.MoveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deal, err := s.dealSvc.MoveStage(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

func (s *Server) CreateProjectFromDeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dealdomain.CreateProjectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	projectID, err := s.dealSvc.CreateProject(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"projectId": projectID})
}

func isDealValidationError(err error) bool {
	switch {
	case errors.Is(err, dealdomain.ErrInvalidCompany),
		errors.Is(err, dealdomain.ErrInvalidTitle),
		errors.Is(err, dealdomain.ErrInvalidStage),
		errors.Is(err, dealdomain.ErrInvalidPriority),
		errors.Is(err, dealdomain.ErrInvalidAmount),
		errors.Is(err, dealdomain.ErrInvalidCurrency),
		errors.Is(err, dealdomain.ErrInvalidProbability),
		errors.Is(err, dealdomain.ErrReasonRequired):
		return true
	default:
		return false
	}
}
