package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/verlyx/hub/internal/authorization"
	mycompanydomain "github.com/verlyx/hub/internal/mycompany/domain"
)

type updateMemberRequest struct {
	Role string `json:"role"`
}

func (s *Server) ListMyCompanies(c *gin.Context) {
	items, err := s.myCompanySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (s *Server) CreateMyCompany(c *gin.Context) {
	var req mycompanydomain.CompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	company, err := s.myCompanySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, company)
}

func (s *Server) GetMyCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	company, err := s.myCompanySvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

func (s *Server) UpdateMyCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req mycompanydomain.CompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	company, err := s.myCompanySvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

func (s *Server) DeleteMyCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.myCompanySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company deleted successfully"})
}

func (s *Server) ListCompanyMembers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := s.myCompanySvc.ListMembers(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

func (s *Server) AddCompanyMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req mycompanydomain.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))

	member, err := s.myCompanySvc.AddMember(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (s *Server) UpdateCompanyMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "memberId")
	if !ok {
		return
	}

	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	member, err := s.myCompanySvc.UpdateMemberRole(c.Request.Context(), id, memberID, strings.ToUpper(strings.TrimSpace(req.Role)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

func (s *Server) RemoveCompanyMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "memberId")
	if !ok {
		return
	}

	if err := s.myCompanySvc.RemoveMember(c.Request.Context(), id, memberID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

func isMyCompanyValidationError(err error) bool {
	switch {
	case errors.Is(err, mycompanydomain.ErrInvalidName),
		errors.Is(err, mycompanydomain.ErrInvalidType),
		errors.Is(err, mycompanydomain.ErrInvalidColor),
		errors.Is(err, mycompanydomain.ErrInvalidLength),
		errors.Is(err, mycompanydomain.ErrInvalidEmail),
		errors.Is(err, mycompanydomain.ErrInvalidUser),
		errors.Is(err, mycompanydomain.ErrInvalidRole),
		errors.Is(err, authorization.ErrInvalidCompany):
		return true
	default:
		return false
	}
}
