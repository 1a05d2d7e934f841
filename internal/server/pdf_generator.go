package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pdfgendomain "github.com/verlyx/hub/internal/pdfgen/domain"
)

func (s *Server) CreatePDFTemplate(c *gin.Context) {
	var req pdfgendomain.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tpl, err := s.pdfSvc.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tpl)
}

func (s *Server) ListPDFTemplates(c *gin.Context) {
	var req pdfgendomain.ListTemplatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	templates, err := s.pdfSvc.ListTemplates(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

func (s *Server) GetPDFTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tpl, err := s.pdfSvc.GetTemplate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tpl)
}

func (s *Server) UpdatePDFTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req pdfgendomain.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tpl, err := s.pdfSvc.UpdateTemplate(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tpl)
}

func (s *Server) DeletePDFTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.pdfSvc.DeleteTemplate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

func (s *Server) GeneratePDF(c *gin.Context) {
	var req pdfgendomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	generated, err := s.pdfSvc.Generate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, generated)
}

func (s *Server) ListGeneratedPDFs(c *gin.Context) {
	var req pdfgendomain.ListGeneratedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, err := s.pdfSvc.ListGenerated(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (s *Server) GetGeneratedPDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	generated, err := s.pdfSvc.GetGenerated(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, generated)
}

func (s *Server) DownloadGeneratedPDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	generated, path, err := s.pdfSvc.Download(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	name := generated.FileName
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	c.FileAttachment(path, name)
}

func (s *Server) DeleteGeneratedPDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.pdfSvc.DeleteGenerated(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "PDF deleted successfully"})
}

func isPDFValidationError(err error) bool {
	switch {
	case errors.Is(err, pdfgendomain.ErrInvalidCompany),
		errors.Is(err, pdfgendomain.ErrInvalidName),
		errors.Is(err, pdfgendomain.ErrInvalidTemplateType),
		errors.Is(err, pdfgendomain.ErrInvalidTemplate),
		errors.Is(err, pdfgendomain.ErrInactiveTemplate),
		errors.Is(err, pdfgendomain.ErrInvalidDocumentData):
		return true
	default:
		return false
	}
}
