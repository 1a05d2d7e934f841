package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	workspacedomain "github.com/verlyx/hub/internal/workspace/domain"
)

func (s *Server) CreateWorkspace(c *gin.Context) {
	var req workspacedomain.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ws, err := s.workspaceSvc.CreateWorkspace(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ws)
}

func (s *Server) ListWorkspaces(c *gin.Context) {
	companyID, ok := queryID(c, "myCompanyId")
	if !ok {
		return
	}

	items, err := s.workspaceSvc.ListWorkspaces(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (s *Server) GetWorkspace(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ws, err := s.workspaceSvc.GetWorkspace(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ws)
}

func (s *Server) UpdateWorkspace(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req workspacedomain.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ws, err := s.workspaceSvc.UpdateWorkspace(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ws)
}

func (s *Server) DeleteWorkspace(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.workspaceSvc.DeleteWorkspace(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace deleted successfully"})
}

func (s *Server) CreatePage(c *gin.Context) {
	var req workspacedomain.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.workspaceSvc.CreatePage(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, page)
}

func (s *Server) ListPages(c *gin.Context) {
	var req workspacedomain.ListPagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pages, err := s.workspaceSvc.ListPages(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pages)
}

func (s *Server) GetPage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	page, err := s.workspaceSvc.GetPage(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) UpdatePage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req workspacedomain.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.workspaceSvc.UpdatePage(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) DeletePage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.workspaceSvc.DeletePage(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Page deleted successfully"})
}

func (s *Server) DuplicatePage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req workspacedomain.DuplicatePageRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	newID, err := s.workspaceSvc.DuplicatePage(c.Request.Context(), id, req.NewTitle)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"newPageId": newID})
}

func (s *Server) CreateBlock(c *gin.Context) {
	var req workspacedomain.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	block, err := s.workspaceSvc.CreateBlock(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, block)
}

func (s *Server) ListBlocks(c *gin.Context) {
	pageID, ok := queryID(c, "pageId")
	if !ok {
		return
	}
	if pageID == nil {
		AbortWithError(c, workspacedomain.ErrInvalidPage)
		return
	}

	blocks, err := s.workspaceSvc.ListBlocks(c.Request.Context(), *pageID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, blocks)
}

func (s *Server) UpdateBlock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req workspacedomain.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	block, err := s.workspaceSvc.UpdateBlock(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, block)
}

func (s *Server) DeleteBlock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.workspaceSvc.DeleteBlock(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Block deleted successfully"})
}

func (s *Server) ReorderBlocks(c *gin.Context) {
	var req workspacedomain.ReorderBlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.workspaceSvc.ReorderBlocks(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func isWorkspaceValidationError(err error) bool {
	switch {
	case errors.Is(err, workspacedomain.ErrInvalidCompany),
		errors.Is(err, workspacedomain.ErrInvalidName),
		errors.Is(err, workspacedomain.ErrInvalidWorkspace),
		errors.Is(err, workspacedomain.ErrInvalidParent),
		errors.Is(err, workspacedomain.ErrInvalidPage),
		errors.Is(err, workspacedomain.ErrInvalidBlockType),
		errors.Is(err, workspacedomain.ErrInvalidContent),
		errors.Is(err, workspacedomain.ErrInvalidIndent),
		errors.Is(err, workspacedomain.ErrInvalidReorder),
		errors.Is(err, workspacedomain.ErrDuplicateFailed):
		return true
	default:
		return false
	}
}
