package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/pdfgen/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const generatedDir = "generated-pdfs"

func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GeneratedPDF, error) {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if req.TemplateID == 0 {
		return nil, domain.ErrInvalidTemplate
	}
	if req.DocumentData == nil {
		return nil, domain.ErrInvalidDocumentData
	}
	tpl, err := s.repo.FindTemplate(ctx, s.db, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, domain.ErrInvalidTemplate
	}
	if err := authorization.Require(ctx, s.authz, tpl.MyCompanyID, authorization.ObjectPDF, authorization.ActionGenerate); err != nil {
		return nil, err
	}
	if !tpl.IsActive {
		return nil, domain.ErrInactiveTemplate
	}

	now := s.clock.Now()
	processed := ProcessDocumentData(req.DocumentData, tpl.TemplateType)
	content, err := s.renderer.Render(ctx, Layout(tpl, processed, now))
	if err != nil {
		s.log.Error("render pdf", zap.String("template_id", tpl.ID.String()), zap.Error(err))
		return nil, err
	}

	displayName := strings.TrimSpace(req.FileName)
	base := slug.Make(displayName)
	if base == "" {
		base = tpl.TemplateType
	}
	stored := fmt.Sprintf("%s_%d.pdf", base, now.UnixMilli())
	if displayName == "" {
		displayName = stored
	}

	dir := filepath.Join(s.storageDir, generatedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, stored)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, err
	}

	record := &domain.GeneratedPDF{
		ID:               s.genID.Generate(),
		MyCompanyID:      tpl.MyCompanyID,
		TemplateID:       &tpl.ID,
		FileName:         displayName,
		FilePath:         path,
		FileSize:         int64(len(content)),
		DocumentData:     datatypes.JSONMap(processed),
		RelatedContactID: req.RelatedContactID,
		RelatedProjectID: req.RelatedProjectID,
		CreatedBy:        &userID,
		CreatedAt:        now,
	}
	if err := s.repo.InsertGenerated(ctx, s.db, record); err != nil {
		s.removeFile(path)
		return nil, err
	}

	s.log.Info("pdf generated",
		zap.String("template_id", tpl.ID.String()),
		zap.String("template_type", tpl.TemplateType),
		zap.String("file", stored),
		zap.Int("bytes", len(content)),
	)
	return record, nil
}

func (s *Service) ListGenerated(ctx context.Context, req domain.ListGeneratedRequest) ([]domain.GeneratedPDF, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListGenerated(ctx, s.db, domain.GeneratedFilter{
		MyCompanyID: companyID,
		TemplateID:  req.TemplateID,
	})
}

func (s *Service) GetGenerated(ctx context.Context, id snowflake.ID) (*domain.GeneratedPDF, error) {
	record, err := s.repo.FindGenerated(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorization.RequireMember(ctx, s.authz, record.MyCompanyID); err != nil {
		return nil, err
	}
	return record, nil
}

// Download returns the record and the on-disk path of its file.
func (s *Service) Download(ctx context.Context, id snowflake.ID) (*domain.GeneratedPDF, string, error) {
	record, err := s.GetGenerated(ctx, id)
	if err != nil {
		return nil, "", err
	}
	info, err := os.Stat(record.FilePath)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("stat generated pdf", zap.String("path", record.FilePath), zap.Error(err))
		}
		return nil, "", domain.ErrFileMissing
	}
	return record, record.FilePath, nil
}

func (s *Service) DeleteGenerated(ctx context.Context, id snowflake.ID) error {
	record, err := s.repo.FindGenerated(ctx, s.db, id)
	if err != nil {
		return err
	}
	if record == nil {
		return domain.ErrNotFound
	}
	if err := authorization.Require(ctx, s.authz, record.MyCompanyID, authorization.ObjectPDF, authorization.ActionGenerate); err != nil {
		return err
	}
	if err := s.repo.DeleteGenerated(ctx, s.db, id); err != nil {
		return err
	}
	s.removeFile(record.FilePath)
	return nil
}

func (s *Service) removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("remove generated pdf", zap.String("path", path), zap.Error(err))
	}
}
