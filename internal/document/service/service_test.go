package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/document/domain"
	"github.com/verlyx/hub/internal/document/repository"
	"github.com/verlyx/hub/pkg/db"
	"github.com/verlyx/hub/pkg/db/pagination"
	"go.uber.org/zap/zaptest"
)

func newService(t *testing.T) (domain.Service, *clock.FakeClock, context.Context) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Document{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Repo:  repository.Provide(),
		Authz: authorization.Static{},
		Clock: clk,
	})
	ctx := companycontext.WithCompanyID(companycontext.WithUserID(context.Background(), 7), 900)
	return svc, clk, ctx
}

func strPtr(s string) *string { return &s }

func TestCreateValidatesAndRecordsUploader(t *testing.T) {
	svc, _, ctx := newService(t)

	_, err := svc.Create(ctx, domain.CreateRequest{Name: " ", FilePath: "a.pdf"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Contract"})
	assert.ErrorIs(t, err, domain.ErrInvalidPath)
	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "Contract", FilePath: "a.pdf"})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)

	doc, err := svc.Create(ctx, domain.CreateRequest{Name: "Contract", FilePath: "docs/contract.pdf"})
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(900), doc.MyCompanyID)
	require.NotNil(t, doc.UploadedBy)
	assert.Equal(t, snowflake.ID(7), *doc.UploadedBy)
	assert.NotNil(t, doc.Tags)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, clk, ctx := newService(t)
	project := snowflake.ID(55)

	for i := 0; i < 5; i++ {
		req := domain.CreateRequest{Name: fmt.Sprintf("Invoice %d", i), FilePath: "f.pdf", Folder: strPtr("billing")}
		if i%2 == 0 {
			req.ProjectID = &project
		}
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
		clk.Advance(time.Second)
	}
	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Logo", FilePath: "logo.png", Description: strPtr("brand asset")})
	require.NoError(t, err)

	page, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{Page: 1, Limit: 2}, Folder: "billing"})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Meta.Total)
	assert.Equal(t, 3, page.Meta.TotalPages)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Invoice 4", page.Data[0].Name)

	page, err = svc.List(ctx, domain.ListRequest{ProjectID: &project})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Meta.Total)

	page, err = svc.List(ctx, domain.ListRequest{Search: "BRAND"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Logo", page.Data[0].Name)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _, ctx := newService(t)
	doc, err := svc.Create(ctx, domain.CreateRequest{Name: "Draft", FilePath: "d.docx"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, doc.ID, domain.UpdateRequest{
		Name:   strPtr("Final"),
		Folder: strPtr("legal"),
		Tags:   []string{"signed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Name)
	assert.Equal(t, "legal", *updated.Folder)
	assert.Equal(t, []string{"signed"}, []string(updated.Tags))
	assert.Equal(t, "d.docx", updated.FilePath)

	_, err = svc.Update(ctx, doc.ID, domain.UpdateRequest{Name: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	require.NoError(t, svc.Delete(ctx, doc.ID))
	_, err = svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestForeignCompanyIsForbidden(t *testing.T) {
	svc, _, ctx := newService(t)
	doc, err := svc.Create(ctx, domain.CreateRequest{Name: "Secret", FilePath: "s.pdf"})
	require.NoError(t, err)

	impl := svc.(*Service)
	impl.authz = authorization.Static{Err: authorization.ErrForbidden}

	_, err = svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, authorization.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, doc.ID), authorization.ErrForbidden)
}
