package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/workspace/domain"
	"github.com/verlyx/hub/internal/workspace/repository"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// procRepo stands in for duplicate_page.
type procRepo struct {
	domain.Repository
	duplicated []snowflake.ID
	titles     []*string
}

func (r *procRepo) DuplicatePage(_ context.Context, _ *gorm.DB, sourceID snowflake.ID, newTitle *string) (snowflake.ID, error) {
	r.duplicated = append(r.duplicated, sourceID)
	r.titles = append(r.titles, newTitle)
	return 4242, nil
}

type fixture struct {
	svc  domain.Service
	db   *gorm.DB
	clk  *clock.FakeClock
	repo *procRepo
	ctx  context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Workspace{}, &domain.Page{}, &domain.Block{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := &procRepo{Repository: repository.Provide()}
	clk := clock.NewFakeClock(time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Repo:  repo,
		Authz: authorization.Static{},
		Clock: clk,
	})
	ctx := companycontext.WithCompanyID(companycontext.WithUserID(context.Background(), 5), 900)
	return &fixture{svc: svc, db: conn, clk: clk, repo: repo, ctx: ctx}
}

func (f *fixture) workspace(t *testing.T, name string, order int) *domain.Workspace {
	t.Helper()
	ws, err := f.svc.CreateWorkspace(f.ctx, domain.CreateWorkspaceRequest{Name: name, Order: &order})
	require.NoError(t, err)
	return ws
}

func (f *fixture) page(t *testing.T, wsID snowflake.ID, title string, parent *snowflake.ID) *domain.Page {
	t.Helper()
	page, err := f.svc.CreatePage(f.ctx, domain.CreatePageRequest{WorkspaceID: wsID, Title: &title, ParentPageID: parent})
	require.NoError(t, err)
	f.clk.Advance(time.Second)
	return page
}

func (f *fixture) block(t *testing.T, pageID snowflake.ID, text string, order int) *domain.Block {
	t.Helper()
	block, err := f.svc.CreateBlock(f.ctx, domain.CreateBlockRequest{
		PageID:  pageID,
		Type:    domain.BlockParagraph,
		Content: map[string]any{"text": text},
		Order:   &order,
	})
	require.NoError(t, err)
	return block
}

func boolPtr(b bool) *bool { return &b }

func TestWorkspacesListedByOrder(t *testing.T) {
	f := newFixture(t)
	f.workspace(t, "Later", 2)
	f.workspace(t, "First", 0)
	f.workspace(t, "Middle", 1)

	list, err := f.svc.ListWorkspaces(f.ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"First", "Middle", "Later"}, []string{list[0].Name, list[1].Name, list[2].Name})

	_, err = f.svc.CreateWorkspace(f.ctx, domain.CreateWorkspaceRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCreatePageDefaults(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, "Docs", 0)

	page, err := f.svc.CreatePage(f.ctx, domain.CreatePageRequest{WorkspaceID: ws.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPageTitle, page.Title)
	assert.Equal(t, "untitled", page.Slug)
	assert.True(t, page.CanComment)
	assert.True(t, page.CanEditByOthers)

	locked, err := f.svc.CreatePage(f.ctx, domain.CreatePageRequest{
		WorkspaceID:     ws.ID,
		Title:           strPtr("Año Fiscal 2025"),
		CanComment:      boolPtr(false),
		CanEditByOthers: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "ano-fiscal-2025", locked.Slug)

	stored, err := f.svc.GetPage(f.ctx, locked.ID)
	require.NoError(t, err)
	assert.False(t, stored.CanComment)
	assert.False(t, stored.CanEditByOthers)

	_, err = f.svc.CreatePage(f.ctx, domain.CreatePageRequest{WorkspaceID: 999})
	assert.ErrorIs(t, err, domain.ErrInvalidWorkspace)
}

func TestListPagesRootsOrChildren(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, "Wiki", 0)
	root := f.page(t, ws.ID, "Root", nil)
	f.page(t, ws.ID, "Second root", nil)
	f.page(t, ws.ID, "Child", &root.ID)

	roots, err := f.svc.ListPages(f.ctx, domain.ListPagesRequest{WorkspaceID: ws.ID})
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Root", roots[0].Title)

	children, err := f.svc.ListPages(f.ctx, domain.ListPagesRequest{WorkspaceID: ws.ID, ParentPageID: &root.ID})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Child", children[0].Title)

	other := f.workspace(t, "Other", 1)
	_, err = f.svc.CreatePage(f.ctx, domain.CreatePageRequest{WorkspaceID: other.ID, ParentPageID: &root.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidParent)
}

func TestGetPageIncludesOrderedBlocks(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, "Notes", 0)
	page := f.page(t, ws.ID, "Meeting", nil)
	f.block(t, page.ID, "third", 2)
	f.block(t, page.ID, "first", 0)
	f.block(t, page.ID, "second", 1)

	got, err := f.svc.GetPage(f.ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 3)
	assert.Equal(t, "first", got.Blocks[0].Content["text"])
	assert.Equal(t, "third", got.Blocks[2].Content["text"])

	_, err = f.svc.CreateBlock(f.ctx, domain.CreateBlockRequest{PageID: page.ID, Type: "marquee", Content: map[string]any{}})
	assert.ErrorIs(t, err, domain.ErrInvalidBlockType)
}

func TestReorderBlocksIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, "Notes", 0)
	page := f.page(t, ws.ID, "Plan", nil)
	otherPage := f.page(t, ws.ID, "Elsewhere", nil)
	a := f.block(t, page.ID, "a", 0)
	b := f.block(t, page.ID, "b", 1)
	foreign := f.block(t, otherPage.ID, "x", 0)

	err := f.svc.ReorderBlocks(f.ctx, domain.ReorderBlocksRequest{
		PageID: page.ID,
		Blocks: []domain.BlockOrder{{ID: a.ID, Order: 5}, {ID: foreign.ID, Order: 6}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReorder)

	blocks, err := f.svc.ListBlocks(f.ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, blocks[0].Order)
	assert.Equal(t, a.ID, blocks[0].ID)

	require.NoError(t, f.svc.ReorderBlocks(f.ctx, domain.ReorderBlocksRequest{
		PageID: page.ID,
		Blocks: []domain.BlockOrder{{ID: a.ID, Order: 1}, {ID: b.ID, Order: 0}},
	}))
	blocks, err = f.svc.ListBlocks(f.ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{b.ID, a.ID}, []snowflake.ID{blocks[0].ID, blocks[1].ID})

	err = f.svc.ReorderBlocks(f.ctx, domain.ReorderBlocksRequest{
		PageID: page.ID,
		Blocks: []domain.BlockOrder{{ID: a.ID, Order: 1}, {ID: a.ID, Order: 2}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReorder)
}

func TestUpdatePageRefreshesSlug(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, "Notes", 0)
	page := f.page(t, ws.ID, "Draft", nil)

	updated, err := f.svc.UpdatePage(f.ctx, page.ID, domain.UpdatePageRequest{Title: strPtr("Release Notes")})
	require.NoError(t, err)
	assert.Equal(t, "Release Notes", updated.Title)
	assert.Equal(t, "release-notes", updated.Slug)
	require.NotNil(t, updated.LastEditedBy)
	assert.Equal(t, snowflake.ID(5), *updated.LastEditedBy)
}

func TestDuplicatePage(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, "Notes", 0)
	page := f.page(t, ws.ID, "Template", nil)

	newID, err := f.svc.DuplicatePage(f.ctx, page.ID, strPtr("  Copy  "))
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(4242), newID)
	require.Len(t, f.repo.titles, 1)
	assert.Equal(t, "Copy", *f.repo.titles[0])

	_, err = f.svc.DuplicatePage(f.ctx, 31337, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteWorkspaceRemovesPagesAndBlocks(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, "Temp", 0)
	page := f.page(t, ws.ID, "Scratch", nil)
	f.block(t, page.ID, "gone", 0)

	require.NoError(t, f.svc.DeleteWorkspace(f.ctx, ws.ID))

	var pages, blocks int64
	require.NoError(t, f.db.Model(&domain.Page{}).Count(&pages).Error)
	require.NoError(t, f.db.Model(&domain.Block{}).Count(&blocks).Error)
	assert.Zero(t, pages)
	assert.Zero(t, blocks)
}

func strPtr(s string) *string { return &s }
