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
	taskdomain "github.com/verlyx/hub/internal/task/domain"
	"github.com/verlyx/hub/internal/taskcomment/domain"
	"github.com/verlyx/hub/internal/taskcomment/repository"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/zap/zaptest"
)

const (
	author snowflake.ID = 11
	other  snowflake.ID = 12
	taskID snowflake.ID = 500
)

func newService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&taskdomain.Task{}, &domain.Comment{}))
	require.NoError(t, conn.Create(&taskdomain.Task{
		ID:          taskID,
		MyCompanyID: 900,
		Title:       "Launch",
		Status:      taskdomain.StatusTodo,
		Priority:    taskdomain.PriorityMedium,
	}).Error)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	return New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Repo:  repository.Provide(),
		Authz: authorization.Static{},
		Clock: clk,
	}), clk
}

func as(userID snowflake.ID) context.Context {
	return companycontext.WithUserID(context.Background(), userID)
}

func TestCreateSetsAuthorAndEmptyReactions(t *testing.T) {
	svc, _ := newService(t)

	comment, err := svc.Create(as(author), domain.CreateRequest{TaskID: taskID, Content: " Looks good "})
	require.NoError(t, err)
	assert.Equal(t, author, comment.UserID)
	assert.Equal(t, snowflake.ID(900), comment.MyCompanyID)
	assert.Equal(t, "Looks good", comment.Content)
	assert.Empty(t, comment.Reactions.Data())
	assert.False(t, comment.IsEdited)

	_, err = svc.Create(as(author), domain.CreateRequest{TaskID: taskID, Content: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidContent)

	_, err = svc.Create(as(author), domain.CreateRequest{TaskID: 404, Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidTask)
}

func TestListByTaskIsChronological(t *testing.T) {
	svc, clk := newService(t)

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.Create(as(author), domain.CreateRequest{TaskID: taskID, Content: content})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	comments, err := svc.ListByTask(as(author), taskID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "third", comments[2].Content)
}

func TestOnlyAuthorCanEditOrDelete(t *testing.T) {
	svc, clk := newService(t)
	comment, err := svc.Create(as(author), domain.CreateRequest{TaskID: taskID, Content: "draft"})
	require.NoError(t, err)

	edited := "final"
	_, err = svc.Update(as(other), comment.ID, domain.UpdateRequest{Content: &edited})
	assert.ErrorIs(t, err, domain.ErrNotAuthor)
	assert.ErrorIs(t, svc.Delete(as(other), comment.ID), domain.ErrNotAuthor)

	clk.Advance(time.Hour)
	updated, err := svc.Update(as(author), comment.ID, domain.UpdateRequest{Content: &edited})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.True(t, updated.IsEdited)
	require.NotNil(t, updated.EditedAt)
	assert.True(t, updated.EditedAt.Equal(clk.Now()))

	require.NoError(t, svc.Delete(as(author), comment.ID))
	_, err = svc.Get(as(author), comment.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReactions(t *testing.T) {
	svc, _ := newService(t)
	comment, err := svc.Create(as(author), domain.CreateRequest{TaskID: taskID, Content: "ship it"})
	require.NoError(t, err)

	_, err = svc.AddReaction(as(author), comment.ID, "👍")
	require.NoError(t, err)
	_, err = svc.AddReaction(as(author), comment.ID, "👍")
	require.NoError(t, err)
	reacted, err := svc.AddReaction(as(other), comment.ID, "👍")
	require.NoError(t, err)
	assert.Equal(t, []string{author.String(), other.String()}, reacted.Reactions.Data()["👍"])

	_, err = svc.RemoveReaction(as(author), comment.ID, "👍")
	require.NoError(t, err)
	reacted, err = svc.RemoveReaction(as(other), comment.ID, "👍")
	require.NoError(t, err)
	_, present := reacted.Reactions.Data()["👍"]
	assert.False(t, present)

	stored, err := svc.Get(as(author), comment.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Reactions.Data())

	_, err = svc.AddReaction(as(author), comment.ID, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidEmoji)
}

func TestReactionsHelpers(t *testing.T) {
	r := domain.Reactions{}
	assert.True(t, r.Add("🎉", "1"))
	assert.False(t, r.Add("🎉", "1"))
	assert.True(t, r.Add("🎉", "2"))
	assert.False(t, r.Remove("🔥", "1"))
	assert.True(t, r.Remove("🎉", "1"))
	assert.Equal(t, []string{"2"}, r["🎉"])
	assert.True(t, r.Remove("🎉", "2"))
	assert.NotContains(t, r, "🎉")
}
