package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	companyID snowflake.ID = 100
	ownerID   snowflake.ID = 1
	adminID   snowflake.ID = 2
	guestID   snowflake.ID = 3
	financeID snowflake.ID = 4
	outsideID snowflake.ID = 5
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.Exec(`CREATE TABLE my_companies (
		id INTEGER PRIMARY KEY,
		owner_user_id INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE company_members (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`).Error)

	require.NoError(t, conn.Exec(`INSERT INTO my_companies (id, owner_user_id, is_active) VALUES (?, ?, ?)`, companyID, ownerID, true).Error)
	seedMember(t, conn, 1, adminID, RoleAdmin, true)
	seedMember(t, conn, 2, guestID, RoleGuest, true)
	seedMember(t, conn, 3, financeID, RoleFinance, true)

	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	return NewService(Params{DB: conn, Log: zaptest.NewLogger(t), Enforcer: enforcer}), conn
}

func seedMember(t *testing.T, conn *gorm.DB, id int, userID snowflake.ID, role string, active bool) {
	t.Helper()
	require.NoError(t, conn.Exec(
		`INSERT INTO company_members (id, company_id, user_id, role, is_active) VALUES (?, ?, ?, ?, ?)`,
		id, companyID, userID, role, active,
	).Error)
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	cases := []struct {
		name   string
		user   snowflake.ID
		object string
		action string
		want   error
	}{
		{"owner deletes company", ownerID, ObjectCompany, ActionDelete, nil},
		{"admin cannot delete company", adminID, ObjectCompany, ActionDelete, ErrForbidden},
		{"admin manages members", adminID, ObjectMember, ActionManage, nil},
		{"guest views members", guestID, ObjectMember, ActionView, nil},
		{"guest cannot manage members", guestID, ObjectMember, ActionManage, ErrForbidden},
		{"guest cannot generate pdf", guestID, ObjectPDF, ActionGenerate, ErrForbidden},
		{"finance manages finance", financeID, ObjectFinance, ActionManage, nil},
		{"finance creates payment links", financeID, ObjectPaymentLink, ActionCreate, nil},
		{"outsider is forbidden", outsideID, ObjectCompany, ActionView, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tc.user, companyID, tc.object, tc.action)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAuthorizeFollowsRoleChanges(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)

	require.NoError(t, svc.Authorize(ctx, adminID, companyID, ObjectMember, ActionManage))

	require.NoError(t, conn.Exec(`UPDATE company_members SET role = ? WHERE user_id = ?`, RoleGuest, adminID).Error)
	svc.Invalidate(companyID, adminID)

	err := svc.Authorize(ctx, adminID, companyID, ObjectMember, ActionManage)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeInactiveMember(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	seedMember(t, conn, 10, 77, RoleAdmin, false)

	err := svc.Authorize(ctx, 77, companyID, ObjectCompany, ActionView)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	assert.ErrorIs(t, svc.Authorize(ctx, 0, companyID, ObjectCompany, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, ownerID, 0, ObjectCompany, ActionView), ErrInvalidCompany)
	assert.ErrorIs(t, svc.Authorize(ctx, ownerID, companyID, " ", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, ownerID, companyID, ObjectCompany, ""), ErrInvalidAction)
}

func TestRoleForCaches(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)

	role, err := svc.RoleFor(ctx, companyID, financeID)
	require.NoError(t, err)
	assert.Equal(t, RoleFinance, role)

	require.NoError(t, conn.Exec(`DELETE FROM company_members WHERE user_id = ?`, financeID).Error)
	role, err = svc.RoleFor(ctx, companyID, financeID)
	require.NoError(t, err)
	assert.Equal(t, RoleFinance, role, "cached within ttl")
}
