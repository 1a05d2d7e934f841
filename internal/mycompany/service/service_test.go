package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authdomain "github.com/verlyx/hub/internal/auth/domain"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/mycompany/domain"
	"github.com/verlyx/hub/internal/mycompany/repository"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	svc  domain.Service
	conn *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}, &domain.MyCompany{}, &domain.Member{}))

	enforcer, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Repo:  repository.Provide(),
		Authz: authorization.NewService(authorization.Params{DB: conn, Log: log, Enforcer: enforcer}),
		Clock: clock.NewFakeClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)),
	})
	return fixture{svc: svc, conn: conn}
}

func seedUser(t *testing.T, conn *gorm.DB, id snowflake.ID, email string) {
	t.Helper()
	require.NoError(t, conn.Create(&authdomain.User{
		ID: id, Email: email, PasswordHash: "x", FullName: email, Role: authdomain.RoleUser, IsActive: true,
	}).Error)
}

func as(userID snowflake.ID) context.Context {
	return companycontext.WithUserID(context.Background(), userID)
}

func strPtr(s string) *string { return &s }

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	seedUser(t, f.conn, 1, "owner@verlyx.com")

	company, err := f.svc.Create(as(1), domain.CompanyInput{Name: strPtr("  Verlyx  ")})
	require.NoError(t, err)
	assert.Equal(t, "Verlyx", company.Name)
	assert.Equal(t, "#6366f1", company.PrimaryColor)
	assert.Equal(t, "#8b5cf6", company.SecondaryColor)
	assert.Equal(t, "Uruguay", company.Country)
	assert.True(t, company.IsActive)

	members, err := f.svc.ListMembers(as(1), company.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, authorization.RoleOwner, members[0].Role)
	assert.Equal(t, "owner@verlyx.com", members[0].Email)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		in   domain.CompanyInput
		want error
	}{
		{"missing name", domain.CompanyInput{}, domain.ErrInvalidName},
		{"bad type", domain.CompanyInput{Name: strPtr("a"), Type: strPtr("space")}, domain.ErrInvalidType},
		{"bad color", domain.CompanyInput{Name: strPtr("a"), PrimaryColor: strPtr("red")}, domain.ErrInvalidColor},
		{"long phone", domain.CompanyInput{Name: strPtr("a"), Phone: strPtr(string(make([]byte, 51)))}, domain.ErrInvalidLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(as(1), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestListIncludesMemberships(t *testing.T) {
	f := newFixture(t)
	seedUser(t, f.conn, 1, "owner@verlyx.com")
	seedUser(t, f.conn, 2, "staff@verlyx.com")

	first, err := f.svc.Create(as(1), domain.CompanyInput{Name: strPtr("First")})
	require.NoError(t, err)
	_, err = f.svc.Create(as(2), domain.CompanyInput{Name: strPtr("Own")})
	require.NoError(t, err)

	_, err = f.svc.AddMember(as(1), first.ID, domain.AddMemberRequest{UserID: 2, Role: "manager"})
	require.NoError(t, err)

	companies, err := f.svc.List(as(2))
	require.NoError(t, err)
	assert.Len(t, companies, 2)

	companies, err = f.svc.List(as(1))
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}

func TestMemberManagementRequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	for id, email := range map[snowflake.ID]string{1: "owner@x.co", 2: "admin@x.co", 3: "guest@x.co", 4: "new@x.co"} {
		seedUser(t, f.conn, id, email)
	}
	company, err := f.svc.Create(as(1), domain.CompanyInput{Name: strPtr("Acme")})
	require.NoError(t, err)

	admin, err := f.svc.AddMember(as(1), company.ID, domain.AddMemberRequest{UserID: 2, Role: "ADMIN"})
	require.NoError(t, err)
	guest, err := f.svc.AddMember(as(2), company.ID, domain.AddMemberRequest{UserID: 3, Role: "GUEST"})
	require.NoError(t, err)

	_, err = f.svc.AddMember(as(3), company.ID, domain.AddMemberRequest{UserID: 4, Role: "GUEST"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = f.svc.AddMember(as(1), company.ID, domain.AddMemberRequest{UserID: 3, Role: "GUEST"})
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)

	_, err = f.svc.AddMember(as(1), company.ID, domain.AddMemberRequest{UserID: 4, Role: "OWNER"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	updated, err := f.svc.UpdateMemberRole(as(2), company.ID, guest.ID, "finance")
	require.NoError(t, err)
	assert.Equal(t, authorization.RoleFinance, updated.Role)

	require.NoError(t, f.svc.RemoveMember(as(1), company.ID, admin.ID))
	_, err = f.svc.AddMember(as(2), company.ID, domain.AddMemberRequest{UserID: 4, Role: "GUEST"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestOwnerCannotBeRemovedAndOnlyOwnerDeletes(t *testing.T) {
	f := newFixture(t)
	seedUser(t, f.conn, 1, "owner@x.co")
	seedUser(t, f.conn, 2, "admin@x.co")
	company, err := f.svc.Create(as(1), domain.CompanyInput{Name: strPtr("Acme")})
	require.NoError(t, err)
	_, err = f.svc.AddMember(as(1), company.ID, domain.AddMemberRequest{UserID: 2, Role: "ADMIN"})
	require.NoError(t, err)

	members, err := f.svc.ListMembers(as(2), company.ID)
	require.NoError(t, err)
	var ownerMember domain.Member
	for _, m := range members {
		if m.Role == authorization.RoleOwner {
			ownerMember = m
		}
	}
	err = f.svc.RemoveMember(as(2), company.ID, ownerMember.ID)
	assert.ErrorIs(t, err, domain.ErrOwnerImmutable)

	assert.ErrorIs(t, f.svc.Delete(as(2), company.ID), authorization.ErrForbidden)

	updated, err := f.svc.Update(as(2), company.ID, domain.CompanyInput{City: strPtr("Montevideo")})
	require.NoError(t, err)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Montevideo", *updated.City)

	require.NoError(t, f.svc.Delete(as(1), company.ID))
	_, err = f.svc.Get(as(1), company.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
