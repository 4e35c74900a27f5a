package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
)

var membershipCols = []string{"id", "user_id", "org_id", "role", "created_at"}

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestListMembershipsByUser_NewestFirst(t *testing.T) {
	repo, mock := newMock(t)
	newer := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	mock.ExpectQuery(`from memberships where user_id=\$1 order by created_at desc, id desc`).
		WithArgs("user_abc").
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow("m2", "user_abc", "org_b", "member", newer).
			AddRow("m1", "user_abc", "org_a", "ADMIN", older))

	list, err := repo.ListMembershipsByUser(context.Background(), "user_abc")
	if err != nil {
		t.Fatalf("ListMembershipsByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != "m2" || list[0].Role != domain.RoleMember {
		t.Errorf("first = %+v, want m2 MEMBER", list[0])
	}
	if list[1].Role != domain.RoleAdmin {
		t.Errorf("second role = %q, want ADMIN", list[1].Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListMembershipsByUser_UnknownRoleIsError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`from memberships where user_id=\$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(membershipCols).AddRow("m1", "u1", "o1", "OWNER", time.Now()))

	if _, err := repo.ListMembershipsByUser(context.Background(), "u1"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestGetMembershipByUserAndOrg_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`from memberships where user_id=\$1 and org_id=\$2`).
		WithArgs("u1", "o1").
		WillReturnRows(sqlmock.NewRows(membershipCols))

	m, err := repo.GetMembershipByUserAndOrg(context.Background(), "u1", "o1")
	if err != nil {
		t.Fatalf("GetMembershipByUserAndOrg: %v", err)
	}
	if m != nil {
		t.Errorf("membership = %+v, want nil", m)
	}
}

func TestGetMembershipByUserAndOrg_DBError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`from memberships`).WillReturnError(errors.New("connection reset"))

	if _, err := repo.GetMembershipByUserAndOrg(context.Background(), "u1", "o1"); err == nil {
		t.Fatal("expected database error")
	}
}

func TestCreateMembership(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectExec(`insert into memberships`).
		WithArgs("m1", "u1", "o1", "MANAGER", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateMembership(context.Background(), &domain.Membership{
		ID: "m1", UserID: "u1", OrgID: "o1", Role: domain.RoleManager, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateRole_ScopedByOrg(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`update memberships set role=\$3 where user_id=\$1 and org_id=\$2`).
		WithArgs("u1", "org_a", "ADMIN").
		WillReturnRows(sqlmock.NewRows(membershipCols).AddRow("m1", "u1", "org_a", "ADMIN", time.Now()))
	mock.ExpectQuery(`update memberships`).
		WithArgs("u1", "org_b", "ADMIN").
		WillReturnRows(sqlmock.NewRows(membershipCols))

	m, err := repo.UpdateRole(context.Background(), "u1", "org_a", domain.RoleAdmin)
	if err != nil || m == nil || m.Role != domain.RoleAdmin {
		t.Fatalf("UpdateRole org_a = (%+v, %v), want ADMIN membership", m, err)
	}
	m, err = repo.UpdateRole(context.Background(), "u1", "org_b", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole org_b: %v", err)
	}
	if m != nil {
		t.Errorf("UpdateRole outside membership org = %+v, want nil", m)
	}
}
