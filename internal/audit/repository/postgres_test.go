package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/domain"
)

func TestCreateAndListByOrg(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(`insert into audit_logs`).
		WithArgs("a1", "org_a", sqlmock.AnyArg(), "role_changed", "member", "10.0.0.1", sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`from audit_logs where org_id=\$1 order by created_at desc limit \$2 offset \$3`).
		WithArgs("org_a", int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "org_id", "user_id", "action", "resource", "ip", "metadata", "created_at"}).
			AddRow("a1", "org_a", "user_1", "role_changed", "member", "10.0.0.1", nil, now).
			AddRow("a0", "org_a", nil, "access_denied", "claim", "unknown", `{"guard":"require_admin"}`, now.Add(-time.Minute)))

	err = repo.Create(context.Background(), &domain.AuditLog{
		ID: "a1", OrgID: "org_a", UserID: "user_1", Action: "role_changed", Resource: "member", IP: "10.0.0.1", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, err := repo.ListByOrg(context.Background(), "org_a", 20, 0)
	if err != nil {
		t.Fatalf("ListByOrg: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[1].UserID != "" || list[1].Metadata == "" {
		t.Errorf("nullable columns not mapped: %+v", list[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
