package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos/testutil"
	types "github.com/lawcomply/lawcomply-backend/internal/domain/user"
)

func TestUserRepo(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, nil, []*types.User{
		{
			ID:       uuid.New(),
			Name:     "Ana",
			Email:    "ana@example.com",
			Password: "hash",
			Role:     types.RoleUser,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(ctx, nil, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	got, err := repo.GetByEmail(ctx, nil, "  ANA@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByEmail: unexpected result: %+v", got)
	}

	missing, err := repo.GetByEmail(ctx, nil, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("GetByEmail (missing): got %+v, %v", missing, err)
	}

	exists, err := repo.EmailExists(ctx, nil, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	if err := repo.UpdateRole(ctx, nil, created[0].ID, types.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	got, err = repo.GetByEmail(ctx, nil, created[0].Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Role != types.RoleAdmin {
		t.Fatalf("UpdateRole: expected ADMIN, got %q", got.Role)
	}
}

func TestUserRepoPostgres(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	email := "pg-" + uuid.NewString()[:8] + "@example.com"
	if _, err := repo.Create(ctx, tx, []*types.User{{Name: "PG", Email: email, Password: "hash"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	exists, err := repo.EmailExists(ctx, tx, email)
	if err != nil || !exists {
		t.Fatalf("EmailExists: %v %v", exists, err)
	}
}
