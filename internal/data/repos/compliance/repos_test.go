package compliance

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos/testutil"
	types "github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
)

func TestRegulationRepo(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewRegulationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	reg, err := repo.Create(ctx, nil, &types.Regulation{Code: "GDPR", Name: "Reglamento General", IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, nil, &types.Regulation{Code: "SOX", Name: "Sarbanes-Oxley", IsActive: true}); err != nil {
		t.Fatalf("Create SOX: %v", err)
	}

	list, err := repo.List(ctx, nil)
	if err != nil || len(list) != 2 || list[0].Code != "GDPR" {
		t.Fatalf("List: got %+v, %v", list, err)
	}

	byCode, err := repo.GetByCode(ctx, nil, " gdpr ")
	if err != nil || byCode == nil || byCode.ID != reg.ID {
		t.Fatalf("GetByCode: got %+v, %v", byCode, err)
	}

	toggled, err := repo.ToggleActive(ctx, nil, reg.ID)
	if err != nil || toggled == nil || toggled.IsActive {
		t.Fatalf("ToggleActive: got %+v, %v", toggled, err)
	}
	toggled, err = repo.ToggleActive(ctx, nil, reg.ID)
	if err != nil || toggled == nil || !toggled.IsActive {
		t.Fatalf("ToggleActive (back): got %+v, %v", toggled, err)
	}

	missing, err := repo.ToggleActive(ctx, nil, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("ToggleActive (missing): got %+v, %v", missing, err)
	}
}

func TestArticleRepo(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewArticleRepo(db, testutil.Logger(t))
	ctx := context.Background()
	reg := testutil.SeedRegulation(t, ctx, db, "GDPR")

	next, err := repo.NextSortIndex(ctx, nil, reg.ID)
	if err != nil || next != 1 {
		t.Fatalf("NextSortIndex (empty): got %d, %v", next, err)
	}

	two, five := 2, 5
	_, err = repo.Create(ctx, nil, []*types.Article{
		{RegulationID: reg.ID, Code: "Art. 9", Body: "b", SortIndex: &five, IsEnabled: true},
		{RegulationID: reg.ID, Code: "Art. 0", Body: "b", IsEnabled: true},
		{RegulationID: reg.ID, Code: "Art. 5", Body: "b", SortIndex: &two, IsEnabled: true},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := repo.ListByRegulation(ctx, nil, reg.ID)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListByRegulation: got %d, %v", len(list), err)
	}
	if list[0].Code != "Art. 5" || list[1].Code != "Art. 9" || list[2].Code != "Art. 0" {
		t.Fatalf("ListByRegulation: unexpected order %s, %s, %s", list[0].Code, list[1].Code, list[2].Code)
	}

	next, err = repo.NextSortIndex(ctx, nil, reg.ID)
	if err != nil || next != 6 {
		t.Fatalf("NextSortIndex: got %d, %v", next, err)
	}

	toggled, err := repo.ToggleEnabled(ctx, nil, list[0].ID)
	if err != nil || toggled == nil || toggled.IsEnabled {
		t.Fatalf("ToggleEnabled: got %+v, %v", toggled, err)
	}
}

func TestCompanyRepo(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewCompanyRepo(db, testutil.Logger(t))
	ctx := context.Background()

	zeta := testutil.SeedCompany(t, ctx, db, "Zeta SRL")
	acme := testutil.SeedCompany(t, ctx, db, "Acme S.A.")

	if _, err := repo.ToggleActive(ctx, nil, zeta.ID); err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}

	all, err := repo.List(ctx, nil, false)
	if err != nil || len(all) != 2 || all[0].ID != acme.ID {
		t.Fatalf("List(all): got %+v, %v", all, err)
	}
	active, err := repo.List(ctx, nil, true)
	if err != nil || len(active) != 1 || active[0].ID != acme.ID {
		t.Fatalf("List(active): got %+v, %v", active, err)
	}

	deleted, err := repo.Delete(ctx, nil, zeta.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: got %v, %v", deleted, err)
	}
	deleted, err = repo.Delete(ctx, nil, zeta.ID)
	if err != nil || deleted {
		t.Fatalf("Delete (again): got %v, %v", deleted, err)
	}
	got, err := repo.GetByID(ctx, nil, zeta.ID)
	if err != nil || got != nil {
		t.Fatalf("GetByID (deleted): got %+v, %v", got, err)
	}
}
