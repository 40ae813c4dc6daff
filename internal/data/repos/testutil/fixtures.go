package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *user.User {
	tb.Helper()
	u := &user.User{
		ID:       uuid.New(),
		Name:     "Ana Auditora",
		Email:    email,
		Password: "pw",
		Role:     user.RoleUser,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCompany(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *compliance.Company {
	tb.Helper()
	c := &compliance.Company{Name: name, IsActive: true}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed company: %v", err)
	}
	return c
}

func SeedRegulation(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *compliance.Regulation {
	tb.Helper()
	r := &compliance.Regulation{Code: code, Name: code, IsActive: true}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed regulation: %v", err)
	}
	return r
}

// SeedArticle creates an article; enabled=false is written after the insert
// because the column defaults to true.
func SeedArticle(tb testing.TB, ctx context.Context, tx *gorm.DB, regulationID uuid.UUID, code, title string, enabled bool) *compliance.Article {
	tb.Helper()
	a := &compliance.Article{RegulationID: regulationID, Code: code, Title: &title, Body: title, IsEnabled: true}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed article: %v", err)
	}
	if !enabled {
		if err := tx.WithContext(ctx).Model(a).Update("is_enabled", false).Error; err != nil {
			tb.Fatalf("disable article: %v", err)
		}
		a.IsEnabled = false
	}
	return a
}

func SeedControl(tb testing.TB, ctx context.Context, tx *gorm.DB, regulationID uuid.UUID, articleID *uuid.UUID, key, question string) *compliance.Control {
	tb.Helper()
	rec := "Revisar " + key
	c := &compliance.Control{
		RegulationID:   regulationID,
		ArticleID:      articleID,
		Key:            key,
		Question:       question,
		Recommendation: &rec,
		Weight:         1,
		IsActive:       true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed control: %v", err)
	}
	return c
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
