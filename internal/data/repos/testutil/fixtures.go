package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/domain/modeling"
	"github.com/yungbote/graphledger-backend/internal/graph"
)

// UniqueEmail keeps seeded users distinct across tests sharing one database.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, tokens string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Role:     types.RoleUser,
		Tokens:   decimal.RequireFromString(tokens),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAdmin(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Role:     types.RoleAdmin,
		Tokens:   decimal.Zero,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed admin: %v", err)
	}
	return u
}

// SampleGraph is the four-node, eight-edge graph used across tests.
func SampleGraph() graph.Graph {
	return graph.Graph{
		"A": {"B": 2, "C": 4},
		"B": {"A": 2, "D": 1},
		"C": {"A": 4, "D": 3},
		"D": {"B": 1, "C": 3},
	}
}

// SeedModel inserts a model with version 1 holding g, without charging anyone.
func SeedModel(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string, g graph.Graph) (*types.Model, *types.Version) {
	tb.Helper()
	m := &types.Model{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Name:           name,
		CurrentVersion: 1,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed model: %v", err)
	}
	v, err := modeling.NewVersion(m.ID, 1, g, &ownerID)
	if err != nil {
		tb.Fatalf("seed version: %v", err)
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed version: %v", err)
	}
	return m, v
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrInt(v int) *int { return &v }
