package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmorrell/narthex/internal/domain/audit"
)

func TestAuditRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	seedSupervisorSession(t, db, "sup-1", "sess-1")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Log(ctx, &audit.Entry{
			ID:         fmt.Sprintf("aud-%d", i),
			ActorID:    "sup-1",
			SessionID:  "sess-1",
			Action:     audit.ActionForceAdmit,
			TargetType: "attendance",
			TargetID:   fmt.Sprintf("att-%d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.List(ctx, audit.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest first.
	require.Equal(t, "aud-2", entries[0].ID)
	require.Equal(t, "aud-0", entries[2].ID)
}

func TestAuditRepository_ListFilters(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	seedSupervisorSession(t, db, "sup-1", "sess-1")
	seedSupervisorSession(t, db, "sup-2", "sess-2")

	now := time.Now().UTC()
	require.NoError(t, repo.Log(ctx, &audit.Entry{
		ID: "aud-1", ActorID: "sup-1", SessionID: "sess-1",
		Action: audit.ActionForceAdmit, TargetType: "attendance", TargetID: "att-1",
		CreatedAt: now,
	}))
	require.NoError(t, repo.Log(ctx, &audit.Entry{
		ID: "aud-2", ActorID: "sup-2", SessionID: "sess-2",
		Action: audit.ActionReprintCode, TargetType: "attendance", TargetID: "att-2",
		CreatedAt: now,
	}))

	entries, err := repo.List(ctx, audit.ListOptions{ActorID: "sup-2"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "aud-2", entries[0].ID)

	action := audit.ActionForceAdmit
	entries, err = repo.List(ctx, audit.ListOptions{Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "aud-1", entries[0].ID)

	entries, err = repo.List(ctx, audit.ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
