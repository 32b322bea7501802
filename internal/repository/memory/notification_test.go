package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overdue(id, equipmentID string) models.Notification {
	return models.Notification{
		ID:          id,
		EquipmentID: equipmentID,
		Type:        models.NotificationMaintenanceOverdue,
		Severity:    models.NotificationSeverityError,
		Message:     "vencido",
	}
}

func TestNotificationRepository_CreateUniqueRejectsSecondUnread(t *testing.T) {
	repo := NewNotificationRepository()
	ctx := context.Background()

	_, err := repo.CreateUnique(ctx, overdue("n1", "EQ-1"))
	require.NoError(t, err)

	_, err = repo.CreateUnique(ctx, overdue("n2", "EQ-1"))
	assert.ErrorIs(t, err, repository.ErrDuplicateUnread)

	// Other equipment and other types are independent.
	_, err = repo.CreateUnique(ctx, overdue("n3", "EQ-2"))
	require.NoError(t, err)
	due := overdue("n4", "EQ-1")
	due.Type = models.NotificationMaintenanceDue
	_, err = repo.CreateUnique(ctx, due)
	require.NoError(t, err)

	assert.Len(t, repo.All(), 3)
}

func TestNotificationRepository_MarkReadReleasesSlot(t *testing.T) {
	repo := NewNotificationRepository()
	ctx := context.Background()

	_, err := repo.CreateUnique(ctx, overdue("n1", "EQ-1"))
	require.NoError(t, err)

	read, err := repo.MarkRead(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	_, err = repo.CreateUnique(ctx, overdue("n2", "EQ-1"))
	require.NoError(t, err)

	found, err := repo.FindUnreadByEquipmentAndType(ctx, "EQ-1", models.NotificationMaintenanceOverdue)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "n2", found.ID)
}

func TestNotificationRepository_MarkReadIsIdempotent(t *testing.T) {
	repo := NewNotificationRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, overdue("n1", "EQ-1"))
	require.NoError(t, err)

	first, err := repo.MarkRead(ctx, "n1")
	require.NoError(t, err)
	second, err := repo.MarkRead(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, first.ReadAt, second.ReadAt)

	_, err = repo.MarkRead(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNotificationRepository_NewIssueIsNotDeduplicated(t *testing.T) {
	repo := NewNotificationRepository()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := repo.Create(ctx, models.Notification{
			ID:          id,
			EquipmentID: "EQ-1",
			Type:        models.NotificationNewIssue,
			Severity:    models.NotificationSeverityWarning,
		})
		require.NoError(t, err)
	}
	assert.Len(t, repo.All(), 2)
}

func TestNotificationRepository_ListUnreadNewestFirst(t *testing.T) {
	repo := NewNotificationRepository()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	for i, eq := range []string{"EQ-1", "EQ-2", "EQ-3"} {
		n := overdue(eq, eq)
		n.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := repo.Create(ctx, n)
		require.NoError(t, err)
	}
	_, err := repo.MarkRead(ctx, "EQ-3")
	require.NoError(t, err)

	unread, err := repo.ListUnread(ctx, 5)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "EQ-2", unread[0].ID)
	assert.Equal(t, "EQ-1", unread[1].ID)

	limited, err := repo.ListUnread(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
