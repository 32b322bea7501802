package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
	"github.com/stanstork/maintenance-api/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	got  []models.Notification
	fail error
}

func (n *recordingNotifier) Notify(_ context.Context, notif models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, notif)
	return n.fail
}

func (n *recordingNotifier) received() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notification(nil), n.got...)
}

func TestService_InsertFansOutOnce(t *testing.T) {
	repo := memory.NewNotificationRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, zerolog.Nop(), notifier)

	notif := models.Notification{
		EquipmentID: "EQ-1",
		Type:        models.NotificationMaintenanceOverdue,
		Severity:    models.NotificationSeverityError,
		Message:     `Equipo "Centrífuga" tiene el mantenimiento VENCIDO.`,
	}

	created, err := svc.Insert(context.Background(), notif)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = svc.Insert(context.Background(), notif)
	assert.ErrorIs(t, err, repository.ErrDuplicateUnread)

	require.Len(t, notifier.received(), 1)
	assert.Equal(t, created.ID, notifier.received()[0].ID)
}

func TestService_NotifierFailureDoesNotFailInsert(t *testing.T) {
	repo := memory.NewNotificationRepository()
	notifier := &recordingNotifier{fail: errors.New("socket closed")}
	svc := NewService(repo, zerolog.Nop(), notifier, nil)

	_, err := svc.Insert(context.Background(), models.Notification{
		EquipmentID: "EQ-1",
		Type:        models.NotificationMaintenanceDue,
		Severity:    models.NotificationSeverityWarning,
	})
	require.NoError(t, err)
	assert.Len(t, repo.All(), 1)
}

func TestService_NotifyNewIssue(t *testing.T) {
	cases := []struct {
		name     string
		severity models.IssueSeverity
		want     models.NotificationSeverity
	}{
		{"minor", models.IssueSeverityMinor, models.NotificationSeverityWarning},
		{"moderate", models.IssueSeverityModerate, models.NotificationSeverityWarning},
		{"critical", models.IssueSeverityCritical, models.NotificationSeverityError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := memory.NewNotificationRepository()
			svc := NewService(repo, zerolog.Nop())

			issue := models.IssueReport{ID: "I-1", EquipmentID: "EQ-1", Severity: tc.severity}
			require.NoError(t, svc.NotifyNewIssue(context.Background(), issue, "Centrífuga"))

			all := repo.All()
			require.Len(t, all, 1)
			assert.Equal(t, models.NotificationNewIssue, all[0].Type)
			assert.Equal(t, tc.want, all[0].Severity)
			assert.Equal(t, `Nueva incidencia reportada para el equipo "Centrífuga".`, all[0].Message)
			assert.Equal(t, "/equipment/EQ-1", all[0].Link)
		})
	}
}

func TestService_NewIssueNotificationsAccumulate(t *testing.T) {
	repo := memory.NewNotificationRepository()
	svc := NewService(repo, zerolog.Nop())
	issue := models.IssueReport{EquipmentID: "EQ-1", Severity: models.IssueSeverityMinor}

	require.NoError(t, svc.NotifyNewIssue(context.Background(), issue, ""))
	require.NoError(t, svc.NotifyNewIssue(context.Background(), issue, ""))

	unread, err := svc.ListUnread(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Contains(t, unread[0].Message, `"EQ-1"`)
}

func TestService_PublishValidates(t *testing.T) {
	svc := NewService(memory.NewNotificationRepository(), zerolog.Nop())

	_, err := svc.Publish(context.Background(), Event{EquipmentID: "EQ-1"})
	assert.Error(t, err)

	_, err = svc.Publish(context.Background(), Event{Type: models.NotificationNewIssue, EquipmentID: "  "})
	assert.Error(t, err)

	created, err := svc.Publish(context.Background(), Event{Type: models.NotificationNewIssue, EquipmentID: "EQ-9"})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSeverityInfo, created.Severity)
}

func TestService_MarkRead(t *testing.T) {
	repo := memory.NewNotificationRepository()
	svc := NewService(repo, zerolog.Nop())

	created, err := svc.Publish(context.Background(), Event{Type: models.NotificationNewIssue, EquipmentID: "EQ-1"})
	require.NoError(t, err)

	read, err := svc.MarkRead(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err := svc.ListUnread(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
