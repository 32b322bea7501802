package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Type    string              `json:"type"`
	Payload models.Notification `json:"payload"`
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHub_BroadcastsNotifications(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()
	defer hub.Close()

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "connected", readEnvelope(t, conn).Type)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	notif := models.Notification{
		ID:          "n1",
		EquipmentID: "EQ-1",
		Type:        models.NotificationMaintenanceOverdue,
		Severity:    models.NotificationSeverityError,
		Message:     `Equipo "Centrífuga" tiene el mantenimiento VENCIDO.`,
	}
	require.NoError(t, hub.Notify(context.Background(), notif))

	got := readEnvelope(t, conn)
	assert.Equal(t, "notification", got.Type)
	assert.Equal(t, "n1", got.Payload.ID)
	assert.Equal(t, models.NotificationMaintenanceOverdue, got.Payload.Type)
}

func TestHub_DropsDisconnectedClients(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()
	defer hub.Close()

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	readEnvelope(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_RejectsUnknownOrigins(t *testing.T) {
	hub := NewHub([]string{"https://lab.example"}, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()
	defer hub.Close()

	_, resp, err := dial(t, srv, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, http.Header{"Origin": {"https://lab.example"}})
	require.NoError(t, err)
	conn.Close()
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	hub.Close()
	assert.ErrorIs(t, hub.Notify(context.Background(), models.Notification{ID: "n"}), ErrHubClosed)
	assert.Equal(t, "WebSocketHub", hub.String())
}
