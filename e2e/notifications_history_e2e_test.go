package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"realty_notify/internal/config"
	"realty_notify/internal/domain"
	"realty_notify/internal/model"
	"realty_notify/internal/view"
)

func TestSSEHistoryBackfill(t *testing.T) {
	env := newTestEnv(t, &config.Config{SSEHeartbeat: 5 * time.Second, InboxLimit: 10}, &noopPublisher{})
	env.seed(t, model.Broker{Email: "a@realty.io", Subscribed: true})

	older := postJSON(t, env.server.URL+"/notifications",
		createRequest(domain.RecipientBroker, "a@realty.io", "older", "2024-04-01T09:00:00Z"))
	defer func() { _ = older.Body.Close() }()
	require.Equal(t, http.StatusCreated, older.StatusCode)

	newer := postJSON(t, env.server.URL+"/notifications",
		createRequest(domain.RecipientAllBrokers, "", "newer", "2024-05-01T09:00:00Z"))
	defer func() { _ = newer.Body.Close() }()
	require.Equal(t, http.StatusCreated, newer.StatusCode)

	sseResp, err := http.Get(env.server.URL + "/sse/a@realty.io?limit=10")
	require.NoError(t, err)
	defer func() { _ = sseResp.Body.Close() }()
	require.Equal(t, http.StatusOK, sseResp.StatusCode)

	// Backlog replays oldest first.
	var got []view.NotificationView
	for i := 0; i < 2; i++ {
		data, err := readSSEData(sseResp.Body, 2*time.Second)
		require.NoError(t, err)
		var n view.NotificationView
		require.NoError(t, json.Unmarshal([]byte(data), &n))
		got = append(got, n)
	}
	require.Equal(t, "older", got[0].Message)
	require.Equal(t, "newer", got[1].Message)
	require.Equal(t, domain.LabelAllBrokers, got[1].Recipient)
}

func TestInboxReadLifecycle(t *testing.T) {
	env := newTestEnv(t, &config.Config{}, &noopPublisher{})
	env.seed(t,
		model.Broker{Email: "a@realty.io"},
		model.Broker{Email: "b@realty.io"},
	)

	personal := postJSON(t, env.server.URL+"/notifications",
		createRequest(domain.RecipientBroker, "a@realty.io", "contract ready", "2024-05-02"))
	defer func() { _ = personal.Body.Close() }()
	require.Equal(t, http.StatusCreated, personal.StatusCode)
	var created view.NotificationView
	require.NoError(t, json.NewDecoder(personal.Body).Decode(&created))

	broadcast := postJSON(t, env.server.URL+"/notifications",
		createRequest(domain.RecipientAllBrokers, "", "office closed", "2024-05-01"))
	defer func() { _ = broadcast.Body.Close() }()
	require.Equal(t, http.StatusCreated, broadcast.StatusCode)

	// b only sees the broadcast.
	inboxB := fetchInbox(t, env, "b@realty.io")
	require.Len(t, inboxB.Notifications, 1)
	require.Equal(t, "office closed", inboxB.Notifications[0].Message)

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodPatch, env.server.URL+"/notifications/"+created.ID+"/read", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	inboxA := fetchInbox(t, env, "a@realty.io")
	require.Len(t, inboxA.Notifications, 2)
	require.Equal(t, created.ID, inboxA.Notifications[0].ID)
	require.True(t, inboxA.Notifications[0].Read)
	require.Equal(t, 1, inboxA.Unread)

	req, err := http.NewRequest(http.MethodPatch, env.server.URL+"/notifications/nope/read", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type inboxBody struct {
	Unread        int                     `json:"unread"`
	Notifications []view.NotificationView `json:"notifications"`
}

func fetchInbox(t *testing.T, env *testEnv, broker string) inboxBody {
	t.Helper()
	resp, err := http.Get(env.server.URL + "/brokers/" + broker + "/notifications")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body inboxBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
