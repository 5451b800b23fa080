package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegram records sendMessage payloads and serves queued getUpdates bodies.
type fakeTelegram struct {
	mu       sync.Mutex
	sent     []map[string]string
	failures int // sendMessage calls to reject before accepting
	updates  []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false}`))
			return
		}
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		f.sent = append(f.sent, payload)
		w.Write([]byte(`{"ok":true}`))
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		body := `{"ok":true,"result":[]}`
		if len(f.updates) > 0 {
			body, f.updates = f.updates[0], f.updates[1:]
		}
		w.Write([]byte(body))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeTelegram) Sent() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	tn.Client = srv.Client()
	tn.RetryBase = time.Millisecond
	return tn
}

func TestSend(t *testing.T) {
	fake := &fakeTelegram{}
	tn := newTestNotifier(t, fake)

	require.NoError(t, tn.Send(context.Background(), "<b>hi</b>"))
	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "42", sent[0]["chat_id"])
	assert.Equal(t, "<b>hi</b>", sent[0]["text"])
	assert.Equal(t, "HTML", sent[0]["parse_mode"])
}

func TestSend_APIError(t *testing.T) {
	fake := &fakeTelegram{failures: 1}
	tn := newTestNotifier(t, fake)
	err := tn.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSendWithRetry(t *testing.T) {
	fake := &fakeTelegram{failures: 2}
	tn := newTestNotifier(t, fake)
	require.NoError(t, tn.SendWithRetry(context.Background(), "digest", 3))
	assert.Len(t, fake.Sent(), 1)

	fake = &fakeTelegram{failures: 10}
	tn = newTestNotifier(t, fake)
	err := tn.SendWithRetry(context.Background(), "digest", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	fake := &fakeTelegram{failures: 10}
	tn := newTestNotifier(t, fake)
	tn.RetryBase = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := tn.SendWithRetry(ctx, "digest", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollOnce(t *testing.T) {
	fake := &fakeTelegram{updates: []string{`{"ok":true,"result":[
		{"update_id":7,"message":{"text":"/help","chat":{"id":42}}},
		{"update_id":8,"message":{"text":"/watchlist","chat":{"id":99}}},
		{"update_id":9}
	]}`}}
	tn := newTestNotifier(t, fake)

	var got []string
	handler := func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	}
	next, err := tn.pollOnce(context.Background(), tn.Client, 0, 0, handler)
	require.NoError(t, err)
	assert.Equal(t, 10, next)
	assert.Equal(t, []string{"/help"}, got, "commands from other chats are ignored")

	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "reply to /help", sent[0]["text"])

	next, err = tn.pollOnce(context.Background(), tn.Client, next, 0, handler)
	require.NoError(t, err)
	assert.Equal(t, 10, next)
}

func TestStartPolling_StopsOnCancel(t *testing.T) {
	fake := &fakeTelegram{}
	tn := newTestNotifier(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(context.Context, string) string { return "" })
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("polling did not stop")
	}
}
