package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/config"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
)

type webhook struct {
	mu       sync.Mutex
	messages []DiscordMessage
}

func (w *webhook) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var msg DiscordMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			return
		}
		w.mu.Lock()
		w.messages = append(w.messages, msg)
		w.mu.Unlock()
		rw.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failures(s Sender, n int) []Field {
	fields := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		fields = append(fields, s.BuildField(ActionFailure, BuildOptions{
			ID:     "1.1.1",
			Vritti: "kashika",
			Err:    errors.New("status 500"),
		}))
	}
	return fields
}

func TestDiscordSummary(t *testing.T) {
	hook := &webhook{}
	srv := hook.server(t)

	s := NewDiscordSender(logger.GetLogger("test"), config.NotificationsConfig{
		Service: config.NotificationService{Discord: srv.URL},
	})
	require.True(t, s.CanSend())
	assert.Equal(t, "discord", s.Name())

	require.NoError(t, s.Send(context.Background(), "Dump kashika", "Wrote 10 files", time.Second, failures(s, 3), true))

	require.Len(t, hook.messages, 1)
	require.Len(t, hook.messages[0].Embeds, 1)
	embed := hook.messages[0].Embeds[0]
	assert.Equal(t, "Dump kashika (Dry Run)", embed.Title)
	assert.Equal(t, int(RED), embed.Color)
	assert.Equal(t, "Progress: 0/3 | Took: 1s", embed.Footer.Text)
}

func TestDiscordDetailedBatches(t *testing.T) {
	hook := &webhook{}
	srv := hook.server(t)

	s := NewDiscordSender(logger.GetLogger("test"), config.NotificationsConfig{
		Detailed: true,
		Service:  config.NotificationService{Discord: srv.URL},
	})
	require.NoError(t, s.Send(context.Background(), "Fetch", "", time.Second, failures(s, 12), false))

	// 12 item embeds plus the summary, at most 10 per message
	require.Len(t, hook.messages, 2)
	assert.Len(t, hook.messages[0].Embeds, 10)
	assert.Len(t, hook.messages[1].Embeds, 3)

	first := hook.messages[0].Embeds[0]
	assert.Equal(t, "**1.1.1**", first.Description)
	assert.Contains(t, first.Fields, DiscordEmbedsField{Name: "Error", Value: "status 500"})
	assert.Equal(t, "Fetch - Summary", hook.messages[1].Embeds[2].Title)
}

func TestDiscordSkipEmptyRun(t *testing.T) {
	hook := &webhook{}
	srv := hook.server(t)

	s := NewDiscordSender(logger.GetLogger("test"), config.NotificationsConfig{
		SkipEmptyRun: true,
		Service:      config.NotificationService{Discord: srv.URL},
	})
	require.NoError(t, s.Send(context.Background(), "Prune", "", time.Second, nil, false))
	assert.Empty(t, hook.messages)

	assert.False(t, NewDiscordSender(logger.GetLogger("test"), config.NotificationsConfig{}).CanSend())
}

func TestBuildField(t *testing.T) {
	s := NewDiscordSender(logger.GetLogger("test"), config.NotificationsConfig{})
	f := s.BuildField(ActionPrune, BuildOptions{ID: "3.1.1", Vritti: "nyasa", Path: "/repo/nyasa/pada-3.1/3.1.1.md", Size: 2048})

	var inline []DiscordEmbedsField
	require.NoError(t, json.Unmarshal([]byte(f.Value), &inline))
	assert.Equal(t, "3.1.1", f.Name)
	assert.Equal(t, []DiscordEmbedsField{
		{Name: "Vritti", Value: "nyasa", Inline: true},
		{Name: "Action", Value: "Removed", Inline: true},
		{Name: "Size", Value: "2.0 KiB", Inline: true},
		{Name: "Path", Value: "/repo/nyasa/pada-3.1/3.1.1.md"},
	}, inline)
}
