package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/llm"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/session"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory
	app := supportbot.NewAppWith(cfg, session.NewMemoryStore(), &llm.StaticGenerator{Reply: "Hi there"}, logr.Discard())
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL+"/", nil)

	resp, err := c.Chat(ctx, "s1", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", resp.Reply)
	assert.Equal(t, config.DefaultModelID, resp.Meta.ModelID)

	hist, err := c.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, hist.History, 2)
	assert.Equal(t, "user", hist.History[0].Role)
	assert.Equal(t, "Hello", hist.History[0].Content)
	assert.Equal(t, "assistant", hist.History[1].Role)

	require.NoError(t, c.Clear(ctx, "s1"))
	hist, err = c.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, hist.History)
}

func TestClient_ValidationError(t *testing.T) {
	c := New(newServer(t).URL, nil)

	_, err := c.Chat(context.Background(), "", "Hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))
	assert.Contains(t, err.Error(), "Missing sessionId or message")
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model generation failed"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Chat(context.Background(), "s1", "Hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRequestFailed))
	assert.Contains(t, err.Error(), "model generation failed")
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).History(context.Background(), "s1")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRequestFailed))
}
