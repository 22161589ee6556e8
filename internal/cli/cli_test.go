package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/llm"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/session"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := []string{}
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "history", "config", "chat", "ask"})
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supportbot.yaml")

	out, _, err := execute(t, context.Background(), "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), config.DefaultModelID)

	_, _, err = execute(t, context.Background(), "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, context.Background(), "config", "init", path, "--force")
	assert.NoError(t, err)

	t.Setenv("SUPPORTBOT_LLM_API_KEY", "super-secret")
	out, _, err = execute(t, context.Background(), "config", "show", "--config", path, "--store-driver", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "driver: memory")
	assert.Contains(t, out, "REDACTED")
	assert.NotContains(t, out, "super-secret")
}

func TestHistoryCommands(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "sessions.db")

	store, err := session.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "s1", session.Turn{Role: session.RoleUser, Content: "Hello"}))
	require.NoError(t, store.Append(ctx, "s1", session.Turn{Role: session.RoleAssistant, Content: "Hi there"}))
	require.NoError(t, store.Append(ctx, "s2", session.Turn{Role: session.RoleUser, Content: "Other"}))
	require.NoError(t, store.Close())

	storeFlags := []string{"--store-driver", "sqlite", "--store-dsn", dsn}

	out, _, err := execute(t, ctx, append([]string{"history", "list"}, storeFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "s2")

	out, _, err = execute(t, ctx, append([]string{"history", "show", "s1"}, storeFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "user> Hello")
	assert.Contains(t, out, "assistant> Hi there")

	out, _, err = execute(t, ctx, append([]string{"history", "show", "s1", "--json"}, storeFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"sessionId": "s1"`)

	out, _, err = execute(t, ctx, append([]string{"history", "clear", "s1"}, storeFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared session s1")

	out, _, err = execute(t, ctx, append([]string{"history", "show", "s1"}, storeFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "(no history)")
}

func TestHistory_BadDriver(t *testing.T) {
	_, _, err := execute(t, context.Background(), "history", "list", "--store-driver", "nope")
	assert.ErrorContains(t, err, "unsupported store.driver")
}

func TestAsk(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory
	app := supportbot.NewAppWith(cfg, session.NewMemoryStore(), &llm.StaticGenerator{Reply: "Check your DNS records."}, logr.Discard())
	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	out, errOut, err := execute(t, context.Background(), "ask", "--server", srv.URL, "--no-color", "why", "522?")
	require.NoError(t, err)
	assert.Contains(t, out, "assistant> Check your DNS records.")
	assert.Contains(t, errOut, "session: ")

	out, errOut, err = execute(t, context.Background(), "ask", "--server", srv.URL, "--no-color", "--session", "fixed", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "Check your DNS records.")
	assert.NotContains(t, errOut, "session: ")

	turns, err := app.Store.History(context.Background(), "fixed")
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestAsk_ServerDown(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, _, err := execute(t, context.Background(), "ask", "--server", url, "hi")
	assert.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Setenv("SUPPORTBOT_LOGGING_LEVEL", "error")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := execute(t, ctx, "serve",
			"--addr", "127.0.0.1:0",
			"--provider", "static",
			"--store-driver", "memory")
		done <- err
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServe_InvalidConfig(t *testing.T) {
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "")
	t.Setenv("CLOUDFLARE_API_TOKEN", "")
	_, _, err := execute(t, context.Background(), "serve", "--provider", "workersai", "--store-driver", "memory")
	assert.ErrorContains(t, err, "account_id")
}

func TestRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, 20, false)
	r.turn("assistant", "one two three four five six seven")
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Greater(t, len(lines), 1)
	assert.Contains(t, buf.String(), "assistant> one two")

	buf.Reset()
	r.turns(nil)
	assert.Equal(t, "(no history)\n", buf.String())
}

func TestMain(m *testing.M) {
	// Ignore SUPPORTBOT_* settings from the surrounding environment.
	for _, k := range []string{"SUPPORTBOT_LLM_PROVIDER", "SUPPORTBOT_STORE_DRIVER", "SUPPORTBOT_STORE_DSN"} {
		_ = os.Unsetenv(k)
	}
	os.Exit(m.Run())
}
