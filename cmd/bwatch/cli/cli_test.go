package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davarch/bwatch/internal/infrastructure/notify_libnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bwatch.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

const twoBuilds = `{"builds": [
	{"tag": "bamboo", "serverUrl": "http://bamboo", "plan": "PRJ-PLAN", "token": "secret", "groups": ["core"]},
	{"tag": "travis", "serverUrl": "http://travis", "repository": "me/lib", "branch": "main"}
]}`

func TestList_Table(t *testing.T) {
	path := writeConfig(t, twoBuilds)

	out, err := execute(t, "list", "--config", path, "--group", "", "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "PRJ-PLAN")
	assert.Contains(t, out, "me/lib/main")
}

func TestList_JSONMasksTokens(t *testing.T) {
	path := writeConfig(t, twoBuilds)

	out, err := execute(t, "list", "--config", path, "--group", "core", "--json")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret")

	var builds []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &builds))
	require.Len(t, builds, 1)
	assert.Equal(t, "bamboo", builds[0]["tag"])
	assert.Equal(t, "***", builds[0]["token"])
}

func TestList_UnknownGroup(t *testing.T) {
	path := writeConfig(t, twoBuilds)

	_, err := execute(t, "list", "--config", path, "--group", "nope", "--json=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no builds in group "nope"`)
}

func TestStatus_PrintsReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"size":1,"result":[{"buildResultKey":"PRJ-PLAN-7",
			"lifeCycleState":"Finished","buildState":"Successful",
			"buildCompletedTime":"2025-11-07T09:19:46.000+01:00","buildDuration":61000}]}}`))
	}))
	defer srv.Close()

	path := writeConfig(t, fmt.Sprintf(`{"builds": [
		{"tag": "bamboo", "serverUrl": %q, "plan": "PRJ-PLAN"},
		{"tag": "jenkins", "serverUrl": "http://127.0.0.1:1", "plan": "job", "branch": "main"}
	]}`, srv.URL))

	out, err := execute(t, "status", "--config", path, "--group", "", "--no-links")
	require.NoError(t, err)
	assert.Contains(t, out, "PRJ-PLAN")
	assert.Contains(t, out, srv.URL+"/browse/PRJ-PLAN-7")
	assert.Contains(t, out, "1 minute 1 second")
	assert.Contains(t, out, "job/main")
}

func TestWatchAndReload_DebouncedAndStopsWithContext(t *testing.T) {
	path := writeConfig(t, twoBuilds)
	reloads := make(chan struct{}, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchAndReload(ctx, path, zap.NewNop(), func() { reloads <- struct{}{} })

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(twoBuilds), 0o600))
	}
	select {
	case <-reloads:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after config write")
	}
	select {
	case <-reloads:
		t.Fatal("burst of writes reloaded more than once")
	case <-time.After(2 * reloadDebounce):
	}

	cancel()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(twoBuilds), 0o600))
	select {
	case <-reloads:
		t.Fatal("reload after context was cancelled")
	case <-time.After(2 * reloadDebounce):
	}
}

func TestNotifier(t *testing.T) {
	t.Cleanup(func() { notify, debug = false, false })

	notify = false
	assert.Nil(t, notifier())

	notify = true
	_, ok := notifier().(*notify_libnotify.Notifier)
	assert.True(t, ok)

	debug = true
	_, ok = notifier().(*notify_libnotify.Notifier)
	assert.True(t, ok)
}
