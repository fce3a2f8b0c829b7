package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/tidytray/pkg/monitor/broadcaster"
	"github.com/jamesainslie/tidytray/pkg/tidytray/sysinfo"
)

type fakeQueries struct {
	err error
}

func (f fakeQueries) Disks(context.Context) ([]sysinfo.Disk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []sysinfo.Disk{{MountPoint: "C:\\", Name: "System", Total: 100, Free: 25}}, nil
}

func (f fakeQueries) Temperatures(context.Context) ([]sysinfo.Temperature, error) {
	return []sysinfo.Temperature{{Label: "CPU", Celsius: 51.5}}, nil
}

func (f fakeQueries) System(context.Context) (sysinfo.SystemInfo, error) {
	return sysinfo.SystemInfo{Platform: "windows", TotalMemoryKB: 2048, UsedMemoryKB: 1024}, nil
}

func newTestServer(t *testing.T, q Queries) (*Server, *broadcaster.Broadcaster) {
	t.Helper()
	b := broadcaster.New()
	srv, err := New(Config{Listen: "127.0.0.1:0"}, q, b)
	require.NoError(t, err)
	t.Cleanup(func() {
		b.Close()
		_ = srv.Close(context.Background())
	})
	return srv, b
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, fakeQueries{})

	rec := get(t, srv.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDisks(t *testing.T) {
	srv, _ := newTestServer(t, fakeQueries{})

	rec := get(t, srv.Handler(), "/api/disks")
	require.Equal(t, http.StatusOK, rec.Code)

	var disks []sysinfo.Disk
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &disks))
	require.Len(t, disks, 1)
	assert.Equal(t, "System", disks[0].Name)
	assert.Equal(t, uint64(25), disks[0].Free)
}

func TestDisks_Error(t *testing.T) {
	srv, _ := newTestServer(t, fakeQueries{err: errors.New("access denied")})

	rec := get(t, srv.Handler(), "/api/disks")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "access denied")
}

func TestTemperaturesAndSystem(t *testing.T) {
	srv, _ := newTestServer(t, fakeQueries{})

	rec := get(t, srv.Handler(), "/api/temperatures")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"label":"CPU","celsius":51.5}]`, rec.Body.String())

	rec = get(t, srv.Handler(), "/api/system")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"platform":"windows","total_memory_kb":2048,"used_memory_kb":1024}`, rec.Body.String())
}

func TestEvents(t *testing.T) {
	srv, b := newTestServer(t, fakeQueries{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events?name=memory-update", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	b.Notify(broadcaster.EventBinSize, 99)
	b.Notify(broadcaster.EventMemoryUpdate, 1050)

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, []string{"event:memory-update", "data:1050"}, lines)
}

func TestNew_BadAddress(t *testing.T) {
	_, err := New(Config{Listen: "not-an-address"}, fakeQueries{}, broadcaster.New())
	assert.Error(t, err)
}
