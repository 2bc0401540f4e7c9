package dev

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldinh777/rc-template-sg/internal/build"
	"github.com/aldinh777/rc-template-sg/internal/config"
	"github.com/aldinh777/rc-template-sg/internal/errors"
	"github.com/aldinh777/rc-template-sg/internal/metrics"
)

func newTestConfig(t *testing.T, hotReload bool) *config.Config {
	t.Helper()
	cfg := config.New(t.TempDir())
	cfg.Dev.HotReload = &hotReload

	files := map[string]string{
		"index.html":      "<html><body>home</body></html>",
		"about.html":      "<html><body>about</body></html>",
		"blog/index.html": "<html><body>blog</body></html>",
		"style.css":       "body{}",
		"fragment.html":   "<p>no body</p>",
	}
	for name, content := range files {
		path := filepath.Join(cfg.OutputPath(), filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return cfg
}

func okBuild(manifest map[string]string) BuildFunc {
	return func(ctx context.Context) (*build.Result, error) {
		return &build.Result{Manifest: manifest}, nil
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServeOutput(t *testing.T) {
	cfg := newTestConfig(t, true)
	s := NewServer(ServerOptions{Config: cfg, Build: okBuild(nil), NoWatch: true})
	h := s.Handler()

	tests := []struct {
		path     string
		status   int
		contains string
		injected bool
	}{
		{"/", http.StatusOK, "home", true},
		{"/index.html", http.StatusOK, "home", true},
		{"/about", http.StatusOK, "about", true},
		{"/about.html", http.StatusOK, "about", true},
		{"/blog", http.StatusOK, "blog", true},
		{"/blog/", http.StatusOK, "blog", true},
		{"/style.css", http.StatusOK, "body{}", false},
		{"/missing", http.StatusNotFound, "404 Not Found", true},
		{"/../../etc/passwd", http.StatusNotFound, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.Equal(t, tt.injected, strings.Contains(rec.Body.String(), ReloadPath))
		})
	}
}

func TestServeOutput_InjectsBeforeBody(t *testing.T) {
	cfg := newTestConfig(t, true)
	s := NewServer(ServerOptions{Config: cfg, Build: okBuild(nil), NoWatch: true})

	rec := get(t, s.Handler(), "/")
	body := rec.Body.String()

	assert.True(t, strings.HasPrefix(body, "<html><body>home"))
	assert.True(t, strings.HasSuffix(body, "</body></html>"))
	assert.Less(t, strings.Index(body, ReloadPath), strings.Index(body, "</body>"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, no-transform, must-revalidate, private, max-age=0", rec.Header().Get("Cache-Control"))
}

func TestServeOutput_HotReloadDisabled(t *testing.T) {
	cfg := newTestConfig(t, false)
	s := NewServer(ServerOptions{Config: cfg, Build: okBuild(nil), NoWatch: true})
	h := s.Handler()

	rec := get(t, h, "/about")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html><body>about</body></html>", rec.Body.String())

	rec = get(t, h, ReloadPath)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := newTestConfig(t, true)
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.Config{Registry: reg})
	m.PageRendered()

	s := NewServer(ServerOptions{Config: cfg, Build: okBuild(nil), NoWatch: true, Gatherer: reg})

	rec := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rcsg_pages_rendered_total 1")
}

func TestRebuild_ErrorAndRecovery(t *testing.T) {
	cfg := newTestConfig(t, true)
	fail := true
	var completed int
	s := NewServer(ServerOptions{
		Config:  cfg,
		NoWatch: true,
		Build: func(ctx context.Context) (*build.Result, error) {
			if fail {
				return nil, errors.New("E200").WithFile("index.rc").Wrap(stderrors.New("SyntaxError"))
			}
			return &build.Result{Manifest: map[string]string{"index.html": "a"}}, nil
		},
		OnBuildComplete: func(*build.Result, error) { completed++ },
	})

	err := s.Rebuild(context.Background())
	require.Error(t, err)
	assert.Equal(t, "index.rc: E200: Template compilation failed\n\nSyntaxError", s.reloadServer.lastError)

	fail = false
	require.NoError(t, s.Rebuild(context.Background()))
	assert.Empty(t, s.reloadServer.lastError)
	assert.Equal(t, 2, completed)
}

func TestRebuild_ReportsOutputChanges(t *testing.T) {
	cfg := newTestConfig(t, true)
	manifest := map[string]string{"index.html": "a"}
	s := NewServer(ServerOptions{
		Config:  cfg,
		NoWatch: true,
		Build: func(ctx context.Context) (*build.Result, error) {
			return &build.Result{Manifest: manifest}, nil
		},
	})

	changed, err := s.rebuild(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, _ = s.rebuild(context.Background())
	assert.False(t, changed)

	manifest = map[string]string{"index.html": "b"}
	changed, _ = s.rebuild(context.Background())
	assert.True(t, changed)
}

func TestRebuild_Serialized(t *testing.T) {
	cfg := newTestConfig(t, false)
	var inFlight, maxInFlight atomic.Int32
	s := NewServer(ServerOptions{
		Config:  cfg,
		NoWatch: true,
		Build: func(ctx context.Context) (*build.Result, error) {
			n := inFlight.Add(1)
			for {
				old := maxInFlight.Load()
				if n <= old || maxInFlight.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return &build.Result{}, nil
		},
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Rebuild(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func dialReload(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + ReloadPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return s.reloadServer.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ReloadMessage {
	t.Helper()
	var msg ReloadMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHandleChanges_Reload(t *testing.T) {
	cfg := newTestConfig(t, true)
	s := NewServer(ServerOptions{Config: cfg, NoWatch: true, Build: okBuild(map[string]string{"a": "1"})})
	conn := dialReload(t, s)

	s.handleChanges(context.Background(), []Change{{Path: filepath.Join(cfg.SourcePath(), "index.rc"), Type: ChangeTemplate}})

	assert.Equal(t, ReloadTypeClear, readMessage(t, conn).Type)
	assert.Equal(t, ReloadTypeFull, readMessage(t, conn).Type)
}

func TestHandleChanges_CSSOnly(t *testing.T) {
	cfg := newTestConfig(t, true)
	s := NewServer(ServerOptions{Config: cfg, NoWatch: true, Build: okBuild(map[string]string{"a": "1"})})
	conn := dialReload(t, s)

	s.handleChanges(context.Background(), []Change{{Path: filepath.Join(cfg.SourcePath(), "style.css"), Type: ChangeCSS}})

	assert.Equal(t, ReloadTypeClear, readMessage(t, conn).Type)
	msg := readMessage(t, conn)
	assert.Equal(t, ReloadTypeCSS, msg.Type)
	assert.Equal(t, "web/style.css", msg.File)
}

func TestReloadServer_ReplaysLastError(t *testing.T) {
	cfg := newTestConfig(t, true)
	s := NewServer(ServerOptions{Config: cfg, NoWatch: true, Build: okBuild(nil)})
	s.reloadServer.NotifyError("broken")

	conn := dialReload(t, s)

	msg := readMessage(t, conn)
	assert.Equal(t, ReloadTypeError, msg.Type)
	assert.Equal(t, "broken", msg.Error)
}

func TestStart_ServesAndStops(t *testing.T) {
	cfg := newTestConfig(t, false)
	cfg.Dev.Port = freePort(t)

	var builds atomic.Int32
	s := NewServer(ServerOptions{
		Config:  cfg,
		NoWatch: true,
		Build: func(ctx context.Context) (*build.Result, error) {
			builds.Add(1)
			return &build.Result{}, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(cfg.DevURL() + "/about")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, "<html><body>about</body></html>", body)
	assert.Equal(t, int32(1), builds.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStart_PortInUse(t *testing.T) {
	ln, err := netListen()
	require.NoError(t, err)
	defer ln.Close()

	cfg := newTestConfig(t, false)
	cfg.Dev.Host = "127.0.0.1"
	cfg.Dev.Port = ln.Addr().(*net.TCPAddr).Port

	for _, noWatch := range []bool{true, false} {
		var builds atomic.Int32
		s := NewServer(ServerOptions{
			Config:  cfg,
			NoWatch: noWatch,
			Build: func(ctx context.Context) (*build.Result, error) {
				builds.Add(1)
				return &build.Result{}, nil
			},
		})
		err = s.Start(context.Background())
		require.Error(t, err)
		assert.Equal(t, "E250", errors.Code(err))

		assert.Never(t, s.watcher.IsRunning, 100*time.Millisecond, 10*time.Millisecond,
			"watcher kept polling after a failed start (noWatch=%v)", noWatch)
		assert.Equal(t, int32(0), builds.Load())
	}
}

func TestStop_EndsWatcher(t *testing.T) {
	cfg := newTestConfig(t, false)
	cfg.Dev.Port = freePort(t)
	s := NewServer(ServerOptions{Config: cfg, Build: okBuild(nil)})

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()
	require.Eventually(t, s.watcher.IsRunning, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Eventually(t, func() bool { return !s.watcher.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestIsGenerated(t *testing.T) {
	cfg := config.New(t.TempDir())
	src := cfg.SourcePath()
	require.NoError(t, os.MkdirAll(src, 0755))
	for _, name := range []string{"Card.rc", "index.rc", "app.js", "legacy.html.js"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), nil, 0644))
	}
	s := NewServer(ServerOptions{Config: cfg, NoWatch: true, Build: okBuild(nil)})

	assert.True(t, s.isGenerated(filepath.Join(src, "Card.js")))
	assert.True(t, s.isGenerated(filepath.Join(src, "index.html.js")))
	assert.True(t, s.isGenerated(filepath.Join(cfg.OutputPath(), "index.html")))
	assert.True(t, s.isGenerated(cfg.OutputPath()))
	assert.False(t, s.isGenerated(filepath.Join(src, "app.js")))
	assert.False(t, s.isGenerated(filepath.Join(src, "legacy.html.js")))
	assert.False(t, s.isGenerated(filepath.Join(src, "index.rc")))
}

func TestInjectScript(t *testing.T) {
	tests := []struct {
		html string
		want string
	}{
		{"<html><body>x</body></html>", "<html><body>x<s></body></html>"},
		{"<html>x</html>", "<html>x<s></html>"},
		{"<p>x</p>", "<p>x</p><s>"},
		{"<body>a</body><body>b</body>", "<body>a</body><body>b<s></body>"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, injectScript(tt.html, "<s>"))
	}
}
