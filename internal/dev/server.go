package dev

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aldinh777/rc-template-sg/internal/build"
	"github.com/aldinh777/rc-template-sg/internal/config"
	"github.com/aldinh777/rc-template-sg/internal/errors"
)

// BuildFunc runs one full site build.
type BuildFunc func(ctx context.Context) (*build.Result, error)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Build rebuilds the whole site.
	Build BuildFunc

	// Gatherer is exposed at /metrics when set.
	Gatherer prometheus.Gatherer

	// NoWatch disables rebuilding on file changes.
	NoWatch bool

	Logger *slog.Logger

	// OnBuildComplete is called after every build.
	OnBuildComplete func(result *build.Result, err error)
}

// Server serves the output directory, rebuilds on source changes and
// reloads connected browsers.
type Server struct {
	config       *config.Config
	options      ServerOptions
	logger       *slog.Logger
	watcher      *Watcher
	reloadServer *ReloadServer
	router       chi.Router
	changeCh     chan Change
	httpServer   *http.Server
	mu           sync.Mutex
	buildMu      sync.Mutex
	running      bool
	cancel       context.CancelFunc
	hotReload    bool
	lastManifest map[string]string
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.Default().With("component", "dev")
	}

	s := &Server{
		config:    cfg,
		options:   options,
		logger:    logger,
		hotReload: cfg.HotReload(),
	}

	s.watcher = NewWatcher(WatcherConfig{
		Paths:       cfg.WatchPaths(),
		Ignore:      append(append([]string{}, DefaultIgnore...), cfg.Dev.Ignore...),
		Debounce:    cfg.DebounceInterval(),
		TemplateExt: cfg.TemplateExt,
		Skip:        s.isGenerated,
	})

	if s.hotReload {
		s.reloadServer = NewReloadServer(logger)
	}

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(s.logRequests)

	if s.reloadEnabled() {
		r.Get(ReloadPath, s.reloadServer.HandleWebSocket)
	}
	if s.options.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.options.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/*", s.serveOutput)
	r.Head("/*", s.serveOutput)

	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start claims the dev address, builds the site, starts watching and
// serves until ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.config.DevAddress())
	if err != nil {
		return errors.New("E250").WithDetail(err.Error()).Wrap(err)
	}

	// Background work ends with Stop even when the caller's ctx lives on.
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	// Initial build; a broken site is still served so the overlay shows.
	s.Rebuild(ctx)

	if !s.options.NoWatch {
		s.changeCh = make(chan Change, 64)
		s.watcher.OnChange(func(change Change) {
			select {
			case s.changeCh <- change:
			default:
			}
		})
		go s.watcher.Start(ctx)
		go s.processChanges(ctx)
	}

	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	s.logger.Info("dev server running", "url", s.config.DevURL(), "watch", !s.options.NoWatch)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		if err != nil {
			return errors.New("E250").Wrap(err)
		}
		return nil
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.watcher.Stop()
	if s.reloadServer != nil {
		s.reloadServer.Close()
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// Rebuild runs a full build. Builds never overlap.
func (s *Server) Rebuild(ctx context.Context) error {
	_, err := s.rebuild(ctx)
	return err
}

// rebuild runs a build and reports whether the output differs from the
// previous successful build.
func (s *Server) rebuild(ctx context.Context) (bool, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	result, err := s.options.Build(ctx)

	if s.options.OnBuildComplete != nil {
		s.options.OnBuildComplete(result, err)
	}

	if err != nil {
		s.logger.Error("build failed", "error", err)
		s.notifyError(overlayMessage(err))
		return false, err
	}

	s.logger.Info("built", "pages", len(result.Pages), "duration", time.Since(start).Round(time.Millisecond))
	s.clearReloadError()

	changed := !maps.Equal(s.lastManifest, result.Manifest)
	s.lastManifest = result.Manifest
	return changed, nil
}

// processChanges serializes file change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(ctx, changes)
		}
	}
}

// handleChanges rebuilds the site and tells browsers what to reload.
func (s *Server) handleChanges(ctx context.Context, changes []Change) {
	if len(changes) == 0 {
		return
	}

	cssOnly := true
	for _, change := range changes {
		s.logger.Info("changed", "file", s.relPath(change.Path), "type", change.Type)
		if change.Type != ChangeCSS {
			cssOnly = false
		}
	}

	changed, err := s.rebuild(ctx)
	if err != nil {
		return
	}
	if !changed {
		s.logger.Debug("output unchanged, skipping reload")
		return
	}
	if !s.reloadEnabled() {
		return
	}

	if cssOnly {
		s.reloadServer.NotifyCSS(s.relPath(changes[0].Path))
		return
	}
	s.reloadServer.NotifyReload()
	s.logger.Debug("reloaded browsers", "clients", s.reloadServer.ClientCount())
}

// serveOutput serves a file from the output directory. Extensionless
// paths fall back to "<path>.html" and "<path>/index.html".
func (s *Server) serveOutput(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resolve(r.URL.Path)
	if !ok {
		s.notFound(w)
		return
	}

	if filepath.Ext(name) != ".html" || !s.reloadEnabled() {
		http.ServeFile(w, r, name)
		return
	}

	data, err := os.ReadFile(name)
	if err != nil {
		s.notFound(w)
		return
	}
	body := injectScript(string(data), DevClientScript)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write([]byte(body))
}

// resolve maps a URL path to a file in the output directory.
func (s *Server) resolve(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	base := filepath.Join(s.config.OutputPath(), filepath.FromSlash(clean))

	var candidates []string
	if clean == "/" || strings.HasSuffix(urlPath, "/") {
		candidates = []string{filepath.Join(base, "index.html")}
	} else {
		candidates = []string{base, base + ".html", filepath.Join(base, "index.html")}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func (s *Server) notFound(w http.ResponseWriter) {
	script := ""
	if s.reloadEnabled() {
		script = DevClientScript
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Not Found</title></head>
<body style="font-family: system-ui; padding: 40px;">
<h1>404 Not Found</h1>
<p>No page was generated for this path. The page reloads after the next successful build.</p>
%s
</body>
</html>`, script)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// isGenerated reports files the build writes: compiled modules next to
// their templates and anything inside the output directory.
func (s *Server) isGenerated(p string) bool {
	if isWithinDir(p, s.config.OutputPath()) {
		return true
	}
	if !strings.HasSuffix(p, ".js") {
		return false
	}
	ext := s.config.TemplateExt
	if fileExists(strings.TrimSuffix(p, ".js") + ext) {
		return true
	}
	return strings.HasSuffix(p, ".html.js") && fileExists(strings.TrimSuffix(p, ".html.js")+ext)
}

func (s *Server) relPath(p string) string {
	if rel, err := filepath.Rel(s.config.Dir(), p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}

func (s *Server) reloadEnabled() bool {
	return s.hotReload && s.reloadServer != nil
}

func (s *Server) notifyError(errMsg string) {
	if !s.reloadEnabled() {
		return
	}
	s.reloadServer.NotifyError(errMsg)
}

func (s *Server) clearReloadError() {
	if !s.reloadEnabled() {
		return
	}
	s.reloadServer.ClearError()
}

// injectScript inserts script before </body>, or </html>, or at the end.
func injectScript(html, script string) string {
	if idx := strings.LastIndex(html, "</body>"); idx != -1 {
		return html[:idx] + script + html[idx:]
	}
	if idx := strings.LastIndex(html, "</html>"); idx != -1 {
		return html[:idx] + script + html[idx:]
	}
	return html + script
}

// overlayMessage renders a build error for the browser overlay.
func overlayMessage(err error) string {
	var rcErr *errors.RCError
	if !stderrors.As(err, &rcErr) {
		return err.Error()
	}
	msg := rcErr.FormatCompact()
	if rcErr.Wrapped != nil {
		msg += "\n\n" + rcErr.Wrapped.Error()
	}
	return msg
}

func isWithinDir(p, dir string) bool {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	if absPath == absDir {
		return true
	}
	return strings.HasPrefix(absPath, absDir+string(os.PathSeparator))
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
