package dev

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeTemplate ChangeType = iota
	ChangeScript
	ChangeCSS
	ChangeAsset
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTemplate:
		return "template"
	case ChangeScript:
		return "script"
	case ChangeCSS:
		return "css"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch.
	Paths []string

	// Ignore patterns to skip (names, path segments or globs).
	Ignore []string

	// Debounce is the polling interval.
	Debounce time.Duration

	// TemplateExt classifies template changes. Default: ".rc".
	TemplateExt string

	// Skip reports paths that are produced by the build itself and must
	// not trigger a rebuild.
	Skip func(path string) bool
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	".DS_Store",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls the watched paths for modified, new and deleted files.
type Watcher struct {
	config     WatcherConfig
	onChange   func(Change)
	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if config.TemplateExt == "" {
		config.TemplateExt = ".rc"
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	// Record the current state without reporting it
	w.scan()

	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scan walks every watched path and returns the changes since the
// previous scan, updating the timestamp map.
func (w *Watcher) scan() []Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changes []Change
	seen := make(map[string]struct{}, len(w.timestamps))

	for _, root := range w.config.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.skip(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}

			seen[p] = struct{}{}
			modTime := info.ModTime()
			lastMod, exists := w.timestamps[p]
			if !exists || modTime.After(lastMod) {
				w.timestamps[p] = modTime
				changes = append(changes, Change{Path: p, Type: w.classify(p)})
			}
			return nil
		})
	}

	// Deleted files
	for p := range w.timestamps {
		if _, ok := seen[p]; ok {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) || w.skip(p) {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Type: w.classify(p)})
		}
	}

	return changes
}

// checkForChanges scans and reports the first change of each type.
func (w *Watcher) checkForChanges() {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	changes := w.scan()
	if callback == nil {
		return
	}

	reported := make(map[ChangeType]bool)
	for _, change := range changes {
		if !reported[change.Type] {
			reported[change.Type] = true
			callback(change)
		}
	}
}

func (w *Watcher) skip(p string) bool {
	if shouldIgnore(p, w.config.Ignore) {
		return true
	}
	return w.config.Skip != nil && w.config.Skip(p)
}

// classify determines the type of change based on file extension.
func (w *Watcher) classify(p string) ChangeType {
	ext := strings.ToLower(filepath.Ext(p))
	switch {
	case ext == w.config.TemplateExt:
		return ChangeTemplate
	case ext == ".js" || ext == ".mjs" || ext == ".cjs":
		return ChangeScript
	case ext == ".css":
		return ChangeCSS
	default:
		return ChangeAsset
	}
}

// shouldIgnore matches a path against ignore patterns. A pattern without
// glob characters matches a file name or any path segment; a glob without
// a separator matches the file name and one with a separator matches the
// whole slash-separated path.
func shouldIgnore(fullPath string, patterns []string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasSep := strings.ContainsAny(pattern, `/\`)
		if strings.ContainsAny(pattern, "*?[") {
			if hasSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasSegments(normalized, filepath.ToSlash(pattern)) {
			return true
		}
	}

	return false
}

// hasSegments reports whether the segments of pattern appear
// consecutively in p.
func hasSegments(p, pattern string) bool {
	pathParts := splitSegments(p)
	patternParts := splitSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitSegments(p string) []string {
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
