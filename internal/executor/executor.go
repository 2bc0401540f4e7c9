// Package executor loads compiled page modules and returns their render
// trees.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/aldinh777/rc-template-sg/pkg/vdom"
)

// Executor runs a compiled page module and returns the tree produced by
// its default export.
type Executor interface {
	Execute(ctx context.Context, modulePath string) (vdom.Tree, error)
}

// Func adapts a plain function to the Executor interface.
type Func func(ctx context.Context, modulePath string) (vdom.Tree, error)

// Execute calls f.
func (f Func) Execute(ctx context.Context, modulePath string) (vdom.Tree, error) {
	return f(ctx, modulePath)
}

// Registry executes in-memory components registered under a module path
// or page name instead of loading anything from disk.
//
// The CLI always runs pages through Process. Registry is the in-process
// Executor for tests of packages that take an Executor, such as build,
// where it stands in for node with vdom-authored pages.
type Registry struct {
	mu         sync.RWMutex
	components map[string]vdom.Component

	// Fallback handles module paths with no registered component.
	// When nil, such paths are an error.
	Fallback Executor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]vdom.Component)}
}

// Register associates a component with a module path ("web/index.html.js")
// or a page name ("index").
func (r *Registry) Register(name string, c vdom.Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[filepath.Clean(name)] = c
}

// Lookup returns the component for modulePath, trying the exact path
// first and then the page name derived from its base name.
func (r *Registry) Lookup(modulePath string) (vdom.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.components[filepath.Clean(modulePath)]; ok {
		return c, true
	}
	c, ok := r.components[PageName(modulePath)]
	return c, ok
}

// Execute renders the component registered for modulePath.
func (r *Registry) Execute(ctx context.Context, modulePath string) (vdom.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := r.Lookup(modulePath)
	if !ok {
		if r.Fallback != nil {
			return r.Fallback.Execute(ctx, modulePath)
		}
		return nil, fmt.Errorf("no component registered for %s", modulePath)
	}
	return c.Render()
}

// PageName returns the page name of a module path: "web/blog/post.html.js"
// becomes "post".
func PageName(modulePath string) string {
	base := filepath.Base(modulePath)
	for _, ext := range []string{".html.js", ".js"} {
		if len(base) > len(ext) && base[len(base)-len(ext):] == ext {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}
