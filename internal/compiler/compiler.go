// Package compiler turns reactive-CML templates into JavaScript modules.
//
// The template language itself is owned by the external
// @aldinh777/reactive-cml parser; this package only drives it and knows
// the naming convention that decides whether a template is a component
// or a page.
package compiler

import (
	"context"
	"path/filepath"
	"strings"
)

// Module formats understood by the parser.
const (
	ModeRequire = "require"
	ModeImport  = "import"
)

// Options are passed through to the template parser.
type Options struct {
	// Mode is the module format of the generated code.
	Mode string

	// TrimWhitespace trims whitespace between template nodes.
	TrimWhitespace bool

	// RelativeImports controls rewriting of relative import specifiers.
	RelativeImports RelativeImports
}

// RelativeImports configures relative import resolution.
type RelativeImports struct {
	// Filename is the absolute path of the template being compiled.
	Filename string

	// ForceJSExtension appends ".js" to extensionless relative imports.
	ForceJSExtension bool
}

// DefaultOptions returns the options used for every template build.
func DefaultOptions(filename string) Options {
	return Options{
		Mode: ModeRequire,
		RelativeImports: RelativeImports{
			Filename:         filename,
			ForceJSExtension: true,
		},
	}
}

// Compiler compiles template source into module source.
type Compiler interface {
	Compile(ctx context.Context, source []byte, opts Options) ([]byte, error)
}

// Func adapts a plain function to the Compiler interface.
type Func func(ctx context.Context, source []byte, opts Options) ([]byte, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, source []byte, opts Options) ([]byte, error) {
	return f(ctx, source, opts)
}

// IsComponent reports whether the template at path is a component.
// Components are templates whose base name starts with an ASCII
// upper-case letter.
func IsComponent(path string) bool {
	base := filepath.Base(path)
	return base != "" && base[0] >= 'A' && base[0] <= 'Z'
}

// ModulePath returns where the compiled module for a template is written:
// "Card.rc" becomes "Card.js" and "index.rc" becomes "index.html.js".
func ModulePath(templatePath string) string {
	stem := strings.TrimSuffix(templatePath, filepath.Ext(templatePath))
	if IsComponent(templatePath) {
		return stem + ".js"
	}
	return stem + ".html.js"
}
