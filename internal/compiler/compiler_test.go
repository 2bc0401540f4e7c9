package compiler

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/aldinh777/rc-template-sg/internal/errors"
	"github.com/aldinh777/rc-template-sg/internal/nodeproc"
)

func TestIsComponent(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Card.rc", true},
		{"web/blog/Header.rc", true},
		{"index.rc", false},
		{"web/Blog/index.rc", false},
		{"_partial.rc", false},
		{"9lives.rc", false},
		{"Ärger.rc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComponent(tt.path))
		})
	}
}

func TestModulePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"web/Card.rc", "web/Card.js"},
		{"web/index.rc", "web/index.html.js"},
		{"web/blog/post.rc", "web/blog/post.html.js"},
		{"/abs/web/Nav.rc", "/abs/web/Nav.js"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), ModulePath(filepath.FromSlash(tt.in)))
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions("/site/web/index.rc")

	assert.Equal(t, ModeRequire, opts.Mode)
	assert.False(t, opts.TrimWhitespace)
	assert.True(t, opts.RelativeImports.ForceJSExtension)
	assert.Equal(t, "/site/web/index.rc", opts.RelativeImports.Filename)
}

func TestFuncAdapter(t *testing.T) {
	var seen Options
	c := Func(func(ctx context.Context, source []byte, opts Options) ([]byte, error) {
		seen = opts
		return []byte("module.exports = " + strings.ToUpper(string(source))), nil
	})

	out, err := c.Compile(context.Background(), []byte("x"), DefaultOptions("/a.rc"))
	require.NoError(t, err)
	assert.Equal(t, "module.exports = X", string(out))
	assert.Equal(t, "/a.rc", seen.RelativeImports.Filename)
}

func TestProcessMissingCommand(t *testing.T) {
	p := NewProcess("rcsg-definitely-not-a-real-binary", t.TempDir(), 0)

	_, err := p.Compile(context.Background(), []byte("<div/>"), DefaultOptions("/a.rc"))
	require.Error(t, err)
	assert.Equal(t, "E201", errors.Code(err))
}

func TestProcessReportsStderr(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	// sh treats the JavaScript shim as a script path and fails.
	p := NewProcess("sh", t.TempDir(), 0)

	_, err := p.Compile(context.Background(), []byte("<div/>"), DefaultOptions("/a.rc"))
	require.Error(t, err)
	assert.Empty(t, errors.Code(err))

	var exitErr *nodeproc.ExitError
	require.True(t, stderrors.As(err, &exitErr))
	assert.NotEmpty(t, exitErr.Stderr)
	assert.Contains(t, err.Error(), "compile /a.rc")
}

func TestEmbeddedScript(t *testing.T) {
	assert.Contains(t, compileScript, "@aldinh777/reactive-cml/parser")
	assert.Contains(t, compileScript, "parseReactiveCML")
}

// stubParser stands in for the reactive-CML parser package. It echoes
// its input as a CommonJS module exporting the request.
const stubParser = `exports.parseReactiveCML = (source, options) => {
    if (source === 'boom') {
        throw new Error('unexpected token <boom>');
    }
    return 'module.exports = ' + JSON.stringify({ source, options }) + ';';
};
`

func requireNode(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not available")
	}
}

func writeStubParser(t *testing.T, dir string) {
	t.Helper()
	pkg := filepath.Join(dir, "node_modules", "@aldinh777", "reactive-cml")
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "parser.js"), []byte(stubParser), 0o644))
}

func TestProcessCompile_Node(t *testing.T) {
	requireNode(t)
	dir := t.TempDir()
	writeStubParser(t, dir)

	p := NewProcess("node", dir, 0)
	opts := Options{
		Mode:           ModeImport,
		TrimWhitespace: true,
		RelativeImports: RelativeImports{
			Filename:         "/site/web/index.rc",
			ForceJSExtension: true,
		},
	}

	out, err := p.Compile(context.Background(), []byte("<p>héllo \"x\"</p>"), opts)
	require.NoError(t, err)

	module := string(out)
	require.True(t, strings.HasPrefix(module, "module.exports = "), module)
	body := strings.TrimSuffix(strings.TrimPrefix(module, "module.exports = "), ";")
	require.True(t, gjson.Valid(body), body)

	assert.Equal(t, "<p>héllo \"x\"</p>", gjson.Get(body, "source").String())
	assert.Equal(t, "import", gjson.Get(body, "options.mode").String())
	assert.True(t, gjson.Get(body, "options.trimCML").Bool())
	assert.Equal(t, "/site/web/index.rc", gjson.Get(body, "options.relativeImports.filename").String())
	assert.True(t, gjson.Get(body, "options.relativeImports.forceJSImportExtension").Bool())
}

func TestProcessCompile_NodeDefaultsMode(t *testing.T) {
	requireNode(t)
	dir := t.TempDir()
	writeStubParser(t, dir)

	out, err := NewProcess("", dir, 0).Compile(context.Background(), []byte("x"), Options{})
	require.NoError(t, err)

	body := strings.TrimSuffix(strings.TrimPrefix(string(out), "module.exports = "), ";")
	assert.Equal(t, ModeRequire, gjson.Get(body, "options.mode").String())
	assert.False(t, gjson.Get(body, "options.trimCML").Bool())
}

func TestProcessCompile_NodeParserError(t *testing.T) {
	requireNode(t)
	dir := t.TempDir()
	writeStubParser(t, dir)

	_, err := NewProcess("node", dir, 0).Compile(context.Background(), []byte("boom"), DefaultOptions("/site/web/bad.rc"))
	require.Error(t, err)

	var exitErr *nodeproc.ExitError
	require.True(t, stderrors.As(err, &exitErr))
	assert.Contains(t, exitErr.Stderr, "unexpected token <boom>")
	assert.Contains(t, err.Error(), "compile /site/web/bad.rc")
}

func TestProcessCompile_NodeParserMissing(t *testing.T) {
	requireNode(t)

	_, err := NewProcess("node", t.TempDir(), 0).Compile(context.Background(), []byte("x"), DefaultOptions("/a.rc"))
	require.Error(t, err)

	var exitErr *nodeproc.ExitError
	require.True(t, stderrors.As(err, &exitErr))
	assert.Contains(t, exitErr.Stderr, "@aldinh777/reactive-cml/parser")
}
