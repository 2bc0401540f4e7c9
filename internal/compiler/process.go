package compiler

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aldinh777/rc-template-sg/internal/errors"
	"github.com/aldinh777/rc-template-sg/internal/nodeproc"
)

//go:embed compile.cjs
var compileScript string

// Process compiles templates by running the reactive-CML parser in a
// Node.js child process, one process per template.
type Process struct {
	// Command is the node binary. Defaults to "node".
	Command string

	// Dir is the working directory, usually the project root so the
	// parser package resolves from its node_modules.
	Dir string

	// Timeout bounds one compilation. Zero means no limit.
	Timeout time.Duration

	Logger *slog.Logger
}

// NewProcess creates a process compiler.
func NewProcess(command, dir string, timeout time.Duration) *Process {
	return &Process{
		Command: command,
		Dir:     dir,
		Timeout: timeout,
		Logger:  slog.Default().With("component", "compiler"),
	}
}

type request struct {
	Source  string         `json:"source"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	Mode            string `json:"mode"`
	TrimCML         bool   `json:"trimCML"`
	RelativeImports struct {
		Filename               string `json:"filename"`
		ForceJSImportExtension bool   `json:"forceJSImportExtension"`
	} `json:"relativeImports"`
}

// Compile runs the parser on source and returns the generated module.
func (p *Process) Compile(ctx context.Context, source []byte, opts Options) ([]byte, error) {
	req := request{Source: string(source)}
	req.Options.Mode = opts.Mode
	if req.Options.Mode == "" {
		req.Options.Mode = ModeRequire
	}
	req.Options.TrimCML = opts.TrimWhitespace
	req.Options.RelativeImports.Filename = opts.RelativeImports.Filename
	req.Options.RelativeImports.ForceJSImportExtension = opts.RelativeImports.ForceJSExtension

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	command := p.Command
	if command == "" {
		command = "node"
	}

	start := time.Now()
	out, err := nodeproc.Run(ctx, nodeproc.Spec{
		Command: command,
		Args:    []string{"-e", compileScript},
		Dir:     p.Dir,
		Stdin:   bytes.NewReader(payload),
		Timeout: p.Timeout,
	})
	if err != nil {
		var notFound *nodeproc.NotFoundError
		if stderrors.As(err, &notFound) {
			return nil, errors.New("E201").WithDetail(notFound.Error()).Wrap(err)
		}
		return nil, fmt.Errorf("compile %s: %w", opts.RelativeImports.Filename, err)
	}

	p.logger().Debug("compiled template",
		"file", opts.RelativeImports.Filename,
		"bytes", len(out),
		"duration", time.Since(start))

	return out, nil
}

func (p *Process) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
