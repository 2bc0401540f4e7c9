package executor

import (
	"context"
	_ "embed"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aldinh777/rc-template-sg/internal/errors"
	"github.com/aldinh777/rc-template-sg/internal/nodeproc"
	"github.com/aldinh777/rc-template-sg/pkg/vdom"
)

//go:embed execute.mjs
var executeScript string

// ModuleEnv carries the module path to the executor script.
const ModuleEnv = "RCSG_MODULE"

// Process executes page modules in a Node.js child process. Each call
// starts a fresh process, so modules never share state between pages.
type Process struct {
	// Command is the node binary. Defaults to "node".
	Command string

	// Dir is the working directory for the child process.
	Dir string

	// Timeout bounds one execution. Zero means no limit.
	Timeout time.Duration

	Logger *slog.Logger
}

// NewProcess creates a process executor.
func NewProcess(command, dir string, timeout time.Duration) *Process {
	return &Process{
		Command: command,
		Dir:     dir,
		Timeout: timeout,
		Logger:  slog.Default().With("component", "executor"),
	}
}

// Execute imports the module, awaits its default export and decodes the
// returned render tree.
func (p *Process) Execute(ctx context.Context, modulePath string) (vdom.Tree, error) {
	abs, err := filepath.Abs(modulePath)
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
		Args:    []string{"--input-type=module", "-e", executeScript},
		Dir:     p.Dir,
		Env:     []string{ModuleEnv + "=" + abs},
		Timeout: p.Timeout,
	})
	if err != nil {
		var notFound *nodeproc.NotFoundError
		if stderrors.As(err, &notFound) {
			return nil, errors.New("E211").WithDetail(notFound.Error()).Wrap(err)
		}
		return nil, fmt.Errorf("execute %s: %w", modulePath, err)
	}

	tree, err := vdom.ParseTree(out)
	if err != nil {
		return nil, err
	}

	p.logger().Debug("executed page",
		"module", modulePath,
		"nodes", len(tree),
		"duration", time.Since(start))

	return tree, nil
}

func (p *Process) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
