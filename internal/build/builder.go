package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aldinh777/rc-template-sg/internal/compiler"
	"github.com/aldinh777/rc-template-sg/internal/config"
	"github.com/aldinh777/rc-template-sg/internal/errors"
	"github.com/aldinh777/rc-template-sg/internal/executor"
	"github.com/aldinh777/rc-template-sg/internal/metrics"
	"github.com/aldinh777/rc-template-sg/internal/walk"
	"github.com/aldinh777/rc-template-sg/pkg/render"
	"github.com/aldinh777/rc-template-sg/pkg/vdom"
)

const tracerName = "github.com/aldinh777/rc-template-sg/internal/build"

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Output is the absolute path of the output directory.
	Output string

	// Modules are the compiled modules written next to their templates.
	// They no longer exist once Build returns unless intermediates are kept.
	Modules []string

	// Pages are the rendered HTML pages, relative to Output.
	Pages []string

	// Assets are the copied static files, relative to Output.
	Assets []string

	// Bytes is the total size of everything written to Output.
	Bytes int64

	// Manifest maps every output file to the SHA-256 of its contents.
	Manifest map[string]string
}

// Options configures the builder.
type Options struct {
	// Compiler compiles templates. Default: a node process compiler.
	Compiler compiler.Compiler

	// Executor runs page modules. Default: a node process executor.
	Executor executor.Executor

	// Renderer serializes render trees. Default: built from the config.
	Renderer *render.Renderer

	// KeepIntermediates leaves compiled modules in the source tree.
	KeepIntermediates bool

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder runs full site builds. A Builder is not safe for concurrent
// use; callers serialize builds.
type Builder struct {
	config  *config.Config
	options Options
	logger  *slog.Logger
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	// Apply config defaults to options
	if options.Compiler == nil {
		options.Compiler = compiler.NewProcess(cfg.Compiler.Command, cfg.Dir(), cfg.CompileTimeout())
	}
	if options.Executor == nil {
		options.Executor = executor.NewProcess(cfg.Executor.Command, cfg.Dir(), cfg.ExecuteTimeout())
	}
	if options.Renderer == nil {
		options.Renderer = render.NewRenderer(render.RendererConfig{
			EscapeAttributes: cfg.Render.EscapeAttributes,
		})
	}
	if !options.KeepIntermediates && cfg.KeepIntermediates {
		options.KeepIntermediates = true
	}
	if options.Tracer == nil {
		options.Tracer = otel.Tracer(tracerName)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default().With("component", "build")
	}

	return &Builder{
		config:  cfg,
		options: options,
		logger:  logger,
	}
}

// Build compiles every template, renders every page and copies every
// other file of the source directory into a freshly emptied output
// directory. The first failure aborts the build; whatever was written
// before it stays in place.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	srcDir := b.config.SourcePath()
	outDir := b.config.OutputPath()

	ctx, span := b.options.Tracer.Start(ctx, "rcsg.build",
		trace.WithAttributes(
			attribute.String("rcsg.source", srcDir),
			attribute.String("rcsg.output", outDir),
		))
	defer span.End()

	result := &Result{
		Output:   outDir,
		Manifest: make(map[string]string),
	}

	err := b.build(ctx, srcDir, outDir, result)
	result.Duration = time.Since(start)
	b.options.Metrics.BuildFinished(result.Duration, stageOf(err), err == nil)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.logger.Error("build failed", "error", err, "duration", result.Duration)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("rcsg.pages", len(result.Pages)),
		attribute.Int("rcsg.assets", len(result.Assets)),
	)
	span.SetStatus(codes.Ok, "")
	b.logger.Info("build complete",
		"pages", len(result.Pages),
		"assets", len(result.Assets),
		"bytes", result.Bytes,
		"duration", result.Duration)

	return result, nil
}

func (b *Builder) build(ctx context.Context, srcDir, outDir string, result *Result) error {
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return errors.New("E141").WithFile(srcDir)
	}

	if err := b.checkOutput(outDir); err != nil {
		return err
	}

	// Clean output directory
	b.progress("Cleaning output directory...")
	if err := os.RemoveAll(outDir); err != nil {
		return errors.New("E230").WithFile(outDir).Wrap(err)
	}

	// Compiled modules only live for the duration of the build.
	defer func() {
		if b.options.KeepIntermediates {
			return
		}
		b.progress("Removing intermediate modules...")
		b.removeModules(result.Modules)
	}()

	b.progress("Compiling templates...")
	if err := b.compileAll(ctx, srcDir, outDir, result); err != nil {
		return err
	}

	b.progress("Rendering pages and copying assets...")
	return b.assemble(ctx, srcDir, outDir, result)
}

// compileAll compiles every template under srcDir into a module next
// to it.
func (b *Builder) compileAll(ctx context.Context, srcDir, outDir string, result *Result) error {
	return walk.Files(srcDir, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if within(outDir, path) || !b.isTemplate(path) {
			return nil
		}
		return b.compileTemplate(ctx, srcDir, path, result)
	})
}

func (b *Builder) compileTemplate(ctx context.Context, srcDir, path string, result *Result) error {
	rel := walk.Rel(srcDir, path)

	ctx, span := b.options.Tracer.Start(ctx, "rcsg.compile",
		trace.WithAttributes(attribute.String("rcsg.file", rel)))
	defer span.End()

	source, err := os.ReadFile(path)
	if err != nil {
		return b.fail(span, errors.New("E200").WithFile(rel).Wrap(err))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return b.fail(span, errors.New("E200").WithFile(rel).Wrap(err))
	}

	opts := compiler.Options{
		Mode:           b.config.Compiler.Mode,
		TrimWhitespace: b.config.Compiler.TrimWhitespace,
		RelativeImports: compiler.RelativeImports{
			Filename:         abs,
			ForceJSExtension: b.config.ForceJSExtension(),
		},
	}

	code, err := b.options.Compiler.Compile(ctx, source, opts)
	if err != nil {
		return b.fail(span, errors.FromError(err, "E200").WithFile(rel))
	}

	module := compiler.ModulePath(path)
	result.Modules = append(result.Modules, module)
	if err := os.WriteFile(module, code, 0644); err != nil {
		return b.fail(span, errors.New("E230").WithFile(walk.Rel(srcDir, module)).Wrap(err))
	}

	b.options.Metrics.TemplateCompiled()
	b.logger.Debug("compiled template", "file", rel, "module", walk.Rel(srcDir, module))
	return nil
}

// assemble walks srcDir again, now including the compiled modules, and
// fills outDir.
func (b *Builder) assemble(ctx context.Context, srcDir, outDir string, result *Result) error {
	return walk.Files(srcDir, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if within(outDir, path) {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		out := filepath.Join(outDir, rel)

		switch {
		case b.isTemplate(path):
			return nil
		case strings.HasSuffix(path, ".js"):
			// Component module: X.js next to X.rc
			if fileExists(strings.TrimSuffix(path, ".js") + b.config.TemplateExt) {
				return nil
			}
			// Page module: x.html.js next to x.rc
			if strings.HasSuffix(path, ".html.js") {
				stem := strings.TrimSuffix(path, ".html.js")
				if fileExists(stem + b.config.TemplateExt) {
					return b.renderPage(ctx, srcDir, path, strings.TrimSuffix(out, ".js"), result)
				}
			}
		}

		return b.copyAsset(srcDir, path, out, result)
	})
}

func (b *Builder) renderPage(ctx context.Context, srcDir, module, out string, result *Result) error {
	rel := walk.Rel(srcDir, module)

	ctx, span := b.options.Tracer.Start(ctx, "rcsg.page",
		trace.WithAttributes(attribute.String("rcsg.file", rel)))
	defer span.End()

	tree, err := b.options.Executor.Execute(ctx, module)
	if err != nil {
		var shapeErr *vdom.ShapeError
		if stderrors.As(err, &shapeErr) {
			return b.fail(span, errors.New("E220").WithFile(rel).Wrap(err))
		}
		return b.fail(span, errors.FromError(err, "E210").WithFile(rel))
	}

	html, err := b.options.Renderer.RenderToString(tree)
	if err != nil {
		return b.fail(span, errors.New("E220").WithFile(rel).Wrap(err))
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return b.fail(span, errors.New("E230").WithFile(out).Wrap(err))
	}
	if err := os.WriteFile(out, []byte(html), 0644); err != nil {
		return b.fail(span, errors.New("E230").WithFile(out).Wrap(err))
	}

	page := walk.Rel(result.Output, out)
	result.Pages = append(result.Pages, page)
	result.Bytes += int64(len(html))
	sum := sha256.Sum256([]byte(html))
	result.Manifest[page] = hex.EncodeToString(sum[:])

	b.options.Metrics.PageRendered()
	b.logger.Debug("rendered page", "module", rel, "page", page, "bytes", len(html))
	return nil
}

func (b *Builder) copyAsset(srcDir, path, out string, result *Result) error {
	rel := walk.Rel(srcDir, path)

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return errors.New("E231").WithFile(rel).Wrap(err)
	}
	n, err := copyFile(path, out)
	if err != nil {
		return errors.New("E231").WithFile(rel).Wrap(err)
	}

	hash, err := hashFile(out)
	if err != nil {
		return errors.New("E231").WithFile(rel).Wrap(err)
	}

	result.Assets = append(result.Assets, rel)
	result.Bytes += n
	result.Manifest[rel] = hash

	b.options.Metrics.AssetCopied()
	b.logger.Debug("copied asset", "file", rel, "bytes", n)
	return nil
}

// removeModules deletes compiled modules. Missing files are ignored.
func (b *Builder) removeModules(modules []string) {
	for _, module := range modules {
		if err := os.Remove(module); err != nil && !os.IsNotExist(err) {
			b.logger.Warn("failed to remove intermediate module", "module", module, "error", err)
		}
	}
}

func (b *Builder) isTemplate(path string) bool {
	return filepath.Ext(path) == b.config.TemplateExt
}

func (b *Builder) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	outDir := b.config.OutputPath()
	if err := b.checkOutput(outDir); err != nil {
		return err
	}
	return os.RemoveAll(outDir)
}

// checkOutput refuses an output directory whose removal would take the
// sources or the project with it.
func (b *Builder) checkOutput(outDir string) error {
	if config.Contains(outDir, b.config.SourcePath()) || config.Contains(outDir, b.config.Dir()) {
		return errors.New("E122").
			WithFile(outDir).
			WithDetail("output must not contain the source or project directory")
	}
	return nil
}

// stageOf maps a build error to its metrics stage label.
func stageOf(err error) string {
	if err == nil {
		return ""
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return metrics.StageCanceled
	}
	switch errors.Code(err) {
	case "E200", "E201":
		return metrics.StageCompile
	case "E210", "E211":
		return metrics.StageExecute
	case "E220":
		return metrics.StageRender
	case "E231":
		return metrics.StageCopy
	default:
		return metrics.StageOutput
	}
}

// within reports whether path lies inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// hashFile returns the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies a file, keeping its permission bits.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
