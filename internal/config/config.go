package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aldinh777/rc-template-sg/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "rcsg.json"

	// DefaultSource is the default template source directory.
	DefaultSource = "web"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultTemplateExt is the extension of template files.
	DefaultTemplateExt = ".rc"

	// DefaultNodeCommand runs both the compiler and executor shims.
	DefaultNodeCommand = "node"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultNamespace prefixes every exported metric.
	DefaultNamespace = "rcsg"

	// DefaultTimeout bounds a single compile or page execution.
	DefaultTimeout = "30s"
)

// Config represents the complete rcsg.json configuration.
type Config struct {
	// Source is the template source directory.
	Source string `json:"source,omitempty"`

	// Output is the build output directory. It is deleted and
	// recreated on every build.
	Output string `json:"output,omitempty"`

	// TemplateExt is the template file extension, including the dot.
	TemplateExt string `json:"templateExt,omitempty"`

	// KeepIntermediates leaves compiled modules next to their templates.
	KeepIntermediates bool `json:"keepIntermediates,omitempty"`

	// Compiler configures the external template compiler.
	Compiler CompilerConfig `json:"compiler,omitempty"`

	// Executor configures the page executor.
	Executor ExecutorConfig `json:"executor,omitempty"`

	// Render configures HTML serialization.
	Render RenderConfig `json:"render,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Publish contains object storage upload configuration.
	Publish PublishConfig `json:"publish,omitempty"`

	// Metrics contains build metrics configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string

	// dir is the project root when no config file exists.
	dir string
}

// CompilerConfig configures the template compiler process.
type CompilerConfig struct {
	// Command is the Node.js binary used to run the compiler shim.
	Command string `json:"command,omitempty"`

	// Mode is the module format of generated code ("require" or "import").
	Mode string `json:"mode,omitempty"`

	// TrimWhitespace trims template whitespace during compilation.
	TrimWhitespace bool `json:"trimWhitespace,omitempty"`

	// ForceJSExtension appends ".js" to relative imports in generated code.
	ForceJSExtension *bool `json:"forceJSExtension,omitempty"`

	// Timeout bounds a single compilation (e.g., "30s").
	Timeout string `json:"timeout,omitempty"`
}

// ExecutorConfig configures the page executor process.
type ExecutorConfig struct {
	// Command is the Node.js binary used to run page modules.
	Command string `json:"command,omitempty"`

	// Timeout bounds a single page execution (e.g., "30s").
	Timeout string `json:"timeout,omitempty"`
}

// RenderConfig configures HTML serialization.
type RenderConfig struct {
	// EscapeAttributes escapes attribute values in generated HTML.
	EscapeAttributes bool `json:"escapeAttributes,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Watch contains extra paths to watch besides the source directory.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`

	// HotReload enables browser reload after each rebuild.
	HotReload *bool `json:"hotReload,omitempty"`

	// Debounce is the file polling interval (e.g., "200ms").
	Debounce string `json:"debounce,omitempty"`
}

// PublishConfig contains object storage settings.
type PublishConfig struct {
	// Bucket is the destination bucket.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the bucket region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint for compatible stores.
	Endpoint string `json:"endpoint,omitempty"`
}

// MetricsConfig contains build metrics settings.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`

	// Textfile, when set, receives the metrics after each build in the
	// Prometheus text exposition format.
	Textfile string `json:"textfile,omitempty"`
}

// New creates a new Config with default values rooted at dir.
func New(dir string) *Config {
	forceExt := true
	hotReload := true
	return &Config{
		Source:      DefaultSource,
		Output:      DefaultOutput,
		TemplateExt: DefaultTemplateExt,
		Compiler: CompilerConfig{
			Command:          DefaultNodeCommand,
			Mode:             "require",
			ForceJSExtension: &forceExt,
			Timeout:          DefaultTimeout,
		},
		Executor: ExecutorConfig{
			Command: DefaultNodeCommand,
			Timeout: DefaultTimeout,
		},
		Dev: DevConfig{
			Port:      DefaultPort,
			Host:      DefaultHost,
			HotReload: &hotReload,
			Debounce:  "200ms",
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		dir: dir,
	}
}

// Load reads configuration from the specified directory.
// It looks for rcsg.json in the directory; when the file does not exist
// the defaults rooted at dir are returned.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := New(dir)
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").WithFile(path).Wrap(err)
	}

	cfg := New(filepath.Dir(path))
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithFile(path).
			WithDetail("Failed to parse rcsg.json: " + err.Error()).
			WithSuggestion("Check that rcsg.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").WithFile(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the project root directory.
func (c *Config) Dir() string {
	if c.configPath != "" {
		return filepath.Dir(c.configPath)
	}
	return c.dir
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New(c.Dir())

	if c.Source == "" {
		c.Source = d.Source
	}
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.TemplateExt == "" {
		c.TemplateExt = d.TemplateExt
	}

	// Compiler
	if c.Compiler.Command == "" {
		c.Compiler.Command = d.Compiler.Command
	}
	if c.Compiler.Mode == "" {
		c.Compiler.Mode = d.Compiler.Mode
	}
	if c.Compiler.ForceJSExtension == nil {
		c.Compiler.ForceJSExtension = d.Compiler.ForceJSExtension
	}
	if c.Compiler.Timeout == "" {
		c.Compiler.Timeout = d.Compiler.Timeout
	}

	// Executor
	if c.Executor.Command == "" {
		c.Executor.Command = d.Executor.Command
	}
	if c.Executor.Timeout == "" {
		c.Executor.Timeout = d.Executor.Timeout
	}

	// Dev
	if c.Dev.Port == 0 {
		c.Dev.Port = d.Dev.Port
	}
	if c.Dev.Host == "" {
		c.Dev.Host = d.Dev.Host
	}
	if c.Dev.HotReload == nil {
		c.Dev.HotReload = d.Dev.HotReload
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = d.Dev.Debounce
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E122").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if len(c.TemplateExt) < 2 || c.TemplateExt[0] != '.' {
		return errors.New("E122").
			WithDetail("templateExt must start with a dot, e.g. \".rc\"")
	}
	if c.TemplateExt == ".js" {
		return errors.New("E122").
			WithDetail("templateExt cannot be \".js\"; compiled modules use that extension")
	}
	switch c.Compiler.Mode {
	case "require", "import":
	default:
		return errors.New("E122").
			WithDetail("compiler.mode must be \"require\" or \"import\", got \"" + c.Compiler.Mode + "\"")
	}
	for name, value := range map[string]string{
		"compiler.timeout": c.Compiler.Timeout,
		"executor.timeout": c.Executor.Timeout,
		"dev.debounce":     c.Dev.Debounce,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.New("E122").
				WithDetail(name + " is not a valid duration: " + value).
				Wrap(err)
		}
		if d < 0 {
			return errors.New("E122").
				WithDetail(name + " must not be negative: " + value)
		}
	}
	if c.DebounceInterval() <= 0 {
		return errors.New("E122").
			WithDetail("dev.debounce must be positive: " + c.Dev.Debounce)
	}
	// The output directory is removed before every build.
	output := c.OutputPath()
	if Contains(output, c.SourcePath()) {
		return errors.New("E122").
			WithDetail("output must not be the source directory or one of its parents: " + c.Output)
	}
	if Contains(output, c.Dir()) {
		return errors.New("E122").
			WithDetail("output must not be the project directory or one of its parents: " + c.Output)
	}
	return nil
}

// Contains reports whether path is dir or lies inside it.
func Contains(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SourcePath returns the absolute path to the template source directory.
func (c *Config) SourcePath() string {
	return c.resolve(c.Source)
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Output)
}

// MetricsTextfilePath returns the metrics textfile path, or "" if unset.
func (c *Config) MetricsTextfilePath() string {
	if c.Metrics.Textfile == "" {
		return ""
	}
	return c.resolve(c.Metrics.Textfile)
}

// CompileTimeout returns the parsed compiler timeout.
func (c *Config) CompileTimeout() time.Duration {
	return parseDuration(c.Compiler.Timeout)
}

// ExecuteTimeout returns the parsed executor timeout.
func (c *Config) ExecuteTimeout() time.Duration {
	return parseDuration(c.Executor.Timeout)
}

// DebounceInterval returns the parsed watcher polling interval.
func (c *Config) DebounceInterval() time.Duration {
	return parseDuration(c.Dev.Debounce)
}

// ForceJSExtension reports whether relative imports get a ".js" suffix.
func (c *Config) ForceJSExtension() bool {
	return c.Compiler.ForceJSExtension == nil || *c.Compiler.ForceJSExtension
}

// HotReload reports whether the dev server reloads browsers.
func (c *Config) HotReload() bool {
	return c.Dev.HotReload == nil || *c.Dev.HotReload
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// WatchPaths returns the absolute paths watched by the dev server.
func (c *Config) WatchPaths() []string {
	paths := []string{c.SourcePath()}
	for _, p := range c.Dev.Watch {
		paths = append(paths, c.resolve(p))
	}
	return paths
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing rcsg.json, or startDir itself when no
// ancestor has one.
func FindProjectRoot(startDir string) (string, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := start
	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration for the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
