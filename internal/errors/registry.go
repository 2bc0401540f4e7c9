package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://github.com/aldinh777/rc-template-sg/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid rcsg.json",
		Detail:   "The rcsg.json configuration file is malformed.",
		DocURL:   docBase + "e120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   docBase + "e121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or has the wrong format.",
		DocURL:   docBase + "e122",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Directory already exists",
		Detail:   "rcsg create only writes into a directory that does not exist yet.",
		DocURL:   docBase + "e140",
	},
	"E145": {
		Category: CategoryCLI,
		Message:  "Unknown project template",
		DocURL:   docBase + "e145",
	},
	"E147": {
		Category:   CategoryCLI,
		Message:    "Invalid project name",
		Suggestion: "Use lowercase letters, numbers, and hyphens",
		DocURL:     docBase + "e147",
	},
	"E141": {
		Category:   CategoryCLI,
		Message:    "Source directory not found",
		Detail:     "The template source directory does not exist.",
		Suggestion: "Create the directory or set \"source\" in rcsg.json",
		DocURL:     docBase + "e141",
	},

	// ============================================
	// Compile Errors (E200-E209)
	// ============================================

	"E200": {
		Category: CategoryCompile,
		Message:  "Template compilation failed",
		Detail:   "The template compiler rejected a template. Check the compiler output for the offending construct.",
		DocURL:   docBase + "e200",
	},
	"E201": {
		Category:   CategoryCompile,
		Message:    "Template compiler not available",
		Detail:     "The configured compiler command could not be found in PATH.",
		Suggestion: "Install Node.js and run 'npm install @aldinh777/reactive-cml' in the project directory",
		DocURL:     docBase + "e201",
	},

	// ============================================
	// Execute Errors (E210-E219)
	// ============================================

	"E210": {
		Category: CategoryExecute,
		Message:  "Page execution failed",
		Detail:   "A compiled page module failed to load or its default export threw.",
		DocURL:   docBase + "e210",
	},
	"E211": {
		Category:   CategoryExecute,
		Message:    "Component executor not available",
		Detail:     "The configured executor command could not be found in PATH.",
		Suggestion: "Install Node.js or point \"executor.command\" at a node binary",
		DocURL:     docBase + "e211",
	},

	// ============================================
	// Render Errors (E220-E229)
	// ============================================

	"E220": {
		Category: CategoryRender,
		Message:  "Malformed render tree",
		Detail:   "A page returned an item that is not a string, a single-value array, a tagged element or a fragment.",
		DocURL:   docBase + "e220",
	},

	// ============================================
	// Output Errors (E230-E239)
	// ============================================

	"E230": {
		Category: CategoryOutput,
		Message:  "Failed to write output",
		Detail:   "A generated module or HTML page could not be written.",
		DocURL:   docBase + "e230",
	},
	"E231": {
		Category: CategoryOutput,
		Message:  "Failed to copy asset",
		Detail:   "A static file could not be copied into the output directory.",
		DocURL:   docBase + "e231",
	},

	// ============================================
	// Publish Errors (E240-E259)
	// ============================================

	"E240": {
		Category:   CategoryPublish,
		Message:    "Publish failed",
		Detail:     "Uploading the output directory to object storage failed.",
		Suggestion: "Check the bucket name, region and AWS credentials",
		DocURL:     docBase + "e240",
	},
	"E250": {
		Category: CategoryCLI,
		Message:  "Dev server failed",
		Detail:   "The development server could not start or stopped unexpectedly.",
		DocURL:   docBase + "e250",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
