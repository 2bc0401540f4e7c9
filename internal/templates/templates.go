package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/aldinh777/rc-template-sg/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// Description is a short project description.
	Description string
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"site":    siteTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E145").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: minimal, site")
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the relative paths the template writes, sorted.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Create generates a project from the template.
func (t *Template) Create(dir string, cfg Config) error {
	for _, relPath := range t.Paths() {
		// Template markup uses braces too, so files use [[ ]] delimiters.
		tmpl, err := template.New(relPath).Delims("[[", "]]").Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}

		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}

	return nil
}

var sharedFiles = map[string]string{
	"rcsg.json": `{
  "source": "web",
  "output": "dist"
}
`,
	"package.json": `{
  "name": "[[.ProjectName]]",
  "private": true,
  "description": "[[.Description]]",
  "scripts": {
    "build": "rcsg build",
    "dev": "rcsg dev"
  },
  "dependencies": {
    "@aldinh777/reactive-cml": "latest"
  }
}
`,
	".gitignore": `node_modules/
dist/
*.html.js
`,
}

func withShared(files map[string]string) map[string]string {
	for path, content := range sharedFiles {
		files[path] = content
	}
	return files
}

// minimalTemplate returns the minimal template.
func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A single page",
		Files: withShared(map[string]string{
			"web/index.rc": `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>[[.ProjectName]]</title>
  </head>
  <body>
    <h1>[[.ProjectName]]</h1>
    <p>[[.Description]]</p>
  </body>
</html>
`,
		}),
	}
}

// siteTemplate returns a multi-page site with a stylesheet.
func siteTemplate() *Template {
	return &Template{
		Name:        "site",
		Description: "Home, about and blog pages with shared styles",
		Files: withShared(map[string]string{
			"web/index.rc":      sitePage("Home", "<p>[[.Description]]</p>"),
			"web/about.rc":      sitePage("About", "<p>About [[.ProjectName]].</p>"),
			"web/blog/index.rc": sitePage("Blog", "<p>No posts yet.</p>"),
			"web/style.css": `body {
  font-family: system-ui, sans-serif;
  max-width: 40rem;
  margin: 2rem auto;
  padding: 0 1rem;
}

nav a {
  margin-right: 1rem;
}
`,
		}),
	}
}

func sitePage(title, body string) string {
	return `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>` + title + ` | [[.ProjectName]]</title>
    <link rel="stylesheet" href="/style.css">
  </head>
  <body>
    <nav>
      <a href="/">Home</a>
      <a href="/about">About</a>
      <a href="/blog/">Blog</a>
    </nav>
    <h1>` + title + `</h1>
    ` + body + `
  </body>
</html>
`
}
