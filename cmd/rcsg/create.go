package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aldinh777/rc-template-sg/internal/errors"
	"github.com/aldinh777/rc-template-sg/internal/nodeproc"
	"github.com/aldinh777/rc-template-sg/internal/templates"
)

func createCmd() *cobra.Command {
	var (
		template    string
		description string
		noInstall   bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new rcsg project",
		Long: `Create a new rcsg project with the specified name.

Templates:
  minimal   A single page
  site      Home, about and blog pages with shared styles (default)

Examples:
  rcsg create my-site
  rcsg create my-site --template=minimal
  rcsg create my-site --no-install`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), args[0], template, description, !noInstall)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "site", "Project template (minimal, site)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	cmd.Flags().BoolVar(&noInstall, "no-install", false, "Skip npm install")

	return cmd
}

func runCreate(ctx context.Context, name, templateName, description string, install bool) error {
	if !isValidProjectName(name) {
		return errors.New("E147").
			WithDetail("Project name must be usable as a directory and npm package name")
	}

	projectDir, err := filepath.Abs(name)
	if err != nil {
		return err
	}

	if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
		return errors.New("E140").
			WithDetail("Directory '" + name + "' already exists").
			WithSuggestion("Choose a different name or remove the existing directory")
	}

	if description == "" {
		description = "A static site built with rcsg"
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	info("Creating project from '%s' template...", templateName)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return err
	}

	cfg := templates.Config{
		ProjectName: filepath.Base(projectDir),
		Description: description,
	}
	if err := tmpl.Create(projectDir, cfg); err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	if install {
		info("Installing the template compiler...")
		if err := npmInstall(ctx, projectDir); err != nil {
			warn("Could not run 'npm install': %v", err)
		}
	}

	fmt.Println()
	success("Created %s/", name)
	fmt.Println()
	fmt.Println("  To get started:")
	fmt.Println()
	fmt.Printf("    cd %s\n", name)
	if !install {
		fmt.Println("    npm install")
	}
	fmt.Println("    rcsg dev")
	fmt.Println()

	return nil
}

func npmInstall(ctx context.Context, dir string) error {
	_, err := nodeproc.Run(ctx, nodeproc.Spec{
		Command: "npm",
		Args:    []string{"install", "--no-fund", "--no-audit"},
		Dir:     dir,
		Timeout: 5 * time.Minute,
	})
	return err
}

func isValidProjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for i, r := range name {
		if r == ' ' || r == '/' || r == '\\' {
			return false
		}
		if i == 0 && (r == '.' || r == '_') {
			return false
		}
	}
	return true
}
