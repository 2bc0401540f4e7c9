// Package build produces a static site from a reactive-CML source tree.
//
// A build runs in two passes over the source directory:
//
//  1. Every template is compiled into a module written next to it.
//     Templates whose name starts with an upper-case letter are
//     components (Card.rc becomes Card.js); the rest are pages
//     (index.rc becomes index.html.js).
//  2. The tree is walked again. Templates and component modules are
//     skipped, page modules are executed and their render trees written
//     as HTML, and every other file is copied unchanged.
//
// The output directory is deleted before the first pass. Compiled
// modules are removed when the build returns, whether it succeeded or
// not, unless intermediates are kept.
//
// # Usage
//
//	builder := build.New(cfg, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Built %d pages in %s\n", len(result.Pages), result.Duration)
//
// # Output Structure
//
//	web/                    dist/
//	├── index.rc        →   ├── index.html
//	├── Card.rc             ├── style.css
//	├── style.css       →   └── blog/
//	└── blog/                   └── post.html
//	    └── post.rc     →
package build
