// Package dev provides the development server and live reload.
//
// The server builds the site once, serves the output directory and
// rebuilds whenever a watched source file changes:
//
//   - Watcher: polls the source tree for modified, new and deleted files,
//     skipping files the build itself generates
//   - Server: chi router serving the output directory with extensionless
//     URLs ("/about" serves about.html, "/blog/" serves blog/index.html)
//   - ReloadServer: tells connected browsers to reload via WebSocket
//
// A rebuild that produces byte-identical output does not reload browsers.
// Builds never overlap.
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Config: cfg,
//	    Build:  builder.Build,
//	})
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Hot Reload Protocol
//
// Browsers connect to /_rcsg/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                 // Triggers full page reload
//	{"type": "css", "file": "..."}     // Triggers CSS-only reload
//	{"type": "error", "error": "..."}  // Shows error overlay
//	{"type": "clear"}                  // Clears error overlay
//
// Hot reload can be disabled in rcsg.json (dev.hotReload=false).
package dev
