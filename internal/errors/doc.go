// Package errors provides structured, actionable error messages for rcsg.
//
// Every failure that aborts a build is reported as an *RCError carrying:
//   - a unique code (e.g., "E200") with a short message and explanation
//   - the file being processed when the failure happened
//   - the underlying cause (compiler stderr, I/O error, shape error)
//   - a hint on how to fix it
//
// # Error Categories
//
//   - config: rcsg.json problems
//   - compile: template compiler failures
//   - execute: page module failures
//   - render: malformed render trees
//   - output: writing pages or copying assets
//   - publish: uploading the output directory
//   - cli: command-level failures
//
// # Usage
//
//	err := errors.New("E200").
//	    WithFile("web/index.rc").
//	    Wrap(cause)
//
//	errors.PrintError(err)
//	// ERROR E200: Template compilation failed
//	//
//	//   web/index.rc
//	//
//	//   The template compiler rejected a template. ...
//	//
//	//   Cause:
//	//     SyntaxError: unexpected token
package errors
