// Package cli parses command-line arguments into an app.Config and maps the
// application's error taxonomy onto distinct process exit codes so calling
// automation can branch on outcome.
package cli
