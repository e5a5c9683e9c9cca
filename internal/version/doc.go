// Package version exposes build metadata for the alarm clock binaries.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Short and Full render them for CLI output, KV for logs.
package version
