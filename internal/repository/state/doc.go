// Package state implements persistence for the last watchdog kick.
//
// The FileRepository stores and loads the kick as JSON on disk and exposes a
// Repository interface that the server service depends on.
package state
