// Package watchdog contains core domain types for the dead man's switch.
//
// It defines Actor (who kicked the switch), Kick (one proof of liveness) and
// Status (the switch as observed at a point in time) with Clone helpers to
// avoid leaking internal references.
package watchdog
