// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the watchdog API with timeouts,
// detection of the current system actor (hostname/username) and logging
// setup from the settings file.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
