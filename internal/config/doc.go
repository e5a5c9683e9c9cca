// Package config defines the settings used by the alarm clock binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the watchdog server address, the countdown, checker
// polling and offline settings, notification targets and logging options.
package config
