// Package notify delivers trip notifications through shoutrrr service URLs.
package notify
