// Package kicker implements the alarm-kick service.
//
// A kick restarts the server's countdown on behalf of the current user and
// host. The kicker retries until the server confirms the kick, either once or
// on every tick of a cron schedule.
package kicker
