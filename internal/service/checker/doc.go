// Package checker implements the alarm-checker service.
//
// The checker polls the watchdog server and reacts when the dead man's switch
// trips, either because the server reports an expired countdown or because
// the server could not be reached for longer than the offline timeout. A trip
// sends notifications once and powers the machine off unless debug mode is on.
package checker
