// Package watchdog implements the gRPC transport for the watchdog service.
//
// It adapts domain types to the wire messages and exposes a server that calls
// into a provided business-service interface.
package watchdog
