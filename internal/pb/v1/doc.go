// Package watchdogv1 defines the alarmclock.v1.WatchdogService gRPC API.
//
// The service is declared by hand on top of protobuf well-known types:
// requests and responses travel as google.protobuf.Struct (or Empty) and are
// converted to the typed SystemActor and WatchdogStatus values in this
// package, so no generated code is required on either side.
package watchdogv1
