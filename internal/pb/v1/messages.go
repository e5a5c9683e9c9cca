package watchdogv1

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Struct field names used on the wire.
const (
	fieldHostname     = "hostname"
	fieldUsername     = "username"
	fieldExpired      = "expired"
	fieldExpiredCount = "expired_count"
	fieldCountdownUs  = "countdown_us"
	fieldSleptTimeUs  = "slept_time_us"
	fieldLastKick     = "last_kick"
	fieldKickID       = "id"
	fieldTimestamp    = "timestamp"
	fieldActor        = "actor"
)

// ErrMalformedMessage is returned when a Struct does not describe the expected message.
var ErrMalformedMessage = errors.New("malformed watchdog message")

// SystemActor identifies the machine and user sending a request.
type SystemActor struct {
	Hostname string
	Username string
}

// GetHostname returns the hostname or an empty string for a nil actor.
func (a *SystemActor) GetHostname() string {
	if a == nil {
		return ""
	}

	return a.Hostname
}

// GetUsername returns the username or an empty string for a nil actor.
func (a *SystemActor) GetUsername() string {
	if a == nil {
		return ""
	}

	return a.Username
}

// ToStruct encodes the actor. A nil actor becomes an empty Struct.
func (a *SystemActor) ToStruct() *structpb.Struct {
	if a == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldHostname: structpb.NewStringValue(a.Hostname),
			fieldUsername: structpb.NewStringValue(a.Username),
		},
	}
}

// SystemActorFromStruct decodes an actor, returning nil when s carries none.
func SystemActorFromStruct(s *structpb.Struct) *SystemActor {
	if len(s.GetFields()) == 0 {
		return nil
	}

	return &SystemActor{
		Hostname: s.GetFields()[fieldHostname].GetStringValue(),
		Username: s.GetFields()[fieldUsername].GetStringValue(),
	}
}

// KickInfo describes the most recent kick.
type KickInfo struct {
	ID        string
	Timestamp time.Time
	Actor     *SystemActor
}

// GetActor returns the kick's actor or nil.
func (k *KickInfo) GetActor() *SystemActor {
	if k == nil {
		return nil
	}

	return k.Actor
}

// ToStruct encodes the kick. A nil kick becomes an empty Struct.
func (k *KickInfo) ToStruct() *structpb.Struct {
	if k == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}

	fields := map[string]*structpb.Value{
		fieldKickID: structpb.NewStringValue(k.ID),
	}

	if !k.Timestamp.IsZero() {
		fields[fieldTimestamp] = structpb.NewStringValue(k.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	if k.Actor != nil {
		fields[fieldActor] = structpb.NewStructValue(k.Actor.ToStruct())
	}

	return &structpb.Struct{Fields: fields}
}

// KickInfoFromStruct decodes a kick produced by ToStruct.
func KickInfoFromStruct(s *structpb.Struct) (*KickInfo, error) {
	fields := s.GetFields()

	if _, ok := fields[fieldKickID]; !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedMessage, fieldKickID)
	}

	kick := &KickInfo{
		ID:    fields[fieldKickID].GetStringValue(),
		Actor: SystemActorFromStruct(fields[fieldActor].GetStructValue()),
	}

	if raw := fields[fieldTimestamp].GetStringValue(); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: kick timestamp: %w", ErrMalformedMessage, err)
		}

		kick.Timestamp = ts
	}

	return kick, nil
}

// WatchdogStatus is the response of both service methods.
type WatchdogStatus struct {
	Expired      bool
	ExpiredCount uint64
	Countdown    time.Duration
	SleptTime    time.Duration
	LastKick     *KickInfo
}

// GetExpired reports expiry, false for a nil status.
func (s *WatchdogStatus) GetExpired() bool {
	return s != nil && s.Expired
}

// GetLastKick returns the last kick or nil.
func (s *WatchdogStatus) GetLastKick() *KickInfo {
	if s == nil {
		return nil
	}

	return s.LastKick
}

// ToStruct encodes the status. Durations travel as integral microseconds.
func (s *WatchdogStatus) ToStruct() *structpb.Struct {
	if s == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}

	fields := map[string]*structpb.Value{
		fieldExpired:      structpb.NewBoolValue(s.Expired),
		fieldExpiredCount: structpb.NewNumberValue(float64(s.ExpiredCount)),
		fieldCountdownUs:  structpb.NewNumberValue(float64(s.Countdown.Microseconds())),
		fieldSleptTimeUs:  structpb.NewNumberValue(float64(s.SleptTime.Microseconds())),
	}

	if s.LastKick != nil {
		fields[fieldLastKick] = structpb.NewStructValue(s.LastKick.ToStruct())
	}

	return &structpb.Struct{Fields: fields}
}

// WatchdogStatusFromStruct decodes a status produced by ToStruct.
func WatchdogStatusFromStruct(s *structpb.Struct) (*WatchdogStatus, error) {
	fields := s.GetFields()

	if _, ok := fields[fieldExpired]; !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedMessage, fieldExpired)
	}

	status := &WatchdogStatus{
		Expired:      fields[fieldExpired].GetBoolValue(),
		ExpiredCount: uint64(fields[fieldExpiredCount].GetNumberValue()),
		Countdown:    time.Duration(fields[fieldCountdownUs].GetNumberValue()) * time.Microsecond,
		SleptTime:    time.Duration(fields[fieldSleptTimeUs].GetNumberValue()) * time.Microsecond,
	}

	kickStruct := fields[fieldLastKick].GetStructValue()
	if len(kickStruct.GetFields()) == 0 {
		return status, nil
	}

	kick, err := KickInfoFromStruct(kickStruct)
	if err != nil {
		return nil, err
	}

	status.LastKick = kick

	return status, nil
}
