package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/watchdog"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
)

// Repository defines persistence operations for the last kick.
type Repository interface {
	Load(ctx context.Context) (*domain.Kick, error)
	Save(ctx context.Context, kick *domain.Kick) error
}

// FileRepository persists the last kick to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) of the same
// Struct encoding the wire API uses.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the state file does not exist yet.
	ErrNotFound = errors.New("state not found")
	// errKickIsNotSet is returned when Save receives a nil kick.
	errKickIsNotSet = errors.New("kick is not set")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the last kick from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Kick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	kick, err := pb.KickInfoFromStruct(&document)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromProto(kick), nil
}

// Save writes the kick to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, kick *domain.Kick) error {
	if kick == nil {
		return errKickIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(toProto(kick).ToStruct())
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// fromProto converts the wire kick into the domain Kick model.
func fromProto(kick *pb.KickInfo) *domain.Kick {
	var actor *domain.Actor

	if protoActor := kick.GetActor(); protoActor != nil {
		actor = &domain.Actor{
			Hostname: protoActor.GetHostname(),
			Username: protoActor.GetUsername(),
		}
	}

	return &domain.Kick{
		ID:        kick.ID,
		Timestamp: kick.Timestamp,
		Actor:     actor,
	}
}

// toProto converts the domain Kick model into the wire kick.
func toProto(kick *domain.Kick) *pb.KickInfo {
	var actor *pb.SystemActor
	if kick.Actor != nil {
		actor = &pb.SystemActor{
			Hostname: kick.Actor.Hostname,
			Username: kick.Actor.Username,
		}
	}

	return &pb.KickInfo{
		ID:        kick.ID,
		Timestamp: kick.Timestamp,
		Actor:     actor,
	}
}
