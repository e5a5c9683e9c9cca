//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"os/user"

	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
)

// errUnknownUser is returned when neither the OS nor the environment names the user.
var errUnknownUser = errors.New("cannot determine current user")

// DetectActor gathers host and user information identifying who kicks the switch.
// Returns a wire type because callers pass it directly to the gRPC client.
func DetectActor() (*pb.SystemActor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	username, err := currentUsername()
	if err != nil {
		return nil, err
	}

	return &pb.SystemActor{
		Hostname: hostname,
		Username: username,
	}, nil
}

// currentUsername asks the OS first and falls back to the environment,
// which is all minimal containers without a passwd entry have.
func currentUsername() (string, error) {
	if current, err := user.Current(); err == nil && current.Username != "" {
		return current.Username, nil
	}

	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if name := os.Getenv(key); name != "" {
			return name, nil
		}
	}

	return "", errUnknownUser
}
