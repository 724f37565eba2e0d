// Package user works out who kanbot is acting for when a command records an
// author.
package user

import (
	"os"
	osuser "os/user"
	"strings"

	"github.com/thenoetrevino/kanbot/internal/types"
)

// EnvUser overrides the detected user id
const EnvUser = "KANBOT_USER"

// Unknown is the id used when no user can be detected
const Unknown types.UserID = "unknown"

// lookupOS is swapped out in tests
var lookupOS = osuser.Current

// CurrentID returns the id of the acting user. KANBOT_USER wins, then the OS
// account name, then $USER, then Unknown.
func CurrentID() types.UserID {
	if id := strings.TrimSpace(os.Getenv(EnvUser)); id != "" {
		return types.UserID(id)
	}
	if u, err := lookupOS(); err == nil && u.Username != "" {
		return types.UserID(u.Username)
	}
	if name := strings.TrimSpace(os.Getenv("USER")); name != "" {
		return types.UserID(name)
	}
	return Unknown
}

// Author picks the id to record for an action: explicit when given, else
// the acting user
func Author(explicit string) types.UserID {
	if id := strings.TrimSpace(explicit); id != "" {
		return types.UserID(id)
	}
	return CurrentID()
}
