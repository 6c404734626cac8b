package generator

import (
	"strings"

	"github.com/google/uuid"
)

// ResourceID returns a fresh opaque conversation id. Collisions are not
// checked against stored conversations.
func ResourceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
