package users

import (
	"strings"

	"github.com/google/uuid"
)

// NewOpaqueToken mints a random credential for account activation and
// session tokens. 122 bits of randomness; uniqueness is not
// cross-checked, collisions are treated as negligible at this length.
func NewOpaqueToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
