package application

import (
	"fmt"
	"strings"
)

// DeletePolicy decides what happens to orders when the user they reference is deleted.
type DeletePolicy string

const (
	// DeleteOrphan removes the user and leaves its orders pointing at the old id.
	DeleteOrphan DeletePolicy = "orphan"
	// DeleteRestrict refuses to remove a user that still has orders.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade removes the user's orders together with the user.
	DeleteCascade DeletePolicy = "cascade"
)

// ParseDeletePolicy accepts the policy names case-insensitively; empty means orphan.
func ParseDeletePolicy(raw string) (DeletePolicy, error) {
	switch policy := DeletePolicy(strings.ToLower(strings.TrimSpace(raw))); policy {
	case "":
		return DeleteOrphan, nil
	case DeleteOrphan, DeleteRestrict, DeleteCascade:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown user delete policy %q", raw)
	}
}
