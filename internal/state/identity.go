package state

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentity is returned when an Identity cannot address a paginated view.
var ErrInvalidIdentity = errors.New("invalid query identity")

// Sort directions understood by the remote API.
const (
	DirectionAsc  = "ASC"
	DirectionDesc = "DESC"
)

// Identity determines which paginated view is cached. Two identities are
// equal iff every field is equal, so the value is usable as a map key.
type Identity struct {
	CollectionID string
	PageSize     int
	Sort         string
	Direction    string
	TypeFilter   string
	UserID       string
}

// Validate reports whether the identity can be used to fetch pages.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.CollectionID) == "" {
		return fmt.Errorf("%w: collection id required", ErrInvalidIdentity)
	}
	if id.PageSize < 1 {
		return fmt.Errorf("%w: page size %d", ErrInvalidIdentity, id.PageSize)
	}
	return nil
}

// String renders the identity for logs.
func (id Identity) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/per=%d", id.CollectionID, id.PageSize)
	if id.Sort != "" {
		fmt.Fprintf(&b, "/sort=%s", id.Sort)
	}
	if id.Direction != "" {
		fmt.Fprintf(&b, "/dir=%s", id.Direction)
	}
	if id.TypeFilter != "" {
		fmt.Fprintf(&b, "/type=%s", id.TypeFilter)
	}
	if id.UserID != "" {
		fmt.Fprintf(&b, "/user=%s", id.UserID)
	}
	return b.String()
}
