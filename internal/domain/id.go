package domain

import "github.com/oklog/ulid/v2"

// NewID returns a lexically sortable identifier that is strictly increasing
// within the process, so two IDs minted in the same millisecond never collide.
func NewID() string {
	return ulid.Make().String()
}
