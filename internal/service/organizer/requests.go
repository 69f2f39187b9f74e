package organizer

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MoveRequest asks to reparent a document node under a module folder.
type MoveRequest struct {
	NodeID   string `json:"node_id"`
	TargetID string `json:"target_id"`
}

// Validate checks structural requirements before the request reaches
// the session loop.
func (r MoveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NodeID, validation.Required),
		validation.Field(&r.TargetID, validation.Required),
	)
}

// SelectRequest toggles one document's membership in the selection set.
type SelectRequest struct {
	NodeID string `json:"node_id"`
}

// Validate checks the request carries a node id.
func (r SelectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NodeID, validation.Required),
	)
}
