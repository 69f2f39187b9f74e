package models

import "time"

// Submission is one regulatory submission dossier. Region selects the
// fixed module taxonomy its documents are organized under.
type Submission struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Region    string    `json:"region" db:"region"` // taxonomy region code (us, eu, jp)
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
