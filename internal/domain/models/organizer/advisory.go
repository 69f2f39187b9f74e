package organizer

// AdvisoryRequest is the payload sent to the placement guidance endpoint
// after a document lands in a different folder. ExistingModules carries
// the folders already populated elsewhere in the tree so the pipeline
// can hint at redundancy or inconsistency across modules.
type AdvisoryRequest struct {
	DocumentID      string   `json:"documentId"`
	ModuleID        string   `json:"moduleId"`
	DocumentType    string   `json:"documentType"`
	DocumentTitle   string   `json:"documentTitle"`
	ExistingModules []string `json:"existingModules"`
	Region          string   `json:"region"`
}

// Finding is one severity-tagged advisory produced for a placement.
type Finding struct {
	Rule       string `json:"rule"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Advisory is the guidance returned for one placement decision. It is
// strictly informational: it never blocks, delays or reverts the move
// that triggered it.
type Advisory struct {
	DocumentID string    `json:"documentId"`
	ModuleID   string    `json:"moduleId"`
	Status     string    `json:"status"`
	Guidance   []Finding `json:"guidance"`
}
