package organizer

import "strings"

// NodeKind distinguishes the three structural roles in a submission tree.
type NodeKind string

const (
	KindRoot     NodeKind = "root"
	KindFolder   NodeKind = "folder"
	KindDocument NodeKind = "document"
)

// Droppable reports whether a node of this kind may contain children.
func (k NodeKind) Droppable() bool {
	return k == KindRoot || k == KindFolder
}

// QCStatus is the latest known quality-control verdict for a document.
// It is driven exclusively by the QC status feed, never by user actions.
type QCStatus string

const (
	StatusUnknown QCStatus = "unknown"
	StatusPending QCStatus = "pending"
	StatusPassed  QCStatus = "passed"
	StatusFailed  QCStatus = "failed"
)

// Terminal reports whether the status is a QC verdict (as opposed to an
// in-flight or missing evaluation). Terminal statuses can still change:
// a bulk re-evaluation drives a document back through pending.
func (s QCStatus) Terminal() bool {
	return s == StatusPassed || s == StatusFailed
}

// ParseQCStatus maps a wire or stored status value onto a QCStatus.
// Matching is case-insensitive. An empty value means the document has
// never been evaluated; any other unrecognized value is treated as
// pending, since the pipeline only emits pending/passed/failed.
func ParseQCStatus(raw string) QCStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return StatusUnknown
	case string(StatusUnknown):
		return StatusUnknown
	case string(StatusPassed):
		return StatusPassed
	case string(StatusFailed):
		return StatusFailed
	default:
		return StatusPending
	}
}

// RootID is the reserved identifier of the distinguished root node.
// Folder ids are module codes and document ids are UUIDs, so the sentinel
// cannot collide with either.
const RootID = "__root__"

// Node is the fundamental unit of the submission tree. ModuleHint,
// DocumentType and QCStatus are only meaningful for document nodes.
type Node struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parent_id"` // empty for the root node
	Kind     NodeKind `json:"kind"`
	Label    string   `json:"label"`

	ModuleHint   string   `json:"module_hint,omitempty"`
	DocumentType string   `json:"document_type,omitempty"`
	QCStatus     QCStatus `json:"qc_status,omitempty"`
}
