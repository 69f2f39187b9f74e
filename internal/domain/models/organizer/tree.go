package organizer

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is returned by ApplyMove when the requested reparenting
// would violate the tree's structural invariants.
var ErrInvalidMove = errors.New("invalid move")

// ModuleFolder describes one fixed taxonomy folder for a region.
type ModuleFolder struct {
	Code  string
	Title string
}

// DocumentRecord is one row from the document source, used to construct
// the initial tree for a submission.
type DocumentRecord struct {
	ID           string
	Title        string
	Module       string // folder the document was last saved under
	ModuleHint   string // folder suggested by the document's own metadata
	DocumentType string
	Status       QCStatus
}

// Tree is an immutable snapshot of a submission's organizer state.
// Mutating operations return a new snapshot and never modify the
// receiver, so a snapshot handed to a caller stays valid forever.
//
// The shape is deliberately two-level: the root contains the fixed
// module folders for the region, and folders contain document leaves.
// Folders are synthesized once at construction from the taxonomy and
// are never created, removed or renamed afterwards; moves only change
// a document's parent folder.
type Tree struct {
	region string
	nodes  map[string]Node
	// order maps a droppable node id to its ordered child ids. Slices
	// are treated as immutable once attached to a snapshot.
	order map[string][]string
}

// OrderEntry is one line of a flattened tree ordering: a document, the
// module folder containing it, and its position within that folder.
type OrderEntry struct {
	DocumentID string `json:"id"`
	Module     string `json:"module"`
	Position   int    `json:"order"`
}

// NewTree constructs a tree for one submission region: a root, one folder
// per taxonomy module (in taxonomy order), and one document leaf per
// record (in record order). A document is placed under its stored module
// when that folder exists, falling back to its module hint and finally to
// the first module of the region, so a stale assignment can never produce
// an orphaned leaf.
func NewTree(region string, modules []ModuleFolder, docs []DocumentRecord) (*Tree, error) {
	if len(modules) == 0 {
		return nil, fmt.Errorf("region %q has no modules", region)
	}

	t := &Tree{
		region: region,
		nodes:  make(map[string]Node, len(modules)+len(docs)+1),
		order:  make(map[string][]string, len(modules)+1),
	}

	t.nodes[RootID] = Node{ID: RootID, Kind: KindRoot, Label: region}

	folderIDs := make([]string, 0, len(modules))
	for _, m := range modules {
		if _, dup := t.nodes[m.Code]; dup {
			return nil, fmt.Errorf("duplicate module code %q in region %q", m.Code, region)
		}
		label := m.Title
		if label == "" {
			label = m.Code
		}
		t.nodes[m.Code] = Node{ID: m.Code, ParentID: RootID, Kind: KindFolder, Label: label}
		t.order[m.Code] = nil
		folderIDs = append(folderIDs, m.Code)
	}
	t.order[RootID] = folderIDs

	for _, d := range docs {
		if _, dup := t.nodes[d.ID]; dup {
			return nil, fmt.Errorf("duplicate document id %q", d.ID)
		}
		parent := d.Module
		if _, ok := t.nodes[parent]; !ok {
			parent = d.ModuleHint
		}
		if _, ok := t.nodes[parent]; !ok {
			parent = folderIDs[0]
		}
		t.nodes[d.ID] = Node{
			ID:           d.ID,
			ParentID:     parent,
			Kind:         KindDocument,
			Label:        d.Title,
			ModuleHint:   d.ModuleHint,
			DocumentType: d.DocumentType,
			QCStatus:     d.Status,
		}
		t.order[parent] = append(t.order[parent], d.ID)
	}

	return t, nil
}

// Region returns the submission region the tree was built for.
func (t *Tree) Region() string { return t.region }

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id string) (Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Children returns copies of a node's children in display order.
func (t *Tree) Children(id string) []Node {
	ids := t.order[id]
	out := make([]Node, 0, len(ids))
	for _, cid := range ids {
		out = append(out, t.nodes[cid])
	}
	return out
}

// Len returns the total number of nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// ApplyMove returns a new snapshot with the document's parent set to the
// target folder. The operation is atomic: on any violation the receiver
// is left untouched and ErrInvalidMove is returned. Moving a document to
// the folder it is already in is a permitted no-op and returns the
// receiver unchanged.
func (t *Tree) ApplyMove(nodeID, newParentID string) (*Tree, error) {
	node, ok := t.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: node %q does not exist", ErrInvalidMove, nodeID)
	}
	target, ok := t.nodes[newParentID]
	if !ok {
		return nil, fmt.Errorf("%w: target %q does not exist", ErrInvalidMove, newParentID)
	}
	if !CanMove(node, target) {
		return nil, fmt.Errorf("%w: cannot drop %s %q onto %s %q",
			ErrInvalidMove, node.Kind, nodeID, target.Kind, newParentID)
	}
	if node.ParentID == newParentID {
		return t, nil
	}

	next := t.clone()

	oldParentID := node.ParentID
	node.ParentID = newParentID
	next.nodes[nodeID] = node

	oldSiblings := t.order[oldParentID]
	trimmed := make([]string, 0, len(oldSiblings)-1)
	for _, id := range oldSiblings {
		if id != nodeID {
			trimmed = append(trimmed, id)
		}
	}
	next.order[oldParentID] = trimmed

	newSiblings := t.order[newParentID]
	appended := make([]string, len(newSiblings), len(newSiblings)+1)
	copy(appended, newSiblings)
	next.order[newParentID] = append(appended, nodeID)

	return next, nil
}

// UpdateStatus returns a snapshot with the document's QC status set.
// A reference to an id not present in the tree is a deliberate no-op:
// the status feed may carry verdicts for documents filtered out of the
// current view, and those must not disturb state. Re-setting the same
// value also returns the receiver unchanged, which makes the operation
// idempotent.
func (t *Tree) UpdateStatus(nodeID string, status QCStatus) *Tree {
	node, ok := t.nodes[nodeID]
	if !ok || node.Kind != KindDocument || node.QCStatus == status {
		return t
	}

	next := t.clone()
	node.QCStatus = status
	next.nodes[nodeID] = node
	return next
}

// SnapshotOrder flattens the current leaf ordering per folder, in
// taxonomy folder order, for durable persistence. Feeding the entries
// back through NewTree reproduces the same parent/order relationships.
func (t *Tree) SnapshotOrder() []OrderEntry {
	var entries []OrderEntry
	for _, folderID := range t.order[RootID] {
		for i, docID := range t.order[folderID] {
			entries = append(entries, OrderEntry{
				DocumentID: docID,
				Module:     folderID,
				Position:   i,
			})
		}
	}
	return entries
}

// PopulatedModules returns the folder ids currently holding at least one
// document, in taxonomy order. The advisor sends these so the pipeline
// can flag redundant or inconsistent placements across modules.
func (t *Tree) PopulatedModules() []string {
	var out []string
	for _, folderID := range t.order[RootID] {
		if len(t.order[folderID]) > 0 {
			out = append(out, folderID)
		}
	}
	return out
}

// Documents returns copies of every document leaf, grouped by folder in
// display order.
func (t *Tree) Documents() []Node {
	var out []Node
	for _, folderID := range t.order[RootID] {
		for _, docID := range t.order[folderID] {
			out = append(out, t.nodes[docID])
		}
	}
	return out
}

// clone copies the node and order maps. Order slices are shared with the
// receiver; callers replace, never mutate, the slices they touch.
func (t *Tree) clone() *Tree {
	next := &Tree{
		region: t.region,
		nodes:  make(map[string]Node, len(t.nodes)),
		order:  make(map[string][]string, len(t.order)),
	}
	for id, n := range t.nodes {
		next.nodes[id] = n
	}
	for id, children := range t.order {
		next.order[id] = children
	}
	return next
}
