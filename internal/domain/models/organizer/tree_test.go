package organizer

import (
	"errors"
	"reflect"
	"testing"
)

func testModules() []ModuleFolder {
	return []ModuleFolder{
		{Code: "m1", Title: "Administrative Information"},
		{Code: "m2", Title: "Summaries"},
		{Code: "m3", Title: "Quality"},
	}
}

func testDocs() []DocumentRecord {
	return []DocumentRecord{
		{ID: "doc-a", Title: "Cover Letter", Module: "m1", DocumentType: "cover-letter", Status: StatusPassed},
		{ID: "doc-b", Title: "Quality Overall Summary", Module: "m2", DocumentType: "summary", Status: StatusPending},
		{ID: "doc-c", Title: "Batch Analysis", Module: "m3", DocumentType: "report", Status: StatusUnknown},
	}
}

func mustTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := NewTree("us", testModules(), testDocs())
	if err != nil {
		t.Fatalf("NewTree() error = %v", err)
	}
	return tree
}

func childIDs(t *testing.T, tree *Tree, parentID string) []string {
	t.Helper()
	children := tree.Children(parentID)
	ids := make([]string, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestNewTree(t *testing.T) {
	tree := mustTree(t)

	// Root, three folders, three documents.
	if got := tree.Len(); got != 7 {
		t.Errorf("Len() = %d, want 7", got)
	}
	if tree.Region() != "us" {
		t.Errorf("Region() = %q, want %q", tree.Region(), "us")
	}

	root, ok := tree.Node(RootID)
	if !ok {
		t.Fatal("root node missing")
	}
	if root.Kind != KindRoot {
		t.Errorf("root kind = %q, want %q", root.Kind, KindRoot)
	}

	// Folders in taxonomy order under the root.
	if got := childIDs(t, tree, RootID); !reflect.DeepEqual(got, []string{"m1", "m2", "m3"}) {
		t.Errorf("root children = %v, want [m1 m2 m3]", got)
	}

	// Folder labels come from the taxonomy titles.
	m1, _ := tree.Node("m1")
	if m1.Label != "Administrative Information" {
		t.Errorf("m1 label = %q", m1.Label)
	}
	if m1.ParentID != RootID {
		t.Errorf("m1 parent = %q, want root", m1.ParentID)
	}

	// Each document under its stored module.
	for _, tc := range []struct{ docID, wantParent string }{
		{"doc-a", "m1"},
		{"doc-b", "m2"},
		{"doc-c", "m3"},
	} {
		doc, ok := tree.Node(tc.docID)
		if !ok {
			t.Fatalf("document %s missing", tc.docID)
		}
		if doc.ParentID != tc.wantParent {
			t.Errorf("%s parent = %q, want %q", tc.docID, doc.ParentID, tc.wantParent)
		}
	}
}

func TestNewTreePlacementFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		doc        DocumentRecord
		wantParent string
	}{
		{
			name:       "stored module wins over hint",
			doc:        DocumentRecord{ID: "d", Module: "m2", ModuleHint: "m3"},
			wantParent: "m2",
		},
		{
			name:       "unknown module falls back to hint",
			doc:        DocumentRecord{ID: "d", Module: "m9", ModuleHint: "m3"},
			wantParent: "m3",
		},
		{
			name:       "no usable module or hint falls back to first folder",
			doc:        DocumentRecord{ID: "d", Module: "m9", ModuleHint: "bogus"},
			wantParent: "m1",
		},
		{
			name:       "empty module and hint fall back to first folder",
			doc:        DocumentRecord{ID: "d"},
			wantParent: "m1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := NewTree("us", testModules(), []DocumentRecord{tt.doc})
			if err != nil {
				t.Fatalf("NewTree() error = %v", err)
			}
			doc, _ := tree.Node("d")
			if doc.ParentID != tt.wantParent {
				t.Errorf("parent = %q, want %q", doc.ParentID, tt.wantParent)
			}
		})
	}
}

func TestNewTreeRejectsBadInput(t *testing.T) {
	if _, err := NewTree("us", nil, nil); err == nil {
		t.Error("NewTree with no modules should fail")
	}

	dupModules := append(testModules(), ModuleFolder{Code: "m1", Title: "Duplicate"})
	if _, err := NewTree("us", dupModules, nil); err == nil {
		t.Error("NewTree with duplicate module codes should fail")
	}

	dupDocs := []DocumentRecord{
		{ID: "d", Module: "m1"},
		{ID: "d", Module: "m2"},
	}
	if _, err := NewTree("us", testModules(), dupDocs); err == nil {
		t.Error("NewTree with duplicate document ids should fail")
	}
}

func TestApplyMove(t *testing.T) {
	tree := mustTree(t)

	next, err := tree.ApplyMove("doc-a", "m3")
	if err != nil {
		t.Fatalf("ApplyMove() error = %v", err)
	}

	// The new snapshot reflects the move.
	moved, _ := next.Node("doc-a")
	if moved.ParentID != "m3" {
		t.Errorf("moved parent = %q, want m3", moved.ParentID)
	}
	if got := childIDs(t, next, "m1"); len(got) != 0 {
		t.Errorf("m1 children after move = %v, want empty", got)
	}
	if got := childIDs(t, next, "m3"); !reflect.DeepEqual(got, []string{"doc-c", "doc-a"}) {
		t.Errorf("m3 children after move = %v, want [doc-c doc-a]", got)
	}

	// The original snapshot is untouched.
	orig, _ := tree.Node("doc-a")
	if orig.ParentID != "m1" {
		t.Errorf("original snapshot mutated: doc-a parent = %q", orig.ParentID)
	}
	if got := childIDs(t, tree, "m1"); !reflect.DeepEqual(got, []string{"doc-a"}) {
		t.Errorf("original m1 children mutated: %v", got)
	}
}

func TestApplyMoveNoOp(t *testing.T) {
	tree := mustTree(t)

	next, err := tree.ApplyMove("doc-a", "m1")
	if err != nil {
		t.Fatalf("ApplyMove() error = %v", err)
	}
	if next != tree {
		t.Error("same-folder move should return the receiver unchanged")
	}
}

func TestApplyMoveRejections(t *testing.T) {
	tree := mustTree(t)

	tests := []struct {
		name   string
		nodeID string
		target string
	}{
		{"unknown node", "ghost", "m1"},
		{"unknown target", "doc-a", "ghost"},
		{"folder is not movable", "m1", "m2"},
		{"document onto root", "doc-a", RootID},
		{"document onto document", "doc-a", "doc-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.ApplyMove(tt.nodeID, tt.target)
			if !errors.Is(err, ErrInvalidMove) {
				t.Errorf("ApplyMove(%s, %s) error = %v, want ErrInvalidMove", tt.nodeID, tt.target, err)
			}
		})
	}

	// Rejected moves leave the snapshot intact.
	if got := childIDs(t, tree, "m1"); !reflect.DeepEqual(got, []string{"doc-a"}) {
		t.Errorf("tree mutated by rejected moves: m1 children = %v", got)
	}
}

func TestUpdateStatus(t *testing.T) {
	tree := mustTree(t)

	next := tree.UpdateStatus("doc-b", StatusPassed)
	if next == tree {
		t.Fatal("status change should produce a new snapshot")
	}
	updated, _ := next.Node("doc-b")
	if updated.QCStatus != StatusPassed {
		t.Errorf("status = %q, want passed", updated.QCStatus)
	}

	// Original snapshot keeps the old value.
	orig, _ := tree.Node("doc-b")
	if orig.QCStatus != StatusPending {
		t.Errorf("original snapshot mutated: status = %q", orig.QCStatus)
	}

	// Idempotent: same value returns the receiver.
	if again := next.UpdateStatus("doc-b", StatusPassed); again != next {
		t.Error("re-setting the same status should return the receiver")
	}

	// Unknown ids and non-documents are ignored.
	if got := tree.UpdateStatus("ghost", StatusFailed); got != tree {
		t.Error("unknown id should be a no-op")
	}
	if got := tree.UpdateStatus("m1", StatusFailed); got != tree {
		t.Error("folder id should be a no-op")
	}
}

func TestSnapshotOrderRoundTrip(t *testing.T) {
	tree := mustTree(t)

	moved, err := tree.ApplyMove("doc-a", "m2")
	if err != nil {
		t.Fatalf("ApplyMove() error = %v", err)
	}

	entries := moved.SnapshotOrder()
	want := []OrderEntry{
		{DocumentID: "doc-b", Module: "m2", Position: 0},
		{DocumentID: "doc-a", Module: "m2", Position: 1},
		{DocumentID: "doc-c", Module: "m3", Position: 0},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("SnapshotOrder() = %v, want %v", entries, want)
	}

	// Rebuilding from the persisted entries reproduces the layout.
	byID := make(map[string]DocumentRecord)
	for _, d := range testDocs() {
		byID[d.ID] = d
	}
	var records []DocumentRecord
	for _, e := range entries {
		rec := byID[e.DocumentID]
		rec.Module = e.Module
		records = append(records, rec)
	}
	rebuilt, err := NewTree("us", testModules(), records)
	if err != nil {
		t.Fatalf("NewTree() error = %v", err)
	}
	for _, folderID := range []string{"m1", "m2", "m3"} {
		got := childIDs(t, rebuilt, folderID)
		wantIDs := childIDs(t, moved, folderID)
		if !reflect.DeepEqual(got, wantIDs) {
			t.Errorf("rebuilt %s children = %v, want %v", folderID, got, wantIDs)
		}
	}
}

func TestPopulatedModules(t *testing.T) {
	tree := mustTree(t)

	if got := tree.PopulatedModules(); !reflect.DeepEqual(got, []string{"m1", "m2", "m3"}) {
		t.Errorf("PopulatedModules() = %v", got)
	}

	moved, err := tree.ApplyMove("doc-a", "m2")
	if err != nil {
		t.Fatalf("ApplyMove() error = %v", err)
	}
	if got := moved.PopulatedModules(); !reflect.DeepEqual(got, []string{"m2", "m3"}) {
		t.Errorf("PopulatedModules() after move = %v, want [m2 m3]", got)
	}
}

func TestBuildView(t *testing.T) {
	tree := mustTree(t)
	view := BuildView(tree)

	if view.Region != "us" {
		t.Errorf("view region = %q", view.Region)
	}
	if len(view.Folders) != 3 {
		t.Fatalf("view folders = %d, want 3", len(view.Folders))
	}
	if view.Folders[0].ID != "m1" || view.Folders[0].Label != "Administrative Information" {
		t.Errorf("first folder = %+v", view.Folders[0])
	}
	if len(view.Folders[0].Documents) != 1 || view.Folders[0].Documents[0].ID != "doc-a" {
		t.Errorf("m1 documents = %+v", view.Folders[0].Documents)
	}
	if view.Folders[0].Documents[0].QCStatus != StatusPassed {
		t.Errorf("doc-a status = %q", view.Folders[0].Documents[0].QCStatus)
	}
	// Empty folders still render, with an empty (not nil) document list.
	empty, err := NewTree("us", testModules(), nil)
	if err != nil {
		t.Fatalf("NewTree() error = %v", err)
	}
	emptyView := BuildView(empty)
	if emptyView.Folders[0].Documents == nil {
		t.Error("empty folder documents should be an empty slice, not nil")
	}
}
