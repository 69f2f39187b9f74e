package organizer

// TreeView is the wire representation of a tree snapshot: the fixed
// module folders in taxonomy order, each with its document leaves in
// display order (metadata only, no content).
type TreeView struct {
	Region  string           `json:"region"`
	Folders []FolderTreeNode `json:"folders"`
}

// FolderTreeNode represents one module folder in the tree view.
type FolderTreeNode struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Documents []DocumentTreeNode `json:"documents"`
}

// DocumentTreeNode represents a document leaf in the tree view.
type DocumentTreeNode struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	ModuleHint   string   `json:"module_hint,omitempty"`
	DocumentType string   `json:"document_type,omitempty"`
	QCStatus     QCStatus `json:"qc_status"`
}

// BuildView flattens a snapshot into its wire representation.
func BuildView(t *Tree) *TreeView {
	view := &TreeView{Region: t.Region()}
	for _, folder := range t.Children(RootID) {
		fn := FolderTreeNode{
			ID:        folder.ID,
			Label:     folder.Label,
			Documents: make([]DocumentTreeNode, 0),
		}
		for _, doc := range t.Children(folder.ID) {
			fn.Documents = append(fn.Documents, DocumentTreeNode{
				ID:           doc.ID,
				Label:        doc.Label,
				ModuleHint:   doc.ModuleHint,
				DocumentType: doc.DocumentType,
				QCStatus:     doc.QCStatus,
			})
		}
		view.Folders = append(view.Folders, fn)
	}
	return view
}
