package organizer

// CanMove decides whether dropping the dragged node onto the target is
// structurally legal: only documents move, and only onto module folders.
// Folders are fixed taxonomy, the root accepts no direct documents, and
// documents cannot nest. Dropping a document onto the folder it already
// lives in is legal and treated as an idempotent no-op by ApplyMove.
//
// The interaction layer evaluates this predicate before offering a drop
// target, so an illegal move never reaches the tree or the network.
func CanMove(dragged, target Node) bool {
	if dragged.Kind != KindDocument {
		return false
	}
	return target.Kind == KindFolder
}
