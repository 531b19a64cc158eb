package workspace

import "fmt"

// Workspace holds blocks by ID in creation order.
type Workspace struct {
	blocks map[string]*Block
	order  []string
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{blocks: make(map[string]*Block)}
}

// NewBlock creates a block and adds it to the workspace.
// Returns an error if the ID is already taken.
func (w *Workspace) NewBlock(id, blockType string) (*Block, error) {
	if _, ok := w.blocks[id]; ok {
		return nil, fmt.Errorf("block %s already exists", id)
	}
	b := NewBlock(id, blockType)
	w.blocks[id] = b
	w.order = append(w.order, id)
	return b, nil
}

// Block returns the block with the given ID.
func (w *Workspace) Block(id string) (*Block, bool) {
	b, ok := w.blocks[id]
	return b, ok
}

// IDs returns block IDs in creation order.
func (w *Workspace) IDs() []string {
	return append([]string(nil), w.order...)
}

// Len returns the number of blocks.
func (w *Workspace) Len() int {
	return len(w.order)
}
