package node

// Cursor is a movable position over a Tree. Like a tree-sitter cursor it
// never leaves the subtree of the node it was last reset to. A Cursor is
// owned by a single traversal and must not be shared.
type Cursor struct {
	tree *Tree
	root int32
	idx  int32
}

// Reset moves the cursor to n and makes n its new root.
func (c *Cursor) Reset(n Node) {
	c.tree = n.tree
	c.root = n.idx
	c.idx = n.idx
}

// Node returns the node at the cursor.
func (c *Cursor) Node() Node {
	return Node{tree: c.tree, idx: c.idx}
}

// GotoFirstChild moves to the first child of the current node. It reports
// false, without moving, when there are no children.
func (c *Cursor) GotoFirstChild() bool {
	e := &c.tree.nodes[c.idx]
	if e.kidCount == 0 {
		return false
	}
	c.idx = c.tree.kids[e.kidStart]
	return true
}

// GotoNextSibling moves to the next sibling of the current node.
func (c *Cursor) GotoNextSibling() bool {
	if c.idx == c.root {
		return false
	}
	e := &c.tree.nodes[c.idx]
	p := &c.tree.nodes[e.parent]
	next := e.index + 1
	if next >= p.kidCount {
		return false
	}
	c.idx = c.tree.kids[p.kidStart+next]
	return true
}

// GotoParent moves to the parent of the current node.
func (c *Cursor) GotoParent() bool {
	if c.idx == c.root {
		return false
	}
	c.idx = c.tree.nodes[c.idx].parent
	return true
}
