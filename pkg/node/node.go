package node

import (
	"fmt"
	"iter"
	"unicode/utf8"
)

// Node is a handle to one node of a Tree. The zero Node is not valid;
// every method that can fail to produce a node reports that with a bool.
type Node struct {
	tree *Tree
	idx  int32
}

func (n Node) e() *entry {
	return &n.tree.nodes[n.idx]
}

func (n Node) at(idx int32) Node {
	return Node{tree: n.tree, idx: idx}
}

// Valid reports whether n refers to a node.
func (n Node) Valid() bool {
	return n.tree != nil
}

// Tree returns the tree that owns n.
func (n Node) Tree() *Tree {
	return n.tree
}

// ID returns a numeric id that is unique within the node's tree.
// Ids follow pre-order, so an ancestor always has a smaller id.
func (n Node) ID() int {
	return int(n.idx)
}

// Kind returns the grammar name of the node's kind.
func (n Node) Kind() string {
	return n.e().name
}

// KindID returns the numeric kind id.
func (n Node) KindID() uint16 {
	return n.e().kind
}

// FieldName returns the field this node occupies in its parent, or "".
func (n Node) FieldName() string {
	return n.e().field
}

// IsNamed reports whether the node is a named grammar rule rather than an
// anonymous token.
func (n Node) IsNamed() bool {
	return n.e().flags&flagNamed != 0
}

// IsError reports whether the node is an ERROR node.
func (n Node) IsError() bool {
	return n.e().flags&flagError != 0
}

// IsMissing reports whether the parser inserted the node to recover from an
// error.
func (n Node) IsMissing() bool {
	return n.e().flags&flagMissing != 0
}

// IsExtra reports whether the node is an extra, such as a comment.
func (n Node) IsExtra() bool {
	return n.e().flags&flagExtra != 0
}

// HasError reports whether the node is, or contains, a syntax error.
func (n Node) HasError() bool {
	return n.e().flags&flagHasError != 0
}

// StartByte returns the byte offset where the node starts.
func (n Node) StartByte() uint32 {
	return n.e().startByte
}

// EndByte returns the byte offset where the node ends.
func (n Node) EndByte() uint32 {
	return n.e().endByte
}

// StartPosition returns the row/column where the node starts.
func (n Node) StartPosition() Point {
	return n.e().start
}

// EndPosition returns the row/column where the node ends.
func (n Node) EndPosition() Point {
	return n.e().end
}

// StartRow returns the zero-based row where the node starts.
func (n Node) StartRow() uint32 {
	return n.e().start.Row
}

// EndRow returns the zero-based row where the node ends.
func (n Node) EndRow() uint32 {
	return n.e().end.Row
}

// Utf8Text returns the node's slice of source as a string. It reports false
// when the range falls outside source or is not valid UTF-8.
func (n Node) Utf8Text(source []byte) (string, bool) {
	e := n.e()
	if e.startByte > e.endByte || int(e.endByte) > len(source) {
		return "", false
	}
	b := source[e.startByte:e.endByte]
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// Text is Utf8Text over the source the tree was parsed from.
func (n Node) Text() (string, bool) {
	return n.Utf8Text(n.tree.source)
}

// Parent returns the node's parent. It reports false at the root.
func (n Node) Parent() (Node, bool) {
	p := n.e().parent
	if p < 0 {
		return Node{}, false
	}
	return n.at(p), true
}

// ChildCount returns the number of direct children.
func (n Node) ChildCount() int {
	return int(n.e().kidCount)
}

// Child returns the child at position i.
func (n Node) Child(i int) (Node, bool) {
	e := n.e()
	if i < 0 || i >= int(e.kidCount) {
		return Node{}, false
	}
	return n.at(n.tree.kids[e.kidStart+int32(i)]), true
}

// Children yields the direct children in source order. The sequence can be
// ranged over any number of times; ChildCount gives its length.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		e := n.e()
		for _, k := range n.tree.kids[e.kidStart : e.kidStart+e.kidCount] {
			if !yield(n.at(k)) {
				return
			}
		}
	}
}

// ChildByFieldName returns the first child stored under the given field.
func (n Node) ChildByFieldName(name string) (Node, bool) {
	for child := range n.Children() {
		if child.e().field == name {
			return child, true
		}
	}
	return Node{}, false
}

// NextSibling returns the next node under the same parent.
func (n Node) NextSibling() (Node, bool) {
	e := n.e()
	if e.parent < 0 {
		return Node{}, false
	}
	return n.at(e.parent).Child(int(e.index) + 1)
}

// PrevSibling returns the previous node under the same parent.
func (n Node) PrevSibling() (Node, bool) {
	e := n.e()
	if e.parent < 0 {
		return Node{}, false
	}
	return n.at(e.parent).Child(int(e.index) - 1)
}

// HasSibling reports whether another child of the node's parent has the
// given kind.
func (n Node) HasSibling(kind uint16) bool {
	parent, ok := n.Parent()
	if !ok {
		return false
	}
	for sibling := range parent.Children() {
		if sibling.idx != n.idx && sibling.KindID() == kind {
			return true
		}
	}
	return false
}

// IsChild reports whether any direct child has the given kind.
func (n Node) IsChild(kind uint16) bool {
	for child := range n.Children() {
		if child.KindID() == kind {
			return true
		}
	}
	return false
}

// GetParent returns the ancestor level steps above n. Level 0 is n itself.
func (n Node) GetParent(level int) (Node, bool) {
	cur := n
	for ; level > 0; level-- {
		p, ok := cur.Parent()
		if !ok {
			return Node{}, false
		}
		cur = p
	}
	return cur, true
}

// Cursor returns a new cursor positioned at n.
func (n Node) Cursor() *Cursor {
	return &Cursor{tree: n.tree, root: n.idx, idx: n.idx}
}

// String formats the node as its kind and one-based span.
func (n Node) String() string {
	if !n.Valid() {
		return "<invalid>"
	}
	e := n.e()
	return fmt.Sprintf("%s [%d:%d - %d:%d]", e.name,
		e.start.Row+1, e.start.Column+1, e.end.Row+1, e.end.Column+1)
}
