package node

// Subtree searches visit nodes in pre-order, left to right: a node before
// its children, children in source order. They use an explicit stack, so
// depth is bounded by memory rather than the goroutine stack.

// FirstOccurrence returns the first node of the subtree rooted at n, n
// included, whose kind satisfies pred.
func (n Node) FirstOccurrence(pred KindPred) (Node, bool) {
	var found Node
	ok := false
	n.walk(func(cur Node) bool {
		if pred(cur.KindID()) {
			found, ok = cur, true
			return false
		}
		return true
	})
	return found, ok
}

// AllOccurrences returns every node of the subtree rooted at n whose kind
// satisfies pred. Matches do not stop the search below them.
func (n Node) AllOccurrences(pred KindPred) []Node {
	var results []Node
	n.walk(func(cur Node) bool {
		if pred(cur.KindID()) {
			results = append(results, cur)
		}
		return true
	})
	return results
}

// ActOnNode calls action for every node of the subtree rooted at n.
func (n Node) ActOnNode(action func(Node)) {
	n.walk(func(cur Node) bool {
		action(cur)
		return true
	})
}

// FirstChild returns the first direct child whose kind satisfies pred.
func (n Node) FirstChild(pred KindPred) (Node, bool) {
	for child := range n.Children() {
		if pred(child.KindID()) {
			return child, true
		}
	}
	return Node{}, false
}

// ActOnChild calls action for every direct child of n.
func (n Node) ActOnChild(action func(Node)) {
	for child := range n.Children() {
		action(child)
	}
}

// walk drives the pre-order traversal until visit returns false.
func (n Node) walk(visit func(Node) bool) {
	cursor := n.Cursor()
	stack := []Node{n}
	var children []Node

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(cur) {
			return
		}

		cursor.Reset(cur)
		if !cursor.GotoFirstChild() {
			continue
		}
		for {
			children = append(children, cursor.Node())
			if !cursor.GotoNextSibling() {
				break
			}
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
		children = children[:0]
	}
}
