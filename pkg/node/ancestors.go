package node

// ElseIfChecker classifies nodes that continue an existing conditional
// (an "else if") instead of opening a new nesting level.
type ElseIfChecker interface {
	IsElseIf(n Node) bool
}

// HasAncestor reports whether any ancestor of n satisfies pred. The node
// itself is not tested.
func (n Node) HasAncestor(pred NodePred) bool {
	cur := n
	for {
		p, ok := cur.Parent()
		if !ok {
			return false
		}
		if pred(p) {
			return true
		}
		cur = p
	}
}

// HasAncestors matches a fixed upward path. Starting at the parent of n,
// each intermediate predicate must match one ancestor in turn; the ancestor
// after the last intermediate must then satisfy target. Any missing or
// mismatched step makes the whole query false.
func (n Node) HasAncestors(intermediate []KindPred, target KindPred) bool {
	cur := n
	for _, pred := range intermediate {
		p, ok := cur.Parent()
		if !ok || !pred(p.KindID()) {
			return false
		}
		cur = p
	}
	p, ok := cur.Parent()
	return ok && target(p.KindID())
}

// CountSpecificAncestors walks upward from the parent of n and counts the
// ancestors whose kind satisfies counted, until an ancestor satisfies stop
// or the root is passed. A stop ancestor is never counted, and ancestors
// that cont classifies as else-if continuations are skipped. cont may be nil.
func (n Node) CountSpecificAncestors(counted, stop KindPred, cont ElseIfChecker) int {
	count := 0
	cur := n
	for {
		p, ok := cur.Parent()
		if !ok {
			return count
		}
		kind := p.KindID()
		if stop(kind) {
			return count
		}
		if counted(kind) && (cont == nil || !cont.IsElseIf(p)) {
			count++
		}
		cur = p
	}
}

// TraverseChildren follows a path of direct children: for each predicate in
// order it descends into the first child of the current node that matches.
// It reports false as soon as a level has no match. An empty path returns n.
func (n Node) TraverseChildren(preds ...KindPred) (Node, bool) {
	cur := n
	for _, pred := range preds {
		next, ok := cur.FirstChild(pred)
		if !ok {
			return Node{}, false
		}
		cur = next
	}
	return cur, true
}
