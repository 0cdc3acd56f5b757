package complexity

import (
	"github.com/panbanda/cstq/pkg/checker"
	"github.com/panbanda/cstq/pkg/node"
)

// Functions returns every function, method, and closure under root in
// pre-order. Nested functions are included after their enclosing one.
func Functions(root node.Node, c checker.Checker) []node.Node {
	return root.AllOccurrences(c.Kinds().Functions.Pred())
}

// Nesting returns how many nesting constructs enclose n within its function.
// Else-if continuations do not add a level.
func Nesting(n node.Node, c checker.Checker) int {
	k := c.Kinds()
	return n.CountSpecificAncestors(k.Nesting().Pred(), k.Functions.Pred(), c)
}

// FunctionName returns the declared name of fn, or the name it is bound to
// for anonymous functions assigned to a variable or key. It returns
// "<anonymous>" otherwise.
func FunctionName(fn node.Node) string {
	if name, ok := fn.ChildByFieldName("name"); ok {
		if s, ok := name.Text(); ok {
			return s
		}
	}

	// C and C++ nest the identifier in declarators.
	if d, ok := fn.ChildByFieldName("declarator"); ok {
		for {
			inner, ok := d.ChildByFieldName("declarator")
			if !ok {
				break
			}
			d = inner
		}
		if s, ok := d.Text(); ok {
			return s
		}
	}

	if parent, ok := fn.Parent(); ok {
		for _, field := range []string{"name", "key", "left"} {
			if name, ok := parent.ChildByFieldName(field); ok && name != fn {
				if s, ok := name.Text(); ok {
					return s
				}
			}
		}
	}
	return "<anonymous>"
}

// owned returns the nodes of fn's subtree that do not belong to a nested
// function. Nested function nodes themselves are excluded.
func owned(fn node.Node, c checker.Checker) []node.Node {
	var out []node.Node
	stack := []node.Node{fn}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for child := range n.Children() {
			if !c.IsFunc(child) {
				stack = append(stack, child)
			}
		}
	}
	return out
}

// isOperator reports whether tok sits between two operands.
func isOperator(tok node.Node) bool {
	_, hasPrev := tok.PrevSibling()
	_, hasNext := tok.NextSibling()
	return hasPrev && hasNext
}

// continuesRun reports whether the logical operator tok extends a run of the
// same operator, as the second && in a && b && c does.
func continuesRun(tok node.Node) bool {
	parent, ok := tok.Parent()
	if !ok {
		return false
	}
	left, ok := parent.Child(0)
	return ok && left.IsChild(tok.KindID())
}

// CountDecisionPoints counts the branches of fn: decision constructs plus
// logical operators. Nested functions are not counted.
func CountDecisionPoints(fn node.Node, c checker.Checker) uint32 {
	k := c.Kinds()
	decisions := k.Decisions()

	var count uint32
	for _, n := range owned(fn, c) {
		kind := n.KindID()
		switch {
		case decisions.Has(kind):
			count++
		case k.LogicalOps.Has(kind) && isOperator(n):
			count++
		}
	}
	return count
}

// Cyclomatic returns 1 + CountDecisionPoints(fn).
func Cyclomatic(fn node.Node, c checker.Checker) uint32 {
	return 1 + CountDecisionPoints(fn, c)
}

// CognitiveComplexity scores how hard fn is to follow. Nesting constructs
// add 1 plus their nesting level; else-if continuations, plain else
// branches, and jumps add 1; each run of one logical operator adds 1.
func CognitiveComplexity(fn node.Node, c checker.Checker) uint32 {
	k := c.Kinds()
	nesting := k.Nesting()

	var total uint32
	for _, n := range owned(fn, c) {
		kind := n.KindID()
		switch {
		case c.IsElseIf(n):
			total++
		case nesting.Has(kind):
			total += 1 + uint32(Nesting(n, c))
		case k.Else.Has(kind):
			if isPlainElse(n, k) {
				total++
			}
		case k.Jumps.Has(kind):
			total++
		case k.LogicalOps.Has(kind):
			if isOperator(n) && !continuesRun(n) {
				total++
			}
		}
	}
	return total
}

// isPlainElse reports whether the else keyword opens a final branch rather
// than an else-if or the tail of a ternary.
func isPlainElse(kw node.Node, k checker.Kinds) bool {
	if parent, ok := kw.Parent(); ok && k.Ternaries.Has(parent.KindID()) {
		return false
	}
	next, ok := kw.NextSibling()
	return !ok || !k.Conditionals.Has(next.KindID())
}

// MaxNesting returns the deepest nesting reached inside fn: 1 for a single
// if, 2 for a loop inside it, and so on.
func MaxNesting(fn node.Node, c checker.Checker) int {
	nesting := c.Kinds().Nesting()

	deepest := 0
	for _, n := range owned(fn, c) {
		if !nesting.Has(n.KindID()) || c.IsElseIf(n) {
			continue
		}
		if d := Nesting(n, c) + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// AnalyzeFunction computes the metrics of fn.
func AnalyzeFunction(fn node.Node, c checker.Checker) FunctionResult {
	start, end := fn.StartRow()+1, fn.EndRow()+1
	return FunctionResult{
		Name:      FunctionName(fn),
		StartLine: start,
		EndLine:   end,
		Method:    c.IsMethod(fn),
		Nested:    fn.HasAncestor(c.IsFunc),
		HasError:  fn.HasError(),
		Metrics: Metrics{
			Cyclomatic: Cyclomatic(fn, c),
			Cognitive:  CognitiveComplexity(fn, c),
			MaxNesting: MaxNesting(fn, c),
			Lines:      int(end - start + 1),
		},
	}
}
