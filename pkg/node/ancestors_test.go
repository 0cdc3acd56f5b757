package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alternativeIf treats an if statement stored in the alternative field of
// another if statement as an else-if, which is how the Go grammar shapes
// "else if".
type alternativeIf struct{}

func (alternativeIf) IsElseIf(n Node) bool {
	if n.Kind() != "if_statement" || n.FieldName() != "alternative" {
		return false
	}
	p, ok := n.Parent()
	return ok && p.Kind() == "if_statement"
}

const elseIfChain = `package main

func chain(a, b, c, d bool) {
	if a {
	} else if b {
	} else if c {
	} else if d {
		work()
	}
}

func work() {}
`

func TestHasAncestor(t *testing.T) {
	tree := parsePython(t, "if a:\n    if b:\n        x\n")
	ifs := tree.Root().AllOccurrences(named(tree, "if_statement"))
	require.Len(t, ifs, 2)
	outer, inner := ifs[0], ifs[1]

	idents := tree.Root().AllOccurrences(named(tree, "identifier"))
	require.Len(t, idents, 3)
	x := idents[2]

	isIf := ByKind(named(tree, "if_statement"))
	assert.True(t, x.HasAncestor(isIf))
	assert.True(t, inner.HasAncestor(isIf))
	assert.False(t, outer.HasAncestor(isIf), "the node itself is not an ancestor")
	assert.False(t, tree.Root().HasAncestor(func(Node) bool { return true }))
}

func TestHasAncestors(t *testing.T) {
	tree := parsePython(t, "class C:\n    def m(self):\n        pass\n\ndef f():\n    pass\n")
	defs := tree.Root().AllOccurrences(named(tree, "function_definition"))
	require.Len(t, defs, 2)
	method, fn := defs[0], defs[1]

	block := named(tree, "block")
	class := named(tree, "class_definition")
	module := named(tree, "module")

	assert.True(t, method.HasAncestors([]KindPred{block}, class))
	assert.False(t, fn.HasAncestors([]KindPred{block}, class), "top-level function's parent is the module")
	assert.True(t, fn.HasAncestors(nil, module), "no intermediates tests the parent directly")
	assert.False(t, method.HasAncestors(nil, class), "the parent is a block, not the class")

	// An intermediate miss fails the whole query even if a later ancestor
	// would satisfy the target.
	assert.False(t, method.HasAncestors([]KindPred{class}, module))

	// Running out of ancestors fails.
	assert.False(t, tree.Root().HasAncestors(nil, Any))
	assert.False(t, method.HasAncestors([]KindPred{Any, Any, Any, Any}, Any))
}

func TestCountSpecificAncestorsExcludesContinuations(t *testing.T) {
	tree := parseGo(t, elseIfChain)
	calls := tree.Root().AllOccurrences(named(tree, "call_expression"))
	require.Len(t, calls, 1)
	call := calls[0]

	ifKind := named(tree, "if_statement")
	fnKind := named(tree, "function_declaration")

	ifs := 0
	for cur, ok := call.Parent(); ok; cur, ok = cur.Parent() {
		if ifKind(cur.KindID()) {
			ifs++
		}
	}
	require.Equal(t, 4, ifs, "three else-ifs under one head if")

	assert.Equal(t, 1, call.CountSpecificAncestors(ifKind, fnKind, alternativeIf{}))
	assert.Equal(t, 4, call.CountSpecificAncestors(ifKind, fnKind, nil), "nil checker excludes nothing")
}

func TestCountSpecificAncestorsStopsAtBoundary(t *testing.T) {
	src := `package main

func outer(a bool) {
	if a {
		f := func() {
			if a {
				for {
					work()
				}
			}
		}
		f()
	}
}

func work() {}
`
	tree := parseGo(t, src)
	var call Node
	for _, c := range tree.Root().AllOccurrences(named(tree, "call_expression")) {
		if s, _ := c.Text(); s == "work()" {
			call = c
		}
	}
	require.True(t, call.Valid())

	nesting := named(tree, "if_statement", "for_statement")
	funcs := named(tree, "function_declaration", "func_literal")

	assert.Equal(t, 2, call.CountSpecificAncestors(nesting, funcs, nil), "the outer if lies beyond the closure boundary")
	assert.Equal(t, 3, call.CountSpecificAncestors(nesting, func(uint16) bool { return false }, nil), "no boundary counts to the root")
	assert.Equal(t, 0, tree.Root().CountSpecificAncestors(Any, func(uint16) bool { return false }, nil))
}

func TestCountSpecificAncestorsStopTakesPrecedence(t *testing.T) {
	tree := parseGo(t, elseIfChain)
	calls := tree.Root().AllOccurrences(named(tree, "call_expression"))
	require.Len(t, calls, 1)
	call := calls[0]

	p, ok := call.Parent()
	require.True(t, ok)
	parentKind := Is(p.KindID())

	assert.Equal(t, 0, call.CountSpecificAncestors(parentKind, parentKind, nil))
}

func TestTraverseChildren(t *testing.T) {
	tree := parseGo(t, goSample)
	root := tree.Root()

	fnKind := named(tree, "function_declaration")
	block := named(tree, "block")
	ret := named(tree, "return_statement")

	got, ok := root.TraverseChildren(fnKind, block)
	require.True(t, ok)
	assert.Equal(t, "block", got.Kind())
	fn, _ := got.Parent()
	name, _ := fn.ChildByFieldName("name")
	assert.Equal(t, "add", text(t, name), "first matching child wins at each level")

	self, ok := root.TraverseChildren()
	require.True(t, ok)
	assert.Equal(t, root, self)

	_, ok = root.TraverseChildren(block)
	assert.False(t, ok, "block is not a direct child of the file")

	_, ok = root.TraverseChildren(named(tree, "no_such_kind"), ret)
	assert.False(t, ok)

	// A failed first step aborts even though a descendant satisfies the
	// second predicate.
	_, found := root.FirstOccurrence(ret)
	require.True(t, found)
	_, ok = root.TraverseChildren(block, ret)
	assert.False(t, ok)
}
