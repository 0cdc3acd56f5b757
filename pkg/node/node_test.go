package node

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseGo(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), []byte(src), golang.GetLanguage())
	require.NoError(t, err)
	return tree
}

func parsePython(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), []byte(src), python.GetLanguage())
	require.NoError(t, err)
	return tree
}

func named(tree *Tree, names ...string) KindPred {
	return tree.Grammar().NamedKinds(names...).Pred()
}

func first(t *testing.T, tree *Tree, name string) Node {
	t.Helper()
	n, ok := tree.Root().FirstOccurrence(named(tree, name))
	require.True(t, ok, "no %s node", name)
	return n
}

func text(t *testing.T, n Node) string {
	t.Helper()
	s, ok := n.Text()
	require.True(t, ok)
	return s
}

const goSample = `package main

func add(a, b int) int {
	return a + b
}

func main() {
	add(1, 2)
}
`

func TestParseNilLanguage(t *testing.T) {
	_, err := Parse(context.Background(), []byte("x"), nil)
	assert.ErrorIs(t, err, ErrNilLanguage)

	_, err = FromSitter(nil, nil, golang.GetLanguage())
	assert.ErrorIs(t, err, ErrParse)
}

func TestFromSitterWithGrammar(t *testing.T) {
	lang := golang.GetLanguage()
	g := NewGrammar(lang)

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)

	var trees []*Tree
	for _, src := range []string{"package a\n", "package b\n\nfunc f() {}\n"} {
		raw, err := p.ParseCtx(context.Background(), nil, []byte(src))
		require.NoError(t, err)
		tree, err := FromSitterWithGrammar(raw, []byte(src), g)
		raw.Close()
		require.NoError(t, err)
		trees = append(trees, tree)
	}
	for _, tree := range trees {
		assert.Same(t, g, tree.Grammar())
		assert.Equal(t, "source_file", tree.Root().Kind())
	}

	_, err := FromSitterWithGrammar(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilLanguage)
}

func TestParseBuildsGrammarPerTree(t *testing.T) {
	a := parseGo(t, "package a\n")
	b := parseGo(t, "package b\n")
	assert.NotSame(t, a.Grammar(), b.Grammar(), "no grammar outlives its tree")
	assert.Equal(t, a.Grammar().KindCount(), b.Grammar().KindCount())
}

func TestTreeRoot(t *testing.T) {
	tree := parseGo(t, goSample)
	root := tree.Root()

	assert.Equal(t, "source_file", root.Kind())
	assert.Equal(t, 0, root.ID())
	assert.Equal(t, uint32(0), root.StartByte())
	assert.Equal(t, uint32(len(goSample)), root.EndByte())
	assert.False(t, root.HasError())
	assert.True(t, root.IsNamed())
	assert.Equal(t, []byte(goSample), tree.Source())

	_, ok := root.Parent()
	assert.False(t, ok, "root has no parent")
}

func TestNodeByID(t *testing.T) {
	tree := parseGo(t, goSample)

	for id := 0; id < tree.Len(); id++ {
		n, ok := tree.NodeByID(id)
		require.True(t, ok)
		assert.Equal(t, id, n.ID())
	}

	_, ok := tree.NodeByID(-1)
	assert.False(t, ok)
	_, ok = tree.NodeByID(tree.Len())
	assert.False(t, ok)
}

func TestNodeIdentityIsComparable(t *testing.T) {
	tree := parseGo(t, goSample)
	fn := first(t, tree, "function_declaration")

	again, ok := tree.Root().FirstOccurrence(named(tree, "function_declaration"))
	require.True(t, ok)
	assert.Equal(t, fn, again)
	assert.Equal(t, fn.ID(), again.ID())
}

func TestKindAndKindIDAgree(t *testing.T) {
	tree := parseGo(t, goSample)
	g := tree.Grammar()

	tree.Root().ActOnNode(func(n Node) {
		assert.Equal(t, n.Kind(), g.KindName(n.KindID()), "node %v", n)
	})
}

func TestChildrenAndChildCount(t *testing.T) {
	tree := parseGo(t, goSample)
	fn := first(t, tree, "function_declaration")

	var kids []Node
	for c := range fn.Children() {
		kids = append(kids, c)
	}
	require.Len(t, kids, fn.ChildCount())

	for i, k := range kids {
		c, ok := fn.Child(i)
		require.True(t, ok)
		assert.Equal(t, k, c)

		p, ok := k.Parent()
		require.True(t, ok)
		assert.Equal(t, fn, p)
	}

	// Children can be ranged over again from the start.
	count := 0
	for range fn.Children() {
		count++
	}
	assert.Equal(t, len(kids), count)

	_, ok := fn.Child(-1)
	assert.False(t, ok)
	_, ok = fn.Child(fn.ChildCount())
	assert.False(t, ok)
}

func TestChildrenInSourceOrder(t *testing.T) {
	tree := parseGo(t, goSample)

	tree.Root().ActOnNode(func(n Node) {
		var prev uint32
		for c := range n.Children() {
			assert.GreaterOrEqual(t, c.StartByte(), prev)
			prev = c.StartByte()
		}
	})
}

func TestLeafHasNoChildren(t *testing.T) {
	tree := parseGo(t, goSample)
	id := first(t, tree, "identifier")

	assert.Equal(t, 0, id.ChildCount())
	for range id.Children() {
		t.Fatal("leaf yielded a child")
	}

	_, ok := id.FirstChild(Any)
	assert.False(t, ok)

	called := false
	id.ActOnChild(func(Node) { called = true })
	assert.False(t, called)
}

func TestSiblings(t *testing.T) {
	tree := parseGo(t, goSample)
	fns := tree.Root().AllOccurrences(named(tree, "function_declaration"))
	require.Len(t, fns, 2)

	next, ok := fns[0].NextSibling()
	require.True(t, ok)
	back, ok := next.PrevSibling()
	require.True(t, ok)
	assert.Equal(t, fns[0], back)

	reached := false
	for cur, ok := fns[0].NextSibling(); ok; cur, ok = cur.NextSibling() {
		if cur == fns[1] {
			reached = true
		}
	}
	assert.True(t, reached, "walking next siblings reaches the second function")

	last, ok := tree.Root().Child(tree.Root().ChildCount() - 1)
	require.True(t, ok)
	_, ok = last.NextSibling()
	assert.False(t, ok)

	firstChild, ok := tree.Root().Child(0)
	require.True(t, ok)
	_, ok = firstChild.PrevSibling()
	assert.False(t, ok)

	_, ok = tree.Root().NextSibling()
	assert.False(t, ok)
}

func TestHasSiblingAndIsChild(t *testing.T) {
	tree := parseGo(t, goSample)
	fns := tree.Root().AllOccurrences(named(tree, "function_declaration"))
	require.Len(t, fns, 2)
	pkg := first(t, tree, "package_clause")
	fnKind := fns[0].KindID()

	assert.True(t, fns[0].HasSibling(fnKind), "the other function is a sibling")
	assert.True(t, fns[0].HasSibling(pkg.KindID()))
	assert.True(t, tree.Root().IsChild(fnKind))
	assert.False(t, fns[0].IsChild(fnKind))

	assert.False(t, pkg.HasSibling(pkg.KindID()), "a node is not its own sibling")
	assert.False(t, tree.Root().HasSibling(fnKind), "root has no siblings")
}

func TestChildByFieldName(t *testing.T) {
	tree := parseGo(t, goSample)
	fn := first(t, tree, "function_declaration")

	name, ok := fn.ChildByFieldName("name")
	require.True(t, ok)
	assert.Equal(t, "add", text(t, name))
	assert.Equal(t, "name", name.FieldName())

	body, ok := fn.ChildByFieldName("body")
	require.True(t, ok)
	assert.Equal(t, "block", body.Kind())

	_, ok = fn.ChildByFieldName("no_such_field")
	assert.False(t, ok)
	assert.Equal(t, "", tree.Root().FieldName())
}

func TestSpans(t *testing.T) {
	tree := parseGo(t, goSample)
	fns := tree.Root().AllOccurrences(named(tree, "function_declaration"))
	require.Len(t, fns, 2)

	assert.Equal(t, uint32(2), fns[0].StartRow())
	assert.Equal(t, uint32(4), fns[0].EndRow())
	assert.Equal(t, Point{Row: 2, Column: 0}, fns[0].StartPosition())
	assert.Equal(t, Point{Row: 4, Column: 1}, fns[0].EndPosition())
	assert.Equal(t, "function_declaration [3:1 - 5:2]", fns[0].String())

	src, ok := fns[1].Text()
	require.True(t, ok)
	assert.Equal(t, "func main() {\n\tadd(1, 2)\n}", src)
}

func TestUtf8Text(t *testing.T) {
	src := "package p\n\nvar s = \"\xff\"\n"
	tree := parseGo(t, src)

	lit := first(t, tree, "interpreted_string_literal")
	_, ok := lit.Text()
	assert.False(t, ok, "invalid UTF-8 yields no text")

	id := first(t, tree, "package_identifier")
	s, ok := id.Utf8Text([]byte(src))
	require.True(t, ok)
	assert.Equal(t, "p", s)

	_, ok = tree.Root().Utf8Text([]byte("short"))
	assert.False(t, ok, "range outside the buffer yields no text")
}

func TestHasError(t *testing.T) {
	tree := parseGo(t, "package main\n\nfunc broken( {\n")
	root := tree.Root()
	require.True(t, root.HasError())

	flagged := 0
	root.ActOnNode(func(n Node) {
		if n.IsError() || n.IsMissing() {
			flagged++
			assert.True(t, n.HasError())
			for cur, ok := n.Parent(); ok; cur, ok = cur.Parent() {
				assert.True(t, cur.HasError(), "ancestor %v of an error", cur)
			}
		}
	})
	assert.Positive(t, flagged)

	clean := parseGo(t, goSample)
	clean.Root().ActOnNode(func(n Node) {
		assert.False(t, n.HasError())
	})
}

func TestGetParent(t *testing.T) {
	tree := parsePython(t, "if a:\n    if b:\n        x\n")
	x := tree.Root().AllOccurrences(named(tree, "identifier"))
	require.Len(t, x, 3)
	leaf := x[2]

	self, ok := leaf.GetParent(0)
	require.True(t, ok)
	assert.Equal(t, leaf, self)

	p, ok := leaf.GetParent(1)
	require.True(t, ok)
	assert.Equal(t, "expression_statement", p.Kind())

	depth := 0
	for cur, ok := leaf.Parent(); ok; cur, ok = cur.Parent() {
		depth++
	}
	root, ok := leaf.GetParent(depth)
	require.True(t, ok)
	assert.Equal(t, tree.Root(), root)

	_, ok = leaf.GetParent(depth + 1)
	assert.False(t, ok)
}

func TestInvalidNodeString(t *testing.T) {
	var n Node
	assert.False(t, n.Valid())
	assert.Equal(t, "<invalid>", n.String())
}
