package node

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

var (
	// ErrNilLanguage is returned when a tree is requested without a grammar.
	ErrNilLanguage = errors.New("node: nil language")

	// ErrParse is returned when tree-sitter produces no tree for the input.
	ErrParse = errors.New("node: parse failed")
)

// errorKindID is the kind id tree-sitter assigns to ERROR nodes.
const errorKindID = ^uint16(0)

const (
	flagNamed uint8 = 1 << iota
	flagMissing
	flagExtra
	flagError
	flagHasError
)

// entry is one row of the flattened node table.
type entry struct {
	kind      uint16
	flags     uint8
	name      string
	field     string
	startByte uint32
	endByte   uint32
	start     Point
	end       Point
	parent    int32
	kidStart  int32
	kidCount  int32
	index     int32
}

// Point is a zero-based row/column position in the source.
type Point struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// Tree owns the parsed structure of one source unit.
// It is never modified after construction.
type Tree struct {
	source  []byte
	grammar *Grammar
	nodes   []entry
	kids    []int32
}

// Parse parses source with lang and flattens the result into a Tree.
func Parse(ctx context.Context, source []byte, lang *sitter.Language) (*Tree, error) {
	if lang == nil {
		return nil, ErrNilLanguage
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)

	raw, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer raw.Close()

	return FromSitter(raw, source, lang)
}

// FromSitter flattens an existing tree-sitter tree, reading the kind
// tables from lang. The caller keeps ownership of raw and may close it
// once FromSitter returns.
func FromSitter(raw *sitter.Tree, source []byte, lang *sitter.Language) (*Tree, error) {
	if lang == nil {
		return nil, ErrNilLanguage
	}
	return FromSitterWithGrammar(raw, source, NewGrammar(lang))
}

// FromSitterWithGrammar is FromSitter with kind tables built once by the
// caller, for flattening many trees of the same language.
func FromSitterWithGrammar(raw *sitter.Tree, source []byte, g *Grammar) (*Tree, error) {
	if g == nil {
		return nil, ErrNilLanguage
	}
	if raw == nil {
		return nil, ErrParse
	}
	root := raw.RootNode()
	if root == nil || root.IsNull() {
		return nil, ErrParse
	}

	t := &Tree{
		source:  source,
		grammar: g,
	}
	t.flatten(root)
	t.link()
	return t, nil
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return Node{tree: t, idx: 0}
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// NodeByID returns the node with the given id.
func (t *Tree) NodeByID(id int) (Node, bool) {
	if id < 0 || id >= len(t.nodes) {
		return Node{}, false
	}
	return Node{tree: t, idx: int32(id)}, true
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Grammar returns the kind tables of the tree's language.
func (t *Tree) Grammar() *Grammar {
	return t.grammar
}

// flatten walks the tree-sitter tree once in pre-order and records every
// node. Parents always precede their children in t.nodes.
func (t *Tree) flatten(root *sitter.Node) {
	c := sitter.NewTreeCursor(root)
	defer c.Close()

	names := make(map[uint16]string, 64)
	fields := make(map[string]string, 16)

	add := func(parent int32) int32 {
		n := c.CurrentNode()
		e := entry{
			kind:      uint16(n.Symbol()),
			startByte: n.StartByte(),
			endByte:   n.EndByte(),
			parent:    parent,
		}

		name, ok := names[e.kind]
		if !ok {
			name = n.Type()
			names[e.kind] = name
		}
		e.name = name

		if f := c.CurrentFieldName(); f != "" {
			interned, ok := fields[f]
			if !ok {
				fields[f] = f
				interned = f
			}
			e.field = interned
		}

		sp, ep := n.StartPoint(), n.EndPoint()
		e.start = Point{Row: sp.Row, Column: sp.Column}
		e.end = Point{Row: ep.Row, Column: ep.Column}

		if n.IsNamed() {
			e.flags |= flagNamed
		}
		if n.IsMissing() {
			e.flags |= flagMissing | flagHasError
		}
		if n.IsExtra() {
			e.flags |= flagExtra
		}
		if e.kind == errorKindID || name == "ERROR" {
			e.flags |= flagError | flagHasError
		}

		t.nodes = append(t.nodes, e)
		return int32(len(t.nodes) - 1)
	}

	t.nodes = make([]entry, 0, 256)
	add(-1)

	var parents []int32
	cur := int32(0)
walk:
	for {
		if c.GoToFirstChild() {
			parents = append(parents, cur)
			cur = add(cur)
			continue
		}
		for {
			if len(parents) == 0 {
				break walk
			}
			if c.GoToNextSibling() {
				cur = add(parents[len(parents)-1])
				break
			}
			c.GoToParent()
			parents = parents[:len(parents)-1]
		}
	}
}

// link builds the flat child index and propagates error flags upward.
func (t *Tree) link() {
	counts := make([]int32, len(t.nodes))
	for i := 1; i < len(t.nodes); i++ {
		counts[t.nodes[i].parent]++
	}

	var offset int32
	for i := range t.nodes {
		t.nodes[i].kidStart = offset
		offset += counts[i]
	}

	t.kids = make([]int32, offset)
	for i := 1; i < len(t.nodes); i++ {
		p := &t.nodes[t.nodes[i].parent]
		t.nodes[i].index = p.kidCount
		t.kids[p.kidStart+p.kidCount] = int32(i)
		p.kidCount++
	}

	// Children have larger indices than their parent, so one reverse pass
	// sees every descendant before its ancestors.
	for i := len(t.nodes) - 1; i > 0; i-- {
		if t.nodes[i].flags&flagHasError != 0 {
			t.nodes[t.nodes[i].parent].flags |= flagHasError
		}
	}
}
