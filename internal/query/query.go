// Package query answers structural questions about one parsed file. It is
// shared by the CLI and the MCP server.
package query

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/panbanda/cstq/pkg/checker"
	"github.com/panbanda/cstq/pkg/node"
	"github.com/panbanda/cstq/pkg/parser"
)

// ErrNoNode is returned when no node covers a requested position.
var ErrNoNode = errors.New("no node at position")

// NodeInfo is the serialized form of a node. Lines and columns are one-based.
type NodeInfo struct {
	ID        int    `json:"id" toon:"id"`
	Kind      string `json:"kind" toon:"kind"`
	Field     string `json:"field,omitempty" toon:"field"`
	Named     bool   `json:"named" toon:"named"`
	Depth     int    `json:"depth" toon:"depth"`
	StartLine uint32 `json:"start_line" toon:"start_line"`
	StartCol  uint32 `json:"start_col" toon:"start_col"`
	EndLine   uint32 `json:"end_line" toon:"end_line"`
	EndCol    uint32 `json:"end_col" toon:"end_col"`
	Error     bool   `json:"error,omitempty" toon:"error"`
	Missing   bool   `json:"missing,omitempty" toon:"missing"`
	Text      string `json:"text,omitempty" toon:"text"`
}

// Describe converts n at the given display depth.
func Describe(n node.Node, depth int) NodeInfo {
	start, end := n.StartPosition(), n.EndPosition()
	return NodeInfo{
		ID:        n.ID(),
		Kind:      n.Kind(),
		Field:     n.FieldName(),
		Named:     n.IsNamed(),
		Depth:     depth,
		StartLine: start.Row + 1,
		StartCol:  start.Column + 1,
		EndLine:   end.Row + 1,
		EndCol:    end.Column + 1,
		Error:     n.IsError(),
		Missing:   n.IsMissing(),
	}
}

// Line formats the node as one indented line of a tree dump.
func (i NodeInfo) Line() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", i.Depth))
	if i.Field != "" {
		b.WriteString(i.Field)
		b.WriteString(": ")
	}
	if i.Named {
		b.WriteString(i.Kind)
	} else {
		fmt.Fprintf(&b, "%q", i.Kind)
	}
	fmt.Fprintf(&b, " [%d:%d - %d:%d] #%d", i.StartLine, i.StartCol, i.EndLine, i.EndCol, i.ID)
	if i.Error {
		b.WriteString(" ERROR")
	}
	if i.Missing {
		b.WriteString(" MISSING")
	}
	if i.Text != "" {
		b.WriteString("  ")
		b.WriteString(i.Text)
	}
	return b.String()
}

// Lines formats infos with Line.
func Lines(infos []NodeInfo) []string {
	lines := make([]string, len(infos))
	for i, info := range infos {
		lines[i] = info.Line()
	}
	return lines
}

// ResolveKinds maps kind names to the grammar's ids, named or anonymous.
func ResolveKinds(g *node.Grammar, names []string) (node.KindSet, error) {
	var sets []node.KindSet
	for _, name := range names {
		ks := g.Kinds(name)
		if ks.Len() == 0 {
			return node.KindSet{}, fmt.Errorf("unknown node kind %q", name)
		}
		sets = append(sets, ks)
	}
	return node.NewKindSet().Union(sets...), nil
}

// Tree lists every node in pre-order. With named set, anonymous nodes are
// left out and depth counts named ancestors only. maxDepth < 0 means no limit.
func Tree(res *parser.ParseResult, named bool, maxDepth int) []NodeInfo {
	// Parents precede children in id order, so depth is filled top down.
	depth := make([]int, res.Tree.Len())
	var infos []NodeInfo
	res.Root().ActOnNode(func(n node.Node) {
		if p, ok := n.Parent(); ok {
			depth[n.ID()] = depth[p.ID()]
			if !named || p.IsNamed() {
				depth[n.ID()]++
			}
		}
		if named && !n.IsNamed() {
			return
		}
		if maxDepth >= 0 && depth[n.ID()] > maxDepth {
			return
		}
		infos = append(infos, Describe(n, depth[n.ID()]))
	})
	return infos
}

// Find lists the nodes of the given kinds in pre-order, or only the first.
func Find(res *parser.ParseResult, kinds []string, first bool) ([]NodeInfo, error) {
	ks, err := ResolveKinds(res.Tree.Grammar(), kinds)
	if err != nil {
		return nil, err
	}

	var matches []node.Node
	if first {
		if n, ok := res.Root().FirstOccurrence(ks.Pred()); ok {
			matches = append(matches, n)
		}
	} else {
		matches = res.Root().AllOccurrences(ks.Pred())
	}

	infos := make([]NodeInfo, len(matches))
	for i, n := range matches {
		infos[i] = Describe(n, 0)
		infos[i].Text = Snippet(n)
	}
	return infos, nil
}

// Path follows one child per kind down from the root. ok is false when a
// step has no matching child.
func Path(res *parser.ParseResult, kinds []string) (info NodeInfo, ok bool, err error) {
	preds := make([]node.KindPred, len(kinds))
	for i, name := range kinds {
		ks, err := ResolveKinds(res.Tree.Grammar(), []string{name})
		if err != nil {
			return NodeInfo{}, false, err
		}
		preds[i] = ks.Pred()
	}

	n, ok := res.Root().TraverseChildren(preds...)
	if !ok {
		return NodeInfo{}, false, nil
	}
	info = Describe(n, 0)
	info.Text = Snippet(n)
	return info, true, nil
}

// AncestorsRequest locates a node by one-based position.
type AncestorsRequest struct {
	Line  uint32
	Col   uint32
	Named bool
	// Count lists ancestor kinds to count; empty skips counting.
	Count []string
	// Stop lists kinds that end the count; empty means the language's functions.
	Stop []string
}

// AncestorsResult is the node at a position and everything enclosing it,
// innermost first.
type AncestorsResult struct {
	Node      NodeInfo   `json:"node" toon:"node"`
	Ancestors []NodeInfo `json:"ancestors" toon:"ancestors"`
	Count     *int       `json:"count,omitempty" toon:"count"`
}

// Lines formats the result for text output.
func (r *AncestorsResult) Lines() []string {
	lines := append([]string{r.Node.Line()}, Lines(r.Ancestors)...)
	if r.Count != nil {
		lines = append(lines, fmt.Sprintf("count: %d", *r.Count))
	}
	return lines
}

// Ancestors finds the deepest node at a position and its ancestor chain,
// and counts the requested ancestor kinds with the language's else-if rule.
func Ancestors(res *parser.ParseResult, req AncestorsRequest) (*AncestorsResult, error) {
	if req.Line == 0 || req.Col == 0 {
		return nil, errors.New("line and column are one-based")
	}
	at := node.Point{Row: req.Line - 1, Column: req.Col - 1}

	n, ok := DeepestAt(res.Root(), at)
	if !ok {
		return nil, fmt.Errorf("%w %d:%d in %s", ErrNoNode, req.Line, req.Col, res.Path)
	}
	if req.Named {
		for !n.IsNamed() {
			p, ok := n.Parent()
			if !ok {
				break
			}
			n = p
		}
	}

	result := &AncestorsResult{Node: Describe(n, 0)}
	result.Node.Text = Snippet(n)
	for p, ok := n.Parent(); ok; p, ok = p.Parent() {
		result.Ancestors = append(result.Ancestors, Describe(p, len(result.Ancestors)+1))
	}

	if len(req.Count) == 0 {
		return result, nil
	}
	chk, err := checker.For(res.Language)
	if err != nil {
		return nil, err
	}
	g := res.Tree.Grammar()
	counted, err := ResolveKinds(g, req.Count)
	if err != nil {
		return nil, err
	}
	stop := chk.Kinds().Functions
	if len(req.Stop) > 0 {
		if stop, err = ResolveKinds(g, req.Stop); err != nil {
			return nil, err
		}
	}
	count := n.CountSpecificAncestors(counted.Pred(), stop.Pred(), chk)
	result.Count = &count
	return result, nil
}

// DeepestAt descends from root to the deepest node whose span holds at.
// A node ending exactly at at only matches when it is empty.
func DeepestAt(root node.Node, at node.Point) (node.Node, bool) {
	if !holds(root, at) {
		return node.Node{}, false
	}
	cur := root
	for {
		next, found := node.Node{}, false
		for child := range cur.Children() {
			if holds(child, at) {
				next, found = child, true
				break
			}
		}
		if !found {
			return cur, true
		}
		cur = next
	}
}

func holds(n node.Node, at node.Point) bool {
	start, end := n.StartPosition(), n.EndPosition()
	if before(at, start) {
		return false
	}
	if start == end {
		return at == start
	}
	return before(at, end)
}

func before(a, b node.Point) bool {
	return a.Row < b.Row || (a.Row == b.Row && a.Column < b.Column)
}

// Snippet is the first line of n's text, shortened for display.
func Snippet(n node.Node) string {
	text, ok := n.Text()
	if !ok {
		return ""
	}
	first, _, more := strings.Cut(text, "\n")
	if more {
		first += " ..."
	}
	return truncate(first, 60)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen < 4 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
