// Package checker holds the per-language classification policies that the
// language-agnostic node queries are parameterized with.
package checker

import (
	"fmt"
	"sync"

	"github.com/panbanda/cstq/pkg/node"
	"github.com/panbanda/cstq/pkg/parser"
)

// Checker classifies nodes for one language.
type Checker interface {
	node.ElseIfChecker

	// IsFunc reports whether n is a function, method, or closure: the
	// boundary of a nesting scope.
	IsFunc(n node.Node) bool

	// IsMethod reports whether n is a function defined as a member of a
	// class-like type.
	IsMethod(n node.Node) bool

	// IsComment reports whether n is a comment.
	IsComment(n node.Node) bool

	// Kinds returns the kind sets backing the classifications.
	Kinds() Kinds

	// Language returns the language the checker classifies.
	Language() parser.Language
}

// Kinds groups the kind sets of one language.
type Kinds struct {
	Functions     node.KindSet
	Methods       node.KindSet // always methods, e.g. Go method_declaration
	Classes       node.KindSet
	ClassBodies   node.KindSet
	Conditionals  node.KindSet
	Continuations node.KindSet // elif-like clauses, always else-if
	ElseWrappers  node.KindSet // else_clause and friends
	Loops         node.KindSet
	Switches      node.KindSet
	Cases         node.KindSet
	Catches       node.KindSet
	Ternaries     node.KindSet
	Jumps         node.KindSet
	LogicalOps    node.KindSet
	Else          node.KindSet // the anonymous "else" keyword
	Comments      node.KindSet
}

// Nesting returns the kinds that open a nesting level.
func (k Kinds) Nesting() node.KindSet {
	return k.Conditionals.Union(k.Loops, k.Switches, k.Catches, k.Ternaries)
}

// Decisions returns the kinds that add a path through a function.
func (k Kinds) Decisions() node.KindSet {
	return k.Conditionals.Union(k.Continuations, k.Loops, k.Cases, k.Catches, k.Ternaries)
}

// Policy is a table-driven Checker.
type Policy struct {
	lang  parser.Language
	kinds Kinds
}

var _ Checker = (*Policy)(nil)

var policies sync.Map // parser.Language -> *Policy

// For returns the Checker for lang. Policies are built once and shared.
func For(lang parser.Language) (Checker, error) {
	if p, ok := policies.Load(lang); ok {
		return p.(*Policy), nil
	}

	tbl, ok := tables[lang]
	if !ok {
		return nil, fmt.Errorf("%w: no checker for %s", parser.ErrUnsupportedLanguage, lang)
	}
	g, err := parser.Grammar(lang)
	if err != nil {
		return nil, err
	}

	p, _ := policies.LoadOrStore(lang, NewPolicy(lang, tbl.resolve(g)))
	return p.(*Policy), nil
}

// NewPolicy returns a Policy over explicit kind sets.
func NewPolicy(lang parser.Language, kinds Kinds) *Policy {
	return &Policy{lang: lang, kinds: kinds}
}

// Language implements Checker.
func (p *Policy) Language() parser.Language {
	return p.lang
}

// Kinds implements Checker.
func (p *Policy) Kinds() Kinds {
	return p.kinds
}

// IsElseIf reports whether n continues a conditional chain. Continuation
// clauses always do; a conditional does when it sits in an else wrapper or
// in the alternative field of another conditional.
func (p *Policy) IsElseIf(n node.Node) bool {
	kind := n.KindID()
	if p.kinds.Continuations.Has(kind) {
		return true
	}
	if !p.kinds.Conditionals.Has(kind) {
		return false
	}
	parent, ok := n.Parent()
	if !ok {
		return false
	}
	if p.kinds.ElseWrappers.Has(parent.KindID()) {
		return true
	}
	return p.kinds.Conditionals.Has(parent.KindID()) && n.FieldName() == "alternative"
}

// IsFunc implements Checker.
func (p *Policy) IsFunc(n node.Node) bool {
	return p.kinds.Functions.Has(n.KindID())
}

// IsMethod implements Checker.
func (p *Policy) IsMethod(n node.Node) bool {
	kind := n.KindID()
	if p.kinds.Methods.Has(kind) {
		return true
	}
	if !p.kinds.Functions.Has(kind) {
		return false
	}
	return n.HasAncestors([]node.KindPred{p.kinds.ClassBodies.Pred()}, p.kinds.Classes.Pred())
}

// IsComment implements Checker.
func (p *Policy) IsComment(n node.Node) bool {
	return p.kinds.Comments.Has(n.KindID())
}
