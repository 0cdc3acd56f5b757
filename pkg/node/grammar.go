package node

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Grammar maps grammar node names to kind ids for one language.
// Several ids can share a name (aliases, hidden duplicates), so lookups
// return sets. A Grammar is read-only once built.
type Grammar struct {
	names     []string
	all       map[string][]uint16
	named     map[string][]uint16
	anonymous map[string][]uint16
}

// NewGrammar reads the symbol table of lang. Trees of one language can
// share the result.
func NewGrammar(lang *sitter.Language) *Grammar {
	count := lang.SymbolCount()
	g := &Grammar{
		names:     make([]string, count),
		all:       make(map[string][]uint16, count),
		named:     make(map[string][]uint16),
		anonymous: make(map[string][]uint16),
	}
	for i := uint32(0); i < count; i++ {
		sym := sitter.Symbol(i)
		name := lang.SymbolName(sym)
		id := uint16(i)
		g.names[i] = name
		g.all[name] = append(g.all[name], id)
		switch lang.SymbolType(sym) {
		case sitter.SymbolTypeRegular:
			g.named[name] = append(g.named[name], id)
		case sitter.SymbolTypeAnonymous:
			g.anonymous[name] = append(g.anonymous[name], id)
		}
	}
	g.all["ERROR"] = append(g.all["ERROR"], errorKindID)
	g.named["ERROR"] = append(g.named["ERROR"], errorKindID)
	return g
}

// KindCount returns the number of symbols in the grammar.
func (g *Grammar) KindCount() int {
	return len(g.names)
}

// KindName returns the name of a kind id, or "" when unknown.
func (g *Grammar) KindName(id uint16) string {
	if id == errorKindID {
		return "ERROR"
	}
	if int(id) >= len(g.names) {
		return ""
	}
	return g.names[id]
}

// Kinds returns every kind id carrying one of names. Unknown names are
// ignored.
func (g *Grammar) Kinds(names ...string) KindSet {
	return collect(g.all, names)
}

// NamedKinds is Kinds restricted to named rules.
func (g *Grammar) NamedKinds(names ...string) KindSet {
	return collect(g.named, names)
}

// AnonymousKinds is Kinds restricted to anonymous tokens such as keywords
// and operators.
func (g *Grammar) AnonymousKinds(names ...string) KindSet {
	return collect(g.anonymous, names)
}

func collect(table map[string][]uint16, names []string) KindSet {
	var ids []uint16
	for _, name := range names {
		ids = append(ids, table[name]...)
	}
	return NewKindSet(ids...)
}
