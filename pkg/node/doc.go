// Package node provides a language-agnostic view of a tree-sitter concrete
// syntax tree.
//
// A Tree is built once per source unit by flattening the tree-sitter tree
// into a pre-order node table. Node values are small handles into that
// table: they are comparable, cheap to copy, and safe to read from many
// goroutines because nothing in a Tree changes after construction.
//
// On top of the handle the package offers three groups of queries:
//
//   - subtree search in document order (FirstOccurrence, AllOccurrences,
//     ActOnNode) and direct-child search (FirstChild, ActOnChild);
//   - upward context queries (HasAncestor, HasAncestors,
//     CountSpecificAncestors, GetParent);
//   - downward token paths through direct children (TraverseChildren).
//
// Every query is parameterized by kind predicates over numeric kind ids.
// Grammar turns grammar node names into kind ids for a given language.
package node
