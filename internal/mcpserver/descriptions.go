package mcpserver

// Tool descriptions with interpretation guidance for LLMs. Each one explains
// what the tool does, when to use it, and how to read its results.

func describeSyntaxTree() string {
	return `Prints the concrete syntax tree of one source file as tree-sitter parsed it.

USE WHEN:
- Learning the node kinds a grammar uses before querying with find_nodes
- Checking how a construct is nested before choosing ancestor kinds
- Diagnosing parse errors in a file

INTERPRETING RESULTS:
- Nodes appear in pre-order; depth gives the indentation level
- kind is the grammar's node name; anonymous tokens such as "(" have named=false
- field is the role the node plays in its parent, e.g. name or body
- error/missing mark nodes tree-sitter inserted to recover from bad syntax

METRICS RETURNED:
- Per node: id, kind, field, named, depth, one-based start/end line and column`
}

func describeFindNodes() string {
	return `Finds every node of the given kinds in a file, in source order.

USE WHEN:
- Listing all functions, loops, or calls in a file
- Locating the first occurrence of a construct
- Counting how often a syntax form is used

INTERPRETING RESULTS:
- Matches are in pre-order: an outer match comes before the matches nested in it
- Kinds may be named rules (if_statement) or anonymous tokens (&&)
- An unknown kind is an error; use syntax_tree to discover valid kinds

METRICS RETURNED:
- Per match: id, kind, one-based span, and the first line of its text`
}

func describeNodePath() string {
	return `Follows a chain of direct children from the file's root, one kind per step.

USE WHEN:
- Reaching a node by structure, e.g. function_declaration then parameter_list
- Checking whether a file has a specific top-level shape

INTERPRETING RESULTS:
- At each step the first child of that kind is taken
- An empty result means some step had no matching child
- An empty kind list returns the root

METRICS RETURNED:
- The node reached: id, kind, one-based span, and the first line of its text`
}

func describeNodeAncestors() string {
	return `Shows the deepest node at a line and column, every node enclosing it, and
optionally how many enclosing nodes are of given kinds.

USE WHEN:
- Finding which function, loop, or block contains a position
- Measuring nesting depth at a specific line
- Explaining why a line scores high on cognitive complexity

INTERPRETING RESULTS:
- ancestors is ordered innermost first and ends at the root
- count only walks up to the first stop kind (default: the enclosing function)
- else-if continuations are not counted as extra nesting
- Lines and columns are one-based

METRICS RETURNED:
- node, ancestors, and count when count kinds were given`
}

func describeComplexity() string {
	return `Measures cyclomatic and cognitive complexity of functions across files or directories.

USE WHEN:
- Identifying functions that are hard to test or maintain
- Finding refactoring candidates before code reviews
- Prioritizing technical debt remediation

INTERPRETING RESULTS:
- Cyclomatic complexity > 10: many code paths, consider splitting
- Cognitive complexity > 15: hard to understand, simplify logic
- max_nesting > 4: deeply nested code, consider early returns or extraction
- violations lists every limit a function exceeds
- has_error marks functions containing syntax errors; their scores are approximate

METRICS RETURNED:
- Per-function: cyclomatic, cognitive, max_nesting, lines, violations
- Per-file: function list, averages, maxima and totals
- Summary: P50, P90, P95 percentiles, max values, violation count`
}
