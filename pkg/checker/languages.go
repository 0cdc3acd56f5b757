package checker

import (
	"github.com/panbanda/cstq/pkg/node"
	"github.com/panbanda/cstq/pkg/parser"
)

// names lists grammar node names per category. Names a grammar lacks are
// ignored when resolved, so a table can cover several grammar versions.
type names struct {
	functions     []string
	methods       []string
	classes       []string
	classBodies   []string
	conditionals  []string
	continuations []string
	elseWrappers  []string
	loops         []string
	switches      []string
	cases         []string
	catches       []string
	ternaries     []string
	jumps         []string
	logicalOps    []string // anonymous operator tokens
	comments      []string
}

func (n names) resolve(g *node.Grammar) Kinds {
	return Kinds{
		Functions:     g.NamedKinds(n.functions...),
		Methods:       g.NamedKinds(n.methods...),
		Classes:       g.NamedKinds(n.classes...),
		ClassBodies:   g.NamedKinds(n.classBodies...),
		Conditionals:  g.NamedKinds(n.conditionals...),
		Continuations: g.NamedKinds(n.continuations...),
		ElseWrappers:  g.NamedKinds(n.elseWrappers...),
		Loops:         g.NamedKinds(n.loops...),
		Switches:      g.NamedKinds(n.switches...),
		Cases:         g.NamedKinds(n.cases...),
		Catches:       g.NamedKinds(n.catches...),
		Ternaries:     g.NamedKinds(n.ternaries...),
		Jumps:         g.NamedKinds(n.jumps...),
		LogicalOps:    g.AnonymousKinds(n.logicalOps...),
		Else:          g.AnonymousKinds("else"),
		Comments:      g.NamedKinds(n.comments...),
	}
}

var jsNames = names{
	functions: []string{
		"function_declaration", "function_expression", "function",
		"generator_function_declaration", "generator_function",
		"arrow_function", "method_definition",
	},
	classes:      []string{"class_declaration", "class", "abstract_class_declaration"},
	classBodies:  []string{"class_body"},
	conditionals: []string{"if_statement"},
	elseWrappers: []string{"else_clause"},
	loops:        []string{"for_statement", "for_in_statement", "while_statement", "do_statement"},
	switches:     []string{"switch_statement"},
	cases:        []string{"switch_case"},
	catches:      []string{"catch_clause"},
	ternaries:    []string{"ternary_expression"},
	jumps:        []string{"break_statement", "continue_statement"},
	logicalOps:   []string{"&&", "||", "??"},
	comments:     []string{"comment"},
}

var cNames = names{
	functions:    []string{"function_definition"},
	conditionals: []string{"if_statement"},
	elseWrappers: []string{"else_clause"},
	loops:        []string{"for_statement", "while_statement", "do_statement"},
	switches:     []string{"switch_statement"},
	cases:        []string{"case_statement"},
	ternaries:    []string{"conditional_expression"},
	jumps:        []string{"break_statement", "continue_statement", "goto_statement"},
	logicalOps:   []string{"&&", "||"},
	comments:     []string{"comment"},
}

var cppNames = func() names {
	n := cNames
	n.functions = []string{"function_definition", "lambda_expression"}
	n.classes = []string{"class_specifier", "struct_specifier"}
	n.classBodies = []string{"field_declaration_list"}
	n.loops = []string{"for_statement", "for_range_loop", "while_statement", "do_statement"}
	n.catches = []string{"catch_clause"}
	n.logicalOps = []string{"&&", "||", "and", "or"}
	return n
}()

var tables = map[parser.Language]names{
	parser.LangGo: {
		functions:    []string{"function_declaration", "method_declaration", "func_literal"},
		methods:      []string{"method_declaration"},
		conditionals: []string{"if_statement"},
		loops:        []string{"for_statement"},
		switches:     []string{"expression_switch_statement", "type_switch_statement", "select_statement"},
		cases:        []string{"expression_case", "type_case", "communication_case"},
		jumps:        []string{"break_statement", "continue_statement", "goto_statement"},
		logicalOps:   []string{"&&", "||"},
		comments:     []string{"comment"},
	},
	parser.LangRust: {
		functions:    []string{"function_item", "closure_expression"},
		classes:      []string{"impl_item", "trait_item"},
		classBodies:  []string{"declaration_list"},
		conditionals: []string{"if_expression", "if_let_expression"},
		elseWrappers: []string{"else_clause"},
		loops:        []string{"for_expression", "while_expression", "while_let_expression", "loop_expression"},
		switches:     []string{"match_expression"},
		cases:        []string{"match_arm"},
		jumps:        []string{"break_expression", "continue_expression"},
		logicalOps:   []string{"&&", "||"},
		comments:     []string{"line_comment", "block_comment"},
	},
	parser.LangPython: {
		functions:     []string{"function_definition", "lambda"},
		classes:       []string{"class_definition"},
		classBodies:   []string{"block"},
		conditionals:  []string{"if_statement"},
		continuations: []string{"elif_clause"},
		loops:         []string{"for_statement", "while_statement"},
		switches:      []string{"match_statement"},
		cases:         []string{"case_clause"},
		catches:       []string{"except_clause"},
		ternaries:     []string{"conditional_expression"},
		jumps:         []string{"break_statement", "continue_statement"},
		logicalOps:    []string{"and", "or"},
		comments:      []string{"comment"},
	},
	parser.LangJavaScript: jsNames,
	parser.LangTypeScript: jsNames,
	parser.LangTSX:        jsNames,
	parser.LangJava: {
		functions:    []string{"method_declaration", "constructor_declaration", "lambda_expression"},
		classes:      []string{"class_declaration", "interface_declaration", "record_declaration"},
		classBodies:  []string{"class_body", "interface_body"},
		conditionals: []string{"if_statement"},
		loops:        []string{"for_statement", "enhanced_for_statement", "while_statement", "do_statement"},
		switches:     []string{"switch_expression", "switch_statement"},
		cases:        []string{"switch_block_statement_group", "switch_rule"},
		catches:      []string{"catch_clause"},
		ternaries:    []string{"ternary_expression"},
		jumps:        []string{"break_statement", "continue_statement"},
		logicalOps:   []string{"&&", "||"},
		comments:     []string{"line_comment", "block_comment"},
	},
	parser.LangC:   cNames,
	parser.LangCPP: cppNames,
	parser.LangCSharp: {
		functions:    []string{"method_declaration", "constructor_declaration", "local_function_statement", "lambda_expression"},
		classes:      []string{"class_declaration", "struct_declaration", "interface_declaration", "record_declaration"},
		classBodies:  []string{"declaration_list"},
		conditionals: []string{"if_statement"},
		loops:        []string{"for_statement", "foreach_statement", "while_statement", "do_statement"},
		switches:     []string{"switch_statement", "switch_expression"},
		cases:        []string{"switch_section", "switch_expression_arm"},
		catches:      []string{"catch_clause"},
		ternaries:    []string{"conditional_expression"},
		jumps:        []string{"break_statement", "continue_statement", "goto_statement"},
		logicalOps:   []string{"&&", "||", "??"},
		comments:     []string{"comment"},
	},
	parser.LangRuby: {
		functions:     []string{"method", "singleton_method", "lambda"},
		classes:       []string{"class", "module", "singleton_class"},
		classBodies:   []string{"body_statement"},
		conditionals:  []string{"if", "unless", "if_modifier", "unless_modifier"},
		continuations: []string{"elsif"},
		loops:         []string{"while", "until", "for", "while_modifier", "until_modifier"},
		switches:      []string{"case"},
		cases:         []string{"when"},
		catches:       []string{"rescue"},
		ternaries:     []string{"conditional"},
		jumps:         []string{"break", "next", "redo"},
		logicalOps:    []string{"&&", "||", "and", "or"},
		comments:      []string{"comment"},
	},
	parser.LangPHP: {
		functions:     []string{"function_definition", "method_declaration", "anonymous_function_creation_expression", "arrow_function"},
		classes:       []string{"class_declaration", "trait_declaration", "interface_declaration"},
		classBodies:   []string{"declaration_list"},
		conditionals:  []string{"if_statement"},
		continuations: []string{"else_if_clause"},
		elseWrappers:  []string{"else_clause"},
		loops:         []string{"for_statement", "foreach_statement", "while_statement", "do_statement"},
		switches:      []string{"switch_statement", "match_expression"},
		cases:         []string{"case_statement", "match_conditional_expression"},
		catches:       []string{"catch_clause"},
		ternaries:     []string{"conditional_expression"},
		jumps:         []string{"break_statement", "continue_statement", "goto_statement"},
		logicalOps:    []string{"&&", "||", "and", "or"},
		comments:      []string{"comment"},
	},
	parser.LangBash: {
		functions:     []string{"function_definition"},
		conditionals:  []string{"if_statement"},
		continuations: []string{"elif_clause"},
		loops:         []string{"for_statement", "c_style_for_statement", "while_statement"},
		switches:      []string{"case_statement"},
		cases:         []string{"case_item"},
		logicalOps:    []string{"&&", "||"},
		comments:      []string{"comment"},
	},
}
