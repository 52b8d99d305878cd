package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/omniforge/omniforge/pkg/parser"
)

// decisionNodeTypes are AST node types that add an independent execution
// path: branches, loops, multiway arms, and exception handler clauses.
var decisionNodeTypes = map[string]bool{
	"if_statement":           true,
	"if_expression":          true,
	"elif_clause":            true,
	"else_if_clause":         true,
	"conditional_expression": true,
	"ternary_expression":     true,
	"for_statement":          true,
	"for_expression":         true,
	"for_in_statement":       true,
	"while_statement":        true,
	"while_expression":       true,
	"do_statement":           true,
	"loop_expression":        true,
	"case_clause":            true,
	"case_statement":         true,
	"when_clause":            true,
	"match_arm":              true,
	"catch_clause":           true,
	"except_clause":          true,
	"rescue_clause":          true,
	"expression_case":        true,
	"default_case":           true,
}

// decisionLeafSymbols are anonymous leaf tokens that add a path: the
// short-circuit operators.
var decisionLeafSymbols = map[string]bool{
	"&&":  true,
	"||":  true,
	"and": true,
	"or":  true,
}

// halsteadOperatorSymbols are leaf tokens counted as Halstead operators.
var halsteadOperatorSymbols = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"=": true, "==": true, "!=": true, "<": true, ">": true,
	"<=": true, ">=": true, "&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "~": true,
	"<<": true, ">>": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"++": true, "--": true, ":=": true,
	"?": true, "=>": true, "->": true,
	".": true, "::": true,
	"[": true, "]": true, "(": true, ")": true, "{": true, "}": true,
	",": true, ";": true,
}

// halsteadOperandTypes are leaf node types counted as Halstead operands.
var halsteadOperandTypes = map[string]bool{
	"identifier":                 true,
	"type_identifier":            true,
	"field_identifier":           true,
	"property_identifier":        true,
	"package_identifier":         true,
	"number":                     true,
	"integer":                    true,
	"integer_literal":            true,
	"int_literal":                true,
	"float":                      true,
	"float_literal":              true,
	"string":                     true,
	"string_literal":             true,
	"raw_string_literal":         true,
	"interpreted_string_literal": true,
	"string_content":             true,
	"char_literal":               true,
	"rune_literal":               true,
	"true":                       true,
	"false":                      true,
	"nil":                        true,
	"null":                       true,
	"none":                       true,
}

// treeTally accumulates decision points and Halstead counts from one parse
// tree.
type treeTally struct {
	decisions      int
	operators      map[string]uint32
	operands       map[string]uint32
	operatorsTotal uint32
	operandsTotal  uint32
}

func (t *treeTally) operatorsUnique() uint32 { return uint32(len(t.operators)) }
func (t *treeTally) operandsUnique() uint32  { return uint32(len(t.operands)) }

// tallyTree walks every node, named and anonymous, in a single pass.
func tallyTree(result *parser.ParseResult) *treeTally {
	tally := &treeTally{
		operators: make(map[string]uint32),
		operands:  make(map[string]uint32),
	}

	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		kind := node.Type()

		if decisionNodeTypes[kind] {
			tally.decisions++
		}

		if node.ChildCount() == 0 {
			switch {
			case halsteadOperatorSymbols[kind]:
				if decisionLeafSymbols[kind] {
					tally.decisions++
				}
				tally.operators[kind]++
				tally.operatorsTotal++
			case halsteadOperandTypes[kind]:
				text := node.Content(result.Source)
				tally.operands[text]++
				tally.operandsTotal++
			case decisionLeafSymbols[kind]:
				// Keyword operators (Python/Ruby and, or).
				tally.decisions++
				tally.operators[kind]++
				tally.operatorsTotal++
			}
			return
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			visit(node.Child(i))
		}
	}

	visit(result.Tree.RootNode())
	return tally
}
