package internal

import (
	"strconv"
	"strings"
)

// Expressions run through a three-stage pipeline. Simplify rewrites calls,
// bracket indexes, casts and verbatim text into synthetic tokens; the
// shunting yard converts the simplified infix stream to postfix; the fold
// consumes the postfix stream onto an argument stack and leaves a single
// expression tree.

// operatorPriority is the operator precedence table; higher binds tighter.
// All operators are left-associative.
var operatorPriority = map[TokenType]int{
	EqualTP:        1,
	OrTP:           2,
	AndTP:          3,
	IsTP:           4,
	IsntTP:         4,
	LessTP:         5,
	GreaterTP:      5,
	LessEqualTP:    5,
	GreaterEqualTP: 5,
	AddTP:          6,
	MinusTP:        6,
	MultiplyTP:     7,
	DivideTP:       7,
	NewTP:          8,
	FreeTP:         8,
	CastTP:         9,
	DotTP:          10,
	ColonTP:        10,
	IndexTP:        10,
}

// binaryNodeTPMap maps a binary operator token to its expression node kind.
var binaryNodeTPMap = map[TokenType]NodeType{
	EqualTP:        AssignNode,
	OrTP:           OrNode,
	AndTP:          AndNode,
	IsTP:           IsNode,
	IsntTP:         IsntNode,
	LessTP:         LesserNode,
	GreaterTP:      GreaterNode,
	LessEqualTP:    LesserEqualNode,
	GreaterEqualTP: GreaterEqualNode,
	AddTP:          AddNode,
	MinusTP:        SubtractNode,
	MultiplyTP:     MultiplyNode,
	DivideTP:       DivideNode,
	DotTP:          DotNode,
	ColonTP:        ModuleAccessNode,
	IndexTP:        IndexNode,
}

// unaryNodeTPMap maps the unary operator tokens likewise.
var unaryNodeTPMap = map[TokenType]NodeType{
	CastTP: CastNode,
	NewTP:  NewNode,
	FreeTP: FreeNode,
}

// parseExpression parses the expression starting at the current token. The
// span runs up to (but not including) the first comma at depth zero,
// semicolon, opening brace, or EOF.
func (parser *Parser) parseExpression(scope *Symbol) (*SyntaxNode, error) {
	span := parser.collectExpressionSpan()
	if len(span) == 0 {
		token := parser.currentToken()
		return nil, makeSyntaxError(token, "expected an expression but found %s '%s'", token.tp, token.content)
	}
	return parser.comp.parseExpressionTokens(span, scope)
}

// collectExpressionSpan consumes and returns the expression's tokens,
// leaving the terminator for the caller. Depth is tracked over both
// parentheses and brackets.
func (parser *Parser) collectExpressionSpan() []*Token {
	start := parser.pos
	depth := 0
	for {
		token := parser.currentToken()
		switch token.tp {
		case EOFTP, SemiColonTP, LeftBraceTP:
			return parser.tokens[start:parser.pos]
		case CommaTP:
			if depth == 0 {
				return parser.tokens[start:parser.pos]
			}
		case LeftParenTP, LeftBracketTP:
			depth++
		case RightParenTP, RightBracketTP:
			if depth == 0 {
				return parser.tokens[start:parser.pos]
			}
			depth--
		}
		parser.stepForward()
	}
}

func (comp *Compilation) parseExpressionTokens(span []*Token, scope *Symbol) (*SyntaxNode, error) {
	simplified, err := comp.simplifyExpression(span, scope)
	if err != nil {
		return nil, err
	}
	postfix, err := shuntingYard(simplified)
	if err != nil {
		return nil, err
	}
	return foldPostfix(postfix, scope)
}

// simplifyExpression rewrites the token span left to right: a call becomes
// one synthetic call token carrying its argument trees, a bracket pair
// becomes an index token followed by the paren-wrapped inner expression, a
// cast collapses to a unary token carrying the type spelling, and verbatim
// swallows the string that follows it.
func (comp *Compilation) simplifyExpression(tokens []*Token, scope *Symbol) ([]*Token, error) {
	out := make([]*Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		switch {
		case token.tp == IdentifierTP && i+1 < len(tokens) && tokens[i+1].tp == LeftParenTP:
			end, err := matchingClose(tokens, i+1, RightParenTP)
			if err != nil {
				return nil, err
			}
			args, err := comp.parseArguments(tokens[i+2:end], scope)
			if err != nil {
				return nil, err
			}
			out = append(out, &Token{
				tp:       CallTP,
				content:  token.content,
				args:     args,
				fileName: token.fileName,
				line:     token.line,
			})
			i = end
		case token.tp == LeftBracketTP:
			end, err := matchingClose(tokens, i, RightBracketTP)
			if err != nil {
				return nil, err
			}
			inner, err := comp.simplifyExpression(tokens[i+1:end], scope)
			if err != nil {
				return nil, err
			}
			out = append(out,
				&Token{tp: IndexTP, content: "index", fileName: token.fileName, line: token.line},
				&Token{tp: LeftParenTP, content: "(", fileName: token.fileName, line: token.line})
			out = append(out, inner...)
			out = append(out, &Token{tp: RightParenTP, content: ")", fileName: token.fileName, line: token.line})
			i = end
		case token.tp == CastTP:
			typeSpelling, end, err := castTypeSpelling(tokens, i)
			if err != nil {
				return nil, err
			}
			out = append(out, &Token{tp: CastTP, content: typeSpelling, fileName: token.fileName, line: token.line})
			i = end
		case token.tp == VerbatimTP && i+1 < len(tokens) && tokens[i+1].tp == StringTP:
			out = append(out, &Token{tp: VerbatimTP, content: tokens[i+1].content, fileName: token.fileName, line: token.line})
			i++
		default:
			out = append(out, token)
		}
	}
	return out, nil
}

// matchingClose finds the close token matching the group opened at start,
// tracking nesting over both grouping pairs.
func matchingClose(tokens []*Token, start int, close TokenType) (int, error) {
	depth := 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].tp {
		case LeftParenTP, LeftBracketTP:
			depth++
		case RightParenTP, RightBracketTP:
			depth--
			if depth == 0 && tokens[i].tp == close {
				return i, nil
			}
		}
	}
	return 0, makeSyntaxError(tokens[start], "expected %s to close %s", close, tokens[start].tp)
}

// parseArguments parses a comma-separated argument span into expression
// trees, recursing through the whole pipeline per argument.
func (comp *Compilation) parseArguments(tokens []*Token, scope *Symbol) ([]*SyntaxNode, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	var args []*SyntaxNode
	start, depth := 0, 0
	for i := 0; i <= len(tokens); i++ {
		if i < len(tokens) {
			switch tokens[i].tp {
			case LeftParenTP, LeftBracketTP:
				depth++
			case RightParenTP, RightBracketTP:
				depth--
			}
			if tokens[i].tp != CommaTP || depth != 0 {
				continue
			}
		}
		arg, err := comp.parseExpressionTokens(tokens[start:i], scope)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		start = i + 1
	}
	return args, nil
}

// castTypeSpelling consumes "cast ( type )" and returns the type string.
func castTypeSpelling(tokens []*Token, start int) (string, int, error) {
	i := start + 1
	if i >= len(tokens) || tokens[i].tp != LeftParenTP {
		return "", 0, makeSyntaxError(tokens[start], "expected ( after cast")
	}
	i++
	if i >= len(tokens) || tokens[i].tp != IdentifierTP {
		return "", 0, makeSyntaxError(tokens[start], "expected a type name in cast")
	}
	typeSpelling := tokens[i].content
	i++
	if i+1 < len(tokens) && tokens[i].tp == ColonTP && tokens[i+1].tp == IdentifierTP {
		typeSpelling += "$" + tokens[i+1].content
		i += 2
	}
	if i >= len(tokens) || tokens[i].tp != RightParenTP {
		return "", 0, makeSyntaxError(tokens[start], "expected ) to close cast")
	}
	return typeSpelling, i, nil
}

// shuntingYard converts the simplified infix stream to postfix. An operator
// on the stack with precedence greater than or equal to the incoming
// operator's is popped first; parentheses group without operator semantics.
func shuntingYard(tokens []*Token) ([]*Token, error) {
	var output, stack []*Token
	for _, token := range tokens {
		switch token.tp {
		case LeftParenTP:
			stack = append(stack, token)
		case RightParenTP:
			for len(stack) > 0 && stack[len(stack)-1].tp != LeftParenTP {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, makeSyntaxError(token, "unbalanced )")
			}
			stack = stack[:len(stack)-1]
		default:
			priority, isOperator := operatorPriority[token.tp]
			if !isOperator {
				output = append(output, token)
				continue
			}
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				topPriority, topIsOperator := operatorPriority[top.tp]
				if !topIsOperator || topPriority < priority {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, token)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.tp == LeftParenTP {
			return nil, makeSyntaxError(top, "unbalanced (")
		}
		output = append(output, top)
		stack = stack[:len(stack)-1]
	}
	return output, nil
}

// foldPostfix consumes the postfix stream onto an argument stack. Each
// binary operator pops the right argument first; cast, new and free pop one.
func foldPostfix(postfix []*Token, scope *Symbol) (*SyntaxNode, error) {
	var stack []*SyntaxNode
	pop := func() *SyntaxNode {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return node
	}
	for _, token := range postfix {
		if binaryTP, ok := binaryNodeTPMap[token.tp]; ok {
			if len(stack) < 2 {
				return nil, makeSyntaxError(token, "operator %s is missing an operand", token.tp)
			}
			right, left := pop(), pop()
			stack = append(stack, &SyntaxNode{
				TP:       binaryTP,
				Children: []*SyntaxNode{right, left},
				Value:    token.content,
				Scope:    scope,
				FileName: token.fileName,
				Line:     token.line,
			})
			continue
		}
		if unaryTP, ok := unaryNodeTPMap[token.tp]; ok {
			if len(stack) < 1 {
				return nil, makeSyntaxError(token, "operator %s is missing an operand", token.tp)
			}
			stack = append(stack, &SyntaxNode{
				TP:       unaryTP,
				Children: []*SyntaxNode{pop()},
				Value:    token.content,
				Scope:    scope,
				FileName: token.fileName,
				Line:     token.line,
			})
			continue
		}
		leaf, err := leafNode(token, scope)
		if err != nil {
			return nil, err
		}
		stack = append(stack, leaf)
	}
	if len(stack) != 1 {
		if len(stack) == 0 {
			return nil, makeSemanticError("", 0, "expected an expression")
		}
		return nil, makeSemanticError(stack[0].FileName, stack[0].Line, "malformed expression")
	}
	return stack[0], nil
}

// leafNode builds the leaf for a literal, identifier, call or verbatim
// token.
func leafNode(token *Token, scope *Symbol) (*SyntaxNode, error) {
	node := &SyntaxNode{Scope: scope, FileName: token.fileName, Line: token.line}
	switch token.tp {
	case IntegerTP:
		value, err := strconv.ParseInt(token.content, 10, 64)
		if err != nil {
			return nil, makeSyntaxError(token, "malformed int literal '%s'", token.content)
		}
		node.TP, node.Value = IntLiteralNode, value
	case RealTP:
		value, err := strconv.ParseFloat(token.content, 64)
		if err != nil {
			return nil, makeSyntaxError(token, "malformed real literal '%s'", token.content)
		}
		node.TP, node.Value = RealLiteralNode, value
	case CharacterTP:
		node.TP, node.Value = CharLiteralNode, token.content
	case StringTP:
		node.TP, node.Value = StringLiteralNode, token.content
	case TrueTP:
		node.TP = TrueNode
	case FalseTP:
		node.TP = FalseNode
	case NullTP:
		node.TP = NullNode
	case IdentifierTP:
		node.TP, node.Value = VarNode, token.content
	case VerbatimTP:
		node.TP, node.Value = VerbatimNode, token.content
	case CallTP:
		node.TP, node.Value, node.Children = CallNode, token.content, token.args
		if strings.HasSuffix(token.content, arraySuffix) {
			node.TP = ArrayLiteralNode
		}
	default:
		return nil, makeSyntaxError(token, "unexpected %s '%s' in expression", token.tp, token.content)
	}
	return node, nil
}
