package internal

import (
	"fmt"
)

// Parser is a recursive-descent parser over a token queue with one-token
// lookahead. Declarations populate the program-wide symbol tree directly;
// expression bodies are parsed by the pipeline in expression.go and attached
// to their symbols.
type Parser struct {
	comp   *Compilation
	tokens []*Token
	pos    int
}

// stripComments drops the tokens between a /* and its matching */, and the
// tokens from a // through the end of the current line. The newline itself
// is kept.
func stripComments(tokens []*Token) []*Token {
	out := make([]*Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		switch tokens[i].tp {
		case MultipleLineOpenCommentTP:
			j := i + 1
			for j < len(tokens) && tokens[j].tp != MultipleLineCloseCommentTP && tokens[j].tp != EOFTP {
				j++
			}
			if j < len(tokens) && tokens[j].tp == MultipleLineCloseCommentTP {
				i = j
			} else {
				i = j - 1
			}
		case SingleLineCommentTP:
			for i+1 < len(tokens) && tokens[i+1].tp != NewlineTP && tokens[i+1].tp != EOFTP {
				i++
			}
		default:
			out = append(out, tokens[i])
		}
	}
	return out
}

// dropNewlines removes the newline tokens once they have served line
// counting; every token already carries its own line number.
func dropNewlines(tokens []*Token) []*Token {
	out := make([]*Token, 0, len(tokens))
	for _, token := range tokens {
		if token.tp == NewlineTP {
			continue
		}
		out = append(out, token)
	}
	return out
}

// condenseArrayTypes rewrites an identifier immediately followed by the word
// array into a single token whose lexeme is "<ident> array", so array-of-T
// is representable as one type string.
func condenseArrayTypes(tokens []*Token) []*Token {
	out := make([]*Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if token.tp == IdentifierTP && i+1 < len(tokens) && tokens[i+1].tp == ArrayTP {
			condensed := &Token{
				tp:       IdentifierTP,
				content:  token.content,
				fileName: token.fileName,
				line:     token.line,
			}
			for i+1 < len(tokens) && tokens[i+1].tp == ArrayTP {
				condensed.content += " array"
				i++
			}
			token = condensed
		}
		out = append(out, token)
	}
	return out
}

func (parser *Parser) currentToken() *Token {
	return parser.peekToken(0)
}

func (parser *Parser) peekToken(n int) *Token {
	if parser.pos+n >= len(parser.tokens) {
		return parser.tokens[len(parser.tokens)-1]
	}
	return parser.tokens[parser.pos+n]
}

func (parser *Parser) stepForward() {
	if parser.pos < len(parser.tokens)-1 {
		parser.pos++
	}
}

func (parser *Parser) match(tp TokenType) bool {
	return parser.currentToken().tp == tp
}

// expectToken consumes and returns the current token when it has the
// expected kind; any other kind is fatal.
func (parser *Parser) expectToken(tp TokenType) (*Token, error) {
	token := parser.currentToken()
	if token.tp != tp {
		return nil, makeSyntaxError(token, "expected %s but found %s '%s'", tp, token.tp, token.content)
	}
	parser.stepForward()
	return token, nil
}

func makeSyntaxError(token *Token, format string, args ...interface{}) *CompileError {
	return makeSemanticError(token.fileName, token.line, format, args...)
}

// ParseProgram parses declarations into scope until the EOF sentinel.
func (parser *Parser) ParseProgram(scope *Symbol) error {
	for !parser.match(EOFTP) {
		_, err := parser.parseDeclaration(scope)
		if err != nil {
			return err
		}
	}
	return nil
}

type declModifiers struct {
	isPrivate bool
	isStatic  bool
	isConst   bool
	isExtern  bool
}

// parseDeclaration parses one declaration into scope and returns the created
// symbol. Modifiers are accepted in any order before the declaration head.
func (parser *Parser) parseDeclaration(scope *Symbol) (*Symbol, error) {
	var mods declModifiers
	for {
		switch parser.currentToken().tp {
		case PrivateTP:
			mods.isPrivate = true
		case StaticTP:
			mods.isStatic = true
		case ConstTP:
			mods.isConst = true
		case TildeTP:
			mods.isExtern = true
		default:
			return parser.parseDeclarationHead(scope, mods)
		}
		parser.stepForward()
	}
}

func (parser *Parser) parseDeclarationHead(scope *Symbol, mods declModifiers) (*Symbol, error) {
	token := parser.currentToken()
	switch token.tp {
	case StructTP:
		return parser.parseStructDeclaration(scope, mods)
	case EnumTP:
		return parser.parseEnumDeclaration(scope, mods)
	case ModuleTP:
		// The module keyword is optional sugar before "name { ... }".
		parser.stepForward()
		return parser.parseModuleDeclaration(scope, mods)
	case IdentifierTP:
		if parser.peekToken(1).tp == LeftBraceTP {
			return parser.parseModuleDeclaration(scope, mods)
		}
		return parser.parseTypedDeclaration(scope, mods)
	default:
		return nil, makeSyntaxError(token, "expected a declaration but found %s '%s'", token.tp, token.content)
	}
}

// parseModuleDeclaration parses "name { declarations }".
func (parser *Parser) parseModuleDeclaration(scope *Symbol, mods declModifiers) (*Symbol, error) {
	nameToken, err := parser.expectToken(IdentifierTP)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(LeftBraceTP); err != nil {
		return nil, err
	}
	module := parser.comp.newSymbol(ModuleSymbolType, nameToken.content, "module", nameToken.fileName, nameToken.line)
	module.IsPrivate, module.IsStatic, module.IsConstant = mods.isPrivate, mods.isStatic, mods.isConst
	if err := scope.AddChild(module); err != nil {
		return nil, err
	}
	for !parser.match(RightBraceTP) {
		if parser.match(EOFTP) {
			return nil, makeSyntaxError(parser.currentToken(), "expected } to close module %s", module.Name)
		}
		if _, err := parser.parseDeclaration(module); err != nil {
			return nil, err
		}
	}
	parser.stepForward()
	return module, nil
}

// parseStructDeclaration parses "struct Name (type field, ...)". The struct
// symbol's type equals its own name; fields are positional children.
func (parser *Parser) parseStructDeclaration(scope *Symbol, mods declModifiers) (*Symbol, error) {
	if _, err := parser.expectToken(StructTP); err != nil {
		return nil, err
	}
	nameToken, err := parser.expectToken(IdentifierTP)
	if err != nil {
		return nil, err
	}
	structSymbol := parser.comp.newSymbol(StructSymbolType, nameToken.content, nameToken.content, nameToken.fileName, nameToken.line)
	structSymbol.IsPrivate, structSymbol.IsStatic = mods.isPrivate, mods.isStatic
	if err := scope.AddChild(structSymbol); err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(LeftParenTP); err != nil {
		return nil, err
	}
	for !parser.match(RightParenTP) {
		fieldType, err := parser.parseTypeSpelling()
		if err != nil {
			return nil, err
		}
		fieldToken, err := parser.expectToken(IdentifierTP)
		if err != nil {
			return nil, err
		}
		field := parser.comp.newSymbol(VariableSymbolType, fieldToken.content, fieldType, fieldToken.fileName, fieldToken.line)
		field.IsDeclared = true
		if err := structSymbol.AddChild(field); err != nil {
			return nil, err
		}
		if parser.match(CommaTP) {
			parser.stepForward()
			continue
		}
		break
	}
	if _, err := parser.expectToken(RightParenTP); err != nil {
		return nil, err
	}
	if parser.match(SemiColonTP) {
		parser.stepForward()
	}
	parser.comp.registerStruct(structSymbol)
	return structSymbol, nil
}

// parseEnumDeclaration parses "enum Name { a, b, c }". Members are constant
// int symbols valued by declaration order.
func (parser *Parser) parseEnumDeclaration(scope *Symbol, mods declModifiers) (*Symbol, error) {
	if _, err := parser.expectToken(EnumTP); err != nil {
		return nil, err
	}
	nameToken, err := parser.expectToken(IdentifierTP)
	if err != nil {
		return nil, err
	}
	enum := parser.comp.newSymbol(EnumSymbolType, nameToken.content, nameToken.content, nameToken.fileName, nameToken.line)
	enum.IsPrivate, enum.IsStatic = mods.isPrivate, mods.isStatic
	if err := scope.AddChild(enum); err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(LeftBraceTP); err != nil {
		return nil, err
	}
	next := 0
	for !parser.match(RightBraceTP) {
		memberToken, err := parser.expectToken(IdentifierTP)
		if err != nil {
			return nil, err
		}
		member := parser.comp.newSymbol(VariableSymbolType, memberToken.content, "int", memberToken.fileName, memberToken.line)
		member.IsConstant, member.IsDeclared = true, true
		member.Code = &SyntaxNode{
			TP:       IntLiteralNode,
			Value:    int64(next),
			Scope:    enum,
			FileName: memberToken.fileName,
			Line:     memberToken.line,
		}
		next++
		if err := enum.AddChild(member); err != nil {
			return nil, err
		}
		if parser.match(CommaTP) {
			parser.stepForward()
			continue
		}
		break
	}
	if _, err := parser.expectToken(RightBraceTP); err != nil {
		return nil, err
	}
	if parser.match(SemiColonTP) {
		parser.stepForward()
	}
	return enum, nil
}

// parseTypeSpelling reads a type: a (possibly array-condensed) identifier,
// or the module-qualified form Mod:Name stored with the internal $
// separator.
func (parser *Parser) parseTypeSpelling() (string, error) {
	token, err := parser.expectToken(IdentifierTP)
	if err != nil {
		return "", err
	}
	if !parser.match(ColonTP) || parser.peekToken(1).tp != IdentifierTP {
		return token.content, nil
	}
	parser.stepForward()
	memberToken, err := parser.expectToken(IdentifierTP)
	if err != nil {
		return "", err
	}
	return token.content + "$" + memberToken.content, nil
}

// parseTypedDeclaration handles the "type name" heads: variable declaration,
// variable definition with initializer, and function.
func (parser *Parser) parseTypedDeclaration(scope *Symbol, mods declModifiers) (*Symbol, error) {
	typeSpelling, err := parser.parseTypeSpelling()
	if err != nil {
		return nil, err
	}
	nameToken, err := parser.expectToken(IdentifierTP)
	if err != nil {
		return nil, err
	}
	switch parser.currentToken().tp {
	case SemiColonTP:
		parser.stepForward()
		return parser.declareVariable(scope, mods, typeSpelling, nameToken, nil)
	case EqualTP:
		parser.stepForward()
		initializer, err := parser.parseExpression(scope)
		if err != nil {
			return nil, err
		}
		if _, err := parser.expectToken(SemiColonTP); err != nil {
			return nil, err
		}
		return parser.declareVariable(scope, mods, typeSpelling, nameToken, initializer)
	case LeftParenTP:
		return parser.parseFunctionDeclaration(scope, mods, typeSpelling, nameToken)
	default:
		token := parser.currentToken()
		return nil, makeSyntaxError(token, "expected ;, = or ( after %s %s but found %s '%s'",
			typeSpelling, nameToken.content, token.tp, token.content)
	}
}

func (parser *Parser) declareVariable(scope *Symbol, mods declModifiers, typeSpelling string, nameToken *Token, initializer *SyntaxNode) (*Symbol, error) {
	tp := VariableSymbolType
	if mods.isExtern {
		tp = ExternVariableSymbolType
	}
	variable := parser.comp.newSymbol(tp, nameToken.content, typeSpelling, nameToken.fileName, nameToken.line)
	variable.IsPrivate, variable.IsStatic, variable.IsConstant = mods.isPrivate, mods.isStatic, mods.isConst
	variable.Code = initializer
	if err := scope.AddChild(variable); err != nil {
		return nil, err
	}
	return variable, nil
}

// parseFunctionDeclaration parses "(type name, ...)" and a body that is
// "= expr ;", "= { ... }" or a braced block. A parameter without a name is
// synthesized as _undef<id>; a signature ending in ";" declares a function
// pointer.
func (parser *Parser) parseFunctionDeclaration(scope *Symbol, mods declModifiers, returnType string, nameToken *Token) (*Symbol, error) {
	function := parser.comp.newSymbol(FunctionSymbolType, nameToken.content, returnType, nameToken.fileName, nameToken.line)
	function.IsPrivate, function.IsStatic, function.IsConstant = mods.isPrivate, mods.isStatic, mods.isConst
	if err := scope.AddChild(function); err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(LeftParenTP); err != nil {
		return nil, err
	}
	for !parser.match(RightParenTP) {
		paramType, err := parser.parseTypeSpelling()
		if err != nil {
			return nil, err
		}
		param := parser.comp.newSymbol(VariableSymbolType, "", paramType, parser.currentToken().fileName, parser.currentToken().line)
		if parser.match(IdentifierTP) {
			paramToken, _ := parser.expectToken(IdentifierTP)
			param.Name = paramToken.content
		} else {
			param.Name = fmt.Sprintf("_undef%d", param.ID)
		}
		// Duplicate names within one parameter list are fatal.
		if err := function.AddChild(param); err != nil {
			return nil, err
		}
		if parser.match(CommaTP) {
			parser.stepForward()
			continue
		}
		break
	}
	if _, err := parser.expectToken(RightParenTP); err != nil {
		return nil, err
	}
	switch parser.currentToken().tp {
	case SemiColonTP:
		// A bare signature declares a function pointer slot.
		parser.stepForward()
		function.SymbolTP = FunctionPtrSymbolType
		return function, nil
	case EqualTP:
		parser.stepForward()
		if parser.match(LeftBraceTP) {
			body, err := parser.parseBlock(function)
			if err != nil {
				return nil, err
			}
			function.Code = body
			if parser.match(SemiColonTP) {
				parser.stepForward()
			}
			return function, nil
		}
		block := parser.newBlockSymbol(function)
		expr, err := parser.parseExpression(block)
		if err != nil {
			return nil, err
		}
		if _, err := parser.expectToken(SemiColonTP); err != nil {
			return nil, err
		}
		returnNode := &SyntaxNode{
			TP:       ReturnNode,
			Children: []*SyntaxNode{expr},
			Scope:    block,
			FileName: expr.FileName,
			Line:     expr.Line,
		}
		function.Code = &SyntaxNode{
			TP:       BlockNode,
			Children: []*SyntaxNode{returnNode},
			Scope:    block,
			FileName: nameToken.fileName,
			Line:     nameToken.line,
		}
		return function, nil
	case LeftBraceTP:
		body, err := parser.parseBlock(function)
		if err != nil {
			return nil, err
		}
		function.Code = body
		return function, nil
	default:
		token := parser.currentToken()
		return nil, makeSyntaxError(token, "expected = or { to open function %s but found %s '%s'",
			function.Name, token.tp, token.content)
	}
}

// newBlockSymbol creates the synthetic _block<id> scope under parent.
func (parser *Parser) newBlockSymbol(parent *Symbol) *Symbol {
	token := parser.currentToken()
	block := parser.comp.newSymbol(BlockSymbolType, "", "void", token.fileName, token.line)
	block.Name = fmt.Sprintf("_block%d", block.ID)
	// The name is synthetic and unique, AddChild cannot fail.
	_ = parent.AddChild(block)
	return block
}

// parseBlock parses "{ statements }" into a fresh block scope.
func (parser *Parser) parseBlock(parent *Symbol) (*SyntaxNode, error) {
	openToken, err := parser.expectToken(LeftBraceTP)
	if err != nil {
		return nil, err
	}
	block := parser.newBlockSymbol(parent)
	node := &SyntaxNode{
		TP:       BlockNode,
		Scope:    block,
		FileName: openToken.fileName,
		Line:     openToken.line,
	}
	for !parser.match(RightBraceTP) {
		if parser.match(EOFTP) {
			return nil, makeSyntaxError(parser.currentToken(), "expected } to close block")
		}
		statement, err := parser.parseStatement(block)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, statement)
	}
	parser.stepForward()
	return node, nil
}

// parseStatement parses one statement in the given block scope.
func (parser *Parser) parseStatement(scope *Symbol) (*SyntaxNode, error) {
	token := parser.currentToken()
	switch token.tp {
	case LeftBraceTP:
		return parser.parseBlock(scope)
	case IfTP:
		return parser.parseIfStatement(scope)
	case WhileTP:
		return parser.parseWhileStatement(scope)
	case ReturnTP:
		return parser.parseReturnStatement(scope)
	case SemiColonTP:
		parser.stepForward()
		return &SyntaxNode{TP: NopNode, Scope: scope, FileName: token.fileName, Line: token.line}, nil
	case PrivateTP, StaticTP, ConstTP, TildeTP, StructTP, EnumTP:
		return parser.parseDeclarationStatement(scope)
	case IdentifierTP:
		if parser.startsDeclaration() {
			return parser.parseDeclarationStatement(scope)
		}
	}
	expr, err := parser.parseExpression(scope)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(SemiColonTP); err != nil {
		return nil, err
	}
	return expr, nil
}

// startsDeclaration distinguishes "type name ..." declarations from
// expressions that happen to begin with an identifier.
func (parser *Parser) startsDeclaration() bool {
	if parser.peekToken(1).tp == IdentifierTP {
		return true
	}
	return parser.peekToken(1).tp == ColonTP &&
		parser.peekToken(2).tp == IdentifierTP &&
		parser.peekToken(3).tp == IdentifierTP
}

func (parser *Parser) parseDeclarationStatement(scope *Symbol) (*SyntaxNode, error) {
	token := parser.currentToken()
	symbol, err := parser.parseDeclaration(scope)
	if err != nil {
		return nil, err
	}
	return &SyntaxNode{
		TP:       SymbolDefineNode,
		Value:    symbol,
		Scope:    scope,
		FileName: token.fileName,
		Line:     token.line,
	}, nil
}

// parseIfStatement parses "if ( expr ) block [else statement]".
func (parser *Parser) parseIfStatement(scope *Symbol) (*SyntaxNode, error) {
	ifToken, err := parser.expectToken(IfTP)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(LeftParenTP); err != nil {
		return nil, err
	}
	condition, err := parser.parseExpression(scope)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(RightParenTP); err != nil {
		return nil, err
	}
	body, err := parser.parseBlock(scope)
	if err != nil {
		return nil, err
	}
	node := &SyntaxNode{
		TP:       IfNode,
		Children: []*SyntaxNode{condition, body},
		Scope:    scope,
		FileName: ifToken.fileName,
		Line:     ifToken.line,
	}
	if !parser.match(ElseTP) {
		return node, nil
	}
	parser.stepForward()
	elseStatement, err := parser.parseStatement(scope)
	if err != nil {
		return nil, err
	}
	node.TP = IfElseNode
	node.Children = append(node.Children, elseStatement)
	return node, nil
}

// parseWhileStatement parses "while ( expr ) block".
func (parser *Parser) parseWhileStatement(scope *Symbol) (*SyntaxNode, error) {
	whileToken, err := parser.expectToken(WhileTP)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(LeftParenTP); err != nil {
		return nil, err
	}
	condition, err := parser.parseExpression(scope)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(RightParenTP); err != nil {
		return nil, err
	}
	body, err := parser.parseBlock(scope)
	if err != nil {
		return nil, err
	}
	return &SyntaxNode{
		TP:       WhileNode,
		Children: []*SyntaxNode{condition, body},
		Scope:    scope,
		FileName: whileToken.fileName,
		Line:     whileToken.line,
	}, nil
}

// parseReturnStatement parses "return ;" or "return expr ;".
func (parser *Parser) parseReturnStatement(scope *Symbol) (*SyntaxNode, error) {
	returnToken, err := parser.expectToken(ReturnTP)
	if err != nil {
		return nil, err
	}
	node := &SyntaxNode{
		TP:       ReturnNode,
		Scope:    scope,
		FileName: returnToken.fileName,
		Line:     returnToken.line,
	}
	if parser.match(SemiColonTP) {
		parser.stepForward()
		return node, nil
	}
	expr, err := parser.parseExpression(scope)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expectToken(SemiColonTP); err != nil {
		return nil, err
	}
	node.Children = append(node.Children, expr)
	return node, nil
}
