package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func parseTestExpression(t *testing.T, src string) (*Compilation, *SyntaxNode) {
	comp := NewCompilation("js")
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("expr.orange", []byte(src))
	tokens = stripComments(tokens)
	tokens = dropNewlines(tokens)
	tokens = condenseArrayTypes(tokens)
	parser := &Parser{comp: comp, tokens: tokens}
	expr, err := parser.parseExpression(comp.Program)
	assert.Nil(t, err, src)
	return comp, expr
}

func TestExpression_Precedence(t *testing.T) {
	_, expr := parseTestExpression(t, "1 + 2 * 3")
	assert.Equal(t, AddNode, expr.TP)
	// The right operand is folded off the stack first.
	multiply := expr.Right()
	assert.Equal(t, MultiplyNode, multiply.TP)
	assert.Equal(t, IntLiteralNode, expr.Left().TP)
	assert.Equal(t, int64(1), expr.Left().Value)
	assert.Equal(t, int64(2), multiply.Left().Value)
	assert.Equal(t, int64(3), multiply.Right().Value)
}

func TestExpression_TopOperator(t *testing.T) {
	testData := []struct {
		content    string
		expectedTP NodeType
	}{
		{content: "a = b || c", expectedTP: AssignNode},
		{content: "a || b && c", expectedTP: OrNode},
		{content: "a == b + 1", expectedTP: IsNode},
		{content: "a != null", expectedTP: IsntNode},
		{content: "a < b + c", expectedTP: LesserNode},
		{content: "a >= b * c", expectedTP: GreaterEqualNode},
		{content: "a - b / c", expectedTP: SubtractNode},
		{content: "(1 + 2) * 3", expectedTP: MultiplyNode},
		{content: "cast (real) 1", expectedTP: CastNode},
		{content: "free p", expectedTP: FreeNode},
		{content: "true && false", expectedTP: AndNode},
	}
	for _, testD := range testData {
		_, expr := parseTestExpression(t, testD.content)
		assert.Equal(t, testD.expectedTP, expr.TP, testD.content)
	}
}

func TestExpression_OperandCounts(t *testing.T) {
	_, expr := parseTestExpression(t, "cast (int) a + b * c - d")
	var walk func(node *SyntaxNode)
	walk = func(node *SyntaxNode) {
		switch node.TP {
		case CastNode, NewNode, FreeNode:
			assert.Equal(t, 1, len(node.Children))
		case VarNode, IntLiteralNode:
			assert.Equal(t, 0, len(node.Children))
		default:
			assert.Equal(t, 2, len(node.Children))
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(expr)
}

func TestExpression_Call(t *testing.T) {
	_, expr := parseTestExpression(t, "f(1, 2 + 3)")
	assert.Equal(t, CallNode, expr.TP)
	assert.Equal(t, "f", expr.Name())
	assert.Equal(t, 2, len(expr.Children))
	assert.Equal(t, IntLiteralNode, expr.Children[0].TP)
	assert.Equal(t, AddNode, expr.Children[1].TP)
}

func TestExpression_EmptyCall(t *testing.T) {
	_, expr := parseTestExpression(t, "f()")
	assert.Equal(t, CallNode, expr.TP)
	assert.Equal(t, 0, len(expr.Children))
}

func TestExpression_ArrayLiteral(t *testing.T) {
	_, expr := parseTestExpression(t, "int array(1, 2, 3)")
	assert.Equal(t, ArrayLiteralNode, expr.TP)
	assert.Equal(t, "int array", expr.Name())
	assert.Equal(t, 3, len(expr.Children))
}

func TestExpression_Index(t *testing.T) {
	_, expr := parseTestExpression(t, "xs[i + 1]")
	assert.Equal(t, IndexNode, expr.TP)
	assert.Equal(t, VarNode, expr.Left().TP)
	assert.Equal(t, "xs", expr.Left().Name())
	assert.Equal(t, AddNode, expr.Right().TP)
}

func TestExpression_DotAndModuleAccess(t *testing.T) {
	_, expr := parseTestExpression(t, "p.x + a:k")
	assert.Equal(t, AddNode, expr.TP)
	assert.Equal(t, DotNode, expr.Left().TP)
	assert.Equal(t, ModuleAccessNode, expr.Right().TP)
	assert.Equal(t, "x", expr.Left().Right().Name())
	assert.Equal(t, "k", expr.Right().Right().Name())
}

func TestExpression_NewConstruction(t *testing.T) {
	_, expr := parseTestExpression(t, "new Pt(1, 2)")
	assert.Equal(t, NewNode, expr.TP)
	assert.Equal(t, CallNode, expr.Children[0].TP)
	_, expr = parseTestExpression(t, "new int[5]")
	assert.Equal(t, NewNode, expr.TP)
	assert.Equal(t, IndexNode, expr.Children[0].TP)
}

func TestExpression_CastQualifiedType(t *testing.T) {
	_, expr := parseTestExpression(t, "cast (a:Foo) p")
	assert.Equal(t, CastNode, expr.TP)
	assert.Equal(t, "a$Foo", expr.Name())
}

func TestExpression_Verbatim(t *testing.T) {
	_, expr := parseTestExpression(t, `verbatim "process.exit(0)"`)
	assert.Equal(t, VerbatimNode, expr.TP)
	assert.Equal(t, "process.exit(0)", expr.Value)
}

func TestExpression_Literals(t *testing.T) {
	testData := []struct {
		content    string
		expectedTP NodeType
	}{
		{content: "true", expectedTP: TrueNode},
		{content: "false", expectedTP: FalseNode},
		{content: "null", expectedTP: NullNode},
		{content: "'c'", expectedTP: CharLiteralNode},
		{content: `"str"`, expectedTP: StringLiteralNode},
		{content: "1.25", expectedTP: RealLiteralNode},
	}
	for _, testD := range testData {
		_, expr := parseTestExpression(t, testD.content)
		assert.Equal(t, testD.expectedTP, expr.TP, testD.content)
	}
}

func TestExpression_Errors(t *testing.T) {
	testData := []string{
		"1 +",
		"(1 + 2",
		"1 2",
		"* 3",
	}
	comp := NewCompilation("js")
	tokenizer := &Tokenizer{}
	for _, content := range testData {
		tokens := dropNewlines(tokenizer.Tokenize("expr.orange", []byte(content)))
		parser := &Parser{comp: comp, tokens: tokens}
		_, err := parser.parseExpression(comp.Program)
		assert.NotNil(t, err, content)
	}
}
