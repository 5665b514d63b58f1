package internal

// In this file, we defined the ast of orange programs. Expression and
// statement nodes share one tagged node type; the Value payload is
// interpreted per kind: a boxed int64/float64 for numeric literals, a string
// for identifier/literal/operator lexemes, and a *Symbol for SymbolDefineNode.

type NodeType int

const (
	BlockNode NodeType = iota
	SymbolDefineNode
	IfNode
	IfElseNode
	WhileNode
	ReturnNode
	AddNode
	SubtractNode
	MultiplyNode
	DivideNode
	AssignNode
	AndNode
	OrNode
	IsNode
	IsntNode
	GreaterNode
	LesserNode
	GreaterEqualNode
	LesserEqualNode
	CastNode
	NewNode
	FreeNode
	DotNode
	IndexNode
	ModuleAccessNode
	VarNode
	IntLiteralNode
	RealLiteralNode
	CharLiteralNode
	StringLiteralNode
	ArrayLiteralNode
	TrueNode
	FalseNode
	NullNode
	CallNode
	VerbatimNode
	NopNode
)

type SyntaxNode struct {
	TP       NodeType
	Children []*SyntaxNode
	Value    interface{}
	// Scope is the symbol the node was parsed under; its parent chain
	// reaches the program root.
	Scope    *Symbol
	FileName string
	Line     int
}

// Binary nodes hold their operands in pop order: the right operand is folded
// off the argument stack first, so Children[0] is the right operand and
// Children[1] is the left one.

func (node *SyntaxNode) Left() *SyntaxNode {
	return node.Children[1]
}

func (node *SyntaxNode) Right() *SyntaxNode {
	return node.Children[0]
}

// Name returns the string payload of identifier-bearing nodes
// (VarNode, CallNode, DotNode fields and the like).
func (node *SyntaxNode) Name() string {
	name, _ := node.Value.(string)
	return name
}

var nodeTPNames = map[NodeType]string{
	BlockNode:         "block",
	SymbolDefineNode:  "symboldefine",
	IfNode:            "if",
	IfElseNode:        "ifelse",
	WhileNode:         "while",
	ReturnNode:        "return",
	AddNode:           "+",
	SubtractNode:      "-",
	MultiplyNode:      "*",
	DivideNode:        "/",
	AssignNode:        "=",
	AndNode:           "&&",
	OrNode:            "||",
	IsNode:            "==",
	IsntNode:          "!=",
	GreaterNode:       ">",
	LesserNode:        "<",
	GreaterEqualNode:  ">=",
	LesserEqualNode:   "<=",
	CastNode:          "cast",
	NewNode:           "new",
	FreeNode:          "free",
	DotNode:           ".",
	IndexNode:         "index",
	ModuleAccessNode:  ":",
	VarNode:           "var",
	IntLiteralNode:    "int literal",
	RealLiteralNode:   "real literal",
	CharLiteralNode:   "char literal",
	StringLiteralNode: "string literal",
	ArrayLiteralNode:  "array literal",
	TrueNode:          "true",
	FalseNode:         "false",
	NullNode:          "null",
	CallNode:          "call",
	VerbatimNode:      "verbatim",
	NopNode:           "nop",
}

func (tp NodeType) String() string {
	name, ok := nodeTPNames[tp]
	if !ok {
		return "unknown"
	}
	return name
}
