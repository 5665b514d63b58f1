package internal

// Orange source text is lexed into a flat sequence of tagged tokens.
// The language has those elements:
// * KeyWord: cast, new, free, verbatim, true, false, null, module, struct, enum,
//   array, static, const, private, if, else, while, return.
// * Symbol: { } ( ) [ ] , . ; : ~ and the operators + - * / = == != < > <= >= && ||.
// * Constant: integer, real, character ('x') and string ("xxx").
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: /* */ and //.

type TokenType int

const (
	LeftParenTP                TokenType = iota // (
	RightParenTP                                // )
	LeftBracketTP                               // [
	RightBracketTP                              // ]
	LeftBraceTP                                 // {
	RightBraceTP                                // }
	CommaTP                                     // ,
	DotTP                                       // .
	SemiColonTP                                 // ;
	ColonTP                                     // :
	TildeTP                                     // ~
	NewlineTP                                   // \n
	IdentifierTP                                // varA
	IntegerTP                                   // 1010
	RealTP                                      // 10.10
	CharacterTP                                 // 'a'
	StringTP                                    // "xxx"
	TrueTP                                      // true
	FalseTP                                     // false
	NullTP                                      // null
	AddTP                                       // +
	MinusTP                                     // -
	MultiplyTP                                  // *
	DivideTP                                    // /
	EqualTP                                     // =
	IsTP                                        // ==
	IsntTP                                      // !=
	LessTP                                      // <
	GreaterTP                                   // >
	LessEqualTP                                 // <=
	GreaterEqualTP                              // >=
	AndTP                                       // &&
	OrTP                                        // ||
	CastTP                                      // cast
	NewTP                                       // new
	FreeTP                                      // free
	ModuleTP                                    // module
	StructTP                                    // struct
	EnumTP                                      // enum
	ArrayTP                                     // array
	StaticTP                                    // static
	ConstTP                                     // const
	PrivateTP                                   // private
	IfTP                                        // if
	ElseTP                                      // else
	WhileTP                                     // while
	ReturnTP                                    // return
	EOFTP                                       // end of input sentinel
	CallTP                                      // synthetic call token
	IndexTP                                     // synthetic index token
	MultipleLineOpenCommentTP                   // /*
	MultipleLineCloseCommentTP                  // */
	SingleLineCommentTP                         // //
	VerbatimTP                                  // verbatim
)

// Lexemes live in fixed-capacity buffers; the scanner truncates longer runs.
const maxLexemeLen = 254

// keyWordTokenTPMap is the mapping from keyWord to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"cast":     CastTP,
	"new":      NewTP,
	"free":     FreeTP,
	"verbatim": VerbatimTP,
	"true":     TrueTP,
	"false":    FalseTP,
	"null":     NullTP,
	"module":   ModuleTP,
	"struct":   StructTP,
	"enum":     EnumTP,
	"array":    ArrayTP,
	"static":   StaticTP,
	"const":    ConstTP,
	"private":  PrivateTP,
	"if":       IfTP,
	"else":     ElseTP,
	"while":    WhileTP,
	"return":   ReturnTP,
}

// multiCharTokenTPMap holds the exact multi-character operators.
var multiCharTokenTPMap = map[string]TokenType{
	"==": IsTP,
	"!=": IsntTP,
	"<=": LessEqualTP,
	">=": GreaterEqualTP,
	"&&": AndTP,
	"||": OrTP,
	"/*": MultipleLineOpenCommentTP,
	"*/": MultipleLineCloseCommentTP,
	"//": SingleLineCommentTP,
	"[]": IndexTP,
}

// simpleSymbolTokenTPMap is the mapping from single-character symbol to the
// corresponding TokenTP.
var simpleSymbolTokenTPMap = map[string]TokenType{
	"+":  AddTP,
	"-":  MinusTP,
	"*":  MultiplyTP,
	"/":  DivideTP,
	"=":  EqualTP,
	"<":  LessTP,
	">":  GreaterTP,
	"(":  LeftParenTP,
	")":  RightParenTP,
	"{":  LeftBraceTP,
	"}":  RightBraceTP,
	"[":  LeftBracketTP,
	"]":  RightBracketTP,
	",":  CommaTP,
	";":  SemiColonTP,
	".":  DotTP,
	":":  ColonTP,
	"~":  TildeTP,
	"\n": NewlineTP,
}

var tokenTPNames = map[TokenType]string{
	LeftParenTP:                "(",
	RightParenTP:               ")",
	LeftBracketTP:              "[",
	RightBracketTP:             "]",
	LeftBraceTP:                "{",
	RightBraceTP:               "}",
	CommaTP:                    ",",
	DotTP:                      ".",
	SemiColonTP:                ";",
	ColonTP:                    ":",
	TildeTP:                    "~",
	NewlineTP:                  "newline",
	IdentifierTP:               "identifier",
	IntegerTP:                  "int",
	RealTP:                     "real",
	CharacterTP:                "char",
	StringTP:                   "string",
	TrueTP:                     "true",
	FalseTP:                    "false",
	NullTP:                     "null",
	AddTP:                      "+",
	MinusTP:                    "-",
	MultiplyTP:                 "*",
	DivideTP:                   "/",
	EqualTP:                    "=",
	IsTP:                       "==",
	IsntTP:                     "!=",
	LessTP:                     "<",
	GreaterTP:                  ">",
	LessEqualTP:                "<=",
	GreaterEqualTP:             ">=",
	AndTP:                      "&&",
	OrTP:                       "||",
	CastTP:                     "cast",
	NewTP:                      "new",
	FreeTP:                     "free",
	ModuleTP:                   "module",
	StructTP:                   "struct",
	EnumTP:                     "enum",
	ArrayTP:                    "array",
	StaticTP:                   "static",
	ConstTP:                    "const",
	PrivateTP:                  "private",
	IfTP:                       "if",
	ElseTP:                     "else",
	WhileTP:                    "while",
	ReturnTP:                   "return",
	EOFTP:                      "eof",
	CallTP:                     "call",
	IndexTP:                    "index",
	MultipleLineOpenCommentTP:  "/*",
	MultipleLineCloseCommentTP: "*/",
	SingleLineCommentTP:        "//",
	VerbatimTP:                 "verbatim",
}

func (tp TokenType) String() string {
	name, ok := tokenTPNames[tp]
	if !ok {
		return "unknown"
	}
	return name
}

type Token struct {
	tp      TokenType
	content string
	// args carries the pre-parsed argument expressions of a synthetic call
	// token produced during expression simplification.
	args     []*SyntaxNode
	fileName string
	line     int
}
