package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validateTestSource(t *testing.T, src string) (*Compilation, error) {
	comp := parseTestSource(t, src)
	return comp, comp.Validate()
}

func TestTypeChecker_ArithmeticWidening(t *testing.T) {
	comp, err := validateTestSource(t, `
		m {
			int a = 1 + 2 * 3;
			real b = 1 + 2 * 3.0;
		}
	`)
	assert.Nil(t, err)
	m := comp.Program.MapGet("m")
	aType, err := comp.inferExpressionType(m.MapGet("a").Code)
	assert.Nil(t, err)
	assert.Equal(t, "int", aType)
	bType, err := comp.inferExpressionType(m.MapGet("b").Code)
	assert.Nil(t, err)
	assert.Equal(t, "real", bType)
}

func TestTypeChecker_StructConstruction(t *testing.T) {
	comp, err := validateTestSource(t, `
		m {
			struct Pt (int x, int y);
			int f() = { Pt p = Pt(1, 2); return p.x; }
		}
	`)
	assert.Nil(t, err)
	pt := comp.Program.MapGet("m").MapGet("Pt")
	fields := pt.OrderedChildren()
	assert.Equal(t, "x", fields[0].Name)
	assert.Equal(t, "y", fields[1].Name)
	body := comp.Program.MapGet("m").MapGet("f").Code
	define := body.Children[0]
	assert.Equal(t, SymbolDefineNode, define.TP)
	p := define.Value.(*Symbol)
	assert.Equal(t, CallNode, p.Code.TP)
	assert.Equal(t, "Pt", p.Code.Name())
	assert.Equal(t, 2, len(p.Code.Children))
	assert.Equal(t, IntLiteralNode, p.Code.Children[0].TP)
}

func TestTypeChecker_ModuleAccess(t *testing.T) {
	comp := NewCompilation("js")
	assert.Nil(t, comp.AddSource("a.orange", []byte("a { int k = 3; }")))
	assert.Nil(t, comp.AddSource("b.orange", []byte("b { int g() = { return a:k; } }")))
	assert.Nil(t, comp.Validate())
}

func TestTypeChecker_ConstantAssignment(t *testing.T) {
	_, err := validateTestSource(t, "m { const int k = 3; void f() = { k = 4; } }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Cannot assign to constant")
}

func TestTypeChecker_ConstantFieldStore(t *testing.T) {
	_, err := validateTestSource(t, `
		m {
			struct Pt (int x, int y);
			const Pt p = Pt(1, 2);
			void f() = { p.x = 9; }
		}
	`)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Cannot assign to constant: p")

	// A chained field store through the constant base is just as illegal.
	_, err = validateTestSource(t, `
		m {
			struct In (int v);
			struct Out (In in);
			const Out o = Out(In(1));
			void f() = { o.in.v = 9; }
		}
	`)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Cannot assign to constant: o")

	// A mutable base keeps field stores assignable.
	_, err = validateTestSource(t, `
		m {
			struct Pt (int x, int y);
			void f() = { Pt p = Pt(1, 2); p.x = 9; }
		}
	`)
	assert.Nil(t, err)

	// Element stores stay exempt.
	_, err = validateTestSource(t, "m { int array xs = int array(1, 2); void f() = { xs[0] = 9; } }")
	assert.Nil(t, err)
}

func TestTypeChecker_ArrayIndexing(t *testing.T) {
	comp, err := validateTestSource(t, `
		m {
			char array xs = "ab";
			char c() = { return xs[0]; }
		}
	`)
	assert.Nil(t, err)
	assert.NotNil(t, comp)

	_, err = validateTestSource(t, "m { int xs = 1; int c() = { return xs[0]; } }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Expected array type")

	_, err = validateTestSource(t, `m { char array xs = "ab"; char c() = { return xs['a']; } }`)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Array index must be int")
}

func TestTypeChecker_ReturnRules(t *testing.T) {
	_, err := validateTestSource(t, "m { void f() = { return 1; } }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "void")

	_, err = validateTestSource(t, "m { int f() = { return; } }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "must return")

	_, err = validateTestSource(t, "m { int f() = { return 'c'; } }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "return value")
}

func TestTypeChecker_Conditions(t *testing.T) {
	_, err := validateTestSource(t, "m { void f() { while (1) {} } }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Condition must be boolean")

	_, err = validateTestSource(t, "m { void f() { if (1 < 2) {} } }")
	assert.Nil(t, err)
}

func TestTypeChecker_InitializerMismatch(t *testing.T) {
	_, err := validateTestSource(t, "m { int a = 1.5; }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Type mismatch")
}

func TestTypeChecker_CallChecks(t *testing.T) {
	_, err := validateTestSource(t, "m { int f(int a) = a; int g() = f(1, 2); }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "expects 1 arguments but found 2")

	_, err = validateTestSource(t, "m { int f(int a) = a; int g() = f('c'); }")
	assert.NotNil(t, err)

	_, err = validateTestSource(t, "m { int a = 1; int g() = a(); }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "not callable")

	_, err = validateTestSource(t, "m { int g() = missing(); }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Unknown function")
}

func TestTypeChecker_UnknownSymbolAndType(t *testing.T) {
	_, err := validateTestSource(t, "m { int g() = missing + 1; }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Unknown symbol")

	_, err = validateTestSource(t, "m { Mystery v; }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Unknown type")
}

func TestTypeChecker_NullAndEquality(t *testing.T) {
	_, err := validateTestSource(t, `
		m {
			struct Pt (int x, int y);
			boolean f(Pt p) = p == null;
			Pt zero = null;
		}
	`)
	assert.Nil(t, err)
}

func TestTypeChecker_VerbatimIsAny(t *testing.T) {
	comp := parseTestSource(t, `m { struct Pt (int x, int y); }`)
	_, expr := parseTestExpression(t, `verbatim "globalThis"`)
	anyType, err := comp.inferExpressionType(expr)
	assert.Nil(t, err)
	assert.Equal(t, "Any", anyType)

	// A verbatim value needs a cast before it can land in a typed slot.
	_, err = validateTestSource(t, `m { struct Pt (int x, int y); Pt p = verbatim "null"; }`)
	assert.NotNil(t, err)

	_, err = validateTestSource(t, `m { int a = verbatim "1"; }`)
	assert.NotNil(t, err)
}

func TestTypeChecker_Cast(t *testing.T) {
	_, err := validateTestSource(t, `
		m {
			struct Pt (int x, int y);
			Pt p = cast (Pt) verbatim "{x: 1, y: 2}";
		}
	`)
	assert.Nil(t, err)

	_, err = validateTestSource(t, `m { struct Pt (int x, int y); Pt f(int a) = cast (Pt) a; }`)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Cannot cast")
}

func TestTypeChecker_QualifiedStructTypes(t *testing.T) {
	comp := NewCompilation("js")
	assert.Nil(t, comp.AddSource("a.orange", []byte("a { struct Foo (int v); }")))
	assert.Nil(t, comp.AddSource("b.orange", []byte("b { a:Foo f() = { return a:Foo(1); } }")))
	assert.Nil(t, comp.Validate())
	f := comp.Program.MapGet("b").MapGet("f")
	assert.Equal(t, "Foo", f.Type)
}

func TestTypeChecker_TypesMatch(t *testing.T) {
	comp := parseTestSource(t, "m { struct Pt (int x, int y); }")
	assert.Nil(t, comp.Validate())
	for _, primitive := range []string{"int", "char", "boolean", "real", "byte", "void"} {
		assert.True(t, comp.typesMatch(primitive, primitive, comp.Program))
	}
	assert.False(t, comp.typesMatch("int", "real", comp.Program))
	assert.True(t, comp.typesMatch("Pt", "None", comp.Program))
	assert.True(t, comp.typesMatch("Any", "Pt", comp.Program))
	assert.False(t, comp.typesMatch("int", "None", comp.Program))
	assert.True(t, comp.typesMatch("char array", "char array", comp.Program))
	assert.False(t, comp.typesMatch("char array", "int array", comp.Program))
	assert.True(t, comp.typesMatch("Pt", "Pt", comp.Program))
}

func TestTypeChecker_EnumMembers(t *testing.T) {
	_, err := validateTestSource(t, `
		m {
			enum Color { red, green, blue }
			int f() = { return Color.green; }
			void g() = { Color.red = 5; }
		}
	`)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Cannot assign")

	_, err = validateTestSource(t, "m { enum Color { red, green } int f() = { return Color.green; } }")
	assert.Nil(t, err)
}

func TestTypeChecker_StaticCall(t *testing.T) {
	_, err := validateTestSource(t, "m { static int f() = 1; int g() = f(); }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "static")

	_, err = validateTestSource(t, "m { static int f() = 1; static int g() = f(); }")
	assert.Nil(t, err)
}

func TestTypeChecker_BooleanOperators(t *testing.T) {
	_, err := validateTestSource(t, "m { boolean b = true && (1 < 2); }")
	assert.Nil(t, err)

	_, err = validateTestSource(t, "m { boolean b = 1 && true; }")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "boolean operands")
}

func TestTypeChecker_ArrayConstruction(t *testing.T) {
	_, err := validateTestSource(t, "m { int array xs = new int[5]; }")
	assert.Nil(t, err)

	_, err = validateTestSource(t, "m { int array xs = int array(1, 2, 3); }")
	assert.Nil(t, err)

	_, err = validateTestSource(t, "m { int array xs = int array(1, 'c'); }")
	assert.NotNil(t, err)
}

func TestTypeChecker_ArrayLength(t *testing.T) {
	_, err := validateTestSource(t, `m { char array xs = "abc"; int n() = xs.length; }`)
	assert.Nil(t, err)
}
