package internal

import (
	"strings"
)

// The validator runs two passes over the symbol tree. Pass 1 rewrites every
// declared type that names a struct to the struct's canonical type,
// resolving the Mod$Name spellings through explicit access. Pass 2 walks the
// program, dispatching by symbol kind, and types every expression and
// statement. The first error aborts the run.

var primitiveTypes = map[string]bool{
	"int":     true,
	"char":    true,
	"boolean": true,
	"void":    true,
	"real":    true,
	"byte":    true,
	"struct":  true,
}

func isPrimitiveType(typeSpelling string) bool {
	return primitiveTypes[typeSpelling]
}

const arraySuffix = " array"

// splitArraySuffix splits "Foo array array" into "Foo" and " array array".
func splitArraySuffix(typeSpelling string) (base, suffix string) {
	base = typeSpelling
	for strings.HasSuffix(base, arraySuffix) {
		base = strings.TrimSuffix(base, arraySuffix)
		suffix += arraySuffix
	}
	return base, suffix
}

func isArrayType(typeSpelling string) bool {
	return strings.HasSuffix(typeSpelling, arraySuffix)
}

func elementType(typeSpelling string) string {
	return strings.TrimSuffix(typeSpelling, arraySuffix)
}

func (comp *Compilation) Validate() error {
	if err := comp.normalizeStructTypes(comp.Program); err != nil {
		return err
	}
	return comp.validateSymbol(comp.Program)
}

// normalizeStructTypes is pass 1: declared struct types are rewritten to the
// canonical type of the struct they resolve to.
func (comp *Compilation) normalizeStructTypes(symbol *Symbol) error {
	switch symbol.SymbolTP {
	case VariableSymbolType, ExternVariableSymbolType, FunctionPtrSymbolType, FunctionSymbolType, BlockSymbolType:
		base, suffix := splitArraySuffix(symbol.Type)
		if strings.Contains(base, "$") {
			parts := strings.SplitN(base, "$", 2)
			member, err := comp.explicitAccess(symbol, parts[0], parts[1], symbol.FileName, symbol.Line)
			if err != nil {
				return err
			}
			if member.SymbolTP != StructSymbolType {
				return makeSemanticError(symbol.FileName, symbol.Line, "Expected a struct type: %s:%s", parts[0], parts[1])
			}
			symbol.Type = member.Type + suffix
		} else if !isPrimitiveType(base) {
			if found := symbol.Find(base); found != nil && found.SymbolTP == StructSymbolType {
				symbol.Type = found.Type + suffix
			}
		}
	}
	for _, child := range symbol.OrderedChildren() {
		if err := comp.normalizeStructTypes(child); err != nil {
			return err
		}
	}
	return nil
}

// validateSymbol is pass 2.
func (comp *Compilation) validateSymbol(symbol *Symbol) error {
	switch symbol.SymbolTP {
	case ProgramSymbolType:
		for _, child := range symbol.OrderedChildren() {
			if child.SymbolTP != ModuleSymbolType {
				return makeSemanticError(child.FileName, child.Line, "Expected a module at top level: %s", child.Name)
			}
			if err := comp.validateSymbol(child); err != nil {
				return err
			}
		}
	case ModuleSymbolType:
		for _, child := range symbol.OrderedChildren() {
			if child.SymbolTP == BlockSymbolType {
				return makeSemanticError(child.FileName, child.Line, "Unexpected block in module %s", symbol.Name)
			}
			if err := comp.validateSymbol(child); err != nil {
				return err
			}
		}
	case VariableSymbolType, ExternVariableSymbolType:
		if err := comp.resolveDeclaredType(symbol); err != nil {
			return err
		}
		if symbol.Code != nil {
			actual, err := comp.inferExpressionType(symbol.Code)
			if err != nil {
				return err
			}
			if !comp.typesMatch(symbol.Type, actual, symbol.Parent) {
				return makeSemanticError(symbol.FileName, symbol.Line,
					"Type mismatch: %s is declared %s but its initializer is %s", symbol.Name, symbol.Type, actual)
			}
		}
		symbol.IsDeclared = true
	case FunctionPtrSymbolType:
		if err := comp.resolveDeclaredType(symbol); err != nil {
			return err
		}
		for _, child := range symbol.OrderedChildren() {
			if err := comp.validateSymbol(child); err != nil {
				return err
			}
		}
	case FunctionSymbolType:
		if err := comp.resolveDeclaredType(symbol); err != nil {
			return err
		}
		for _, child := range symbol.OrderedChildren() {
			if err := comp.validateSymbol(child); err != nil {
				return err
			}
		}
		if symbol.Code != nil {
			return comp.validateStatement(symbol.Code)
		}
	case StructSymbolType, EnumSymbolType, BlockSymbolType:
		for _, child := range symbol.OrderedChildren() {
			if err := comp.validateSymbol(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveDeclaredType checks that a declared type spelling names a
// primitive, or a struct registered in the struct index or visible in scope.
func (comp *Compilation) resolveDeclaredType(symbol *Symbol) error {
	base, _ := splitArraySuffix(symbol.Type)
	if isPrimitiveType(base) {
		return nil
	}
	if comp.lookUpStruct(base) != nil {
		return nil
	}
	if found := symbol.Find(base); found != nil && found.SymbolTP == StructSymbolType {
		return nil
	}
	return makeSemanticError(symbol.FileName, symbol.Line, "Unknown type: %s", symbol.Type)
}

// typesMatch reports whether a value of type actual is acceptable where
// expected is required.
func (comp *Compilation) typesMatch(expected, actual string, scope *Symbol) bool {
	if isPrimitiveType(expected) || isPrimitiveType(actual) {
		return expected == actual
	}
	// None is the universal non-primitive bottom type.
	if actual == "None" {
		return true
	}
	// Any is the universal non-primitive top type.
	if expected == "Any" {
		return true
	}
	if isArrayType(expected) {
		if !isArrayType(actual) || expected != actual {
			return false
		}
		return comp.typesMatch(elementType(expected), elementType(actual), scope)
	}
	structSymbol := comp.lookUpStruct(actual)
	if structSymbol == nil && scope != nil {
		if found := scope.Find(actual); found != nil && found.SymbolTP == StructSymbolType {
			structSymbol = found
		}
	}
	if structSymbol != nil {
		return expected == structSymbol.Type
	}
	return false
}

func enclosingFunction(scope *Symbol) *Symbol {
	for symbol := scope; symbol != nil; symbol = symbol.Parent {
		if symbol.SymbolTP == FunctionSymbolType {
			return symbol
		}
	}
	return nil
}

func isArithmeticType(typeSpelling string) bool {
	return typeSpelling == "int" || typeSpelling == "real"
}

// validateStatement types one statement node.
func (comp *Compilation) validateStatement(node *SyntaxNode) error {
	switch node.TP {
	case BlockNode:
		for _, child := range node.Children {
			if err := comp.validateStatement(child); err != nil {
				return err
			}
		}
	case IfNode, IfElseNode, WhileNode:
		conditionType, err := comp.inferExpressionType(node.Children[0])
		if err != nil {
			return err
		}
		if conditionType != "boolean" {
			return makeSemanticError(node.FileName, node.Line, "Condition must be boolean, found %s", conditionType)
		}
		if err := comp.validateStatement(node.Children[1]); err != nil {
			return err
		}
		if node.TP == IfElseNode {
			return comp.validateStatement(node.Children[2])
		}
	case ReturnNode:
		function := enclosingFunction(node.Scope)
		if function == nil {
			return makeSemanticError(node.FileName, node.Line, "return outside of a function")
		}
		if len(node.Children) == 0 {
			if function.Type != "void" {
				return makeSemanticError(node.FileName, node.Line,
					"Function %s must return %s", function.Name, function.Type)
			}
			return nil
		}
		actual, err := comp.inferExpressionType(node.Children[0])
		if err != nil {
			return err
		}
		if function.Type == "void" {
			return makeSemanticError(node.FileName, node.Line,
				"Function %s is void and cannot return a value", function.Name)
		}
		if !comp.typesMatch(function.Type, actual, node.Scope) {
			return makeSemanticError(node.FileName, node.Line,
				"Function %s returns %s but the return value is %s", function.Name, function.Type, actual)
		}
	case SymbolDefineNode:
		symbol := node.Value.(*Symbol)
		symbol.IsDeclared = true
		return comp.validateSymbol(symbol)
	case NopNode:
		return nil
	default:
		_, err := comp.inferExpressionType(node)
		return err
	}
	return nil
}

// inferExpressionType types one expression node and returns its type
// spelling.
func (comp *Compilation) inferExpressionType(node *SyntaxNode) (string, error) {
	switch node.TP {
	case IntLiteralNode:
		return "int", nil
	case RealLiteralNode:
		return "real", nil
	case CharLiteralNode:
		return "char", nil
	case StringLiteralNode:
		return "char array", nil
	case TrueNode, FalseNode:
		return "boolean", nil
	case NullNode:
		return "None", nil
	case VerbatimNode:
		return "Any", nil
	case VarNode:
		symbol := node.Scope.Find(node.Name())
		if symbol == nil {
			return "", makeSemanticError(node.FileName, node.Line, "Unknown symbol: %s", node.Name())
		}
		return symbol.Type, nil
	case AddNode, SubtractNode, MultiplyNode, DivideNode:
		return comp.inferArithmeticType(node)
	case LesserNode, GreaterNode, LesserEqualNode, GreaterEqualNode:
		if _, err := comp.inferArithmeticType(node); err != nil {
			return "", err
		}
		return "boolean", nil
	case IsNode, IsntNode:
		// Equality is unconstrained so struct vs null comparisons stay legal.
		if _, err := comp.inferExpressionType(node.Left()); err != nil {
			return "", err
		}
		if _, err := comp.inferExpressionType(node.Right()); err != nil {
			return "", err
		}
		return "boolean", nil
	case AndNode, OrNode:
		for _, operand := range []*SyntaxNode{node.Left(), node.Right()} {
			operandType, err := comp.inferExpressionType(operand)
			if err != nil {
				return "", err
			}
			if operandType != "boolean" {
				return "", makeSemanticError(node.FileName, node.Line,
					"Operator %s needs boolean operands, found %s", node.TP, operandType)
			}
		}
		return "boolean", nil
	case AssignNode:
		return comp.inferAssignType(node)
	case CallNode:
		return comp.inferCallType(node)
	case ArrayLiteralNode:
		return comp.inferArrayLiteralType(node)
	case DotNode:
		return comp.inferDotType(node)
	case IndexNode:
		return comp.inferIndexType(node)
	case ModuleAccessNode:
		return comp.inferModuleAccessType(node)
	case CastNode:
		return comp.inferCastType(node)
	case NewNode:
		child := node.Children[0]
		switch child.TP {
		case CallNode, IndexNode, ModuleAccessNode:
			return comp.inferExpressionType(child)
		default:
			return "", makeSemanticError(node.FileName, node.Line, "new needs a constructor, array or module access")
		}
	case FreeNode:
		if _, err := comp.inferExpressionType(node.Children[0]); err != nil {
			return "", err
		}
		return "None", nil
	default:
		return "", makeSemanticError(node.FileName, node.Line, "Unexpected %s in expression", node.TP)
	}
}

// inferArithmeticType types + - * / and the relational operators: both
// operands must be int or real, and the result widens to real when either
// side is real.
func (comp *Compilation) inferArithmeticType(node *SyntaxNode) (string, error) {
	leftType, err := comp.inferExpressionType(node.Left())
	if err != nil {
		return "", err
	}
	rightType, err := comp.inferExpressionType(node.Right())
	if err != nil {
		return "", err
	}
	if !isArithmeticType(leftType) || !isArithmeticType(rightType) {
		return "", makeSemanticError(node.FileName, node.Line,
			"Operator %s needs int or real operands, found %s and %s", node.TP, leftType, rightType)
	}
	if leftType == "real" || rightType == "real" {
		return "real", nil
	}
	return "int", nil
}

func (comp *Compilation) inferAssignType(node *SyntaxNode) (string, error) {
	lhs := node.Left()
	switch lhs.TP {
	case VarNode:
		symbol := lhs.Scope.Find(lhs.Name())
		if symbol != nil && symbol.IsConstant {
			return "", makeSemanticError(node.FileName, node.Line, "Cannot assign to constant: %s", lhs.Name())
		}
	case ModuleAccessNode:
		member, err := comp.explicitAccess(node.Scope, lhs.Left().Name(), lhs.Right().Name(), node.FileName, node.Line)
		if err != nil {
			return "", err
		}
		if member.IsConstant {
			return "", makeSemanticError(node.FileName, node.Line, "Cannot assign to constant: %s", member.Name)
		}
	case DotNode, IndexNode:
		// Element stores are always assignable. A field store walks the dot
		// chain down to its base; a constant base or an enum member is not
		// assignable.
		base := lhs
		for base.TP == DotNode {
			base = base.Left()
		}
		if lhs.TP == DotNode {
			switch base.TP {
			case VarNode:
				symbol := lhs.Scope.Find(base.Name())
				if symbol != nil && symbol.SymbolTP == EnumSymbolType {
					return "", makeSemanticError(node.FileName, node.Line,
						"Cannot assign to constant: %s", lhs.Right().Name())
				}
				if symbol != nil && symbol.IsConstant {
					return "", makeSemanticError(node.FileName, node.Line,
						"Cannot assign to constant: %s", base.Name())
				}
			case ModuleAccessNode:
				member, err := comp.explicitAccess(node.Scope, base.Left().Name(), base.Right().Name(), node.FileName, node.Line)
				if err == nil && member.IsConstant {
					return "", makeSemanticError(node.FileName, node.Line,
						"Cannot assign to constant: %s", member.Name)
				}
			}
		}
	default:
		return "", makeSemanticError(node.FileName, node.Line, "Cannot assign to %s", lhs.TP)
	}
	leftType, err := comp.inferExpressionType(lhs)
	if err != nil {
		return "", err
	}
	rightType, err := comp.inferExpressionType(node.Right())
	if err != nil {
		return "", err
	}
	if !comp.typesMatch(leftType, rightType, node.Scope) {
		return "", makeSemanticError(node.FileName, node.Line,
			"Type mismatch: cannot assign %s to %s", rightType, leftType)
	}
	return leftType, nil
}

func (comp *Compilation) inferCallType(node *SyntaxNode) (string, error) {
	name := node.Name()
	symbol := node.Scope.Find(name)
	if symbol == nil {
		return "", makeSemanticError(node.FileName, node.Line, "Unknown function: %s", name)
	}
	switch symbol.SymbolTP {
	case StructSymbolType:
		return comp.inferConstructorType(node, symbol)
	case FunctionSymbolType, FunctionPtrSymbolType:
		if symbol.IsStatic && !isStaticContext(node.Scope) {
			return "", makeSemanticError(node.FileName, node.Line,
				"Cannot call static %s from a non-static context", symbol.Name)
		}
		params := symbol.Parameters()
		if len(params) != len(node.Children) {
			return "", makeSemanticError(node.FileName, node.Line,
				"%s expects %d arguments but found %d", symbol.Name, len(params), len(node.Children))
		}
		for i, param := range params {
			argType, err := comp.inferExpressionType(node.Children[i])
			if err != nil {
				return "", err
			}
			if !comp.typesMatch(param.Type, argType, node.Scope) {
				return "", makeSemanticError(node.FileName, node.Line,
					"%s expects %s for %s but found %s", symbol.Name, param.Type, param.Name, argType)
			}
		}
		return symbol.Type, nil
	default:
		return "", makeSemanticError(node.FileName, node.Line, "%s is not callable", name)
	}
}

// inferConstructorType treats a call to a struct name as positional
// construction; an empty argument list yields a zero value of the struct.
func (comp *Compilation) inferConstructorType(node *SyntaxNode, structSymbol *Symbol) (string, error) {
	if len(node.Children) == 0 {
		return structSymbol.Type, nil
	}
	fields := structSymbol.OrderedChildren()
	if len(fields) != len(node.Children) {
		return "", makeSemanticError(node.FileName, node.Line,
			"%s expects %d fields but found %d", structSymbol.Name, len(fields), len(node.Children))
	}
	for i, field := range fields {
		argType, err := comp.inferExpressionType(node.Children[i])
		if err != nil {
			return "", err
		}
		if !comp.typesMatch(field.Type, argType, node.Scope) {
			return "", makeSemanticError(node.FileName, node.Line,
				"%s field %s is %s but found %s", structSymbol.Name, field.Name, field.Type, argType)
		}
	}
	return structSymbol.Type, nil
}

// inferArrayLiteralType types "T array(e1, e2, ...)": every element must
// match the element type.
func (comp *Compilation) inferArrayLiteralType(node *SyntaxNode) (string, error) {
	arrayType := node.Name()
	element := elementType(arrayType)
	for _, child := range node.Children {
		childType, err := comp.inferExpressionType(child)
		if err != nil {
			return "", err
		}
		if !comp.typesMatch(element, childType, node.Scope) {
			return "", makeSemanticError(node.FileName, node.Line,
				"Array literal of %s cannot hold %s", element, childType)
		}
	}
	return arrayType, nil
}

func (comp *Compilation) inferDotType(node *SyntaxNode) (string, error) {
	fieldNode := node.Right()
	if fieldNode.TP != VarNode {
		return "", makeSemanticError(node.FileName, node.Line, "Expected a field name after .")
	}
	if lhs := node.Left(); lhs.TP == VarNode {
		if enum := node.Scope.Find(lhs.Name()); enum != nil && enum.SymbolTP == EnumSymbolType {
			member := enum.MapGet(fieldNode.Name())
			if member == nil {
				return "", makeSemanticError(node.FileName, node.Line, "Unknown field: %s.%s", enum.Name, fieldNode.Name())
			}
			return member.Type, nil
		}
	}
	leftType, err := comp.inferExpressionType(node.Left())
	if err != nil {
		return "", err
	}
	// Every array answers .length.
	if isArrayType(leftType) && fieldNode.Name() == "length" {
		return "int", nil
	}
	structSymbol := comp.lookUpStruct(leftType)
	if structSymbol == nil {
		if found := node.Scope.Find(leftType); found != nil && found.SymbolTP == StructSymbolType {
			structSymbol = found
		}
	}
	if structSymbol == nil {
		return "", makeSemanticError(node.FileName, node.Line, "Expected struct type: %s", leftType)
	}
	field := structSymbol.MapGet(fieldNode.Name())
	if field == nil {
		return "", makeSemanticError(node.FileName, node.Line, "Unknown field: %s.%s", structSymbol.Name, fieldNode.Name())
	}
	return field.Type, nil
}

func (comp *Compilation) inferIndexType(node *SyntaxNode) (string, error) {
	indexType, err := comp.inferExpressionType(node.Right())
	if err != nil {
		return "", err
	}
	if indexType != "int" {
		return "", makeSemanticError(node.FileName, node.Line, "Array index must be int, found %s", indexType)
	}
	target := node.Left()
	// A bare type-name target is size-based array construction.
	if target.TP == VarNode && comp.isTypeName(target) {
		return target.Name() + arraySuffix, nil
	}
	targetType, err := comp.inferExpressionType(target)
	if err != nil {
		return "", err
	}
	if !isArrayType(targetType) {
		return "", makeSemanticError(node.FileName, node.Line, "Expected array type, found %s", targetType)
	}
	return elementType(targetType), nil
}

// isTypeName reports whether a VarNode names a type rather than a value: a
// primitive, or a struct that is not shadowed by a variable in scope.
func (comp *Compilation) isTypeName(node *SyntaxNode) bool {
	name := node.Name()
	symbol := node.Scope.Find(name)
	if symbol != nil {
		return symbol.SymbolTP == StructSymbolType
	}
	return isPrimitiveType(name) || comp.lookUpStruct(name) != nil
}

func (comp *Compilation) inferModuleAccessType(node *SyntaxNode) (string, error) {
	lhs := node.Left()
	if lhs.TP != VarNode {
		return "", makeSemanticError(node.FileName, node.Line, "Expected a module name before :")
	}
	rhs := node.Right()
	switch rhs.TP {
	case VarNode:
		member, err := comp.explicitAccess(node.Scope, lhs.Name(), rhs.Name(), node.FileName, node.Line)
		if err != nil {
			return "", err
		}
		return member.Type, nil
	case CallNode:
		member, err := comp.explicitAccess(node.Scope, lhs.Name(), rhs.Name(), node.FileName, node.Line)
		if err != nil {
			return "", err
		}
		// The call resolves inside the accessed module.
		rhs.Scope = comp.Program.MapGet(lhs.Name())
		if _, err := comp.inferExpressionType(rhs); err != nil {
			return "", err
		}
		return member.Type, nil
	default:
		return "", makeSemanticError(node.FileName, node.Line, "Expected a member name or call after :")
	}
}

func (comp *Compilation) inferCastType(node *SyntaxNode) (string, error) {
	target := node.Name()
	if target == "None" {
		return "", makeSemanticError(node.FileName, node.Line, "Cannot cast to None")
	}
	operandType, err := comp.inferExpressionType(node.Children[0])
	if err != nil {
		return "", err
	}
	if comp.typesMatch(target, operandType, node.Scope) || target == "Any" || operandType == "Any" {
		return target, nil
	}
	return "", makeSemanticError(node.FileName, node.Line, "Cannot cast %s to %s", operandType, target)
}
