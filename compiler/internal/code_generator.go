package internal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The emitter serializes a validated program to the target script. Output
// order is fixed: a header line, all enums, all structs, all module scope
// variables, all functions, then a trailing start invocation when a function
// of that name exists. Every identifier is rewritten to _<base36(id)>;
// struct fields keep their textual names for interop.

type emitter struct {
	comp   *Compilation
	buf    strings.Builder
	indent int
}

// Emit writes the compiled script for the whole program to w.
func (comp *Compilation) Emit(w io.Writer) error {
	e := &emitter{comp: comp}
	e.line(`"use strict";`)
	var enums, structs, variables, functions []*Symbol
	for _, module := range comp.Program.OrderedChildren() {
		if module.SymbolTP != ModuleSymbolType {
			continue
		}
		for _, child := range module.OrderedChildren() {
			switch child.SymbolTP {
			case EnumSymbolType:
				enums = append(enums, child)
			case StructSymbolType:
				structs = append(structs, child)
			case VariableSymbolType, ExternVariableSymbolType:
				variables = append(variables, child)
			case FunctionSymbolType:
				functions = append(functions, child)
			}
		}
	}
	for _, enum := range enums {
		e.emitEnum(enum)
	}
	for _, structSymbol := range structs {
		e.emitStruct(structSymbol)
	}
	for _, variable := range variables {
		e.emitVariable(variable)
	}
	for _, function := range functions {
		e.emitFunction(function)
	}
	if start := comp.findStart(); start != nil {
		e.line(emitName(start) + "();")
	}
	_, err := io.WriteString(w, e.buf.String())
	return err
}

// findStart locates the entry function named start, searching the modules
// in declaration order.
func (comp *Compilation) findStart() *Symbol {
	for _, module := range comp.Program.OrderedChildren() {
		start := module.MapGet("start")
		if start != nil && start.SymbolTP == FunctionSymbolType {
			return start
		}
	}
	return nil
}

// emitName renders a symbol's globally unique output identifier.
func emitName(symbol *Symbol) string {
	return "_" + strconv.FormatInt(int64(symbol.ID), 36)
}

func (e *emitter) line(text string) {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteByte('\t')
	}
	e.buf.WriteString(text)
	e.buf.WriteByte('\n')
}

// emitEnum declares one variable per member holding its ordinal value.
func (e *emitter) emitEnum(enum *Symbol) {
	for _, member := range enum.OrderedChildren() {
		value := int64(0)
		if member.Code != nil && member.Code.TP == IntLiteralNode {
			value = member.Code.Value.(int64)
		}
		e.line(fmt.Sprintf("var %s = %d;", emitName(member), value))
	}
}

// emitStruct declares a constructor function whose parameters and this
// assignments use the textual field names.
func (e *emitter) emitStruct(structSymbol *Symbol) {
	fields := structSymbol.OrderedChildren()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
	}
	e.line(fmt.Sprintf("function %s(%s) {", emitName(structSymbol), strings.Join(names, ", ")))
	e.indent++
	for _, field := range fields {
		e.line(fmt.Sprintf("this.%s = %s;", field.Name, field.Name))
	}
	e.indent--
	e.line("}")
}

func (e *emitter) emitVariable(variable *Symbol) {
	if variable.Code == nil {
		e.line(fmt.Sprintf("var %s;", emitName(variable)))
		return
	}
	e.line(fmt.Sprintf("var %s = %s;", emitName(variable), e.expression(variable.Code)))
}

func (e *emitter) emitFunction(function *Symbol) {
	params := function.Parameters()
	names := make([]string, 0, len(params))
	for _, param := range params {
		names = append(names, emitName(param))
	}
	e.line(fmt.Sprintf("function %s(%s) {", emitName(function), strings.Join(names, ", ")))
	e.indent++
	if function.Code != nil {
		for _, statement := range function.Code.Children {
			e.emitStatement(statement)
		}
	}
	e.indent--
	e.line("}")
}

func (e *emitter) emitStatement(node *SyntaxNode) {
	switch node.TP {
	case BlockNode:
		e.line("{")
		e.indent++
		for _, child := range node.Children {
			e.emitStatement(child)
		}
		e.indent--
		e.line("}")
	case SymbolDefineNode:
		symbol := node.Value.(*Symbol)
		switch symbol.SymbolTP {
		case StructSymbolType:
			e.emitStruct(symbol)
		case EnumSymbolType:
			e.emitEnum(symbol)
		case FunctionSymbolType:
			e.emitFunction(symbol)
		default:
			e.emitVariable(symbol)
		}
	case IfNode, IfElseNode:
		e.line(fmt.Sprintf("if (%s)", e.expression(node.Children[0])))
		e.emitStatement(node.Children[1])
		if node.TP == IfElseNode {
			e.line("else")
			e.emitStatement(node.Children[2])
		}
	case WhileNode:
		e.line(fmt.Sprintf("while (%s)", e.expression(node.Children[0])))
		e.emitStatement(node.Children[1])
	case ReturnNode:
		if len(node.Children) == 0 {
			e.line("return;")
			return
		}
		e.line(fmt.Sprintf("return %s;", e.expression(node.Children[0])))
	case NopNode:
		e.line(";")
	default:
		e.line(e.expression(node) + ";")
	}
}

func (e *emitter) expression(node *SyntaxNode) string {
	switch node.TP {
	case IntLiteralNode:
		return strconv.FormatInt(node.Value.(int64), 10)
	case RealLiteralNode:
		return strconv.FormatFloat(node.Value.(float64), 'g', -1, 64)
	case CharLiteralNode:
		return "'" + node.Value.(string) + "'"
	case StringLiteralNode:
		return `"` + node.Value.(string) + `"`
	case TrueNode:
		return "true"
	case FalseNode:
		return "false"
	case NullNode:
		return "null"
	case VerbatimNode:
		return node.Value.(string)
	case VarNode:
		return e.variableReference(node)
	case ArrayLiteralNode:
		return "[" + e.argumentList(node.Children) + "]"
	case CallNode:
		return e.call(node)
	case DotNode:
		return e.dotAccess(node)
	case IndexNode:
		return e.indexAccess(node)
	case ModuleAccessNode:
		return e.moduleAccess(node)
	case CastNode, NewNode:
		return e.expression(node.Children[0])
	case FreeNode:
		return "(" + e.expression(node.Children[0]) + " = null)"
	default:
		return fmt.Sprintf("(%s %s %s)",
			e.expression(node.Left()), node.Value.(string), e.expression(node.Right()))
	}
}

func (e *emitter) argumentList(args []*SyntaxNode) string {
	rendered := make([]string, 0, len(args))
	for _, arg := range args {
		rendered = append(rendered, e.expression(arg))
	}
	return strings.Join(rendered, ", ")
}

func (e *emitter) variableReference(node *SyntaxNode) string {
	if symbol := node.Scope.Find(node.Name()); symbol != nil {
		return emitName(symbol)
	}
	return node.Name()
}

func (e *emitter) call(node *SyntaxNode) string {
	args := e.argumentList(node.Children)
	symbol := node.Scope.Find(node.Name())
	if symbol == nil {
		return node.Name() + "(" + args + ")"
	}
	if symbol.SymbolTP == StructSymbolType {
		return "new " + emitName(symbol) + "(" + args + ")"
	}
	return emitName(symbol) + "(" + args + ")"
}

// dotAccess renders field access with the textual field name. Enum members
// collapse to their own identifiers; array .length passes through.
func (e *emitter) dotAccess(node *SyntaxNode) string {
	lhs, field := node.Left(), node.Right()
	if lhs.TP == VarNode {
		if enum := node.Scope.Find(lhs.Name()); enum != nil && enum.SymbolTP == EnumSymbolType {
			if member := enum.MapGet(field.Name()); member != nil {
				return emitName(member)
			}
		}
	}
	return e.expression(lhs) + "." + field.Name()
}

// indexAccess renders xs[i], or an array construction when the target is a
// bare type name.
func (e *emitter) indexAccess(node *SyntaxNode) string {
	target := node.Left()
	if target.TP == VarNode && e.comp.isTypeName(target) {
		return "new Array(" + e.expression(node.Right()) + ")"
	}
	return e.expression(target) + "[" + e.expression(node.Right()) + "]"
}

func (e *emitter) moduleAccess(node *SyntaxNode) string {
	moduleName := node.Left().Name()
	rhs := node.Right()
	memberName := rhs.Name()
	member, err := e.comp.explicitAccess(node.Scope, moduleName, memberName, node.FileName, node.Line)
	if err != nil || member == nil {
		return moduleName + "$" + memberName
	}
	if rhs.TP == CallNode {
		args := e.argumentList(rhs.Children)
		if member.SymbolTP == StructSymbolType {
			return "new " + emitName(member) + "(" + args + ")"
		}
		return emitName(member) + "(" + args + ")"
	}
	return emitName(member)
}
