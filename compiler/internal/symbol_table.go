package internal

import (
	"strings"
)

// The whole program is one hierarchical symbol tree. Every scope is a symbol
// whose children map binds local names; children keep insertion order so the
// emitted output is deterministic.

type SymbolType int

const (
	ProgramSymbolType SymbolType = iota
	ModuleSymbolType
	StructSymbolType
	VariableSymbolType
	ExternVariableSymbolType
	FunctionPtrSymbolType
	FunctionSymbolType
	BlockSymbolType
	EnumSymbolType
)

var symbolTPNames = map[SymbolType]string{
	ProgramSymbolType:        "program",
	ModuleSymbolType:         "module",
	StructSymbolType:         "struct",
	VariableSymbolType:       "variable",
	ExternVariableSymbolType: "extern variable",
	FunctionPtrSymbolType:    "function pointer",
	FunctionSymbolType:       "function",
	BlockSymbolType:          "block",
	EnumSymbolType:           "enum",
}

func (tp SymbolType) String() string {
	name, ok := symbolTPNames[tp]
	if !ok {
		return "unknown"
	}
	return name
}

type Symbol struct {
	SymbolTP SymbolType
	// Type is the declared type spelling, e.g. "int", "char array", "Foo",
	// "Mod$Foo". For a struct it equals the struct's own name; for the
	// program root it carries the target name.
	Type string
	Name string
	// ID is unique across one compilation; the emitter derives every output
	// identifier from it.
	ID   int
	Path string
	// Code holds the initializer expression of a variable or the body block
	// of a function.
	Code       *SyntaxNode
	Parent     *Symbol
	Children   map[string]*Symbol
	ChildNames []string
	IsPrivate  bool
	IsStatic   bool
	IsConstant bool
	IsDeclared bool
	FileName   string
	Line       int
}

// newSymbol allocates a symbol with a fresh unique id. The symbol is not yet
// attached to any scope.
func (comp *Compilation) newSymbol(tp SymbolType, name, typeSpelling string, fileName string, line int) *Symbol {
	comp.idCounter++
	return &Symbol{
		SymbolTP: tp,
		Type:     typeSpelling,
		Name:     name,
		ID:       comp.idCounter,
		Path:     name,
		Children: map[string]*Symbol{},
		FileName: fileName,
		Line:     line,
	}
}

// AddChild binds child under symbol, keeping insertion order. Binding an
// already-bound name is an error.
func (symbol *Symbol) AddChild(child *Symbol) error {
	_, ok := symbol.Children[child.Name]
	if ok {
		return makeSemanticError(child.FileName, child.Line, "duplicate name: %s", child.Name)
	}
	child.Parent = symbol
	child.Path = symbol.Path + "/" + child.Name
	symbol.Children[child.Name] = child
	symbol.ChildNames = append(symbol.ChildNames, child.Name)
	return nil
}

// MapGet retrieves a direct child by name, nil when absent.
func (symbol *Symbol) MapGet(name string) *Symbol {
	return symbol.Children[name]
}

// Find walks the parent chain until a scope binds name, or returns nil at
// the program root.
func (symbol *Symbol) Find(name string) *Symbol {
	for scope := symbol; scope != nil; scope = scope.Parent {
		child := scope.MapGet(name)
		if child != nil {
			return child
		}
	}
	return nil
}

// OrderedChildren returns the children in declaration order.
func (symbol *Symbol) OrderedChildren() []*Symbol {
	children := make([]*Symbol, 0, len(symbol.ChildNames))
	for _, name := range symbol.ChildNames {
		children = append(children, symbol.Children[name])
	}
	return children
}

// Parameters returns a function's parameter symbols in declaration order,
// excluding the synthetic body blocks.
func (symbol *Symbol) Parameters() []*Symbol {
	var params []*Symbol
	for _, child := range symbol.OrderedChildren() {
		if child.SymbolTP == VariableSymbolType && !strings.HasPrefix(child.Name, "_block") {
			params = append(params, child)
		}
	}
	return params
}

// isStaticContext reports whether any symbol on the scope chain carries the
// static modifier.
func isStaticContext(scope *Symbol) bool {
	for s := scope; s != nil; s = s.Parent {
		if s.IsStatic {
			return true
		}
	}
	return false
}

// explicitAccess resolves the module:member form through the program root,
// regardless of the current scope. A static module is only reachable from a
// static context, and private members are never reachable from outside.
func (comp *Compilation) explicitAccess(scope *Symbol, moduleName, memberName string, fileName string, line int) (*Symbol, error) {
	module := comp.Program.MapGet(moduleName)
	if module == nil || module.SymbolTP != ModuleSymbolType {
		return nil, makeSemanticError(fileName, line, "Unknown module: %s", moduleName)
	}
	if module.IsStatic && !isStaticContext(scope) {
		return nil, makeSemanticError(fileName, line, "Cannot access static module %s from a non-static context", moduleName)
	}
	member := module.MapGet(memberName)
	if member == nil {
		return nil, makeSemanticError(fileName, line, "Unknown member: %s:%s", moduleName, memberName)
	}
	if member.IsPrivate {
		return nil, makeSemanticError(fileName, line, "Cannot access private member: %s:%s", moduleName, memberName)
	}
	return member, nil
}

// registerStruct records a struct in the process-wide struct index used by
// type compatibility checks.
func (comp *Compilation) registerStruct(symbol *Symbol) {
	comp.structIndex[symbol.Name] = symbol
}

func (comp *Compilation) lookUpStruct(name string) *Symbol {
	return comp.structIndex[name]
}
