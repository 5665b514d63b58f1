package internal

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
)

// A Compilation carries all state of one compiler run: the program root
// symbol, the struct index, the per-file line offsets used by diagnostics,
// and the unique id counter. Every phase is threaded through this value; the
// compiler is strictly single-threaded and batch-oriented.
type Compilation struct {
	Program     *Symbol
	structIndex map[string]*Symbol
	sources     map[string][]byte
	lineOffsets map[string][]int
	idCounter   int
}

// NewCompilation builds an empty program tree. The target string is carried
// in the program root's type field but is not otherwise inspected by the
// core.
func NewCompilation(target string) *Compilation {
	comp := &Compilation{
		structIndex: map[string]*Symbol{},
		sources:     map[string][]byte{},
		lineOffsets: map[string][]int{},
	}
	comp.Program = comp.newSymbol(ProgramSymbolType, "program", target, "", 0)
	return comp
}

// AddSource ingests one source file: it records the line offsets, lexes the
// text, strips comments, condenses array type spellings, and parses the
// declarations into the program-wide symbol tree.
func (comp *Compilation) AddSource(fileName string, src []byte) error {
	comp.sources[fileName] = src
	comp.lineOffsets[fileName] = scanLineOffsets(src)
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize(fileName, src)
	tokens = stripComments(tokens)
	tokens = dropNewlines(tokens)
	tokens = condenseArrayTypes(tokens)
	parser := &Parser{comp: comp, tokens: tokens}
	return parser.ParseProgram(comp.Program)
}

// scanLineOffsets records the byte offset of every line start, line 1 first.
func scanLineOffsets(src []byte) []int {
	offsets := []int{0}
	for i, b := range src {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// SourceLine returns the text of one 1-based source line, without the
// trailing newline.
func (comp *Compilation) SourceLine(fileName string, line int) string {
	src, ok := comp.sources[fileName]
	offsets := comp.lineOffsets[fileName]
	if !ok || line < 1 || line > len(offsets) {
		return ""
	}
	start := offsets[line-1]
	end := len(src)
	if line < len(offsets) {
		end = offsets[line] - 1
	}
	return strings.TrimRight(string(src[start:end]), "\r\n")
}

// CompileError is the single diagnostic kind of the compiler: the first
// parse, resolve, or type error aborts the run.
type CompileError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d error: %s", e.FileName, e.Line, e.Msg)
}

func makeSemanticError(fileName string, line int, format string, args ...interface{}) *CompileError {
	return &CompileError{FileName: fileName, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// FormatError renders a diagnostic with the offending source line echoed
// below it.
func (comp *Compilation) FormatError(err error) string {
	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		return err.Error()
	}
	sourceLine := comp.SourceLine(compileErr.FileName, compileErr.Line)
	if sourceLine == "" {
		return compileErr.Error()
	}
	return fmt.Sprintf("%s\n%d | %s", compileErr.Error(), compileErr.Line, sourceLine)
}

// CompileFiles reads every input, ingests it into one compilation, validates
// the program, and writes the emitted script to w.
func CompileFiles(fileNames []string, w io.Writer, target string) (*Compilation, error) {
	comp := NewCompilation(target)
	for _, fileName := range fileNames {
		src, err := ioutil.ReadFile(fileName)
		if err != nil {
			return comp, err
		}
		if err := comp.AddSource(fileName, src); err != nil {
			return comp, err
		}
	}
	if err := comp.Validate(); err != nil {
		return comp, err
	}
	return comp, comp.Emit(w)
}

// CompileToFile is the CLI entry: it compiles the inputs and writes the
// output file, releasing it before returning.
func CompileToFile(fileNames []string, outPath, target string) (*Compilation, error) {
	out, err := os.Create(outPath)
	if err != nil {
		return nil, err
	}
	comp, err := CompileFiles(fileNames, out, target)
	closeErr := out.Close()
	if err != nil {
		return comp, err
	}
	return comp, closeErr
}
