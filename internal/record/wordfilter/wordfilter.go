// Package wordfilter decides which words may be recorded using a CEL
// expression over the string variable "word".
package wordfilter

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Filter is a compiled word acceptance rule.
type Filter struct {
	expr string
	prg  cel.Program
}

// New compiles expr. The expression must evaluate to a bool, for example
// `size(word) > 0 && size(word) <= 64`.
func New(expr string) (*Filter, error) {
	env, err := cel.NewEnv(cel.Variable("word", cel.StringType))
	if err != nil {
		return nil, fmt.Errorf("CEL environment error: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("word filter must return bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program creation error: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// Allow evaluates the rule for word.
func (f *Filter) Allow(word string) (bool, error) {
	out, _, err := f.prg.Eval(map[string]interface{}{"word": word})
	if err != nil {
		return false, err
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL result is not boolean: %T", out.Value())
	}
	return result, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}
