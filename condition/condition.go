package condition

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/batchops/host"
)

// Condition decides whether an environment passes a filter.
type Condition interface {
	Evaluate(env interface{}) bool
}

// ExprCondition is a compiled expr-lang boolean expression.
type ExprCondition struct {
	source  string
	program *vm.Program
}

// NewExprCondition compiles expression. Undefined variables evaluate to nil
// so that one filter can run over entities with different attributes.
func NewExprCondition(expression string) (*ExprCondition, error) {
	options := []expr.Option{
		expr.Function("like_match", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like_match function requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, fmt.Errorf("like_match function requires string parameters")
			}
			return matchesLikePattern(text, pattern), nil
		}),
		expr.Function("is_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("is_null function requires 1 parameter")
			}
			return params[0] == nil, nil
		}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	}

	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", expression, err)
	}
	return &ExprCondition{source: expression, program: program}, nil
}

// Evaluate runs the expression; runtime errors count as false.
func (ec *ExprCondition) Evaluate(env interface{}) bool {
	result, err := expr.Run(ec.program, env)
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}

func (ec *ExprCondition) String() string {
	return ec.source
}

// Env exposes an entity to expressions: every attribute by name, plus
// idname and the keep-alive flag when the entity has one.
func Env(e host.Entity) map[string]any {
	env := e.Attrs()
	env["idname"] = e.IDName()
	env["name"] = e.Name()
	if v, ok := e.Get(host.KeepAliveAttr); ok {
		env[host.KeepAliveAttr] = v
	}
	return env
}

// Entities returns a predicate over entities; a nil condition accepts all.
func Entities(c Condition) func(host.Entity) bool {
	if c == nil {
		return func(host.Entity) bool { return true }
	}
	return func(e host.Entity) bool {
		return c.Evaluate(Env(e))
	}
}

// matchesLikePattern matches text against a LIKE pattern where % matches
// any run of characters and _ exactly one.
func matchesLikePattern(text, pattern string) bool {
	return likeMatch([]rune(text), []rune(pattern))
}

// likeMatch is the usual greedy wildcard match with backtracking to the
// last %.
func likeMatch(text, pattern []rune) bool {
	t, p := 0, 0
	star, mark := -1, 0
	for t < len(text) {
		switch {
		case p < len(pattern) && (pattern[p] == '_' || pattern[p] == text[t]):
			t++
			p++
		case p < len(pattern) && pattern[p] == '%':
			star, mark = p, t
			p++
		case star >= 0:
			mark++
			t = mark
			p = star + 1
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '%' {
		p++
	}
	return p == len(pattern)
}
