// Package policy evaluates the opportunity ownership rule with CEL.
package policy

import (
	"context"
	"fmt"

	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"

	"github.com/google/cel-go/cel"
)

// CELPolicy is an OwnershipPolicy backed by a compiled CEL program. The rule
// sees three variables: auth {email, name}, resource (the stored
// opportunity) and request {method}.
type CELPolicy struct {
	rule     string
	program  cel.Program
	enforced bool
}

var _ repository.OwnershipPolicy = (*CELPolicy)(nil)

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("auth", cel.DynType),
		cel.Variable("resource", cel.DynType),
		cel.Variable("request", cel.DynType),
	)
}

// NewCELPolicy compiles rule. A rule that does not compile or does not
// produce a bool is rejected.
func NewCELPolicy(rule string, enforced bool) (*CELPolicy, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error in ownership rule: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("ownership rule must evaluate to bool, got %s", out)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &CELPolicy{rule: rule, program: program, enforced: enforced}, nil
}

// Rule returns the source of the compiled rule.
func (p *CELPolicy) Rule() string { return p.rule }

// Enforced implements repository.OwnershipPolicy.
func (p *CELPolicy) Enforced() bool { return p.enforced }

// Allow implements repository.OwnershipPolicy. When the policy is not
// enforced every caller is allowed.
func (p *CELPolicy) Allow(ctx context.Context, subject repository.Subject, method string, o *model.Opportunity) (bool, error) {
	if !p.enforced {
		return true, nil
	}
	if o == nil {
		return false, fmt.Errorf("ownership rule needs a resource")
	}

	vars := map[string]interface{}{
		"auth": map[string]interface{}{
			"email": subject.Email,
			"name":  subject.Name,
		},
		"resource": o.ToMap(),
		"request": map[string]interface{}{
			"method": method,
		},
	}

	out, _, err := p.program.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("ownership rule did not return a bool")
	}
	return allowed, nil
}
