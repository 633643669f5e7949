// Package policy evaluates order status changes with OPA.
package policy

import (
	"context"
	"os"

	"github.com/open-policy-agent/opa/rego"
	"github.com/pkg/errors"
)

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allow  bool
	Reason string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content. The
// module must define data.order_policy.decision as {"allow": bool, "reason": string}.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.order_policy.decision"),
		rego.Module("order_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare rego")
	}

	return &Engine{query: query}, nil
}

// LoadEngine reads the policy from path, or uses DefaultOrderPolicy when
// path is empty.
func LoadEngine(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultOrderPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policy file %s", path)
	}
	return NewEngine(ctx, string(content))
}

// Transition is the policy input for a status change.
type Transition struct {
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// Evaluate checks whether an order may move between two statuses.
func (e *Engine) Evaluate(ctx context.Context, input Transition) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"order_id": input.OrderID,
		"from":     input.From,
		"to":       input.To,
	}))
	if err != nil {
		return Decision{}, errors.Wrap(err, "failed to evaluate policy")
	}

	// The policy is expected to define a default; an undefined result allows.
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Allow: true, Reason: "default"}, nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{}, errors.Errorf("unexpected policy result %T", results[0].Expressions[0].Value)
	}
	d := Decision{}
	d.Allow, _ = obj["allow"].(bool)
	d.Reason, _ = obj["reason"].(string)
	return d, nil
}

// DefaultOrderPolicy accepts any status change.
const DefaultOrderPolicy = `
package order_policy

default decision = {"allow": true, "reason": "any transition"}
`

// StrictOrderPolicy only allows forward moves through the order lifecycle.
const StrictOrderPolicy = `
package order_policy

transitions = {
	"pending": ["confirmed", "cancelled"],
	"confirmed": ["delivered", "cancelled"],
	"delivered": [],
	"cancelled": []
}

default decision = {"allow": false, "reason": "transition not allowed"}

decision = {"allow": true, "reason": "unchanged"} {
	input.from == input.to
}

decision = {"allow": true, "reason": "allowed transition"} {
	input.from != input.to
	input.to == transitions[input.from][_]
}
`
