/*
breakdown.go - Labeled computation-step records for explain views

PURPOSE:
  Audit/explain output mirrors the computation instead of re-deriving it:
  every calculator appends its intermediate values to a Breakdown as it
  computes them, and the orchestrator concatenates those steps. Recomputing
  from the breakdown alone reproduces the final numbers exactly, because
  the steps ARE the computation's own values.

NIL SAFETY:
  All methods accept a nil receiver, so calculators record steps
  unconditionally and callers opt in by passing a non-nil Breakdown.

SEE ALSO:
  - cost.go, capacity.go: step producers
  - engine.go: concatenates per-quote steps
*/
package pricing

import "github.com/shopspring/decimal"

// Step is one labeled intermediate value with its formula and named inputs.
type Step struct {
	Label   string
	Value   decimal.Decimal
	Formula string
	Inputs  map[string]decimal.Decimal
}

// Breakdown is an ordered sequence of computation steps.
type Breakdown struct {
	Steps []Step
}

// Add appends a step. No-op on a nil receiver.
func (b *Breakdown) Add(label string, value decimal.Decimal, formula string, inputs map[string]decimal.Decimal) {
	if b == nil {
		return
	}
	b.Steps = append(b.Steps, Step{Label: label, Value: value, Formula: formula, Inputs: inputs})
}

// Append concatenates another breakdown's steps. No-op on a nil receiver.
func (b *Breakdown) Append(other *Breakdown) {
	if b == nil || other == nil {
		return
	}
	b.Steps = append(b.Steps, other.Steps...)
}
