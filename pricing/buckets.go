/*
buckets.go - Single-pass employee grouping

PURPOSE:
  Every downstream calculator consumes employees grouped by (category,
  stack). Instead of re-filtering the employee list in each formula, the
  engine buckets the effective-active set once here and hands every
  consumer the relevant bucket. The filtering invariant lives in exactly
  one place.
*/
package pricing

import "sort"

// BucketKey groups employees by category and tech stack.
type BucketKey struct {
	Category Category
	Stack    StackID
}

// Buckets maps (category, stack) to the employees in that group, in input
// order.
type Buckets map[BucketKey][]Employee

// BucketEmployees groups an effective-active employee set in one pass.
func BucketEmployees(employees []Employee) Buckets {
	b := make(Buckets)
	for _, e := range employees {
		k := BucketKey{Category: e.Category, Stack: e.StackID}
		b[k] = append(b[k], e)
	}
	return b
}

// Group returns the employees for one (category, stack) pair.
func (b Buckets) Group(c Category, s StackID) []Employee {
	return b[BucketKey{Category: c, Stack: s}]
}

// Pool returns all employees of a category across every stack.
func (b Buckets) Pool(c Category) []Employee {
	var out []Employee
	for k, emps := range b {
		if k.Category == c {
			out = append(out, emps...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stacks returns the sorted distinct stacks present for a category.
// StackUnassigned sorts first when present.
func (b Buckets) Stacks(c Category) []StackID {
	seen := make(map[StackID]bool)
	var out []StackID
	for k := range b {
		if k.Category == c && !seen[k.Stack] {
			seen[k.Stack] = true
			out = append(out, k.Stack)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
