package solver

import "fmt"

// Status is the outcome reported by a Solver.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Accepted reports whether a solution may be extracted from the result.
func (s Status) Accepted() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Variable is one binary decision variable with its objective coefficient.
type Variable struct {
	Name      string
	Objective float64
}

// Term is a single coefficient on a variable, addressed by variable index.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a linear inequality: sum(Coef_i * x_i) <= Bound.
type Constraint struct {
	Name  string
	Terms []Term
	Bound float64
}

// Model is a binary maximization program. It is a plain value, independent of
// any solver backend; construction order is preserved so solves are
// reproducible.
type Model struct {
	Variables   []Variable
	Constraints []Constraint
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// AddVariable appends a binary variable and returns its index.
func (m *Model) AddVariable(name string, objective float64) int {
	m.Variables = append(m.Variables, Variable{Name: name, Objective: objective})
	return len(m.Variables) - 1
}

// AddConstraint appends a <= constraint over the given terms.
func (m *Model) AddConstraint(name string, terms []Term, bound float64) {
	m.Constraints = append(m.Constraints, Constraint{Name: name, Terms: terms, Bound: bound})
}

// Result reports the solver outcome. Values holds one entry per model
// variable; callers treat values above 0.5 as selected.
type Result struct {
	Status    Status
	Objective float64
	Values    []float64
}
