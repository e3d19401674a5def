package solver

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Solver submits a model and reports {status, objective, values}. The engine
// treats implementations as opaque; a failing or non-feasible solve triggers
// the greedy fallback upstream.
type Solver interface {
	Solve(ctx context.Context, model *Model) (*Result, error)
}

// Options bound the branch-and-bound search.
type Options struct {
	// NodeLimit caps explored subproblems; 0 means the default.
	NodeLimit int
	// Tolerance is the integrality tolerance; 0 means the default.
	Tolerance float64
	Logger    *zap.Logger
}

const (
	defaultNodeLimit = 200000
	defaultTolerance = 1e-6
)

// BranchBound solves binary maximization programs by LP relaxation plus
// depth-first branch and bound. The relaxation is solved with gonum's
// simplex over the standard-form equivalent of the model.
type BranchBound struct {
	nodeLimit int
	tol       float64
	logger    *zap.Logger
}

// NewBranchBound builds the default in-process solver.
func NewBranchBound(opts Options) *BranchBound {
	if opts.NodeLimit <= 0 {
		opts.NodeLimit = defaultNodeLimit
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = defaultTolerance
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &BranchBound{nodeLimit: opts.NodeLimit, tol: opts.Tolerance, logger: opts.Logger}
}

type bbNode struct {
	// fixed[i] is -1 while variable i is free, otherwise 0 or 1.
	fixed []int8
}

// Solve runs branch and bound until optimality, infeasibility, or the node
// limit. Hitting the limit with an incumbent downgrades Optimal to Feasible.
func (s *BranchBound) Solve(ctx context.Context, model *Model) (*Result, error) {
	n := len(model.Variables)
	if n == 0 {
		return &Result{Status: StatusOptimal, Objective: 0, Values: nil}, nil
	}

	root := bbNode{fixed: make([]int8, n)}
	for i := range root.fixed {
		root.fixed[i] = -1
	}

	var (
		incumbent    []float64
		incumbentObj = math.Inf(-1)
		explored     int
		truncated    bool
	)

	stack := []bbNode{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return &Result{Status: StatusError}, err
		}
		if explored >= s.nodeLimit {
			truncated = true
			break
		}
		explored++

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		relaxObj, relaxX, ok := s.solveRelaxation(model, node.fixed)
		if !ok {
			continue
		}
		if relaxObj <= incumbentObj+s.tol {
			continue
		}

		branchVar := s.mostFractional(relaxX, node.fixed)
		if branchVar < 0 {
			rounded := roundSolution(relaxX)
			if !satisfies(model, rounded) {
				continue
			}
			obj := objectiveValue(model, rounded)
			if obj > incumbentObj {
				incumbentObj = obj
				incumbent = rounded
			}
			continue
		}

		// Explore the "selected" branch first so a good incumbent appears
		// early and prunes the rest of the tree.
		zero := bbNode{fixed: cloneFixed(node.fixed)}
		zero.fixed[branchVar] = 0
		one := bbNode{fixed: cloneFixed(node.fixed)}
		one.fixed[branchVar] = 1
		stack = append(stack, zero, one)
	}

	s.logger.Debug("branch and bound finished",
		zap.Int("explored", explored),
		zap.Bool("truncated", truncated),
		zap.Float64("objective", incumbentObj))

	if incumbent == nil {
		if truncated {
			return &Result{Status: StatusError}, errors.New("node limit reached without incumbent")
		}
		return &Result{Status: StatusInfeasible}, nil
	}
	status := StatusOptimal
	if truncated {
		status = StatusFeasible
	}
	return &Result{Status: status, Objective: incumbentObj, Values: incumbent}, nil
}

// solveRelaxation solves the LP relaxation of the model under the node's
// fixings. Returns the relaxation objective and a full-length value vector.
func (s *BranchBound) solveRelaxation(model *Model, fixed []int8) (float64, []float64, bool) {
	n := len(model.Variables)

	free := make([]int, 0, n)
	col := make([]int, n)
	objConst := 0.0
	for i := range model.Variables {
		switch fixed[i] {
		case -1:
			col[i] = len(free)
			free = append(free, i)
		case 1:
			objConst += model.Variables[i].Objective
			col[i] = -1
		default:
			col[i] = -1
		}
	}

	// Residual bounds after substituting fixed variables.
	residual := make([]float64, len(model.Constraints))
	for ci, cons := range model.Constraints {
		residual[ci] = cons.Bound
		for _, term := range cons.Terms {
			if fixed[term.Var] == 1 {
				residual[ci] -= term.Coef
			}
		}
	}

	if len(free) == 0 {
		for _, r := range residual {
			if r < -s.tol {
				return 0, nil, false
			}
		}
		values := make([]float64, n)
		for i := range values {
			if fixed[i] == 1 {
				values[i] = 1
			}
		}
		return objConst, values, true
	}

	// Standard form: minimize c'x subject to Ax = b, x >= 0. Each model row
	// gets a slack; each free variable gets an upper-bound row x + u = 1.
	nFree := len(free)
	rows := len(model.Constraints) + nFree
	cols := nFree + len(model.Constraints) + nFree

	c := make([]float64, cols)
	for fi, vi := range free {
		c[fi] = -model.Variables[vi].Objective
	}

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for ci, cons := range model.Constraints {
		for _, term := range cons.Terms {
			if fixed[term.Var] == -1 {
				a.Set(ci, col[term.Var], term.Coef)
			}
		}
		a.Set(ci, nFree+ci, 1)
		b[ci] = residual[ci]
	}
	for fi := range free {
		row := len(model.Constraints) + fi
		a.Set(row, fi, 1)
		a.Set(row, nFree+len(model.Constraints)+fi, 1)
		b[row] = 1
	}

	optF, optX, err := lp.Simplex(c, a, b, 1e-10, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return 0, nil, false
		}
		// Unbounded cannot happen with box-constrained binaries; any other
		// numeric failure prunes this node conservatively.
		return 0, nil, false
	}

	values := make([]float64, n)
	for i := range values {
		switch {
		case fixed[i] == 1:
			values[i] = 1
		case fixed[i] == 0:
			values[i] = 0
		default:
			values[i] = clamp01(optX[col[i]])
		}
	}
	return -optF + objConst, values, true
}

// mostFractional picks the free variable farthest from integrality, or -1
// when the relaxation is already integral. First index wins ties.
func (s *BranchBound) mostFractional(x []float64, fixed []int8) int {
	best := -1
	bestDist := s.tol
	for i, v := range x {
		if fixed[i] != -1 {
			continue
		}
		dist := math.Abs(v - math.Round(v))
		if dist > bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

func roundSolution(x []float64) []float64 {
	rounded := make([]float64, len(x))
	for i, v := range x {
		rounded[i] = math.Round(v)
	}
	return rounded
}

func satisfies(model *Model, x []float64) bool {
	for _, cons := range model.Constraints {
		total := 0.0
		for _, term := range cons.Terms {
			total += term.Coef * x[term.Var]
		}
		if total > cons.Bound+1e-9 {
			return false
		}
	}
	return true
}

func objectiveValue(model *Model, x []float64) float64 {
	total := 0.0
	for i, v := range model.Variables {
		total += v.Objective * x[i]
	}
	return total
}

func cloneFixed(fixed []int8) []int8 {
	clone := make([]int8, len(fixed))
	copy(clone, fixed)
	return clone
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
