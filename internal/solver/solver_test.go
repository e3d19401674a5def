package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchBoundPicksHigherObjective(t *testing.T) {
	model := NewModel()
	a := model.AddVariable("a", 3)
	b := model.AddVariable("b", 5)
	// a and b are mutually exclusive.
	model.AddConstraint("one-of", []Term{{Var: a, Coef: 1}, {Var: b, Coef: 1}}, 1)

	result, err := NewBranchBound(Options{}).Solve(context.Background(), model)
	require.NoError(t, err)
	require.True(t, result.Status.Accepted())
	assert.InDelta(t, 5.0, result.Objective, 1e-6)
	assert.Less(t, result.Values[a], 0.5)
	assert.Greater(t, result.Values[b], 0.5)
}

func TestBranchBoundKnapsack(t *testing.T) {
	// Capacity 2 over three unit-size items; the two most valuable win.
	model := NewModel()
	vals := []float64{4, 7, 5}
	terms := make([]Term, 0, len(vals))
	for _, v := range vals {
		idx := model.AddVariable("item", v)
		terms = append(terms, Term{Var: idx, Coef: 1})
	}
	model.AddConstraint("capacity", terms, 2)

	result, err := NewBranchBound(Options{}).Solve(context.Background(), model)
	require.NoError(t, err)
	require.True(t, result.Status.Accepted())
	assert.InDelta(t, 12.0, result.Objective, 1e-6)
	assert.Less(t, result.Values[0], 0.5)
	assert.Greater(t, result.Values[1], 0.5)
	assert.Greater(t, result.Values[2], 0.5)
}

func TestBranchBoundInfeasible(t *testing.T) {
	model := NewModel()
	a := model.AddVariable("a", 1)
	// x >= 1 and x <= 0 simultaneously, encoded as the rows -x <= -1 and x <= 0.
	model.AddConstraint("force-on", []Term{{Var: a, Coef: -1}}, -1)
	model.AddConstraint("force-off", []Term{{Var: a, Coef: 1}}, 0)

	result, err := NewBranchBound(Options{}).Solve(context.Background(), model)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, result.Status)
}

func TestBranchBoundEmptyModel(t *testing.T) {
	result, err := NewBranchBound(Options{}).Solve(context.Background(), NewModel())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, result.Status)
	assert.Zero(t, result.Objective)
}

func TestBranchBoundHonoursContext(t *testing.T) {
	model := NewModel()
	for i := 0; i < 4; i++ {
		model.AddVariable("v", 1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewBranchBound(Options{}).Solve(ctx, model)
	require.Error(t, err)
	assert.Equal(t, StatusError, result.Status)
}
