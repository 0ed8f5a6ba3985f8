package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malloovia/malloovia/model"
)

func TestSolveCmd_FlagsRegistered(t *testing.T) {
	for _, name := range []string{"phase-i-id", "phase-ii-id", "output", "frac-gap", "frac-gap-phase-i", "frac-gap-phase-ii", "max-seconds", "threads"} {
		assert.NotNil(t, solveCmd.Flags().Lookup(name), "--%s flag must be registered", name)
	}
}

func TestFindProblem(t *testing.T) {
	problems := []model.Problem{{ID: "a"}, {ID: "b"}}

	got, err := findProblem(problems, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	_, err = findProblem(problems, "missing")
	assert.Error(t, err)
}

func TestSolverOptions_FracGapOverrideWinsOverGlobal(t *testing.T) {
	solveFracGap = 0.05
	solveMaxSeconds = 30
	solveThreads = 4
	defer func() { solveFracGap, solveMaxSeconds, solveThreads = 0, 0, 0 }()

	opts := solverOptions(0.01)
	require.NotNil(t, opts.FracGap)
	assert.Equal(t, 0.01, *opts.FracGap)
	require.NotNil(t, opts.MaxSeconds)
	assert.Equal(t, 30.0, *opts.MaxSeconds)
	assert.Equal(t, 4, opts.Threads)
}

func TestSolverOptions_FallsBackToGlobalFracGap(t *testing.T) {
	solveFracGap = 0.02
	defer func() { solveFracGap = 0 }()

	opts := solverOptions(0)
	require.NotNil(t, opts.FracGap)
	assert.Equal(t, 0.02, *opts.FracGap)
}
