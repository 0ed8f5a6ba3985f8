package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/malloovia/malloovia/document"
	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/phases"
	"github.com/malloovia/malloovia/solver"
)

var (
	solvePhaseIID       string
	solvePhaseIIID      string
	solveOutput         string
	solveFracGap        float64
	solveFracGapPhaseI  float64
	solveFracGapPhaseII float64
	solveMaxSeconds     float64
	solveThreads        int
)

var solveCmd = &cobra.Command{
	Use:   "solve <problems_file>",
	Short: "Run Phase I (and optionally Phase II) over a problem document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSolve(args[0]); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func runSolve(path string) error {
	problems, err := document.LoadProblems(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	problem, err := findProblem(problems, solvePhaseIID)
	if err != nil {
		return err
	}

	slv := &solver.CBCSolver{}
	ctx := context.Background()

	phaseIOpts := phases.PhaseIOptions{Solver: solverOptions(solveFracGapPhaseI)}
	phaseI := &phases.PhaseI{Problem: problem, Solver: slv}
	solutionI, err := phaseI.Solve(ctx, phaseIOpts)
	if err != nil {
		return fmt.Errorf("phase I (%s): %w", problem.ID, err)
	}
	logrus.Infof("phase I %s: status=%s", problem.ID, solutionI.SolvingStats.Algorithm.Status)

	entry := document.SolutionEntry{Problem: problem, PhaseI: solutionI}

	if solvePhaseIIID != "" {
		phaseIIProblem, err := findProblem(problems, solvePhaseIIID)
		if err != nil {
			return err
		}
		phaseII, err := phases.NewPhaseII(phaseIIProblem, solutionI, slv)
		if err != nil {
			return fmt.Errorf("phase II setup (%s): %w", phaseIIProblem.ID, err)
		}
		phaseIIOpts := phases.PhaseIIOptions{Solver: solverOptions(solveFracGapPhaseII)}
		solutionII, err := phaseII.SolvePeriod(ctx, nil, phaseIIOpts)
		if err != nil {
			return fmt.Errorf("phase II (%s): %w", phaseIIProblem.ID, err)
		}
		logrus.Infof("phase II %s: status=%s, cost=%g", phaseIIProblem.ID,
			solutionII.GlobalSolvingStats.Status, solutionII.GlobalSolvingStats.OptimalCost)
		entry.PhaseII = solutionII
		entry.Problem = phaseIIProblem
	}

	out := os.Stdout
	if solveOutput != "" {
		f, err := os.Create(solveOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", solveOutput, err)
		}
		defer f.Close()
		out = f
	}
	if err := document.WriteSolutions(out, []document.SolutionEntry{entry}); err != nil {
		return fmt.Errorf("writing solutions: %w", err)
	}
	return nil
}

func findProblem(problems []model.Problem, id string) (model.Problem, error) {
	for _, p := range problems {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Problem{}, fmt.Errorf("no problem with id %q in document", id)
}

func solverOptions(fracGapOverride float64) solver.Options {
	opts := solver.Options{Threads: solveThreads}
	gap := solveFracGap
	if fracGapOverride != 0 {
		gap = fracGapOverride
	}
	if gap != 0 {
		opts.FracGap = &gap
	}
	if solveMaxSeconds != 0 {
		seconds := solveMaxSeconds
		opts.MaxSeconds = &seconds
	}
	return opts
}

func init() {
	solveCmd.Flags().StringVar(&solvePhaseIID, "phase-i-id", "", "ID of the problem to solve as Phase I (required)")
	solveCmd.Flags().StringVar(&solvePhaseIIID, "phase-ii-id", "", "ID of the problem to solve as Phase II, reusing Phase I's reserved allocation")
	solveCmd.Flags().StringVarP(&solveOutput, "output", "o", "", "Write the combined solutions document here instead of stdout")
	solveCmd.Flags().Float64Var(&solveFracGap, "frac-gap", 0, "Relative optimality tolerance passed to the solver for both phases")
	solveCmd.Flags().Float64Var(&solveFracGapPhaseI, "frac-gap-phase-i", 0, "Relative optimality tolerance for Phase I only, overriding --frac-gap")
	solveCmd.Flags().Float64Var(&solveFracGapPhaseII, "frac-gap-phase-ii", 0, "Relative optimality tolerance for Phase II only, overriding --frac-gap")
	solveCmd.Flags().Float64Var(&solveMaxSeconds, "max-seconds", 0, "Wall-clock cap per LP solve, in seconds")
	solveCmd.Flags().IntVar(&solveThreads, "threads", 0, "Number of threads the solver may use")
	solveCmd.MarkFlagRequired("phase-i-id")
}
