package solver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/malloovia/malloovia/errs"
	"github.com/malloovia/malloovia/lp"
	"github.com/malloovia/malloovia/solution"
)

// CBCSolver invokes an external CBC binary as a subprocess, writing the LP
// to a uniquely-named temp file and reading back its solution and log
// (spec §5, §9 Design Note 3; grounded on the source's patched COIN_CMD
// adapter in lpsolver.py).
type CBCSolver struct {
	// Path is the CBC executable; defaults to "cbc" on PATH.
	Path string
	// TmpDir is the directory temp files are written to; defaults to
	// os.TempDir().
	TmpDir string
}

func (s *CBCSolver) binary() string {
	if s.Path != "" {
		return s.Path
	}
	return "cbc"
}

func (s *CBCSolver) tmpDir() string {
	if s.TmpDir != "" {
		return s.TmpDir
	}
	return os.TempDir()
}

// Solve writes problem to a temp LP file, runs CBC against it, and parses
// back status, objective, variable values and (when present) the best
// bound from the solver's own log. Temp files are removed on every exit
// path unless opts.KeepTempFiles is set.
func (s *CBCSolver) Solve(ctx context.Context, problem *lp.Problem, opts Options) (Result, error) {
	id := uuid.New().String()
	lpPath := filepath.Join(s.tmpDir(), fmt.Sprintf("malloovia-%s.lp", id))
	solPath := filepath.Join(s.tmpDir(), fmt.Sprintf("malloovia-%s.sol", id))
	logPath := filepath.Join(s.tmpDir(), fmt.Sprintf("malloovia-%s.log", id))

	if !opts.KeepTempFiles {
		defer func() {
			_ = os.Remove(lpPath)
			_ = os.Remove(solPath)
			_ = os.Remove(logPath)
		}()
	}

	lpFile, err := os.Create(lpPath)
	if err != nil {
		return Result{Status: solution.SolverError}, fmt.Errorf("%w: creating LP file: %v", errs.ErrSolverError, err)
	}
	writeErr := writeLP(lpFile, problem)
	closeErr := lpFile.Close()
	if writeErr != nil {
		return Result{Status: solution.SolverError}, fmt.Errorf("%w: writing LP file: %v", errs.ErrSolverError, writeErr)
	}
	if closeErr != nil {
		return Result{Status: solution.SolverError}, fmt.Errorf("%w: closing LP file: %v", errs.ErrSolverError, closeErr)
	}

	args := s.args(lpPath, solPath, opts)
	logrus.Debugf("invoking solver: %s %v", s.binary(), args)

	logFile, err := os.Create(logPath)
	if err != nil {
		return Result{Status: solution.SolverError}, fmt.Errorf("%w: creating log file: %v", errs.ErrSolverError, err)
	}
	defer logFile.Close()

	cmd := exec.CommandContext(ctx, s.binary(), args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	runErr := cmd.Run()

	bestBound, _ := readLowerBound(logPath)

	if runErr != nil {
		if ctx.Err() != nil {
			return Result{Status: solution.Aborted, BestBound: bestBound}, nil
		}
		return Result{Status: solution.SolverError, BestBound: bestBound},
			fmt.Errorf("%w: %v", errs.ErrSolverError, runErr)
	}

	solFile, err := os.Open(solPath)
	if err != nil {
		return Result{Status: solution.SolverError, BestBound: bestBound},
			fmt.Errorf("%w: opening solution file: %v", errs.ErrSolverError, err)
	}
	defer solFile.Close()

	parsed, err := parseSolutionFile(solFile)
	if err != nil {
		return Result{Status: solution.SolverError, BestBound: bestBound},
			fmt.Errorf("%w: parsing solution file: %v", errs.ErrSolverError, err)
	}

	result := Result{Status: parsed.Status, VariableValues: parsed.Values, BestBound: bestBound}
	if parsed.Status == solution.Optimal {
		objective := parsed.Objective
		result.Objective = &objective
	}
	return result, nil
}

// args builds CBC's command-line invocation: input LP file, solver
// options, then the branch-and-bound/solve directive and output path
// (mirrors the option flags the source's patched adapter appends to its
// COIN_CMD command line).
func (s *CBCSolver) args(lpPath, solPath string, opts Options) []string {
	args := []string{lpPath}
	if opts.Threads > 0 {
		args = append(args, "threads", strconv.Itoa(opts.Threads))
	}
	if opts.FracGap != nil {
		args = append(args, "ratio", strconv.FormatFloat(*opts.FracGap, 'g', -1, 64))
	}
	if opts.MaxSeconds != nil {
		args = append(args, "sec", strconv.FormatFloat(*opts.MaxSeconds, 'g', -1, 64))
	}
	args = append(args, "solve", "solution", solPath)
	return args
}

func readLowerBound(logPath string) (*float64, bool) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	return parseLowerBound(f)
}
