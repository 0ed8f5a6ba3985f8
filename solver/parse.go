package solver

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/malloovia/malloovia/solution"
)

// parsedSolution is the result of reading a CBC .sol file.
type parsedSolution struct {
	Status    solution.Status
	Objective float64
	Values    map[string]float64
}

// parseStatusLine maps CBC's first solution-file line to a Status (ported
// from the source's pulp_to_malloovia_status table, adapted to CBC's own
// solution-file vocabulary rather than PuLP's numeric status codes).
func parseStatusLine(line string) solution.Status {
	lower := strings.ToLower(line)
	switch {
	case strings.HasPrefix(lower, "optimal"):
		return solution.Optimal
	case strings.HasPrefix(lower, "infeasible"):
		return solution.Infeasible
	case strings.HasPrefix(lower, "integer infeasible"):
		return solution.IntegerInfeasible
	case strings.HasPrefix(lower, "unbounded"):
		return solution.Unknown
	case strings.HasPrefix(lower, "stopped on time") || strings.HasPrefix(lower, "stopped on iterations"):
		return solution.Aborted
	default:
		return solution.Unknown
	}
}

// parseSolutionFile reads CBC's default .sol output:
//
//	<status line>
//	<index> <name> <value> <reduced cost>
//	...
func parseSolutionFile(r io.Reader) (parsedSolution, error) {
	scanner := bufio.NewScanner(r)
	out := parsedSolution{Values: make(map[string]float64)}

	if !scanner.Scan() {
		return out, scanner.Err()
	}
	statusLine := scanner.Text()
	out.Status = parseStatusLine(statusLine)
	if obj, ok := objectiveFromStatusLine(statusLine); ok {
		out.Objective = obj
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		name := fields[1]
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		out.Values[name] = value
	}
	return out, scanner.Err()
}

// objectiveFromStatusLine extracts the trailing number from lines like
// "Optimal - objective value 178.00000000".
func objectiveFromStatusLine(line string) (float64, bool) {
	idx := strings.LastIndex(line, "value")
	if idx == -1 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line[idx+len("value"):]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseLowerBound scans a CBC log for the "Lower bound:" sentinel line
// (Design Note 3), returning the best bound reported before the solver
// stopped without proving optimality.
func parseLowerBound(r io.Reader) (*float64, bool) {
	scanner := bufio.NewScanner(r)
	const prefix = "Lower bound:"
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, prefix)), 64)
		if err != nil {
			continue
		}
		return &v, true
	}
	return nil, false
}
