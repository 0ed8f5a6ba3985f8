package solver

import (
	"strings"
	"testing"

	"github.com/malloovia/malloovia/solution"
)

func TestParseSolutionFile_Optimal(t *testing.T) {
	input := strings.Join([]string{
		"Optimal - objective value 178.00000000",
		"0 Y_app0_m1.res 3 0",
		"1 Y_app1_m1.res 3 0",
		"2 X_app0_m1.dem_0000000000000001 1 0",
	}, "\n") + "\n"

	parsed, err := parseSolutionFile(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseSolutionFile: %v", err)
	}
	if parsed.Status != solution.Optimal {
		t.Errorf("status = %v, want Optimal", parsed.Status)
	}
	if parsed.Objective != 178 {
		t.Errorf("objective = %g, want 178", parsed.Objective)
	}
	if got := parsed.Values["Y_app0_m1.res"]; got != 3 {
		t.Errorf("Y_app0_m1.res = %g, want 3", got)
	}
	if got := parsed.Values["X_app0_m1.dem_0000000000000001"]; got != 1 {
		t.Errorf("on-demand value = %g, want 1", got)
	}
}

func TestParseSolutionFile_Infeasible(t *testing.T) {
	parsed, err := parseSolutionFile(strings.NewReader("Infeasible - objective value 0\n"))
	if err != nil {
		t.Fatalf("parseSolutionFile: %v", err)
	}
	if parsed.Status != solution.Infeasible {
		t.Errorf("status = %v, want Infeasible", parsed.Status)
	}
}

func TestParseStatusLine(t *testing.T) {
	cases := map[string]solution.Status{
		"Optimal - objective value 1":    solution.Optimal,
		"Infeasible - objective value 0": solution.Infeasible,
		"Integer infeasible":             solution.IntegerInfeasible,
		"Stopped on time":                solution.Aborted,
		"gibberish":                      solution.Unknown,
	}
	for line, want := range cases {
		if got := parseStatusLine(line); got != want {
			t.Errorf("parseStatusLine(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestParseLowerBound(t *testing.T) {
	log := "some log noise\nLower bound: 150.5\nmore noise\n"
	bound, ok := parseLowerBound(strings.NewReader(log))
	if !ok {
		t.Fatal("expected a lower bound to be found")
	}
	if *bound != 150.5 {
		t.Errorf("bound = %g, want 150.5", *bound)
	}
}

func TestParseLowerBound_Absent(t *testing.T) {
	_, ok := parseLowerBound(strings.NewReader("no such line here\n"))
	if ok {
		t.Error("expected no lower bound to be found")
	}
}
