package solver

import (
	"fmt"
	"io"
	"sort"

	"github.com/malloovia/malloovia/lp"
)

// writeLP renders p in CPLEX LP format, the format CBC's command-line
// driver reads directly (mirrors PuLP's LpProblem.writeLP, used by the
// source's COIN_CMD adapter).
func writeLP(w io.Writer, p *lp.Problem) error {
	bw := &errWriter{w: w}

	if p.Direction == lp.Maximize {
		bw.printf("\\* %s *\\\nMaximize\n", p.Name)
	} else {
		bw.printf("\\* %s *\\\nMinimize\n", p.Name)
	}
	bw.printf("obj: %s\n", formatLinExpr(p.Objective))

	bw.printf("Subject To\n")
	for _, c := range p.Constraints {
		bw.printf("%s: %s %s %s\n", c.Name, formatLinExpr(c.Expr), relationSymbol(c.Relation), formatNumber(c.RHS))
	}

	bw.printf("Bounds\n")
	for _, v := range p.Variables {
		bw.printf("%s >= 0\n", v.Name)
	}

	var integerVars []string
	for _, v := range p.Variables {
		if v.Integer {
			integerVars = append(integerVars, v.Name)
		}
	}
	if len(integerVars) > 0 {
		bw.printf("General\n")
		for _, name := range integerVars {
			bw.printf("%s\n", name)
		}
	}

	bw.printf("End\n")
	return bw.err
}

func relationSymbol(r lp.Relation) string {
	switch r {
	case lp.LE:
		return "<="
	case lp.GE:
		return ">="
	case lp.EQ:
		return "="
	default:
		return "?"
	}
}

// formatLinExpr renders a linear expression deterministically: terms sorted
// by variable name, so two writes of the same Problem produce byte-identical
// LP files (useful for tests and for debugging with KeepTempFiles).
func formatLinExpr(e lp.LinExpr) string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return "0"
	}
	out := ""
	for i, name := range names {
		coeff := e[name]
		sign := "+"
		if coeff < 0 {
			sign = "-"
			coeff = -coeff
		}
		if i == 0 && sign == "+" {
			out += fmt.Sprintf("%s %s", formatNumber(coeff), name)
		} else {
			out += fmt.Sprintf(" %s %s %s", sign, formatNumber(coeff), name)
		}
	}
	return out
}

func formatNumber(x float64) string {
	return fmt.Sprintf("%g", x)
}

// errWriter accumulates the first error from a sequence of writes, so
// callers can check it once at the end instead of after every Fprintf.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
