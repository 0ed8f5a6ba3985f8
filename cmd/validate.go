package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/malloovia/malloovia/document"
	"github.com/malloovia/malloovia/model"
)

var (
	validatePartial      bool
	validateProblemsOnly bool
	validateVerbose      bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file...>",
	Short: "Check one or more problem documents for structural and semantic errors",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, path := range args {
			validateOne(path)
		}
	},
}

func validateOne(path string) {
	var problems []model.Problem
	var err error
	if validatePartial {
		problems, err = document.LoadProblemsPartial(path)
	} else {
		problems, err = document.LoadProblems(path)
	}
	if err != nil {
		logrus.Errorf("%s: %v", path, err)
		return
	}

	logrus.Infof("%s: OK (%d problem(s))", path, len(problems))
	if !validateVerbose {
		return
	}
	for _, p := range problems {
		fmt.Printf("  %s: %d instance classes, %d workload(s), %d timeslot(s)\n",
			p.ID, len(p.InstanceClasses), len(p.Workloads), timeslotCount(p))
	}
}

func timeslotCount(p model.Problem) int {
	if len(p.Workloads) == 0 {
		return 0
	}
	return p.Workloads[0].Len()
}

func init() {
	validateCmd.Flags().BoolVar(&validatePartial, "partial", false, "Skip semantic validation (workload lengths, performance completeness); report only structural/reference errors")
	validateCmd.Flags().BoolVar(&validateProblemsOnly, "problems-only", false, "Ignore any embedded Solutions section (the default behavior of LoadProblems); kept for CLI compatibility")
	validateCmd.Flags().BoolVar(&validateVerbose, "verbose", false, "Print a per-problem summary in addition to the pass/fail line")
}
