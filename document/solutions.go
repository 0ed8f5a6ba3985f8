package document

// solutionsOutDoc is the on-disk shape written by WriteSolutions: the
// referenced problems, deduplicated, followed by one entry per solution
// (spec §6; grounded on
// _examples/original_source/malloovia/util.go's solutions_to_yaml, which
// collects every problem referenced by a solution before emitting the
// Solutions list so the document is self-contained).
type solutionsOutDoc struct {
	Apps            []appDoc            `yaml:"Apps,omitempty"`
	LimitingSets    []limitingSetDoc    `yaml:"Limiting_sets,omitempty"`
	InstanceClasses []instanceClassDoc  `yaml:"Instance_classes,omitempty"`
	Workloads       []workloadDoc       `yaml:"Workloads,omitempty"`
	Performances    []performanceSetDoc `yaml:"Performances,omitempty"`
	Problems        []problemDoc        `yaml:"Problems,omitempty"`
	Solutions       []solutionDoc       `yaml:"Solutions"`
}

type solvingStatsDoc struct {
	CreationTime float64          `yaml:"creation_time"`
	SolvingTime  float64          `yaml:"solving_time"`
	OptimalCost  *float64         `yaml:"optimal_cost"`
	Algorithm    malooviaStatsDoc `yaml:"algorithm"`
}

type malooviaStatsDoc struct {
	Status     string   `yaml:"status"`
	FracGap    *float64 `yaml:"frac_gap,omitempty"`
	MaxSeconds *float64 `yaml:"max_seconds,omitempty"`
	LowerBound *float64 `yaml:"lower_bound,omitempty"`
}

type globalSolvingStatsDoc struct {
	CreationTime float64 `yaml:"creation_time"`
	SolvingTime  float64 `yaml:"solving_time"`
	OptimalCost  float64 `yaml:"optimal_cost"`
	Status       string  `yaml:"status"`
}

type reservedAllocationDoc struct {
	InstanceClasses []string  `yaml:"instance_classes"`
	VMsNumber       []float64 `yaml:"vms_number"`
}

type allocationDoc struct {
	InstanceClasses []string    `yaml:"instance_classes"`
	Apps            []string    `yaml:"apps"`
	WorkloadTuples  [][]float64 `yaml:"workload_tuples"`
	Units           string      `yaml:"units"`
	VMsNumber       [][][]float64 `yaml:"vms_number"`
}

// solutionDoc holds the union of SolutionI and SolutionII's on-disk fields;
// exactly one of (ReservedAllocation+SolvingStats) or
// (GlobalSolvingStats+PerTimeslot+PreviousPhase) is populated, mirroring
// the source's two separate emitters sharing one Solutions list.
type solutionDoc struct {
	ID      string `yaml:"id"`
	Problem string `yaml:"problem"`

	// SolutionI fields.
	SolvingStats       *solvingStatsDoc       `yaml:"solving_stats,omitempty"`
	ReservedAllocation *reservedAllocationDoc `yaml:"reserved_allocation,omitempty"`

	// SolutionII fields.
	PreviousPhase      string             `yaml:"previous_phase,omitempty"`
	GlobalSolvingStats *globalSolvingStatsDoc `yaml:"global_solving_stats,omitempty"`
	PerTimeslot        []solvingStatsDoc  `yaml:"per_timeslot_solving_stats,omitempty"`

	Allocation *allocationDoc `yaml:"allocation,omitempty"`
}
