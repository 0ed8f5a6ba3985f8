// Package document loads and writes Malloovia's YAML problem/solution
// document format (spec §6). It is the outer I/O shell around the core:
// model.Problem in, model.Validate-checked; solution.SolutionI/SolutionII
// out. Supplemented beyond the distilled spec from
// _examples/original_source/malloovia/util.go's loader semantics
// (anchor/alias dereference, filename-backed workload values,
// Problems_from_file inclusion, transparent .yaml.gz).
package document

import "gopkg.in/yaml.v3"

// documentFile is the top-level shape of one YAML document: the six
// entity collections named in spec §6, plus an optional Solutions
// collection carried through on write. LoadProblems only ever resolves
// Apps..Problems; Solutions is captured as a raw node (rather than typed
// and ignored) purely so that loading a combined problems+solutions
// document with LoadProblems (the "problems-only" mode) doesn't trip
// yaml.v3's KnownFields(true) strictness.
type documentFile struct {
	Apps             []appDoc            `yaml:"Apps"`
	LimitingSets     []limitingSetDoc     `yaml:"Limiting_sets"`
	InstanceClasses  []instanceClassDoc   `yaml:"Instance_classes"`
	Workloads        []workloadDoc        `yaml:"Workloads"`
	Performances     []performanceSetDoc  `yaml:"Performances"`
	Problems         []problemDoc         `yaml:"Problems"`
	ProblemsFromFile string               `yaml:"Problems_from_file,omitempty"`
	Solutions        yaml.Node            `yaml:"Solutions,omitempty"`
}

type appDoc struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

type limitingSetDoc struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	MaxVMs   int    `yaml:"max_vms,omitempty"`
	MaxCores int    `yaml:"max_cores,omitempty"`
}

type instanceClassDoc struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name,omitempty"`
	LimitingSets []string `yaml:"limiting_sets,omitempty"`
	MaxVMs       int      `yaml:"max_vms,omitempty"`
	Price        float64  `yaml:"price"`
	TimeUnit     string   `yaml:"time_unit"`
	Cores        int      `yaml:"cores"`
	Reserved     bool     `yaml:"reserved,omitempty"`
	Private      bool     `yaml:"private,omitempty"`
}

type workloadDoc struct {
	App      string    `yaml:"app"`
	TimeUnit string    `yaml:"time_unit"`
	Values   []float64 `yaml:"values,omitempty"`
	// Filename, when set, names a sibling file with one float per line,
	// used instead of an inline Values list (spec §6).
	Filename string `yaml:"filename,omitempty"`
}

type performanceEntryDoc struct {
	InstanceClass string  `yaml:"instance_class"`
	App           string  `yaml:"app"`
	Value         float64 `yaml:"value"`
}

type performanceSetDoc struct {
	ID       string                `yaml:"id"`
	TimeUnit string                `yaml:"time_unit"`
	Values   []performanceEntryDoc `yaml:"values"`
}

type problemDoc struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name,omitempty"`
	Description     string   `yaml:"description,omitempty"`
	InstanceClasses []string `yaml:"instance_classes"`
	// Workloads names apps (not workload entries directly): each named
	// app's Workloads entry is looked up by App field, so one Problem can
	// reuse the same shared Workloads collection as another (spec §6
	// "cross-references... dereference to object identity").
	Workloads    []string `yaml:"workloads"`
	Performances string   `yaml:"performances"`
}
