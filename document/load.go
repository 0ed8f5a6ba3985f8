package document

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/malloovia/malloovia/errs"
	"github.com/malloovia/malloovia/model"
)

// LoadProblems reads, decompresses (if `.yaml.gz`), expands any
// Problems_from_file directive, parses and resolves path into a list of
// model.Problem, validated with model.Validate (spec §6).
func LoadProblems(path string) ([]model.Problem, error) {
	problems, err := LoadProblemsPartial(path)
	if err != nil {
		return nil, err
	}
	for _, p := range problems {
		if err := model.Validate(p); err != nil {
			return nil, fmt.Errorf("problem %q: %w", p.ID, err)
		}
	}
	return problems, nil
}

// LoadProblemsPartial does everything LoadProblems does except the final
// model.Validate pass: it parses the document and resolves every
// cross-reference, but does not check workload-length consistency or
// performance-table completeness. Used by `validate --partial` to report
// structural errors (bad YAML, dangling references) separately from
// semantic ones.
func LoadProblemsPartial(path string) ([]model.Problem, error) {
	raw, err := readAndExpand(path)
	if err != nil {
		return nil, err
	}

	var doc documentFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", errs.ErrInvalidProblem, path, err)
	}

	return resolveProblems(&doc, path)
}

// readAndExpand reads path, transparently gunzipping a `.yaml.gz` file,
// then textually expands a Problems_from_file directive line (spec §6;
// grounded on the source's preprocess_yaml line-scanning approach).
func readAndExpand(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		defer gr.Close()
		data, err = io.ReadAll(gr)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		logrus.Debugf("transparently decompressed %s", path)
	}

	const directive = "Problems_from_file:"
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var out strings.Builder
	expanded := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), directive) {
			ref := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), directive))
			included, err := os.ReadFile(filepath.Join(filepath.Dir(path), ref))
			if err != nil {
				return nil, fmt.Errorf("%w: Problems_from_file %q: %v", errs.ErrInvalidProblem, ref, err)
			}
			logrus.Warnf("%s: expanding Problems_from_file: %s", path, ref)
			out.Write(included)
			out.WriteByte('\n')
			expanded = true
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if expanded {
		return []byte(out.String()), nil
	}
	return data, nil
}

// resolveProblems dereferences each problemDoc's string references against
// doc's entity collections into model.Problem values, loading any
// filename-backed workload's sibling value file relative to path.
func resolveProblems(doc *documentFile, path string) ([]model.Problem, error) {
	apps := make(map[string]model.App, len(doc.Apps))
	for _, a := range doc.Apps {
		apps[a.ID] = model.App{ID: a.ID, Name: nameOrID(a.Name, a.ID)}
	}

	limitingSets := make(map[string]model.LimitingSet, len(doc.LimitingSets))
	for _, ls := range doc.LimitingSets {
		limitingSets[ls.ID] = model.LimitingSet{
			ID: ls.ID, Name: nameOrID(ls.Name, ls.ID),
			MaxVMs: ls.MaxVMs, MaxCores: ls.MaxCores,
		}
	}

	instanceClasses := make(map[string]model.InstanceClass, len(doc.InstanceClasses))
	for _, ic := range doc.InstanceClasses {
		unit, err := parseTimeUnit(ic.TimeUnit)
		if err != nil {
			return nil, err
		}
		sets := make([]model.LimitingSet, 0, len(ic.LimitingSets))
		for _, lsID := range ic.LimitingSets {
			ls, ok := limitingSets[lsID]
			if !ok {
				return nil, fmt.Errorf("%w: instance class %q references unknown limiting set %q", errs.ErrInvalidProblem, ic.ID, lsID)
			}
			sets = append(sets, ls)
		}
		instanceClasses[ic.ID] = model.InstanceClass{
			ID: ic.ID, Name: nameOrID(ic.Name, ic.ID),
			LimitingSets: sets, MaxVMs: ic.MaxVMs,
			Price: ic.Price, PriceTimeUnit: unit,
			Cores: ic.Cores, IsReserved: ic.Reserved, IsPrivate: ic.Private,
		}
	}

	workloadsByApp := make(map[string]model.Workload, len(doc.Workloads))
	for _, w := range doc.Workloads {
		app, ok := apps[w.App]
		if !ok {
			return nil, fmt.Errorf("%w: workload references unknown app %q", errs.ErrInvalidProblem, w.App)
		}
		unit, err := parseTimeUnit(w.TimeUnit)
		if err != nil {
			return nil, err
		}
		values := w.Values
		if w.Filename != "" {
			values, err = readValuesFile(filepath.Join(filepath.Dir(path), w.Filename))
			if err != nil {
				return nil, err
			}
		}
		workloadsByApp[w.App] = model.Workload{App: app, TimeUnit: unit, Values: values}
	}

	performanceSets := make(map[string]*model.PerformanceTable, len(doc.Performances))
	for _, ps := range doc.Performances {
		unit, err := parseTimeUnit(ps.TimeUnit)
		if err != nil {
			return nil, err
		}
		table := model.NewPerformanceTable(unit)
		for _, e := range ps.Values {
			ic, ok := instanceClasses[e.InstanceClass]
			if !ok {
				return nil, fmt.Errorf("%w: performance entry references unknown instance class %q", errs.ErrInvalidProblem, e.InstanceClass)
			}
			app, ok := apps[e.App]
			if !ok {
				return nil, fmt.Errorf("%w: performance entry references unknown app %q", errs.ErrInvalidProblem, e.App)
			}
			table.Set(ic, app, e.Value)
		}
		performanceSets[ps.ID] = table
	}

	problems := make([]model.Problem, 0, len(doc.Problems))
	for _, pd := range doc.Problems {
		ics := make([]model.InstanceClass, 0, len(pd.InstanceClasses))
		for _, icID := range pd.InstanceClasses {
			ic, ok := instanceClasses[icID]
			if !ok {
				return nil, fmt.Errorf("%w: problem %q references unknown instance class %q", errs.ErrInvalidProblem, pd.ID, icID)
			}
			ics = append(ics, ic)
		}
		workloads := make([]model.Workload, 0, len(pd.Workloads))
		for _, appID := range pd.Workloads {
			w, ok := workloadsByApp[appID]
			if !ok {
				return nil, fmt.Errorf("%w: problem %q references unknown workload app %q", errs.ErrInvalidProblem, pd.ID, appID)
			}
			workloads = append(workloads, w)
		}
		perf, ok := performanceSets[pd.Performances]
		if !ok {
			return nil, fmt.Errorf("%w: problem %q references unknown performance set %q", errs.ErrInvalidProblem, pd.ID, pd.Performances)
		}

		problems = append(problems, model.Problem{
			ID: pd.ID, Name: nameOrID(pd.Name, pd.ID), Description: pd.Description,
			InstanceClasses: ics, Workloads: workloads, Performances: perf,
		})
	}
	return problems, nil
}

func nameOrID(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

func parseTimeUnit(code string) (model.TimeUnit, error) {
	switch model.TimeUnit(code) {
	case model.Second, model.Minute, model.Hour, model.Day, model.Year:
		return model.TimeUnit(code), nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidTimeUnit, code)
	}
}

// readValuesFile reads one float per non-empty line (spec §6, grounded on
// the source's read_from_relative_csv).
func readValuesFile(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading workload value file %s: %v", errs.ErrInvalidProblem, path, err)
	}
	var values []float64
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing value file %s: %v", errs.ErrInvalidProblem, path, err)
		}
		values = append(values, v)
	}
	return values, nil
}
