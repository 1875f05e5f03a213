package fitlog

import "gopkg.in/yaml.v3"

// CompResult is one component of a run summary.
type CompResult struct {
	Name    string    `yaml:"name"`
	Vals    []float64 `yaml:"values,flow"`
	Uncerts []float64 `yaml:"uncertainties,flow"`
	Flags   []string  `yaml:"flags,flow"`
}

// Summary is a run flattened for reporting.
type Summary struct {
	Input        string       `yaml:"input_image"`
	Output       string       `yaml:"output_image"`
	Init         string       `yaml:"init_file"`
	Result       string       `yaml:"result_file"`
	ChiSq        float64      `yaml:"chisq"`
	Ndof         int          `yaml:"ndof"`
	ReducedChiSq float64      `yaml:"reduced_chisq"`
	Comps        []CompResult `yaml:"components"`
}

// Summary flattens the run, parsing its parameter lines if not yet done.
func (l *Log) Summary() (Summary, error) {
	mods, err := l.Mods()
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Input:        l.InputImage,
		Output:       l.OutputImage,
		Init:         l.InitFile,
		Result:       l.ResultFile,
		ChiSq:        l.ChiSq,
		Ndof:         l.Ndof,
		ReducedChiSq: l.ReducedChiSq,
	}
	for _, m := range mods {
		flags := make([]string, len(m.Flags))
		for i, f := range m.Flags {
			flags[i] = f.String()
		}
		s.Comps = append(s.Comps, CompResult{
			Name:    m.Name,
			Vals:    m.Vals,
			Uncerts: m.Uncerts,
			Flags:   flags,
		})
	}
	return s, nil
}

// YAML renders the summary as a YAML document.
func (s Summary) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
