package report

import (
	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
)

// Options selects the ranking used by [Build].
type Options struct {
	TopSubject dataset.Subject
	TopN       int
}

// DefaultOptions ranks the top five students in math.
func DefaultOptions() Options {
	return Options{TopSubject: DefaultTopSubject, TopN: DefaultTopN}
}

// Report is everything the presenters show for one dataset.
type Report struct {
	Source     string           `json:"source"      yaml:"source"`
	Rows       int              `json:"rows"        yaml:"rows"`
	Summary    Summary          `json:"summary"     yaml:"summary"`
	TopSubject dataset.Subject  `json:"top_subject" yaml:"top_subject"`
	Top        []dataset.Record `json:"top"         yaml:"top"`
	Overall    Value            `json:"overall"     yaml:"overall"`
	Improve    []SubjectMean    `json:"improve"     yaml:"improve"`
}

// Build runs the statistics, ranking and improvement steps over ds.
func Build(ds *dataset.Dataset, opt Options) *Report {
	rep := &Report{
		Rows:       ds.Len(),
		Summary:    Compute(ds),
		TopSubject: opt.TopSubject,
		Top:        TopStudents(ds, opt.TopSubject, opt.TopN),
		Improve:    SubjectsToImprove(ds),
	}

	if ds != nil {
		rep.Source = ds.Source
	}

	if _, overall, ok := SubjectMeans(ds); ok {
		rep.Overall = Some(overall)
	}

	return rep
}
