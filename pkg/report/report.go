// Package report computes the score statistics shown on the dashboard:
// per-subject descriptive statistics, the top performers in one subject and
// the subjects that trail the overall average.
package report

import (
	"slices"

	"github.com/Sumatoshi-tech/scoredash/pkg/alg/stats"
	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
)

// Ranking defaults.
const (
	DefaultTopSubject = dataset.Math
	DefaultTopN       = 5
)

// Summary holds one entry per subject for each statistic.
type Summary struct {
	Mean   map[dataset.Subject]Value `json:"mean"   yaml:"mean"`
	Median map[dataset.Subject]Value `json:"median" yaml:"median"`
	Mode   map[dataset.Subject]Value `json:"mode"   yaml:"mode"`
	StdDev map[dataset.Subject]Value `json:"std"    yaml:"std"`
}

// Compute returns mean, median, mode and sample standard deviation for every
// subject. Statistics that are undefined for the input (all of them on an
// empty dataset, the standard deviation below two rows) are [None].
func Compute(ds *dataset.Dataset) Summary {
	subjects := dataset.Subjects()

	sum := Summary{
		Mean:   make(map[dataset.Subject]Value, len(subjects)),
		Median: make(map[dataset.Subject]Value, len(subjects)),
		Mode:   make(map[dataset.Subject]Value, len(subjects)),
		StdDev: make(map[dataset.Subject]Value, len(subjects)),
	}

	for _, s := range subjects {
		col := ds.Column(s)

		if len(col) == 0 {
			sum.Mean[s], sum.Median[s], sum.Mode[s], sum.StdDev[s] = None(), None(), None(), None()

			continue
		}

		sum.Mean[s] = Some(stats.Mean(col))
		sum.Median[s] = Some(stats.Median(col))
		sum.Mode[s] = optional(stats.Mode(col))
		sum.StdDev[s] = optional(stats.SampleStdDev(col))
	}

	return sum
}

func optional(v float64, ok bool) Value {
	if !ok {
		return None()
	}

	return Some(v)
}

// TopStudents returns the n records with the highest score in subject,
// highest first. Equal scores keep their dataset order. n larger than the
// dataset returns every record; n <= 0 returns none.
func TopStudents(ds *dataset.Dataset, subject dataset.Subject, n int) []dataset.Record {
	if n <= 0 || ds.Len() == 0 {
		return []dataset.Record{}
	}

	ranked := slices.Clone(ds.Records)

	slices.SortStableFunc(ranked, func(a, b dataset.Record) int {
		sa, sb := a.Score(subject), b.Score(subject)

		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})

	return ranked[:min(n, len(ranked))]
}

// SubjectMean pairs a subject with its mean score.
type SubjectMean struct {
	Subject dataset.Subject `json:"subject" yaml:"subject"`
	Mean    float64         `json:"mean"    yaml:"mean"`
}

// SubjectMeans returns the mean of every subject in subject order, and the
// unweighted average of those means. ok is false for an empty dataset.
func SubjectMeans(ds *dataset.Dataset) (means []SubjectMean, overall float64, ok bool) {
	if ds.Len() == 0 {
		return nil, 0, false
	}

	subjects := dataset.Subjects()
	means = make([]SubjectMean, 0, len(subjects))
	values := make([]float64, 0, len(subjects))

	for _, s := range subjects {
		m := stats.Mean(ds.Column(s))
		means = append(means, SubjectMean{Subject: s, Mean: m})
		values = append(values, m)
	}

	return means, stats.Mean(values), true
}

// SubjectsToImprove returns the subjects whose mean is strictly below the
// overall mean, lowest first. The result is empty when every subject is at
// or above the overall mean, and for an empty dataset.
func SubjectsToImprove(ds *dataset.Dataset) []SubjectMean {
	means, overall, ok := SubjectMeans(ds)
	if !ok {
		return []SubjectMean{}
	}

	needs := make([]SubjectMean, 0, len(means))

	for _, sm := range means {
		if sm.Mean < overall {
			needs = append(needs, sm)
		}
	}

	slices.SortStableFunc(needs, func(a, b SubjectMean) int {
		switch {
		case a.Mean < b.Mean:
			return -1
		case a.Mean > b.Mean:
			return 1
		default:
			return 0
		}
	})

	return needs
}
