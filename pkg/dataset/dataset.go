// Package dataset loads the student score table the dashboard reports on.
//
// The schema is fixed: an optional identifier column plus the three score
// columns named by [Subjects]. Any other columns are carried along as display
// attributes and never interpreted.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Subject is one of the fixed numeric score columns.
type Subject int

// The fixed subject set, in column order.
const (
	Math Subject = iota
	Reading
	Writing
)

// IDColumn is the header of the optional identifier column.
const IDColumn = "Student"

// idPrefix is prepended to the 1-based row index when IDs are synthesized.
const idPrefix = "Student_"

var subjectColumns = [...]string{
	Math:    "math score",
	Reading: "reading score",
	Writing: "writing score",
}

var subjectLabels = [...]string{
	Math:    "Math",
	Reading: "Reading",
	Writing: "Writing",
}

// ErrUnknownSubject is returned by [ParseSubject] for unrecognized names.
var ErrUnknownSubject = errors.New("unknown subject")

// Subjects returns the fixed subject set in column order.
func Subjects() []Subject {
	return []Subject{Math, Reading, Writing}
}

// Column returns the CSV header of the subject.
func (s Subject) Column() string {
	if !s.valid() {
		return "subject(" + strconv.Itoa(int(s)) + ")"
	}

	return subjectColumns[s]
}

// Label returns a short display name.
func (s Subject) Label() string {
	if !s.valid() {
		return s.Column()
	}

	return subjectLabels[s]
}

// String implements [fmt.Stringer].
func (s Subject) String() string {
	return s.Column()
}

// MarshalText encodes the subject as its column header so subjects can be
// used as JSON/YAML map keys.
func (s Subject) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSubject, int(s))
	}

	return []byte(s.Column()), nil
}

// UnmarshalText accepts anything [ParseSubject] accepts.
func (s *Subject) UnmarshalText(text []byte) error {
	parsed, err := ParseSubject(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

func (s Subject) valid() bool {
	return s >= Math && s <= Writing
}

// ParseSubject resolves a column header ("math score") or a short label
// ("math", "Math") to a Subject.
func ParseSubject(name string) (Subject, error) {
	name = strings.TrimSpace(name)

	for _, s := range Subjects() {
		if strings.EqualFold(name, s.Column()) || strings.EqualFold(name, s.Label()) {
			return s, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownSubject, name)
}

// Attr is a non-score column value kept for display.
type Attr struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Record is one student row.
type Record struct {
	ID      string  `json:"id"              yaml:"id"`
	Math    float64 `json:"math"            yaml:"math"`
	Reading float64 `json:"reading"         yaml:"reading"`
	Writing float64 `json:"writing"         yaml:"writing"`
	Attrs   []Attr  `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// AttrNames returns the attribute column names of records. Every record of
// one dataset shares the same columns, so the first record decides.
func AttrNames(records []Record) []string {
	if len(records) == 0 || len(records[0].Attrs) == 0 {
		return nil
	}

	names := make([]string, 0, len(records[0].Attrs))
	for _, a := range records[0].Attrs {
		names = append(names, a.Name)
	}

	return names
}

// Score returns the record's value for subject.
func (r Record) Score(s Subject) float64 {
	switch s {
	case Math:
		return r.Math
	case Reading:
		return r.Reading
	case Writing:
		return r.Writing
	default:
		return 0
	}
}

func (r *Record) setScore(s Subject, v float64) {
	switch s {
	case Math:
		r.Math = v
	case Reading:
		r.Reading = v
	case Writing:
		r.Writing = v
	}
}

// Dataset is an ordered, read-only table of records.
type Dataset struct {
	// Source is the path the dataset was read from.
	Source  string
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}

	return len(d.Records)
}

// Column returns a fresh slice with every record's score for subject.
func (d *Dataset) Column(s Subject) []float64 {
	if d == nil {
		return nil
	}

	out := make([]float64, len(d.Records))

	for i, rec := range d.Records {
		out[i] = rec.Score(s)
	}

	return out
}

// New builds a dataset from already-typed records.
func New(source string, records ...Record) *Dataset {
	return &Dataset{Source: source, Records: records}
}
