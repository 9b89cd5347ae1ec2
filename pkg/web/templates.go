package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/scoredash/pkg/chart"
	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
	"github.com/Sumatoshi-tech/scoredash/pkg/report"
)

//go:embed templates/*.html
var templateFS embed.FS

const indexTemplate = "index.html"

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

var funcMap = template.FuncMap{
	"odd": func(i int) bool {
		return i%2 == 1
	},
	"score": func(v float64) string {
		return report.Some(v).String()
	},
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
}

// getTemplates returns the parsed templates, loading them once.
func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		var parseErr error

		templates, parseErr = template.New("").
			Funcs(funcMap).
			ParseFS(templateFS, "templates/*.html")
		if parseErr != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", parseErr)
		}
	})

	return templates, errTemplates
}

func renderIndex(w io.Writer, data pageData) error {
	tmpl, err := getTemplates()
	if err != nil {
		return err
	}

	err = tmpl.ExecuteTemplate(w, indexTemplate, data)
	if err != nil {
		return fmt.Errorf("executing template %s: %w", indexTemplate, err)
	}

	return nil
}

// pageData holds data for the index template.
type pageData struct {
	Title       string
	Source      string
	Rows        int
	Stats       []statTable
	TopSubject  string
	Top         []dataset.Record
	AttrNames   []string
	Overall     string
	Improve     []report.SubjectMean
	Charts      []chartData
	Interactive bool
}

// statTable is one statistic across every subject.
type statTable struct {
	Title  string
	Values []subjectValue
}

type subjectValue struct {
	Subject string
	Value   string
}

type chartData struct {
	Title string
	URL   string
}

func newPageData(rep *report.Report, art chart.Artifacts, format chart.Format) pageData {
	return pageData{
		Title:      "Student Performance Dashboard",
		Source:     rep.Source,
		Rows:       rep.Rows,
		TopSubject: rep.TopSubject.Label(),
		Top:        rep.Top,
		AttrNames:  dataset.AttrNames(rep.Top),
		Overall:    rep.Overall.String(),
		Improve:    rep.Improve,
		Stats: []statTable{
			newStatTable("Mean Scores", rep.Summary.Mean),
			newStatTable("Median Scores", rep.Summary.Median),
			newStatTable("Mode Scores", rep.Summary.Mode),
			newStatTable("Standard Deviation", rep.Summary.StdDev),
		},
		Charts: []chartData{
			{Title: "Score Distribution", URL: staticURL(art.Distribution)},
			{Title: "Mean Scores by Subject", URL: staticURL(art.Means)},
		},
		Interactive: format == chart.FormatHTML,
	}
}

func newStatTable(title string, values map[dataset.Subject]report.Value) statTable {
	subjects := dataset.Subjects()
	tbl := statTable{Title: title, Values: make([]subjectValue, 0, len(subjects))}

	for _, s := range subjects {
		tbl.Values = append(tbl.Values, subjectValue{Subject: s.Column(), Value: values[s].String()})
	}

	return tbl
}

func staticURL(name string) string {
	return "/static/" + strings.TrimPrefix(name, "/")
}
