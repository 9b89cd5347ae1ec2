package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
	"github.com/Sumatoshi-tech/scoredash/pkg/report"
)

// Report output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat is returned for a --format outside table, json and yaml.
var ErrUnknownFormat = errors.New("unknown output format")

type reportFlags struct {
	format  string
	subject string
	top     int
	noColor bool
}

// NewReportCommand creates the report subcommand.
func NewReportCommand() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print score statistics in the terminal",
		Long: `Load the score table and print the same statistics the dashboard shows:
mean, median, mode and standard deviation per subject, the top students in
one subject and the subjects below the overall average. No charts are drawn.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			opt := report.Options{TopSubject: cfg.Report.TopSubject, TopN: cfg.Report.TopN}

			if flags.subject != "" {
				opt.TopSubject, err = dataset.ParseSubject(flags.subject)
				if err != nil {
					return err
				}
			}

			if flags.top > 0 {
				opt.TopN = flags.top
			}

			if flags.noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			ds, err := dataset.Load(cfg.Data.Path)
			if err != nil {
				return err
			}

			return writeReport(cobraCmd.OutOrStdout(), report.Build(ds, opt), flags.format)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", FormatTable, "output format: table, json or yaml")
	cmd.Flags().StringVarP(&flags.subject, "subject", "s", "", "subject to rank students by, overrides report.top_subject")
	cmd.Flags().IntVarP(&flags.top, "top", "n", 0, "number of top students, overrides report.top_n")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored headings")
	cmd.Flags().String(dataFlag, "", dataUsage)

	return cmd
}

func writeReport(w io.Writer, rep *report.Report, format string) error {
	switch format {
	case FormatTable:
		return writeTables(w, rep)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(rep)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeTables(w io.Writer, rep *report.Report) error {
	heading := color.New(color.FgCyan, color.Bold)
	subjects := dataset.Subjects()

	_, err := fmt.Fprintf(w, "%s students from %s\n\n", humanize.Comma(int64(rep.Rows)), rep.Source)
	if err != nil {
		return err
	}

	header := table.Row{"Statistic"}
	for _, s := range subjects {
		header = append(header, s.Column())
	}

	stats := newTable(w)
	stats.AppendHeader(header)

	for _, row := range []struct {
		name   string
		values map[dataset.Subject]report.Value
	}{
		{"Mean", rep.Summary.Mean},
		{"Median", rep.Summary.Median},
		{"Mode", rep.Summary.Mode},
		{"Std Dev", rep.Summary.StdDev},
	} {
		cells := table.Row{row.name}
		for _, s := range subjects {
			cells = append(cells, row.values[s].String())
		}

		stats.AppendRow(cells)
	}

	_, err = heading.Fprintln(w, "Statistics")
	if err != nil {
		return err
	}

	stats.Render()

	attrs := dataset.AttrNames(rep.Top)

	topHeader := append(table.Row{"#", "Student"}, header[1:]...)
	for _, name := range attrs {
		topHeader = append(topHeader, name)
	}

	top := newTable(w)
	top.AppendHeader(topHeader)

	for i, rec := range rep.Top {
		cells := table.Row{strconv.Itoa(i + 1), rec.ID}
		for _, s := range subjects {
			cells = append(cells, report.Some(rec.Score(s)).String())
		}

		for _, a := range rec.Attrs {
			cells = append(cells, a.Value)
		}

		top.AppendRow(cells)
	}

	_, err = heading.Fprintf(w, "\nTop %d Students in %s\n", len(rep.Top), rep.TopSubject.Label())
	if err != nil {
		return err
	}

	top.Render()

	_, err = heading.Fprintln(w, "\nSubjects to Improve")
	if err != nil {
		return err
	}

	if len(rep.Improve) == 0 {
		_, err = fmt.Fprintf(w, "None below the overall average (%s).\n", rep.Overall)

		return err
	}

	improve := newTable(w)
	improve.AppendHeader(table.Row{"Subject", "Mean"})

	for _, sm := range rep.Improve {
		improve.AppendRow(table.Row{sm.Subject.Column(), report.Some(sm.Mean).String()})
	}

	improve.AppendFooter(table.Row{"Overall", rep.Overall.String()})
	improve.Render()

	return nil
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	return tbl
}
