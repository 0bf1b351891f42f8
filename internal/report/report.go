// Package report renders the analysis results as human-readable text or CSV
// tables. Every writer takes an io.Writer; Render decides whether those are
// files in the output directory or stdout. Reporting never recomputes
// anything, it only formats what the pipeline produced, including the
// per-target failure notes.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jlammi/troutpop-go/internal/analysis"
	"github.com/jlammi/troutpop-go/internal/buildinfo"
	"github.com/jlammi/troutpop-go/internal/conf"
)

// Render writes every output table. With an empty dir everything goes to
// stdout in sequence; otherwise one file per table is created under dir.
func Render(results *analysis.Results, dir, format string) error {
	if dir == "" {
		return renderStream(os.Stdout, results, format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	ext := ".txt"
	if format == conf.FormatCSV {
		ext = ".csv"
	}
	tables := []struct {
		name  string
		write func(io.Writer, *analysis.Results, string) error
	}{
		{name: "sites", write: WriteSiteTable},
		{name: "regional", write: WriteRegionalTable},
		{name: "power", write: WritePowerTable},
		{name: "lengths", write: WriteLengthTable},
	}
	for _, table := range tables {
		path := filepath.Join(dir, table.name+ext)
		if err := writeFile(path, results, format, table.write); err != nil {
			return err
		}
		fmt.Println("Output written to", path)
	}
	return nil
}

func renderStream(w io.Writer, results *analysis.Results, format string) error {
	if format != conf.FormatCSV {
		if err := WriteHeader(w, results); err != nil {
			return err
		}
	}
	for _, write := range []func(io.Writer, *analysis.Results, string) error{
		WriteSiteTable, WriteRegionalTable, WritePowerTable, WriteLengthTable,
	} {
		if err := write(w, results, format); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, results *analysis.Results, format string,
	write func(io.Writer, *analysis.Results, string) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return write(f, results, format)
}

// WriteHeader writes the run provenance block: who ran what, when, over
// which frame. Text only; the CSV outputs are meant for further processing
// and stay header-free beyond their column rows.
func WriteHeader(w io.Writer, r *analysis.Results) error {
	p := message.NewPrinter(language.English)
	_, err := p.Fprintf(w,
		"%s regional trout abundance (%s)\n"+
			"run %s, started %s\n"+
			"frame: %d reaches, %.0f m of channel, mean reach %.1f m, wet fraction %.3f\n"+
			"sample: %d sites, removal model %s, %.0f%% confidence\n\n",
		r.ProgramName, buildinfo.String(),
		r.RunID, r.StartedAt.Format("2006-01-02 15:04:05"),
		r.Frame.Reaches, r.Frame.TotalLength, r.Frame.MeanReachLength(), r.WetFraction,
		r.SampleSize, r.Model, r.Confidence*100)
	return err
}

// WriteSiteTable writes the per-site abundance estimates.
func WriteSiteTable(w io.Writer, r *analysis.Results, format string) error {
	if format == conf.FormatCSV {
		return writeCSV(w, [][]string{{"site_id", "length_m", "passes", "total_catch", "abundance", "std_error"}},
			func(rows [][]string) [][]string {
				for i, sd := range r.Sites {
					e := r.SiteEstimates[i]
					rows = append(rows, []string{
						sd.Site.ID,
						formatFloat(sd.Site.L2, 1),
						strconv.Itoa(len(sd.Catches)),
						strconv.Itoa(sd.TotalCatch()),
						formatFloat(e.MHat, 2),
						formatFloat(e.StdErr(), 2),
					})
				}
				return rows
			})
	}

	if _, err := fmt.Fprintf(w, "Per-site abundance\n%-10s %9s %7s %7s %10s %9s\n",
		"site", "length m", "passes", "catch", "abundance", "SE"); err != nil {
		return err
	}
	for i, sd := range r.Sites {
		e := r.SiteEstimates[i]
		if _, err := fmt.Fprintf(w, "%-10s %9.1f %7d %7d %10.2f %9.2f\n",
			sd.Site.ID, sd.Site.L2, len(sd.Catches), sd.TotalCatch(), e.MHat, e.StdErr()); err != nil {
			return err
		}
	}
	return nil
}

// WriteRegionalTable writes the overall density and the three size class
// totals. A failed target becomes a note row, never a NaN row.
func WriteRegionalTable(w io.Writer, r *analysis.Results, format string) error {
	type line struct {
		target   string
		unit     string
		estimate float64
		stdErr   float64
		lower    float64
		upper    float64
		cv       float64
		err      error
	}

	lines := []line{{
		target: "density", unit: "fish/m",
		estimate: r.Density.Point, stdErr: r.Density.StdErr,
		lower: r.Density.Lower, upper: r.Density.Upper, cv: r.Density.CV,
		err: r.DensityErr,
	}}
	for _, cr := range r.Classes {
		lines = append(lines, line{
			target: cr.Class.String(), unit: "fish",
			estimate: cr.Estimate.Point, stdErr: cr.Estimate.StdErr,
			lower: cr.Estimate.Lower, upper: cr.Estimate.Upper, cv: cr.Estimate.CV,
			err: cr.Err,
		})
	}

	if format == conf.FormatCSV {
		return writeCSV(w, [][]string{{"target", "unit", "estimate", "std_error", "ci_lower", "ci_upper", "cv_percent", "error"}},
			func(rows [][]string) [][]string {
				for _, l := range lines {
					if l.err != nil {
						rows = append(rows, []string{l.target, l.unit, "", "", "", "", "", l.err.Error()})
						continue
					}
					rows = append(rows, []string{
						l.target, l.unit,
						formatFloat(l.estimate, 4), formatFloat(l.stdErr, 4),
						formatFloat(l.lower, 4), formatFloat(l.upper, 4),
						formatFloat(l.cv, 1), "",
					})
				}
				return rows
			})
	}

	p := message.NewPrinter(language.English)
	if _, err := p.Fprintf(w, "Regional estimates (%.0f%% CI)\n%-10s %12s %11s %12s %12s %7s\n",
		r.Confidence*100, "target", "estimate", "SE", "lower", "upper", "CV"); err != nil {
		return err
	}
	for _, l := range lines {
		if l.err != nil {
			if _, err := p.Fprintf(w, "%-10s not estimable: %v\n", l.target, l.err); err != nil {
				return err
			}
			continue
		}
		if _, err := p.Fprintf(w, "%-10s %12.2f %11.2f %12.2f %12.2f %6s%%\n",
			l.target, l.estimate, l.stdErr, l.lower, l.upper, formatFloat(l.cv, 1)); err != nil {
			return err
		}
	}
	return nil
}

// WritePowerTable writes the projected precision against inflated sample
// sizes for the adult target.
func WritePowerTable(w io.Writer, r *analysis.Results, format string) error {
	if format == conf.FormatCSV {
		return writeCSV(w, [][]string{{"multiplier", "sample_size", "cv_percent", "error"}},
			func(rows [][]string) [][]string {
				for _, row := range r.Power {
					if row.Err != nil {
						rows = append(rows, []string{strconv.Itoa(row.Multiplier), strconv.Itoa(row.SampleSize), "", row.Err.Error()})
						continue
					}
					rows = append(rows, []string{strconv.Itoa(row.Multiplier), strconv.Itoa(row.SampleSize), formatFloat(row.CV, 1), ""})
				}
				return rows
			})
	}

	if _, err := fmt.Fprintf(w, "Adult precision vs sample size\n%-11s %12s %7s\n",
		"multiplier", "sample size", "CV"); err != nil {
		return err
	}
	if r.PowerErr != nil {
		_, err := fmt.Fprintf(w, "not estimable: %v\n", r.PowerErr)
		return err
	}
	for _, row := range r.Power {
		if row.Err != nil {
			if _, err := fmt.Fprintf(w, "%-11d %12d %7s\n", row.Multiplier, row.SampleSize, "n/a"); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%-11d %12d %6s%%\n", row.Multiplier, row.SampleSize, formatFloat(row.CV, 1)); err != nil {
			return err
		}
	}
	return nil
}

// WriteLengthTable writes the fork length summary per size class.
func WriteLengthTable(w io.Writer, r *analysis.Results, format string) error {
	if format == conf.FormatCSV {
		return writeCSV(w, [][]string{{"class", "count", "mean_mm", "median_mm", "min_mm", "max_mm"}},
			func(rows [][]string) [][]string {
				for _, ls := range r.Lengths {
					rows = append(rows, []string{
						ls.Class.String(), strconv.Itoa(ls.Count),
						formatFloat(ls.Mean, 1), formatFloat(ls.Median, 1),
						formatFloat(ls.Min, 1), formatFloat(ls.Max, 1),
					})
				}
				return rows
			})
	}

	p := message.NewPrinter(language.English)
	if _, err := p.Fprintf(w, "Fork lengths by size class (mm)\n%-10s %7s %8s %8s %8s %8s\n",
		"class", "count", "mean", "median", "min", "max"); err != nil {
		return err
	}
	for _, ls := range r.Lengths {
		if ls.Count == 0 {
			if _, err := p.Fprintf(w, "%-10s %7d %8s %8s %8s %8s\n",
				ls.Class.String(), 0, "-", "-", "-", "-"); err != nil {
				return err
			}
			continue
		}
		if _, err := p.Fprintf(w, "%-10s %7d %8.1f %8.1f %8.1f %8.1f\n",
			ls.Class.String(), ls.Count, ls.Mean, ls.Median, ls.Min, ls.Max); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, header [][]string, fill func([][]string) [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(fill(header)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat renders a value for the tables, mapping the undefined CV of a
// zero estimate to "n/a" instead of leaking NaN.
func formatFloat(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
