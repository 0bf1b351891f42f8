package survey

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jlammi/troutpop-go/internal/errors"
)

// Table column layouts. A header row is required; lines starting with '#'
// are comments.
var (
	passHeader = []string{"site_id", "length_between_nets", "pass_number", "catch_count"}
	fishHeader = []string{"site_id", "pass_number", "fork_length_mm"}
	siteHeader = []string{"site_id", "length_between_nets", "wet"}
)

// LoadDataset reads the survey tables into a normalized Dataset. The pass
// and fish tables are required. The site table is optional: when present it
// defines the visited sites (including dry ones, which drive the wet
// fraction); when absent every site seen in the pass table is taken as wet.
func LoadDataset(frame Frame, passPath, fishPath, sitePath string) (*Dataset, error) {
	ds := &Dataset{Frame: frame}

	if err := loadInto(passPath, "pass table", func(r io.Reader) error {
		passes, sites, err := readPassTable(r)
		if err != nil {
			return err
		}
		ds.Passes = passes
		if sitePath == "" {
			ds.Sites = sites
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadInto(fishPath, "fish table", func(r io.Reader) error {
		fish, err := readFishTable(r)
		ds.Fish = fish
		return err
	}); err != nil {
		return nil, err
	}

	if sitePath != "" {
		if err := loadInto(sitePath, "site table", func(r io.Reader) error {
			sites, err := readSiteTable(r)
			ds.Sites = sites
			return err
		}); err != nil {
			return nil, err
		}
	}

	ds.normalize()
	return ds, nil
}

func loadInto(path, table string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err).
			Component("survey").
			Category(errors.CategoryFileIO).
			Context("table", table).
			Build()
	}
	defer f.Close()

	if err := read(f); err != nil {
		return errors.Newf("%s %s: %w", table, path, err).
			Component("survey").
			Category(errors.CategoryFileParsing).
			Context("table", table).
			Build()
	}
	return nil
}

// readPassTable parses the pass table and derives the site list from it:
// one site per distinct site_id, wet, with L2 taken from the first row.
// Conflicting L2 values within a site are left for Validate to report.
func readPassTable(r io.Reader) ([]PassRecord, []Site, error) {
	rows, err := readRows(r, passHeader)
	if err != nil {
		return nil, nil, err
	}

	passes := make([]PassRecord, 0, len(rows))
	var sites []Site
	seen := make(map[string]bool)
	for _, row := range rows {
		l2, err := parseFloat(row, 1, "length_between_nets")
		if err != nil {
			return nil, nil, err
		}
		pass, err := parseInt(row, 2, "pass_number")
		if err != nil {
			return nil, nil, err
		}
		catch, err := parseInt(row, 3, "catch_count")
		if err != nil {
			return nil, nil, err
		}

		id := row.fields[0]
		passes = append(passes, PassRecord{SiteID: id, Pass: pass, Catch: catch, L2: l2})
		if !seen[id] {
			seen[id] = true
			sites = append(sites, Site{ID: id, L2: l2, Wet: true})
		}
	}
	return passes, sites, nil
}

func readFishTable(r io.Reader) ([]FishRecord, error) {
	rows, err := readRows(r, fishHeader)
	if err != nil {
		return nil, err
	}

	fish := make([]FishRecord, 0, len(rows))
	for _, row := range rows {
		pass, err := parseInt(row, 1, "pass_number")
		if err != nil {
			return nil, err
		}
		fl, err := parseFloat(row, 2, "fork_length_mm")
		if err != nil {
			return nil, err
		}
		fish = append(fish, FishRecord{SiteID: row.fields[0], Pass: pass, ForkLength: fl})
	}
	return fish, nil
}

func readSiteTable(r io.Reader) ([]Site, error) {
	rows, err := readRows(r, siteHeader)
	if err != nil {
		return nil, err
	}

	sites := make([]Site, 0, len(rows))
	for _, row := range rows {
		l2, err := parseFloat(row, 1, "length_between_nets")
		if err != nil {
			return nil, err
		}
		wet, err := strconv.ParseBool(row.fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: column wet: %w", row.line, err)
		}
		sites = append(sites, Site{ID: row.fields[0], L2: l2, Wet: wet})
	}
	return sites, nil
}

type row struct {
	fields []string
	line   int
}

// readRows reads all CSV records after verifying the header matches the
// expected column names (case-insensitive).
func readRows(r io.Reader, header []string) ([]row, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row, expected %s", strings.Join(header, ","))
	}
	if err != nil {
		return nil, err
	}
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(first[i]), want) {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i+1, first[i], want)
		}
	}

	var rows []row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row{fields: rec, line: line})
	}
}

func parseInt(r row, col int, name string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(r.fields[col]))
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, name, err)
	}
	return v, nil
}

func parseFloat(r row, col int, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.fields[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, name, err)
	}
	return v, nil
}
