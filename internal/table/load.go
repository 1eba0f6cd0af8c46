package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Loader reads one on-disk format into a Table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string) (*Table, error)
}

var registry []Loader

// register adds a loader implementation to the registry.
func register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported table format")

// MissingTokens are the cell values treated as missing.
var MissingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// Load selects a loader based on filename.
func Load(path string) (*Table, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			t, err := l.Load(path)
			if err != nil {
				return nil, err
			}
			t.Path = path
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func init() {
	register(csvLoader{})
	register(xlsxLoader{})
}

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := ','
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		delim = '\t'
	}
	return ReadCSV(f, tableName(path), delim)
}

// ReadCSV reads delimited text with a header row.
func ReadCSV(r io.Reader, name string, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return FromRecords(name, records)
}

// FromRecords types a header-first record grid. Missing tokens are blanked
// before gota infers column types, so they never force a column to text.
// Integer columns holding missing cells are widened to float64.
func FromRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return New(name, nil), nil
	}
	header := records[0]
	ncol := len(header)
	for _, rec := range records[1:] {
		if len(rec) > ncol {
			ncol = len(rec)
		}
	}
	if ncol == 0 {
		return New(name, nil), nil
	}
	grid := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, ncol)
		for j := range rec {
			v := strings.TrimSpace(rec[j])
			if i > 0 && isMissingToken(v) {
				v = ""
			}
			row[j] = v
		}
		grid[i] = row
	}
	// Blank headers become "Unnamed: j"; repeats get ".1", ".2" suffixes.
	used := make(map[string]bool, ncol)
	for j, h := range grid[0] {
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", j)
		}
		for n, base := 1, h; used[h]; n++ {
			h = fmt.Sprintf("%s.%d", base, n)
		}
		used[h] = true
		grid[0][j] = h
	}

	if len(grid) == 1 {
		cols := make([]*Column, ncol)
		for j, h := range grid[0] {
			cols[j] = &Column{Name: h, Kind: Categorical, DType: "object"}
		}
		return New(name, cols), nil
	}

	df := dataframe.LoadRecords(boolsLowered(grid),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{""}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("type records: %w", df.Err)
	}

	names := df.Names()
	cols := make([]*Column, 0, len(names))
	for j, colName := range names {
		s := df.Col(colName)
		raw := make([]string, len(grid)-1)
		for i := range raw {
			raw[i] = grid[i+1][j]
		}
		cols = append(cols, fromSeries(grid[0][j], s, raw))
	}
	return New(name, cols), nil
}

func fromSeries(name string, s series.Series, raw []string) *Column {
	missing := s.IsNaN()
	c := &Column{Name: name, Strs: raw, Missing: missing}
	for i := range raw {
		if missing[i] {
			c.Strs[i] = ""
		}
	}
	switch s.Type() {
	case series.Int, series.Float, series.Bool:
		c.Kind = Numeric
		c.Nums = s.Float()
		for i, m := range missing {
			if m {
				c.Nums[i] = math.NaN()
			}
		}
		c.DType = numericDType(s.Type(), c.MissingCount() > 0)
	default:
		c.Kind = Categorical
		c.DType = "object"
	}
	return c
}

func numericDType(t series.Type, hasMissing bool) string {
	switch {
	case t == series.Bool:
		return "bool"
	case t == series.Int && !hasMissing:
		return "int64"
	default:
		return "float64"
	}
}

// boolsLowered returns a copy of grid whose True/FALSE style cells are
// lowercased, the only spelling gota detects as bool. The raw text is untouched.
func boolsLowered(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	out[0] = grid[0]
	for i, row := range grid[1:] {
		out[i+1] = row
		copied := false
		for j, v := range row {
			l := strings.ToLower(v)
			if v == l || (l != "true" && l != "false") {
				continue
			}
			if !copied {
				out[i+1] = append([]string(nil), row...)
				copied = true
			}
			out[i+1][j] = l
		}
	}
	return out
}

func isMissingToken(v string) bool {
	for _, tok := range MissingTokens {
		if v == tok {
			return true
		}
	}
	return false
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
