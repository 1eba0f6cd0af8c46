package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/dqreport/internal/table"
)

// Result maps dataset name to its raw and cleaned statistics.
type Result map[string]*DatasetStats

// DatasetStats pairs the statistics of both versions of a dataset.
type DatasetStats struct {
	Raw     *TableStats `json:"raw,omitempty"`
	Cleaned *TableStats `json:"cleaned,omitempty"`
}

// Complete reports whether both versions were analyzed.
func (d *DatasetStats) Complete() bool { return d != nil && d.Raw != nil && d.Cleaned != nil }

// Names returns the dataset names present in r, following order first and
// then any extra names alphabetically.
func (r Result) Names(order []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range order {
		if _, ok := r[n]; ok && !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	var extra []string
	for n := range r {
		if !seen[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// TableStats is the statistics record of one table.
type TableStats struct {
	Shape             [2]int                  `json:"shape"`
	MemoryUsage       string                  `json:"memory_usage"`
	MemoryBytes       int64                   `json:"memory_bytes"`
	TotalMissing      int                     `json:"total_missing"`
	MissingPercentage float64                 `json:"missing_percentage"`
	DuplicateRows     int                     `json:"duplicate_rows"`
	Columns           []string                `json:"columns"`
	DTypes            map[string]string       `json:"dtypes"`
	ColumnStats       map[string]*ColumnStats `json:"column_stats"`
	QualityScore      float64                 `json:"quality_score"`
}

// Rows returns the record count.
func (s *TableStats) Rows() int { return s.Shape[0] }

// Cols returns the column count.
func (s *TableStats) Cols() int { return s.Shape[1] }

// Column finds column statistics by name, falling back to a case-insensitive match.
func (s *TableStats) Column(name string) (*ColumnStats, bool) {
	if s == nil {
		return nil, false
	}
	if c, ok := s.ColumnStats[name]; ok {
		return c, true
	}
	for k, c := range s.ColumnStats {
		if strings.EqualFold(k, name) {
			return c, true
		}
	}
	return nil, false
}

// ColumnStats describes one column. Exactly one of the embedded blocks is set.
type ColumnStats struct {
	MissingCount      int     `json:"missing_count"`
	MissingPercentage float64 `json:"missing_percentage"`
	Completeness      float64 `json:"completeness"`
	UniqueValues      int     `json:"unique_values"`
	DType             string  `json:"dtype"`
	*NumericStats
	*CategoricalStats
}

// IsNumeric reports whether the column carries numeric statistics.
func (c *ColumnStats) IsNumeric() bool { return c.NumericStats != nil }

// NumericStats holds moments and quantiles. Values are nil when the column
// has too few observations for the statistic.
type NumericStats struct {
	Mean     *float64 `json:"mean"`
	Median   *float64 `json:"median"`
	Std      *float64 `json:"std"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Q25      *float64 `json:"q25"`
	Q75      *float64 `json:"q75"`
	Skewness *float64 `json:"skewness"`
	Kurtosis *float64 `json:"kurtosis"`

	OutliersCount      *int     `json:"outliers_count,omitempty"`
	OutliersPercentage *float64 `json:"outliers_percentage,omitempty"`
}

// CategoricalStats holds frequency information for object columns.
type CategoricalStats struct {
	TopValues             TopValues `json:"top_values"`
	MostFrequent          *string   `json:"most_frequent"`
	FrequencyOfMostCommon int       `json:"frequency_of_most_common"`
}

// TopValues is an ordered frequency table serialized as a JSON object.
type TopValues []table.ValueCount

// Get returns the count recorded for value.
func (tv TopValues) Get(value string) (int, bool) {
	for _, v := range tv {
		if v.Value == value {
			return v.Count, true
		}
	}
	return 0, false
}

// Max returns the most frequent entry; ties resolve to the earliest entry.
func (tv TopValues) Max() (table.ValueCount, bool) {
	if len(tv) == 0 {
		return table.ValueCount{}, false
	}
	best := tv[0]
	for _, v := range tv[1:] {
		if v.Count > best.Count {
			best = v
		}
	}
	return best, true
}

func (tv TopValues) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, v := range tv {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		fmt.Fprintf(&b, ":%d", v.Count)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (tv *TopValues) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*tv = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("top_values: expected object, got %v", tok)
	}
	out := TopValues{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("top_values: expected key, got %v", kt)
		}
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("top_values[%s]: %w", key, err)
		}
		out = append(out, table.ValueCount{Value: key, Count: n})
	}
	*tv = out
	return nil
}
