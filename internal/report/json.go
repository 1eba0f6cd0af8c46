// Package report writes the analysis result as JSON, plain text and XLSX.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/utils"
	"github.com/google/uuid"
)

// File names under the output directory.
const (
	JSONFile     = "analysis_results.json"
	TextFile     = "analysis_summary_report.txt"
	WorkbookFile = "analysis_results.xlsx"
	MetaFile     = "analysis_run.json"
)

// Meta identifies one pipeline run.
type Meta struct {
	RunID     string    `json:"run_id"`
	Generated time.Time `json:"generated_at"`
}

// NewMeta stamps a fresh run id.
func NewMeta(now time.Time) Meta {
	return Meta{RunID: uuid.NewString(), Generated: now}
}

// WriteJSON persists the result as indented JSON, replacing path atomically.
func WriteJSON(path string, r analysis.Result) error {
	b, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads a result written by WriteJSON.
func ReadJSON(path string) (analysis.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var r analysis.Result
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return r, nil
}

// WriteMeta records the run that produced the reports next to them, so a
// later visualize step can stamp the same run id.
func WriteMeta(path string, m Meta) error {
	b, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadMeta loads a run record written by WriteMeta.
func ReadMeta(path string) (Meta, error) {
	var m Meta
	b, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	if m.RunID == "" {
		return m, fmt.Errorf("parse %s: missing run_id", path)
	}
	return m, nil
}
