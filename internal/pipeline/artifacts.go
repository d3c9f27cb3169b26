package pipeline

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"expensereview/internal/diag"
	"expensereview/internal/models"
)

// Report is the run's YAML artifact: per-segment evaluation plus every
// collected diagnostic.
type Report struct {
	GeneratedAt time.Time         `yaml:"generated_at"`
	Segments    []SegmentReport   `yaml:"segments"`
	Diagnostics []diag.Diagnostic `yaml:"diagnostics"`
}

// WriteRows writes the scored rows as CSV.
func WriteRows(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.Marshal(&rows, f); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// ReadRows loads a scored-rows CSV written by WriteRows.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	var rows []Row
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("parse rows: %w", err)
	}
	return rows, nil
}

// WriteReport writes the YAML run report.
func (r *Result) WriteReport(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	rep := Report{GeneratedAt: time.Now().UTC(), Segments: r.Segments, Diagnostics: r.Diagnostics}
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a YAML run report.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var rep Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &rep, nil
}

func init() {
	gob.Register(&models.GradientBoosting{})
	gob.Register(&models.RandomForest{})
	gob.Register(&models.Bagging{})
	gob.Register(&models.DecisionTree{})
	gob.Register(&models.Constant{})
}

type savedModel struct {
	Category string
	Model    models.Model
}

// SaveModels persists each segment's fitted model under dir as
// <category>.gob.
func (r *Result) SaveModels(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, sc := range r.Scorers {
		path := filepath.Join(dir, sanitize(sc.Category)+".gob")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		enc := gob.NewEncoder(f)
		err = enc.Encode(&savedModel{Category: sc.Category, Model: sc.Model})
		f.Close()
		if err != nil {
			return fmt.Errorf("encode model for %s: %w", sc.Category, err)
		}
	}
	return nil
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
