// Package report persists run artifacts as timestamped JSON and CSV
// files under a data directory.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Envelope wraps every JSON artifact with run identity so files remain
// interpretable after the run that produced them is gone.
type Envelope struct {
	RunID       string      `json:"run_id,omitempty"`
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Parameters  interface{} `json:"parameters,omitempty"`
	Results     interface{} `json:"results"`
}

// Writer saves artifacts into one base directory, creating it on first
// use.
type Writer struct {
	baseDir string
	logger  *logrus.Logger
}

// NewWriter returns a Writer rooted at dir. An empty dir means "data".
func NewWriter(dir string, logger *logrus.Logger) *Writer {
	if dir == "" {
		dir = "data"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Writer{baseDir: dir, logger: logger}
}

// Timestamp is the filename-safe time format shared by all artifacts.
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

func (w *Writer) ensureDir() error {
	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// SaveJSON writes env as indented JSON to <dir>/<kind>_<timestamp>.json
// and returns the path.
func (w *Writer) SaveJSON(env Envelope) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", err
	}
	if env.GeneratedAt.IsZero() {
		env.GeneratedAt = time.Now()
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s results: %w", env.Kind, err)
	}

	path := filepath.Join(w.baseDir, fmt.Sprintf("%s_%s.json", env.Kind, Timestamp(env.GeneratedAt)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.logger.WithFields(logrus.Fields{
		"kind": env.Kind,
		"path": path,
	}).Info("Results saved")
	return path, nil
}

// SaveCSV writes a header plus rows to <dir>/<kind>_<timestamp>.csv and
// returns the path.
func (w *Writer) SaveCSV(kind string, header []string, rows [][]string) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", err
	}

	path := filepath.Join(w.baseDir, fmt.Sprintf("%s_%s.csv", kind, Timestamp(time.Now())))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}

	w.logger.WithFields(logrus.Fields{
		"kind": kind,
		"rows": len(rows),
		"path": path,
	}).Info("Table saved")
	return path, nil
}
