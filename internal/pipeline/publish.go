package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/decisync/internal/render"
)

// Publish writes the rendered document to path.
// Nothing is written when the run recorded any error, so a partial document
// never replaces a complete one. It reports whether the file was written.
func Publish(result *Result, path string) (bool, error) {
	if len(result.Stats.Errors) > 0 {
		return false, nil
	}

	if err := writeAtomic(path, []byte(result.Document)); err != nil {
		return false, fmt.Errorf("write output: %w", err)
	}
	result.Stats.OutputWritten = true
	return true, nil
}

// WriteStatsJSON writes the run statistics as JSON to path
func WriteStatsJSON(result *Result, path string) error {
	data, err := render.StatsJSON(result.Stats)
	if err != nil {
		return err
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}

// AppendStepSummary appends summary to the step summary file at path
func AppendStepSummary(path, summary string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open step summary: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close step summary: %w", closeErr)
		}
	}()

	if _, err := f.WriteString(summary); err != nil {
		return fmt.Errorf("write step summary: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
