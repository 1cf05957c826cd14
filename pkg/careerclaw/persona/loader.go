// Package persona loads the site owner's grounding material: a free-text
// biography and a profile export (LinkedIn PDF or plain text).
package persona

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Default file locations, relative to the working directory or config file.
const (
	DefaultSummaryFile = "me/summary.txt"
	DefaultProfileFile = "me/linkedin.pdf"
)

// Config points at the two grounding files.
type Config struct {
	// SummaryFile is the free-text biography.
	SummaryFile string `yaml:"summary_file"`

	// ProfileFile is the profile export. ".pdf" files are text-extracted;
	// anything else is read as text.
	ProfileFile string `yaml:"profile_file"`
}

// DefaultConfig returns the conventional me/ layout.
func DefaultConfig() Config {
	return Config{
		SummaryFile: DefaultSummaryFile,
		ProfileFile: DefaultProfileFile,
	}
}

// Data is the immutable grounding record handed to the assistant.
type Data struct {
	Name        string
	Summary     string
	ProfileText string
}

// Load reads both files. Either failure is fatal to startup, so the error
// names the file that could not be read.
func Load(name string, cfg Config) (Data, error) {
	if strings.TrimSpace(name) == "" {
		return Data{}, fmt.Errorf("owner name is required")
	}

	summary, err := os.ReadFile(cfg.SummaryFile)
	if err != nil {
		return Data{}, fmt.Errorf("reading summary %s: %w", cfg.SummaryFile, err)
	}

	profile, err := readProfile(cfg.ProfileFile)
	if err != nil {
		return Data{}, fmt.Errorf("reading profile %s: %w", cfg.ProfileFile, err)
	}

	return Data{
		Name:        name,
		Summary:     string(summary),
		ProfileText: profile,
	}, nil
}

func readProfile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDFText(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractPDFText concatenates the plain text of every page.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	text, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	return buf.String(), nil
}
