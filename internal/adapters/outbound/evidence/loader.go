package evidence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Loader is a file-based implementation of domain.EvidenceLoader.
type Loader struct {
	validate *validator.Validate
}

// New creates a loader with evidence validation rules registered.
func New() *Loader {
	v := validator.New()
	v.RegisterStructValidation(coverageConsistent, domain.CoverageEvidence{})
	return &Loader{validate: v}
}

// Load reads and validates an evidence snapshot. A missing file is reported
// as domain.ErrNoEvidence.
func (l *Loader) Load(path string) (*domain.Evidence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", domain.ErrNoEvidence, path)
		}
		return nil, err
	}

	var ev domain.Evidence
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parsing evidence %s: %w", path, err)
	}
	if err := l.validate.Struct(&ev); err != nil {
		return nil, fmt.Errorf("invalid evidence %s: %w", path, err)
	}
	return &ev, nil
}

// Save writes an evidence snapshot, creating directories as needed.
func Save(path string, ev *domain.Evidence) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func coverageConsistent(sl validator.StructLevel) {
	c := sl.Current().Interface().(domain.CoverageEvidence)
	if c.Covered > c.Total {
		sl.ReportError(c.Covered, "Covered", "covered", "ltefield_total", "")
	}
}
