package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// FileName is the project configuration file.
const FileName = ".kraftgate.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .kraftgate.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .kraftgate.yaml from projectPath and fills unset fields with
// defaults. Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

var sectionComments = map[string]string{
	"policy":      "Policy preset (strict, standard, lenient, custom) and overrides.",
	"gates":       "Gate execution: per-gate timeout, parallelism and coverage threshold.",
	"progressive": "Ramp enforcement on legacy code by the age of each line.",
	"feedback":    "False-positive tracking and detector auto-disable.",
	"audit":       "Health degradation and duplicate-pattern thresholds.",
	"store":       "Run history database.",
}

// Write renders cfg to .kraftgate.yaml with a comment on each section. It
// refuses to replace an existing file unless force is set.
func Write(projectPath string, cfg domain.ProjectConfig, force bool) (string, error) {
	path := filepath.Join(projectPath, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists (use --force to overwrite)", FileName)
		}
	}

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return path, fmt.Errorf("encoding config: %w", err)
	}
	if doc.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if c, ok := sectionComments[doc.Content[i].Value]; ok {
				doc.Content[i].HeadComment = c
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# kraftgate configuration\n\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return path, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return path, err
	}
	return path, os.WriteFile(path, buf.Bytes(), 0644)
}
