package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFile is returned for a path that is not a plan file.
var ErrUnsupportedFile = errors.New("not a plan file")

// PlanFile is a plan read from disk. The file holds either a document with
// a name and an exercises list, or a bare exercises list.
type PlanFile struct {
	Path      string            `json:"-" yaml:"-"`
	Name      string            `json:"name" yaml:"name"`
	Exercises []models.Exercise `json:"exercises" yaml:"exercises"`
}

// IsPlanFile reports whether path has a plan file extension.
func IsPlanFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return !strings.HasPrefix(filepath.Base(path), ".")
	}
	return false
}

// ReadPlanFile loads and decodes the plan file at path. A missing name
// falls back to the file name without extension.
func ReadPlanFile(path string) (*PlanFile, error) {
	if !IsPlanFile(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	pf, err := DecodePlanFile(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	pf.Path = path
	if pf.Name == "" {
		pf.Name = baseName(path)
	}
	return pf, nil
}

// DecodePlanFile decodes data as JSON when ext is ".json" and as YAML
// otherwise. Exercises without an ID get a fresh one.
func DecodePlanFile(data []byte, ext string) (*PlanFile, error) {
	var pf PlanFile
	if strings.EqualFold(ext, ".json") {
		if err := decodeJSON(data, &pf); err != nil {
			return nil, err
		}
	} else if err := decodeYAML(data, &pf); err != nil {
		return nil, err
	}

	for i := range pf.Exercises {
		if pf.Exercises[i].ID == uuid.Nil {
			pf.Exercises[i].ID = uuid.New()
		}
	}
	return &pf, nil
}

func decodeJSON(data []byte, pf *PlanFile) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &pf.Exercises)
	}
	return json.Unmarshal(trimmed, pf)
}

func decodeYAML(data []byte, pf *PlanFile) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		return root.Decode(&pf.Exercises)
	}
	return root.Decode(pf)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
