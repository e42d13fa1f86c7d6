package evaluation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveRecord writes r to path as YAML for a .yaml/.yml extension and as indented JSON
// otherwise. The parent directory is created.
func SaveRecord(r *Record, path string) error {
	if r == nil {
		return errors.NewValueError("evaluation.SaveRecord", "nil record")
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode metrics record")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// LoadRecord reads a record written by SaveRecord, choosing the format by extension.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var r Record
	if isYAML(path) {
		err = yaml.Unmarshal(data, &r)
	} else {
		err = json.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, errors.NewDataFormatError(path, "not a metrics record: "+err.Error())
	}
	return &r, nil
}
