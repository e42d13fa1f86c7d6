package trainer

import (
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/regpipe/core/model"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// SaveModel writes p to path with encoding/gob, creating the parent directory. The
// polynomial transform is stored with the estimator.
func SaveModel(p *Pipeline, path string) error {
	if p == nil || p.Estimator == nil {
		return errors.NewValueError("trainer.SaveModel", "nil pipeline")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	return model.SaveModel(p, path)
}

// LoadModel reads a pipeline written by SaveModel. Its predictions are bit-for-bit those
// of the saved pipeline.
func LoadModel(path string) (*Pipeline, error) {
	var p Pipeline
	if err := model.LoadModel(&p, path); err != nil {
		return nil, err
	}
	if p.Spec == nil || p.Estimator == nil {
		return nil, errors.NewValueError("trainer.LoadModel", "file does not contain a trained pipeline")
	}
	return &p, nil
}
