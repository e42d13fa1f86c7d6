package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// SaveModel gob-encodes model into filename. Interface-typed fields inside model must
// have their concrete types registered with gob.Register.
//
//	err := model.SaveModel(pipeline, "model.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create model file %s", filename)
	}
	defer file.Close()

	if err := SaveModelToWriter(model, file); err != nil {
		return err
	}
	return errors.Wrap(file.Sync(), "failed to flush model file")
}

// LoadModel decodes a gob-encoded model from filename into model, which must be a pointer.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open model file %s", filename)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter gob-encodes model into w.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader decodes a gob-encoded model from r into model.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
