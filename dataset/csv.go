package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// LoadCSV reads a numeric table with a header row from path. targetColumn names the
// column that becomes Y; every other column becomes a feature.
func LoadCSV(path, targetColumn string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %s", path)
	}
	defer file.Close()

	return ReadCSV(file, path, targetColumn)
}

// ReadCSV is LoadCSV over an io.Reader; source names the input in errors.
func ReadCSV(r io.Reader, source, targetColumn string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewDataFormatError(source, "file is empty")
	}
	if err != nil {
		return nil, csvError(source, err)
	}

	targetIdx := -1
	var names []string
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == targetColumn {
			targetIdx = i
			continue
		}
		names = append(names, name)
	}
	if targetIdx < 0 {
		return nil, errors.NewDataFormatError(source, fmt.Sprintf("target column %q not found", targetColumn))
	}
	if len(names) == 0 {
		return nil, errors.NewDataFormatError(source, "no feature columns besides the target")
	}

	var features, target []float64
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, csvError(source, err)
		}

		for i, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.NewDataFormatErrorAtLine(source, line,
					fmt.Sprintf("non-numeric value %q in column %q", cell, strings.TrimSpace(header[i])))
			}
			if i == targetIdx {
				target = append(target, v)
			} else {
				features = append(features, v)
			}
		}
	}
	if len(target) == 0 {
		return nil, errors.NewDataFormatError(source, "no data rows")
	}

	return &Dataset{
		X:            mat.NewDense(len(target), len(names), features),
		Y:            mat.NewVecDense(len(target), target),
		FeatureNames: names,
	}, nil
}

// csvError turns csv.ParseError (ragged rows, bad quoting) into a DataFormatError.
func csvError(source string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return errors.NewDataFormatErrorAtLine(source, parseErr.Line, parseErr.Err.Error())
	}
	return errors.Wrapf(err, "failed to read %s", source)
}
