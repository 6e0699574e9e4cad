package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
)

// Option configures the delimited-file loader.
type Option func(*loaderConfig)

type loaderConfig struct {
	delimiter rune
}

// WithDelimiter sets the field delimiter (default ',').
func WithDelimiter(r rune) Option {
	return func(c *loaderConfig) {
		c.delimiter = r
	}
}

// LoadCSV reads a delimited file with a header row into a Dataset. The
// column named labelColumn becomes the label; every other column is a
// feature. A feature column is numeric when every value parses as a float,
// categorical otherwise. String labels are mapped to class codes in order
// of first appearance; the decoding table is available via ClassNames.
func LoadCSV(path, labelColumn string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadCSV: opening %s", path)
	}
	defer f.Close()

	d, err := ReadCSV(f, labelColumn, opts...)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("dataset").Debug("loaded delimited file",
		"path", path,
		log.SamplesKey, d.NumRecords(),
		log.FeaturesKey, d.NumFeatures(),
	)
	return d, nil
}

// ReadCSV is LoadCSV over an io.Reader.
func ReadCSV(r io.Reader, labelColumn string, opts ...Option) (*Dataset, error) {
	cfg := loaderConfig{delimiter: ','}
	for _, opt := range opts {
		opt(&cfg)
	}

	reader := csv.NewReader(r)
	reader.Comma = cfg.delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewEmptyDatasetError("dataset.ReadCSV")
	}
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSV: reading header")
	}

	labelIdx := -1
	for i, name := range header {
		if name == labelColumn {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return nil, errors.NewValueError("dataset.ReadCSV",
			"label column '"+labelColumn+"' not found in header")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSV: reading records")
	}
	if len(rows) == 0 {
		return nil, errors.NewEmptyDatasetError("dataset.ReadCSV")
	}

	// Feature cells, column-major, label column excluded.
	nFeatures := len(header) - 1
	cells := make([][]string, nFeatures)
	for j := range cells {
		cells[j] = make([]string, len(rows))
	}
	labelCells := make([]string, len(rows))

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, errors.NewLengthMismatchError("dataset.ReadCSV", len(header), len(row))
		}
		fj := 0
		for c, cell := range row {
			if c == labelIdx {
				labelCells[i] = cell
				continue
			}
			cells[fj][i] = cell
			fj++
		}
	}

	cols := make([]Column, nFeatures)
	fj := 0
	for c, name := range header {
		if c == labelIdx {
			continue
		}
		cols[fj] = buildColumn(name, cells[fj])
		fj++
	}

	labels, classNames := parseLabels(labelCells)

	d := &Dataset{
		cols:       cols,
		labels:     labels,
		labelName:  labelColumn,
		classNames: classNames,
	}
	return d, nil
}

// buildColumn decides a column's kind from its values: numeric when every
// cell parses as a float, categorical otherwise.
func buildColumn(name string, cells []string) Column {
	numeric := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Column{Name: name, Kind: Categorical, Values: cells}
		}
		numeric[i] = v
	}
	return Column{Name: name, Kind: Numeric, Numeric: numeric}
}

// parseLabels maps label cells to float64. String labels become class
// codes in order of first appearance.
func parseLabels(cells []string) ([]float64, []string) {
	labels := make([]float64, len(cells))
	allNumeric := true
	for i, cell := range cells {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			allNumeric = false
			break
		}
		labels[i] = v
	}
	if allNumeric {
		return labels, nil
	}

	codes := make(map[string]float64)
	var classNames []string
	for i, cell := range cells {
		code, ok := codes[cell]
		if !ok {
			code = float64(len(classNames))
			codes[cell] = code
			classNames = append(classNames, cell)
		}
		labels[i] = code
	}
	return labels, classNames
}
