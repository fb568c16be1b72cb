package seed

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"foodgram/internal/models"

	"gopkg.in/yaml.v3"
)

// Format names an ingredient fixture encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for fixture files with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown fixture format")

type ingredientRecord struct {
	Name            string `json:"name" yaml:"name"`
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit"`
}

// FormatFromPath picks the fixture format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// LoadIngredientsFile reads an ingredient fixture from disk.
func LoadIngredientsFile(path string) ([]models.Ingredient, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseIngredients(f, format)
}

// ParseIngredients decodes a fixture. JSON and YAML hold a list of
// {name, measurement_unit} objects; CSV holds "name,unit" rows, and rows
// with any other column count are skipped, as is a leading header row.
// Values are returned as found: trimming and deduplication happen on import.
func ParseIngredients(r io.Reader, format Format) ([]models.Ingredient, error) {
	var records []ingredientRecord
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json fixture: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml fixture: %w", err)
		}
	case FormatCSV:
		var err error
		if records, err = readCSV(r); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	out := make([]models.Ingredient, 0, len(records))
	for _, rec := range records {
		out = append(out, models.Ingredient{Name: rec.Name, MeasurementUnit: rec.MeasurementUnit})
	}
	return out, nil
}

func readCSV(r io.Reader) ([]ingredientRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []ingredientRecord
	for line := 0; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv fixture: %w", err)
		}
		if len(row) != 2 {
			continue
		}
		if line == 0 && isHeader(row) {
			continue
		}
		records = append(records, ingredientRecord{Name: row[0], MeasurementUnit: row[1]})
	}
}

func isHeader(row []string) bool {
	return strings.EqualFold(strings.TrimSpace(row[0]), "name") &&
		strings.EqualFold(strings.TrimSpace(row[1]), "measurement_unit")
}
