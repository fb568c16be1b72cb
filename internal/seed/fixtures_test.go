package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredients(t *testing.T) {
	want := []models.Ingredient{
		{Name: "абрикосовое варенье", MeasurementUnit: "г"},
		{Name: "яйца", MeasurementUnit: "шт"},
	}

	tests := []struct {
		name   string
		format Format
		input  string
		want   []models.Ingredient
	}{
		{
			name:   "json",
			format: FormatJSON,
			input:  `[{"name":"абрикосовое варенье","measurement_unit":"г"},{"name":"яйца","measurement_unit":"шт"}]`,
			want:   want,
		},
		{
			name:   "yaml",
			format: FormatYAML,
			input:  "- name: абрикосовое варенье\n  measurement_unit: г\n- name: яйца\n  measurement_unit: шт\n",
			want:   want,
		},
		{
			name:   "csv",
			format: FormatCSV,
			input:  "абрикосовое варенье,г\nяйца,шт\n",
			want:   want,
		},
		{
			name:   "csv header and odd rows skipped",
			format: FormatCSV,
			input:  "name,measurement_unit\nабрикосовое варенье,г\nbroken\nтри,поля,тут\nяйца,шт\n",
			want:   want,
		},
		{
			name:   "empty yaml",
			format: FormatYAML,
			input:  "",
			want:   []models.Ingredient{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIngredients(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIngredients_Errors(t *testing.T) {
	_, err := ParseIngredients(strings.NewReader(`{"name":`), FormatJSON)
	assert.Error(t, err)

	_, err = ParseIngredients(strings.NewReader("a,b"), Format("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"data/ingredients.json": FormatJSON,
		"INGREDIENTS.CSV":       FormatCSV,
		"a.yml":                 FormatYAML,
		"a.yaml":                FormatYAML,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("ingredients.txt")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadIngredientsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingredients.csv")
	require.NoError(t, os.WriteFile(path, []byte(" соль , г\n"), 0o600))

	got, err := LoadIngredientsFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "соль ", got[0].Name)
	assert.Equal(t, "г", got[0].MeasurementUnit)

	_, err = LoadIngredientsFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
