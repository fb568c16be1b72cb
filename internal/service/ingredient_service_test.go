package service

import (
	"context"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientService_Import(t *testing.T) {
	repo := newIngredientRepoStub()
	svc := NewIngredientService(repo)

	res, err := svc.Import(context.Background(), []models.Ingredient{
		{Name: "  salt ", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g "},
		{Name: "salt", MeasurementUnit: "kg"},
		{Name: "", MeasurementUnit: "g"},
		{Name: "pepper", MeasurementUnit: "  "},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Received)
	assert.Equal(t, 3, res.Skipped)
	assert.EqualValues(t, 2, res.Inserted)
	assert.Equal(t, []models.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "kg"},
	}, repo.inserted)
}

func TestIngredientService_ListWithoutCache(t *testing.T) {
	svc := NewIngredientService(newIngredientRepoStub())

	items, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = svc.Get(context.Background(), 5)
	assertCode(t, err, models.CodeNotFound)
}
