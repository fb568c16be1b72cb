package database

import (
	"testing"

	modelspkg "foodgram/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesRelationTables(t *testing.T) {
	var haveRelation, haveSubscription bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.RecipeRelation:
			haveRelation = true
		case *modelspkg.Subscription:
			haveSubscription = true
		}
	}
	require.True(t, haveRelation, "PersistentModels should include RecipeRelation")
	require.True(t, haveSubscription, "PersistentModels should include Subscription")
}
