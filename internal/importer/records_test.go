package importer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		{name: "number", input: `3.5`, wantValid: true, wantValue: 3.5},
		{name: "integer", input: `42`, wantValid: true, wantValue: 42},
		{name: "numeric string", input: `"2"`, wantValid: true, wantValue: 2},
		{name: "numeric string with spaces", input: `" 4.25 "`, wantValid: true, wantValue: 4.25},
		{name: "free-form string", input: `"4-6 servings"`, wantValid: false},
		{name: "empty string", input: `""`, wantValid: false},
		{name: "null", input: `null`, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n OptionalNumber
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.wantValid, n.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.wantValue, n.Value)
			}
		})
	}
}

func TestOptionalNumber_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(OptionalNumber{Valid: true, Value: 2.5})
	require.NoError(t, err)
	assert.Equal(t, "2.5", string(b))

	b, err = json.Marshal(OptionalNumber{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestOptionalNumber_Int(t *testing.T) {
	v, ok := OptionalNumber{Valid: true, Value: 4.9}.Int()
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = OptionalNumber{}.Int()
	assert.False(t, ok)
}

func TestDataset_UnmarshalJSON(t *testing.T) {
	raw := `{
		"users": [{"authorId": 1, "authorName": "alice", "followingUsers": [2]}],
		"recipes": [{"recipeId": 10, "authorId": 1, "name": "Soup", "calories": "250.5", "recipeServings": "4-6 servings"}],
		"reviews": [{"reviewId": 100, "recipeId": 10, "authorId": 1, "rating": 5, "likes": [2]}]
	}`

	var ds Dataset
	require.NoError(t, json.Unmarshal([]byte(raw), &ds))

	require.Len(t, ds.Users, 1)
	assert.Equal(t, []int64{2}, ds.Users[0].FollowingUsers)

	require.Len(t, ds.Recipes, 1)
	assert.True(t, ds.Recipes[0].Calories.Valid)
	assert.Equal(t, 250.5, ds.Recipes[0].Calories.Value)
	assert.False(t, ds.Recipes[0].RecipeServings.Valid)

	require.Len(t, ds.Reviews, 1)
	assert.True(t, ds.Reviews[0].Rating.Valid)
	assert.Equal(t, []int64{2}, ds.Reviews[0].Likes)
}
