package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFilterPerCollection(t *testing.T) {
	amazon := filter("amazon")
	arms, ok := amazon["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, arms, 2)
	assert.Equal(t, bson.M{"Score": bson.M{"$gt": 4}}, arms[0])

	goodreads := filter("goodreads")
	arms, ok = goodreads["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, arms, 2)
	assert.Equal(t, bson.M{"rating": bson.M{"$gte": 3}}, arms[0])
	assert.Equal(t,
		bson.M{"review_text": bson.M{"$regex": "Fantastic|suspense|story", "$options": "i"}},
		arms[1])
}
