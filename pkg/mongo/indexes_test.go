package mongo_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	driver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/planmeter/pkg/mongo"
)

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	dup := driver.WriteException{
		WriteErrors: []driver.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, mongo.IsDuplicateKeyError(dup))
	assert.False(t, mongo.IsDuplicateKeyError(errors.New("boom")))
	assert.False(t, mongo.IsDuplicateKeyError(nil))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, mongo.IsNotFound(fmt.Errorf("find: %w", driver.ErrNoDocuments)))
	assert.False(t, mongo.IsNotFound(errors.New("other")))
}
