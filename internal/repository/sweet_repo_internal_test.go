package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameContains(t *testing.T) {
	clause, pattern := nameContains("postgres", "Éclair 50%")
	assert.Equal(t, `name ILIKE ? ESCAPE '\'`, clause)
	assert.Equal(t, `%Éclair 50\%%`, pattern)

	clause, pattern = nameContains("sqlite", "Fudge_")
	assert.Equal(t, `name LIKE ? ESCAPE '\'`, clause)
	assert.Equal(t, `%Fudge\_%`, pattern)
}
