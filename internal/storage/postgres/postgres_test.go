package postgres

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidID(t *testing.T) {
	id := uuid.NewString()

	assert.True(t, validID(id))
	assert.True(t, validID(strings.ToUpper(id)))
	assert.False(t, validID("urn:uuid:"+id))
	assert.False(t, validID("{"+id+"}"))
	assert.False(t, validID(strings.ReplaceAll(id, "-", "")))
	assert.False(t, validID("not-an-id"))
	assert.False(t, validID(""))
}
