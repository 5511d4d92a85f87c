package pkid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringOf_IntegerAndStringCollide(t *testing.T) {
	a, err := StringOf(int64(1))
	assert.NoError(t, err)
	b, err := StringOf("1")
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"":     false,
		"null": false,
		"0":    false,
		"5":    true,
		"abc":  true,
	}
	for in, want := range cases {
		assert.Equal(t, want, Valid(in), in)
	}
}
