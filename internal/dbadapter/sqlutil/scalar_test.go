package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertScalar_AttemptOrder(t *testing.T) {
	v, present := ConvertScalar("age", false, []byte("42"))
	assert.True(t, present)
	assert.Equal(t, int64(42), v)

	v, present = ConvertScalar("ratio", false, []byte("3.5"))
	assert.True(t, present)
	assert.Equal(t, 3.5, v)

	v, present = ConvertScalar("name", false, []byte("hello"))
	assert.True(t, present)
	assert.Equal(t, "hello", v)

	v, present = ConvertScalar("blob", false, []byte{0xff, 0x00, 0xfe, 0x01})
	assert.True(t, present)
	assert.Equal(t, "BLOB(4)", v)
}

func TestConvertScalar_NullCoercion(t *testing.T) {
	v, present := ConvertScalar("note", false, nil)
	assert.False(t, present)
	assert.Nil(t, v)

	v, present = ConvertScalar("pk", true, nil)
	assert.True(t, present)
	assert.Equal(t, int64(0), v)

	v, present = ConvertScalar("id", false, nil)
	assert.True(t, present)
	assert.Equal(t, int64(0), v)
}

func TestConvertScalar_NativeTypesPassThrough(t *testing.T) {
	v, present := ConvertScalar("active", false, true)
	assert.True(t, present)
	assert.Equal(t, true, v)

	v, present = ConvertScalar("count", false, int64(7))
	assert.True(t, present)
	assert.Equal(t, int64(7), v)
}
