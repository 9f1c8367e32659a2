package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open("")
	assert.EqualError(t, err, "empty mysql DSN")
}

func TestNormalize(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "mysql", d.Name())
	assert.Equal(t, "Juan", d.Normalize("TEXT", []byte("Juan")))
	assert.Equal(t, "25.0000", d.Normalize("DECIMAL", []byte("25.0000")))
	assert.Equal(t, int64(3), d.Normalize("BIGINT", int64(3)))
}
