package postgres

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
)

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open("")
	assert.EqualError(t, err, "empty postgres DSN")
}

func TestDialect(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "postgres", d.Name())
	assert.Equal(t, "pgx", d.DriverName())

	sqlStr, _, err := sq.Select("x").From("t").Where(sq.Eq{"a": 1}).PlaceholderFormat(d.Placeholder()).ToSql()
	assert.NoError(t, err)
	assert.Equal(t, "SELECT x FROM t WHERE a = $1", sqlStr)
}

func TestNormalize(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "25.0000000000000000", d.Normalize("NUMERIC", []byte("25.0000000000000000")))
	assert.Equal(t, "2024-01-02T03:04:05Z", d.Normalize("TIMESTAMPTZ", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Nil(t, d.Normalize("TEXT", nil))
}
