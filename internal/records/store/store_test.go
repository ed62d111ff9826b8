package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgv/pkg/platform/sentinel"
)

func TestRenumber(t *testing.T) {
	sqlOut, next := renumber("active = $?", 1)
	assert.Equal(t, "active = $1", sqlOut)
	assert.Equal(t, 2, next)

	sqlOut, next = renumber("a = $? AND b = $?", 3)
	assert.Equal(t, "a = $3 AND b = $4", sqlOut)
	assert.Equal(t, 5, next)

	sqlOut, next = renumber("no placeholders", 7)
	assert.Equal(t, "no placeholders", sqlOut)
	assert.Equal(t, 7, next)
}

func TestBuildWhere(t *testing.T) {
	where, args, next := buildWhere(nil, 1)
	assert.Equal(t, " WHERE deleted_at IS NULL", where)
	assert.Empty(t, args)
	assert.Equal(t, 1, next)

	where, args, next = buildWhere([]Cond{
		{SQL: "active = $?", Args: []any{true}},
		{SQL: "district_code = $?", Args: []any{"NORD"}},
	}, 1)
	assert.Equal(t, " WHERE deleted_at IS NULL AND (active = $1) AND (district_code = $2)", where)
	assert.Equal(t, []any{true, "NORD"}, args)
	assert.Equal(t, 3, next)
}

func TestPlaceholderRow(t *testing.T) {
	assert.Equal(t, "($1, $2, $3)", placeholderRow(1, 3))
	assert.Equal(t, "($4, $5)", placeholderRow(4, 2))
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", nullString("x"))
}

func TestTranslate(t *testing.T) {
	require.ErrorIs(t, translate(sql.ErrNoRows), sentinel.ErrNotFound)

	err := translateCode(assert.AnError, "23505", "uq_applications_file_reference")
	require.ErrorIs(t, err, sentinel.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "uq_applications_file_reference")

	require.ErrorIs(t, translateCode(assert.AnError, "23503", "fk"), sentinel.ErrForeignKey)
	require.ErrorIs(t, translateCode(assert.AnError, "40001", ""), sentinel.ErrConcurrencyConflict)

	// Unknown codes pass the original error through untouched.
	assert.Equal(t, assert.AnError, translateCode(assert.AnError, "55P03", ""))
	assert.Equal(t, assert.AnError, translate(assert.AnError))
}
