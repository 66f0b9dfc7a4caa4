package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemValues_SetAndValue(t *testing.T) {
	var v ItemValues

	require.NoError(t, v.Set(key(CategoryText, 1), "red"))
	require.NoError(t, v.Set(key(CategoryMultilineText, 2), "line1\nline2"))
	require.NoError(t, v.Set(key(CategoryDocument, 3), "https://cdn/x.png"))
	require.NoError(t, v.Set(key(CategoryNumeric, 1), "12.50"))
	require.NoError(t, v.Set(key(CategoryNumeric, 2), json.Number("3")))
	require.NoError(t, v.Set(key(CategoryNumeric, 3), 7))
	require.NoError(t, v.Set(key(CategoryBoolean, 1), "Yes"))
	require.NoError(t, v.Set(key(CategoryBoolean, 2), false))

	assert.Equal(t, "red", v.Value(key(CategoryText, 1)))
	assert.Equal(t, "line1\nline2", *v.MultiText[1])
	assert.Equal(t, "https://cdn/x.png", *v.String(key(CategoryDocument, 3)))
	assert.True(t, decimal.RequireFromString("12.5").Equal(*v.Decimal(key(CategoryNumeric, 1))))
	assert.Equal(t, "3", v.Numeric[1].String())
	assert.Equal(t, "7", v.Numeric[2].String())
	assert.Equal(t, true, v.Value(key(CategoryBoolean, 1)))
	assert.Equal(t, false, v.Value(key(CategoryBoolean, 2)))
	assert.Nil(t, v.Value(key(CategoryBoolean, 3)))
	assert.Nil(t, v.Decimal(key(CategoryText, 1)))
}

func TestItemValues_SetClears(t *testing.T) {
	var v ItemValues
	require.NoError(t, v.Set(key(CategoryNumeric, 1), "1"))
	require.NoError(t, v.Set(key(CategoryNumeric, 1), nil))
	assert.Nil(t, v.Numeric[0])

	require.NoError(t, v.Set(key(CategoryBoolean, 1), ""))
	assert.Nil(t, v.Boolean[0])
}

func TestItemValues_SetRejects(t *testing.T) {
	var v ItemValues
	assert.ErrorIs(t, v.Set(key(CategoryNumeric, 1), "abc"), ErrInvalidItemValue)
	assert.ErrorIs(t, v.Set(key(CategoryNumeric, 1), true), ErrInvalidItemValue)
	assert.ErrorIs(t, v.Set(key(CategoryBoolean, 1), "maybe"), ErrInvalidItemValue)
	assert.ErrorIs(t, v.Set(key(CategoryText, 1), 5), ErrInvalidItemValue)
	assert.ErrorIs(t, v.Set(SlotKey{Category: CategoryText, Index: 0}, "x"), ErrInvalidFieldConfiguration)
}
