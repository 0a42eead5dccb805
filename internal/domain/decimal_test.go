package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecimalFromString(t *testing.T) {
	d, err := NewDecimalFromString("123.45")
	require.NoError(t, err)
	assert.Equal(t, "123.45", d.String())

	_, err = NewDecimalFromString("not-a-number")
	assert.Error(t, err)
}

func TestNewDecimalFromFloat(t *testing.T) {
	d, err := NewDecimalFromFloat(19.99)
	require.NoError(t, err)

	f, err := d.Float64()
	require.NoError(t, err)
	assert.InDelta(t, 19.99, f, 0.0001)
}

func TestDecimalArithmetic(t *testing.T) {
	a, err := NewDecimalFromString("10.50")
	require.NoError(t, err)
	b, err := NewDecimalFromString("2.50")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "13.00", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "8.00", diff.String())

	product, err := a.Mul(b)
	require.NoError(t, err)
	assert.Equal(t, "26.2500", product.String())

	quotient, err := a.Div(b)
	require.NoError(t, err)
	assert.Equal(t, "4.2", quotient.String())
}

func TestDecimalDivByZero(t *testing.T) {
	a := NewDecimalFromInt(10)
	_, err := a.Div(Zero)
	assert.Error(t, err)
}

func TestDecimalCompare(t *testing.T) {
	a := NewDecimalFromInt(5)
	b := NewDecimalFromInt(7)

	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.True(t, a.Equal(a))
	assert.True(t, Zero.IsZero())
}

func TestDecimalRound(t *testing.T) {
	d, err := NewDecimalFromString("3.14159")
	require.NoError(t, err)

	rounded, err := d.Round(2)
	require.NoError(t, err)
	assert.Equal(t, "3.14", rounded.String())

	up, err := NewDecimalFromString("2.675")
	require.NoError(t, err)
	rounded, err = up.Round(2)
	require.NoError(t, err)
	assert.Equal(t, "2.68", rounded.String())
}

func TestDecimalScan(t *testing.T) {
	var d Decimal
	require.NoError(t, d.Scan("42.42"))
	assert.Equal(t, "42.42", d.String())

	require.NoError(t, d.Scan([]byte("7.77")))
	assert.Equal(t, "7.77", d.String())

	require.NoError(t, d.Scan(int64(3)))
	assert.Equal(t, "3", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(true))
}

func TestDecimalValue(t *testing.T) {
	d, err := NewDecimalFromString("99.95")
	require.NoError(t, err)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "99.95", v)
}

func TestDecimalUnmarshalJSON(t *testing.T) {
	var d Decimal
	require.NoError(t, d.UnmarshalJSON([]byte(`"12.34"`)))
	assert.Equal(t, "12.34", d.String())

	require.NoError(t, d.UnmarshalJSON([]byte(`56.78`)))
	assert.Equal(t, "56.78", d.String())
}
