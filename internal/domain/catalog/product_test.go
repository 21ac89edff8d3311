package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/inventa/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("  Widget ", "wid01", decimal.RequireFromString("9.999"), 3)
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.Equal(t, "Widget", product.Name)
		assert.Equal(t, "wid01", product.Code)
		assert.Equal(t, "10", product.Price.String())
		assert.Equal(t, int64(3), product.Quantity)
		assert.Zero(t, product.ID)
		assert.False(t, product.IsTrashed())
		assert.False(t, product.CreatedAt.IsZero())
	})

	t.Run("allows empty code", func(t *testing.T) {
		product, err := NewProduct("Widget", "", decimal.Zero, 0)
		require.NoError(t, err)
		assert.Empty(t, product.Code)
	})

	t.Run("collects every invalid field", func(t *testing.T) {
		_, err := NewProduct(" ", strings.Repeat("c", 256), decimal.NewFromInt(-1), -5)
		require.Error(t, err)

		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		fields := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"name", "code", "price", "quantity"}, fields)
	})

	t.Run("rejects name longer than 255 characters", func(t *testing.T) {
		_, err := NewProduct(strings.Repeat("n", 256), "", decimal.Zero, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name: cannot exceed 255 characters")
	})
}

func TestProduct_Update(t *testing.T) {
	product, err := NewProduct("Widget", "wid01", decimal.NewFromInt(5), 1)
	require.NoError(t, err)
	before := product.UpdatedAt

	t.Run("replaces attributes and keeps code when empty", func(t *testing.T) {
		time.Sleep(time.Millisecond)
		require.NoError(t, product.Update("Gadget", "", decimal.RequireFromString("7.5"), 9))

		assert.Equal(t, "Gadget", product.Name)
		assert.Equal(t, "wid01", product.Code)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("7.50")))
		assert.Equal(t, int64(9), product.Quantity)
		assert.True(t, product.UpdatedAt.After(before))
	})

	t.Run("replaces code when given", func(t *testing.T) {
		require.NoError(t, product.Update("Gadget", " gad01 ", decimal.Zero, 0))
		assert.Equal(t, "gad01", product.Code)
	})

	t.Run("leaves product untouched on validation failure", func(t *testing.T) {
		err := product.Update("", "", decimal.Zero, -1)
		require.Error(t, err)
		assert.Equal(t, "Gadget", product.Name)
		assert.Equal(t, int64(0), product.Quantity)
	})
}

func TestProduct_Snapshot(t *testing.T) {
	product, err := NewProduct("Widget", "wid01", decimal.RequireFromString("3.1"), 4)
	require.NoError(t, err)
	product.ID = 42

	snap := product.Snapshot()
	assert.Equal(t, uint64(42), snap["id"])
	assert.Equal(t, "Widget", snap["name"])
	assert.Equal(t, "wid01", snap["code"])
	assert.Equal(t, "3.10", snap["price"])
	assert.Equal(t, int64(4), snap["quantity"])
	assert.Nil(t, snap["deleted_at"])

	deleted := time.Now()
	product.DeletedAt = &deleted
	assert.Equal(t, deleted, product.Snapshot()["deleted_at"])
}

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		name string
		base string
		seq  int
		want string
	}{
		{"first code", "wid", 1, "wid01"},
		{"normalizes base", "  WiD ", 2, "wid02"},
		{"grows past two digits", "wid", 121, "wid121"},
		{"empty base", "   ", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateCode(tt.base, tt.seq))
		})
	}
}

func TestCodeSequence(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		code   string
		want   int
		wantOK bool
	}{
		{"generated code", "wid", "wid07", 7, true},
		{"three digits", "wid", "wid121", 121, true},
		{"case is ignored", "wid", "WID05", 5, true},
		{"other word with the same prefix", "wid", "widget", 0, false},
		{"letters after the digits", "wid", "wid01a", 0, false},
		{"single digit is not generated", "wid", "wid1", 0, false},
		{"bare base", "wid", "wid", 0, false},
		{"different base", "wid", "gad01", 0, false},
		{"empty base", "", "01", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CodeSequence(tt.base, tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
