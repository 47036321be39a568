package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates product with valid input", func(t *testing.T) {
		product, err := NewProduct(tenantID, "crm-pro", "CRM Pro License", decimal.NewFromInt(499), "usd")

		require.NoError(t, err)
		assert.Equal(t, "CRM-PRO", product.Code)
		assert.Equal(t, "USD", product.Currency)
		assert.True(t, product.IsActive)
		assert.True(t, product.UnitPrice.Equal(decimal.NewFromInt(499)))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct(tenantID, "crm-pro", "CRM Pro License", decimal.NewFromInt(-1), "USD")
		require.Error(t, err)
	})

	t.Run("rejects invalid code", func(t *testing.T) {
		_, err := NewProduct(tenantID, "crm pro!", "CRM Pro License", decimal.Zero, "USD")
		require.Error(t, err)
	})

	t.Run("rejects invalid currency", func(t *testing.T) {
		_, err := NewProduct(tenantID, "crm-pro", "CRM Pro License", decimal.Zero, "dollars")
		require.Error(t, err)
	})
}

func TestProductLifecycle(t *testing.T) {
	tenantID := uuid.New()

	t.Run("deactivate and activate", func(t *testing.T) {
		product, err := NewProduct(tenantID, "crm-pro", "CRM Pro License", decimal.NewFromInt(499), "USD")
		require.NoError(t, err)

		require.NoError(t, product.Deactivate())
		assert.False(t, product.IsActive)
		require.Error(t, product.Deactivate())

		require.NoError(t, product.Activate())
		assert.True(t, product.IsActive)
	})

	t.Run("set price", func(t *testing.T) {
		product, err := NewProduct(tenantID, "crm-pro", "CRM Pro License", decimal.NewFromInt(499), "USD")
		require.NoError(t, err)

		require.NoError(t, product.SetPrice(decimal.NewFromFloat(549.99), "eur"))
		assert.Equal(t, "EUR", product.Currency)
		assert.True(t, product.UnitPrice.Equal(decimal.NewFromFloat(549.99)))
	})
}
