package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/tests/testutil"
	"github.com/kendall-kelly/box-erp-api/workflow"
)

func setupServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewTestDB(t).DB
}

func testHasher() *BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func newTestResources(t *testing.T, db *gorm.DB) *Resources {
	t.Helper()
	resources, err := NewResources(db, testHasher())
	require.NoError(t, err)
	return resources
}

func newTestOrderService(t *testing.T, db *gorm.DB, strict bool) *OrderService {
	t.Helper()
	engine, err := workflow.Default(strict)
	require.NoError(t, err)
	orders, err := NewOrderService(db, engine, testutil.DiscardLogger())
	require.NoError(t, err)
	return orders
}

// patchOf builds a Patch from plain values.
func patchOf(t *testing.T, fields map[string]any) Patch {
	t.Helper()
	patch := make(Patch, len(fields))
	for key, value := range fields {
		raw, err := json.Marshal(value)
		require.NoError(t, err)
		patch[key] = raw
	}
	return patch
}
