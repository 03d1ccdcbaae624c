package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/box-erp-api/models"
)

func TestResourceCreateAndGet(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()

	customer := models.Customer{Name: "Anadolu Gıda", City: "İstanbul"}
	require.NoError(t, resources.Customers.Create(ctx, &customer))
	assert.NotEmpty(t, customer.ID)

	loaded, err := resources.Customers.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anadolu Gıda", loaded.Name)

	_, err = resources.Customers.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourceCreateDuplicateIDConflicts(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()

	require.NoError(t, resources.Customers.Create(ctx, &models.Customer{Base: models.Base{ID: "C1"}, Name: "A"}))
	err := resources.Customers.Create(ctx, &models.Customer{Base: models.Base{ID: "C1"}, Name: "B"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestResourceListFiltersSearchAndSort(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()

	for _, c := range []models.Customer{
		{Name: "Beta Ambalaj", City: "İzmir", Email: "info@beta.example"},
		{Name: "Alfa Gıda", City: "İstanbul"},
		{Name: "Gama Pasta", City: "İstanbul"},
	} {
		c := c
		require.NoError(t, resources.Customers.Create(ctx, &c))
	}

	all, err := resources.Customers.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alfa Gıda", all[0].Name, "default sort is by name")

	istanbul, err := resources.Customers.List(ctx, ListQuery{Params: map[string]string{"city": "İstanbul"}})
	require.NoError(t, err)
	assert.Len(t, istanbul, 2)

	searched, err := resources.Customers.List(ctx, ListQuery{Search: "beta"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Beta Ambalaj", searched[0].Name)

	desc, err := resources.Customers.List(ctx, ListQuery{Sort: "name", Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Gama Pasta", desc[0].Name)

	limited, err := resources.Customers.List(ctx, ListQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Beta Ambalaj", limited[0].Name)
}

func TestResourceListIgnoresUnknownSortAndParams(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()
	require.NoError(t, resources.Customers.Create(ctx, &models.Customer{Name: "A"}))

	items, err := resources.Customers.List(ctx, ListQuery{
		Sort:   "name; DROP TABLE customers",
		Params: map[string]string{"password": "x"},
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestResourceListBoolFilter(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()

	require.NoError(t, resources.Personnel.Create(ctx, &models.Personnel{FirstName: "Ali", Active: true}))
	require.NoError(t, resources.Personnel.Create(ctx, &models.Personnel{FirstName: "Veli", Active: false}))

	active, err := resources.Personnel.List(ctx, ListQuery{Params: map[string]string{"active": "true"}})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ali", active[0].FirstName)

	_, err = resources.Personnel.List(ctx, ListQuery{Params: map[string]string{"active": "maybe"}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResourcePatch(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()

	product := models.Product{Name: "Kutu", Code: "K-1"}
	require.NoError(t, resources.Products.Create(ctx, &product))

	updated, err := resources.Products.Patch(ctx, product.ID, patchOf(t, map[string]any{
		"name":       "Kilitli Kutu",
		"unitPrice":  4.5,
		"dimensions": map[string]any{"length": 200, "width": 150, "height": 100, "unit": "mm"},
		"images":     []string{"/uploads/products/a.png"},
		"id":         "hijacked",
		"unknown":    "ignored",
	}))
	require.NoError(t, err)

	assert.Equal(t, product.ID, updated.ID)
	assert.Equal(t, "Kilitli Kutu", updated.Name)
	assert.Equal(t, "K-1", updated.Code, "fields absent from the patch are kept")
	assert.Equal(t, "4.5", updated.UnitPrice.String())
	assert.Equal(t, float64(150), updated.Dimensions.Data().Width)
	assert.Equal(t, []string{"/uploads/products/a.png"}, []string(updated.Images))

	_, err = resources.Products.Get(ctx, "hijacked")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourcePatchRejectsBadTypes(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()

	machine := models.Machine{Name: "Kesim"}
	require.NoError(t, resources.Machines.Create(ctx, &machine))

	_, err := resources.Machines.Patch(ctx, machine.ID, patchOf(t, map[string]any{"capacityPerHour": "fast"}))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "INVALID_FIELD", validationErr.Code)

	_, err = resources.Machines.Patch(ctx, "missing", patchOf(t, map[string]any{"name": "x"}))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourceDelete(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()

	shift := models.Shift{Date: "2024-05-01", ShiftType: "gündüz"}
	require.NoError(t, resources.Shifts.Create(ctx, &shift))

	require.NoError(t, resources.Shifts.Delete(ctx, shift.ID))
	assert.ErrorIs(t, resources.Shifts.Delete(ctx, shift.ID), ErrNotFound)
}

func TestUsersHashPasswords(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	hasher := testHasher()
	ctx := context.Background()

	user := models.User{Username: "ayse", Password: "s3cret", Active: true}
	require.NoError(t, resources.Users.Create(ctx, &user))
	assert.Empty(t, user.Password)
	require.NoError(t, hasher.Compare(user.PasswordHash, "s3cret"))

	updated, err := resources.Users.Patch(ctx, user.ID, patchOf(t, map[string]any{"password": "n3w", "fullName": "Ayşe Y."}))
	require.NoError(t, err)
	assert.Equal(t, "Ayşe Y.", updated.FullName)
	require.NoError(t, hasher.Compare(updated.PasswordHash, "n3w"))

	_, err = resources.Users.Patch(ctx, user.ID, patchOf(t, map[string]any{"password": ""}))
	assert.ErrorIs(t, err, ErrValidation)

	err = resources.Users.Create(ctx, &models.User{Username: "nopass"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMessagesUserScope(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	ctx := context.Background()

	for _, m := range []models.Message{
		{SenderID: "u1", ReceiverID: "u2", Content: "a"},
		{SenderID: "u2", ReceiverID: "u1", Content: "b"},
		{SenderID: "u2", ReceiverID: "u3", Content: "c"},
	} {
		m := m
		require.NoError(t, resources.Messages.Create(ctx, &m))
	}

	mine, err := resources.Messages.List(ctx, ListQuery{Params: map[string]string{"userId": "u1"}})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	sent, err := resources.Messages.List(ctx, ListQuery{Params: map[string]string{"senderId": "u2"}})
	require.NoError(t, err)
	assert.Len(t, sent, 2)
}

func TestNewResourceRejectsUnknownFilter(t *testing.T) {
	db := setupServicesTestDB(t)

	_, err := NewResource[models.Customer](db, ResourceSpec{Name: "customer", Filters: []string{"nope"}})
	assert.ErrorContains(t, err, "unknown filter field")
}
