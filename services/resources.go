package services

import (
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/models"
)

// Resources groups the plain CRUD services.
type Resources struct {
	Customers *Resource[models.Customer]
	Products  *Resource[models.Product]
	Molds     *Resource[models.ProductMold]
	Personnel *Resource[models.Personnel]
	Machines  *Resource[models.Machine]
	Shifts    *Resource[models.Shift]
	Roles     *Resource[models.Role]
	Users     *Resource[models.User]
	Stock     *Resource[models.StockItem]
	Messages  *Resource[models.Message]
	Plans     *Resource[models.MonthlyPlan]
}

// NewResources builds every CRUD resource over db.
func NewResources(db *gorm.DB, hasher PasswordHasher) (*Resources, error) {
	var (
		r   Resources
		err error
	)

	if r.Customers, err = NewResource[models.Customer](db, ResourceSpec{
		Name:    "customer",
		Filters: []string{"city", "taxNumber"},
		Search:  []string{"name", "company_name", "contact_person", "email", "phone"},
		Sort:    "name ASC",
	}); err != nil {
		return nil, err
	}

	if r.Products, err = NewResource[models.Product](db, ResourceSpec{
		Name:    "product",
		Filters: []string{"customerId", "boxType", "code"},
		Search:  []string{"name", "code", "customer_name"},
	}); err != nil {
		return nil, err
	}

	if r.Molds, err = NewResource[models.ProductMold](db, ResourceSpec{
		Name:    "mold",
		Filters: []string{"boxType", "shape"},
		Search:  []string{"name"},
		Sort:    "box_type ASC, length ASC, width ASC, height ASC",
	}); err != nil {
		return nil, err
	}

	if r.Personnel, err = NewResource[models.Personnel](db, ResourceSpec{
		Name:    "personnel",
		Filters: []string{"department", "active"},
		Search:  []string{"first_name", "last_name", "position"},
		Sort:    "first_name ASC, last_name ASC",
	}); err != nil {
		return nil, err
	}

	if r.Machines, err = NewResource[models.Machine](db, ResourceSpec{
		Name:    "machine",
		Filters: []string{"status", "machineType"},
		Search:  []string{"name", "code"},
		Sort:    "name ASC",
	}); err != nil {
		return nil, err
	}

	if r.Shifts, err = NewResource[models.Shift](db, ResourceSpec{
		Name:    "shift",
		Filters: []string{"personnelId", "machineId", "date", "shiftType"},
		Sort:    "date ASC, start_time ASC",
	}); err != nil {
		return nil, err
	}

	if r.Roles, err = NewResource[models.Role](db, ResourceSpec{
		Name:    "role",
		Filters: []string{"name"},
		Sort:    "name ASC",
	}); err != nil {
		return nil, err
	}

	if r.Users, err = NewResource[models.User](db, ResourceSpec{
		Name:    "user",
		Filters: []string{"roleId", "active", "username"},
		Search:  []string{"username", "full_name", "email"},
		Sort:    "username ASC",
	}); err != nil {
		return nil, err
	}
	r.Users.OnCreate(func(user *models.User) error {
		return hashUserPassword(hasher, user)
	}).OnPatch(func(patch Patch, values map[string]any) error {
		var password string
		ok, err := patch.Decode("password", &password)
		if err != nil || !ok {
			return err
		}
		if password == "" {
			return Invalid("INVALID_PASSWORD", "password must not be empty")
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		values["password_hash"] = hash
		return nil
	})

	if r.Stock, err = NewResource[models.StockItem](db, ResourceSpec{
		Name:    "stock item",
		Filters: []string{"productId", "orderId", "movementType", "stockNumber"},
		Search:  []string{"product_name", "stock_number"},
	}); err != nil {
		return nil, err
	}

	if r.Messages, err = NewResource[models.Message](db, ResourceSpec{
		Name:    "message",
		Filters: []string{"orderId", "senderId", "receiverId", "isRead"},
		Scopes: map[string]Scope{
			"userId": func(tx *gorm.DB, userID string) *gorm.DB {
				return tx.Where("(sender_id = ? OR receiver_id = ?)", userID, userID)
			},
		},
		Search: []string{"subject", "content"},
	}); err != nil {
		return nil, err
	}

	if r.Plans, err = NewResource[models.MonthlyPlan](db, ResourceSpec{
		Name:    "plan",
		Filters: []string{"year", "month", "machineId"},
		Sort:    "year DESC, month DESC",
	}); err != nil {
		return nil, err
	}

	return &r, nil
}

func hashUserPassword(hasher PasswordHasher, user *models.User) error {
	if user.Username == "" {
		return Invalid("VALIDATION_ERROR", "username is required")
	}
	if user.Password == "" {
		return Invalid("INVALID_PASSWORD", "password is required")
	}
	hash, err := hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Password = ""
	return nil
}
