package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/models"
	"github.com/kendall-kelly/box-erp-api/workflow"
)

// ResetConfirmation must be sent verbatim to wipe operational data.
const ResetConfirmation = "SIFIRLA"

// ResetTables are wiped by ResetData, children before parents.
// Customers, personnel, roles, users, settings, molds and migrations are kept.
var ResetTables = []string{
	"notifications",
	"messages",
	"stock_items",
	"monthly_plans",
	"shifts",
	"orders",
	"machines",
	"products",
	"error_logs",
}

// AdminService runs bulk maintenance operations.
type AdminService struct {
	db     *gorm.DB
	hasher PasswordHasher
	log    *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(db *gorm.DB, hasher PasswordHasher, log *slog.Logger) *AdminService {
	return &AdminService{db: db, hasher: hasher, log: log}
}

// ResetData deletes operational data in one transaction and returns rows removed per table.
func (s *AdminService) ResetData(ctx context.Context, confirmation string) (map[string]int64, error) {
	if confirmation != ResetConfirmation {
		return nil, Invalid("CONFIRMATION_REQUIRED", "confirmation must be %q", ResetConfirmation)
	}

	deleted := make(map[string]int64, len(ResetTables))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deferForeignKeys(tx); err != nil {
			return err
		}
		for _, table := range ResetTables {
			result := tx.Exec("DELETE FROM " + table)
			if result.Error != nil {
				return fmt.Errorf("failed to clear %s: %w", table, result.Error)
			}
			deleted[table] = result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Warn("operational data reset", slog.Any("deleted", deleted))
	return deleted, nil
}

// deferForeignKeys postpones constraint checks to commit.
func deferForeignKeys(tx *gorm.DB) error {
	switch tx.Dialector.Name() {
	case "sqlite":
		return tx.Exec("PRAGMA defer_foreign_keys = ON").Error
	case "postgres":
		return tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error
	default:
		return nil
	}
}

// SeedSummary counts what SeedTestData touched.
type SeedSummary struct {
	Roles     int `json:"roles"`
	Users     int `json:"users"`
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Personnel int `json:"personnel"`
	Machines  int `json:"machines"`
	Orders    int `json:"orders"`
}

// DemoPassword is the password of seeded demo users.
const DemoPassword = "demo1234"

// SeedTestData inserts a demo data set. Rows that already exist are left alone.
func (s *AdminService) SeedTestData(ctx context.Context) (*SeedSummary, error) {
	hash, err := s.hasher.Hash(DemoPassword)
	if err != nil {
		return nil, err
	}

	summary := &SeedSummary{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roleNames := []string{
			workflow.RoleAdmin,
			workflow.RoleGeneralMgr,
			"Satış",
			workflow.RoleDesign,
			workflow.RoleSupply,
			workflow.RolePrinting,
			workflow.RoleProduction,
			workflow.RoleAccounting,
			workflow.RoleShipping,
		}
		roles := make(map[string]models.Role, len(roleNames))
		for _, name := range roleNames {
			var role models.Role
			if err := tx.Where(models.Role{Name: name}).
				Attrs(models.Role{Permissions: datatypes.JSONSlice[string]{"orders"}}).
				FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}
			roles[name] = role
			summary.Roles++
		}

		users := []models.User{
			{Base: models.Base{ID: "demo-user-admin"}, Username: "admin", FullName: "Sistem Yöneticisi", RoleID: roles[workflow.RoleAdmin].ID, Active: true, PasswordHash: hash},
			{Base: models.Base{ID: "demo-user-sales"}, Username: "satis", FullName: "Satış Temsilcisi", RoleID: roles["Satış"].ID, Active: true, PasswordHash: hash},
			{Base: models.Base{ID: "demo-user-design"}, Username: "tasarim", FullName: "Grafik Tasarımcı", RoleID: roles[workflow.RoleDesign].ID, Active: true, PasswordHash: hash},
		}
		for i := range users {
			if err := firstOrCreate(tx, &users[i], "username = ?", users[i].Username); err != nil {
				return err
			}
			summary.Users++
		}

		customers := []models.Customer{
			{Base: models.Base{ID: "demo-cust-1"}, Name: "Anadolu Gıda", CompanyName: "Anadolu Gıda A.Ş.", City: "İstanbul", ContactPerson: "Mehmet Kaya", Phone: "0212 555 10 10"},
			{Base: models.Base{ID: "demo-cust-2"}, Name: "Ege Pastanesi", CompanyName: "Ege Pastacılık Ltd.", City: "İzmir", ContactPerson: "Zeynep Ak", Phone: "0232 555 20 20"},
		}
		for i := range customers {
			if err := firstOrCreate(tx, &customers[i], "id = ?", customers[i].ID); err != nil {
				return err
			}
			summary.Customers++
		}

		products := []models.Product{
			{
				Base: models.Base{ID: "demo-prod-1"}, Code: "KT-001", Name: "Kilitli Dip Kutu",
				CustomerID: customers[0].ID, CustomerName: customers[0].Name, BoxType: "kilitli_dip",
				Dimensions: datatypes.NewJSONType(models.Dimensions{Length: 200, Width: 150, Height: 100, Unit: "mm"}),
				Features:   datatypes.NewJSONType(models.ProductFeatures{Material: "kraft", Flute: "E", PrintColors: 2}),
				UnitPrice:  decimal.RequireFromString("4.75"), Currency: "TRY",
			},
			{
				Base: models.Base{ID: "demo-prod-2"}, Code: "PZ-033", Name: "Pizza Kutusu 33cm",
				CustomerID: customers[1].ID, CustomerName: customers[1].Name, BoxType: "pizza",
				Dimensions: datatypes.NewJSONType(models.Dimensions{Length: 330, Width: 330, Height: 40, Unit: "mm"}),
				Features:   datatypes.NewJSONType(models.ProductFeatures{Material: "oluklu", Flute: "B", PrintColors: 1}),
				UnitPrice:  decimal.RequireFromString("3.10"), Currency: "TRY",
			},
		}
		for i := range products {
			if err := firstOrCreate(tx, &products[i], "id = ?", products[i].ID); err != nil {
				return err
			}
			summary.Products++
		}

		personnel := []models.Personnel{
			{Base: models.Base{ID: "demo-pers-1"}, FirstName: "Ali", LastName: "Demir", Department: "Üretim", Position: "Operatör", Active: true},
			{Base: models.Base{ID: "demo-pers-2"}, FirstName: "Ayşe", LastName: "Yılmaz", Department: "Tasarım", Position: "Tasarımcı", Active: true},
		}
		for i := range personnel {
			if err := firstOrCreate(tx, &personnel[i], "id = ?", personnel[i].ID); err != nil {
				return err
			}
			summary.Personnel++
		}

		machines := []models.Machine{
			{Base: models.Base{ID: "demo-mach-1"}, Name: "Kesim Makinesi", Code: "M-01", MachineType: "kesim", Status: "active", CapacityPerHour: 1200},
			{Base: models.Base{ID: "demo-mach-2"}, Name: "Baskı Makinesi", Code: "M-02", MachineType: "baski", Status: "active", CapacityPerHour: 800},
		}
		for i := range machines {
			if err := firstOrCreate(tx, &machines[i], "id = ?", machines[i].ID); err != nil {
				return err
			}
			summary.Machines++
		}

		order := models.Order{
			Base:         models.Base{ID: "demo-order-1"},
			CustomerID:   customers[0].ID,
			CustomerName: customers[0].Name,
			Currency:     "TRY",
			Status:       workflow.InitialStatus,
			Items: models.LineItems{{
				ProductID:   products[0].ID,
				ProductName: products[0].Name,
				Quantity:    decimal.NewFromInt(1000),
				UnitPrice:   products[0].UnitPrice,
				VatRate:     decimal.NewFromInt(20),
			}},
		}
		order.ComputeLineTotals()
		order.ComputeTotals()
		if err := firstOrCreate(tx, &order, "id = ?", order.ID); err != nil {
			return err
		}
		summary.Orders++

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("demo data seeded", slog.Any("summary", summary))
	return summary, nil
}

// firstOrCreate inserts row unless a row matches the condition.
func firstOrCreate[T any](tx *gorm.DB, row *T, query string, args ...any) error {
	var count int64
	if err := tx.Model(new(T)).Where(query, args...).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := tx.Create(row).Error; err != nil {
		return fmt.Errorf("seed %T: %w", row, err)
	}
	return nil
}
