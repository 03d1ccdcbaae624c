package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/models"
	"github.com/kendall-kelly/box-erp-api/workflow"
)

var totalFields = []string{"subtotal", "vatTotal", "grandTotal"}

// OrderService creates and updates orders and applies their workflow side effects.
type OrderService struct {
	*Resource[models.Order]
	db     *gorm.DB
	engine *workflow.Engine
	log    *slog.Logger
	now    func() time.Time
}

// NewOrderService creates an OrderService.
func NewOrderService(db *gorm.DB, engine *workflow.Engine, log *slog.Logger) (*OrderService, error) {
	resource, err := NewResource[models.Order](db, ResourceSpec{
		Name:    "order",
		Filters: []string{"status", "customerId", "assignedUserId", "assignedRoleName"},
		Search:  []string{"id", "customer_name", "invoice_number"},
	})
	if err != nil {
		return nil, err
	}
	return &OrderService{
		Resource: resource,
		db:       db,
		engine:   engine,
		log:      log,
		now:      time.Now,
	}, nil
}

// Create inserts a new order. Status defaults to the initial status and line totals are computed.
// Order totals are computed only when the client sent none.
func (s *OrderService) Create(ctx context.Context, order *models.Order) error {
	if order.Status == "" {
		order.Status = workflow.InitialStatus
	}
	if !order.Status.Valid() {
		return Invalid("INVALID_STATUS", "unknown status %q", order.Status)
	}
	if err := checkItems(order); err != nil {
		return err
	}
	order.ComputeLineTotals()
	if order.Subtotal.IsZero() && order.VatTotal.IsZero() && order.GrandTotal.IsZero() {
		order.ComputeTotals()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return translate(err, "order")
		}

		before := order.Snapshot()
		before.AssignedUserID = ""
		before.AssignedRoleName = ""
		if err := s.apply(tx, order, s.engine.Plan(before, order.Snapshot())); err != nil {
			return err
		}

		return tx.Where("id = ?", order.ID).First(order).Error
	})
}

// Update applies a partial update and its workflow side effects in one transaction.
// Items are replaced as a whole.
func (s *OrderService) Update(ctx context.Context, id string, patch Patch) (*models.Order, error) {
	var updated models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Order
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			return translate(err, "order")
		}

		if patch.IsNull("items") {
			return Invalid("INVALID_FIELD", "items must be a list, send [] to remove every line")
		}
		values, err := s.fields.updates(patch)
		if err != nil {
			return err
		}

		if raw, ok := values["items"]; ok {
			items, ok := raw.(models.LineItems)
			if !ok {
				return fmt.Errorf("unexpected items value %T", raw)
			}
			draft := models.Order{Items: items}
			if err := checkItems(&draft); err != nil {
				return err
			}
			draft.ComputeLineTotals()
			values["items"] = draft.Items
		}

		if status, ok := values["status"].(workflow.Status); ok {
			if err := s.checkTransition(current.Status, status); err != nil {
				return err
			}
		}

		if len(values) > 0 {
			if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(values).Error; err != nil {
				return fmt.Errorf("failed to update order: %w", err)
			}
		}
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return err
		}

		if patch.Has("items") && !patchHasAny(patch, totalFields) {
			updated.ComputeTotals()
			err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
				"subtotal":    updated.Subtotal,
				"vat_total":   updated.VatTotal,
				"grand_total": updated.GrandTotal,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to update order totals: %w", err)
			}
		}

		if err := s.apply(tx, &updated, s.engine.Plan(current.Snapshot(), updated.Snapshot())); err != nil {
			return err
		}

		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Patch is Update under the generic resource name, so HTTP handlers run the workflow.
func (s *OrderService) Patch(ctx context.Context, id string, patch Patch) (*models.Order, error) {
	return s.Update(ctx, id, patch)
}

func (s *OrderService) checkTransition(from, to workflow.Status) error {
	err := s.engine.Check(from, to)
	if err == nil {
		return nil
	}
	var transitionErr *workflow.TransitionError
	if errors.As(err, &transitionErr) && !to.Valid() {
		return Invalid("INVALID_STATUS", "unknown status %q", to)
	}
	return fmt.Errorf("%w: %s", ErrInvalidTransition, err.Error())
}

// apply writes the notifications and stock movements planned for order.
func (s *OrderService) apply(tx *gorm.DB, order *models.Order, effects workflow.Effects) error {
	for _, notice := range effects.Notifications {
		notification := models.Notification{
			UserID:         notice.UserID,
			Title:          notice.Title,
			Message:        notice.Message,
			Type:           notice.Type,
			RelatedOrderID: order.ID,
		}
		if notice.UserID == "" {
			role, err := resolveRole(tx, notice.Roles)
			if err != nil {
				return err
			}
			if role == nil {
				s.log.Warn("notification skipped, no matching role",
					slog.String("order_id", order.ID),
					slog.Any("roles", notice.Roles),
				)
				continue
			}
			notification.RoleID = role.ID
		}
		if err := tx.Create(&notification).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}

	if effects.DeductStock {
		stamp := s.now().UnixMilli()
		for i, item := range order.Items {
			movement := models.StockItem{
				StockNumber:  fmt.Sprintf("SHIP-%s-%d-%d", order.ID, stamp, i+1),
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				Quantity:     item.Quantity.Neg(),
				MovementType: models.MovementShipment,
				OrderID:      order.ID,
				Note:         fmt.Sprintf("%s sevkiyatı", order.ID),
			}
			if err := tx.Create(&movement).Error; err != nil {
				return fmt.Errorf("failed to record stock movement: %w", err)
			}
		}
		s.log.Info("stock deducted for shipment",
			slog.String("order_id", order.ID),
			slog.Int("lines", len(order.Items)),
		)
	}

	return nil
}

// resolveRole returns the first role whose name is in names, or nil when none exists.
func resolveRole(tx *gorm.DB, names []string) (*models.Role, error) {
	for _, name := range names {
		var roles []models.Role
		if err := tx.Where("name = ?", name).Limit(1).Find(&roles).Error; err != nil {
			return nil, fmt.Errorf("failed to look up role %q: %w", name, err)
		}
		if len(roles) > 0 {
			return &roles[0], nil
		}
	}
	return nil, nil
}

func checkItems(order *models.Order) error {
	for i, item := range order.Items {
		if item.ProductID == "" {
			return Invalid("VALIDATION_ERROR", "item %d has no productId", i+1)
		}
	}
	if productID, dup := order.DuplicateProductID(); dup {
		return Invalid("DUPLICATE_LINE_ITEM", "product %s appears on more than one line", productID)
	}
	return nil
}

func patchHasAny(patch Patch, keys []string) bool {
	for _, key := range keys {
		if patch.Has(key) {
			return true
		}
	}
	return false
}
