package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Scope narrows a list query using a request parameter.
type Scope func(db *gorm.DB, value string) *gorm.DB

// ResourceSpec describes how a resource may be listed.
type ResourceSpec struct {
	Name    string           // singular, used in error messages
	Filters []string         // JSON fields usable as equality filters
	Search  []string         // columns matched by the search parameter
	Scopes  map[string]Scope // parameters with custom semantics
	Sort    string           // default ORDER BY
}

// ListQuery is a parsed list request.
type ListQuery struct {
	Params map[string]string
	Search string
	Sort   string
	Order  string
	Limit  int
	Offset int
}

// Resource implements list/get/create/patch/delete for one model.
type Resource[T any] struct {
	db       *gorm.DB
	spec     ResourceSpec
	fields   *fieldIndex
	onCreate func(item *T) error
	onPatch  func(patch Patch, values map[string]any) error
}

// NewResource builds a resource service for T.
func NewResource[T any](db *gorm.DB, spec ResourceSpec) (*Resource[T], error) {
	fields, err := indexFields(db, new(T))
	if err != nil {
		return nil, err
	}
	if spec.Sort == "" {
		spec.Sort = "created_at DESC"
	}
	for _, f := range spec.Filters {
		if _, ok := fields.column(f); !ok {
			return nil, fmt.Errorf("%s: unknown filter field %q", spec.Name, f)
		}
	}
	return &Resource[T]{db: db, spec: spec, fields: fields}, nil
}

// OnCreate registers a hook run before inserts.
func (r *Resource[T]) OnCreate(fn func(item *T) error) *Resource[T] {
	r.onCreate = fn
	return r
}

// OnPatch registers a hook that may rewrite column values before an update.
func (r *Resource[T]) OnPatch(fn func(patch Patch, values map[string]any) error) *Resource[T] {
	r.onPatch = fn
	return r
}

// Name returns the singular resource name.
func (r *Resource[T]) Name() string {
	return r.spec.Name
}

// List returns rows matching the query.
func (r *Resource[T]) List(ctx context.Context, q ListQuery) ([]T, error) {
	tx := r.db.WithContext(ctx).Model(new(T))

	for _, f := range r.spec.Filters {
		if value, ok := q.Params[f]; ok && value != "" {
			column, arg, err := r.fields.filterValue(f, value)
			if err != nil {
				return nil, err
			}
			tx = tx.Where(fmt.Sprintf("%s = ?", column), arg)
		}
	}
	for param, scope := range r.spec.Scopes {
		if value, ok := q.Params[param]; ok && value != "" {
			tx = scope(tx, value)
		}
	}

	if search := strings.TrimSpace(q.Search); search != "" && len(r.spec.Search) > 0 {
		conds := make([]string, len(r.spec.Search))
		args := make([]any, len(r.spec.Search))
		pattern := "%" + strings.ToLower(search) + "%"
		for i, column := range r.spec.Search {
			conds[i] = fmt.Sprintf("LOWER(%s) LIKE ?", column)
			args[i] = pattern
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	tx = tx.Order(r.orderBy(q))
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}

	items := []T{}
	if err := tx.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.spec.Name, err)
	}
	return items, nil
}

func (r *Resource[T]) orderBy(q ListQuery) string {
	column, ok := r.fields.column(q.Sort)
	if !ok {
		return r.spec.Sort
	}
	if strings.EqualFold(q.Order, "desc") {
		return column + " DESC"
	}
	return column + " ASC"
}

// Get loads one row by id.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *Resource[T]) get(tx *gorm.DB, id string) (*T, error) {
	item := new(T)
	if err := tx.Where("id = ?", id).First(item).Error; err != nil {
		return nil, translate(err, r.spec.Name)
	}
	return item, nil
}

// Create inserts item. A client supplied id that already exists is a conflict.
func (r *Resource[T]) Create(ctx context.Context, item *T) error {
	if r.onCreate != nil {
		if err := r.onCreate(item); err != nil {
			return err
		}
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return translate(err, r.spec.Name)
	}
	return nil
}

// Patch updates the columns named in patch and returns the stored row.
func (r *Resource[T]) Patch(ctx context.Context, id string, patch Patch) (*T, error) {
	var updated *T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.get(tx, id); err != nil {
			return err
		}

		values, err := r.fields.updates(patch)
		if err != nil {
			return err
		}
		if r.onPatch != nil {
			if err := r.onPatch(patch, values); err != nil {
				return err
			}
		}
		if len(values) > 0 {
			if err := tx.Model(new(T)).Where("id = ?", id).Updates(values).Error; err != nil {
				return translate(err, r.spec.Name)
			}
		}

		updated, err = r.get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a row permanently.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", r.spec.Name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %w", r.spec.Name, ErrNotFound)
	}
	return nil
}
