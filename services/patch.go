package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Patch is a partial update keyed by JSON field name.
type Patch map[string]json.RawMessage

// Has reports whether the patch carries key.
func (p Patch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// IsNull reports whether key is present with a JSON null value.
func (p Patch) IsNull(key string) bool {
	raw, ok := p[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Decode unmarshals the value under key into dst. It reports false when the key is absent.
func (p Patch) Decode(key string, dst any) (bool, error) {
	raw, ok := p[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, Invalid("INVALID_FIELD", "invalid value for %s", key)
	}
	return true, nil
}

var readOnlyFields = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
}

// fieldIndex maps JSON names to the columns of a model.
type fieldIndex struct {
	schema *schema.Schema
	byJSON map[string]*schema.Field
}

func indexFields(db *gorm.DB, model any) (*fieldIndex, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}

	idx := &fieldIndex{schema: stmt.Schema, byJSON: make(map[string]*schema.Field)}
	for _, field := range stmt.Schema.Fields {
		if field.DBName == "" {
			continue
		}
		name := jsonName(field.StructField)
		if name == "" {
			continue
		}
		idx.byJSON[name] = field
	}
	return idx, nil
}

// column returns the column for a JSON field name.
func (idx *fieldIndex) column(name string) (string, bool) {
	field, ok := idx.byJSON[name]
	if !ok {
		return "", false
	}
	return field.DBName, true
}

// updates converts a patch into column values, dropping unknown and read-only keys.
// Values are decoded into the field's own type so nested JSON and decimals go through their codecs.
func (idx *fieldIndex) updates(patch Patch) (map[string]any, error) {
	values := make(map[string]any, len(patch))
	for key, raw := range patch {
		if readOnlyFields[key] {
			continue
		}
		field, ok := idx.byJSON[key]
		if !ok {
			continue
		}
		ptr := reflect.New(field.FieldType)
		if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
			return nil, Invalid("INVALID_FIELD", "invalid value for %s", key)
		}
		values[field.DBName] = ptr.Elem().Interface()
	}
	return values, nil
}

// filterValue converts a query parameter to the column's type.
func (idx *fieldIndex) filterValue(name, raw string) (string, any, error) {
	field, ok := idx.byJSON[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown field %q", name)
	}
	switch field.DataType {
	case schema.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", nil, Invalid("INVALID_FILTER", "%s must be true or false", name)
		}
		return field.DBName, b, nil
	case schema.Int, schema.Uint:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", nil, Invalid("INVALID_FILTER", "%s must be a number", name)
		}
		return field.DBName, n, nil
	default:
		return field.DBName, raw, nil
	}
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return sf.Name
}
