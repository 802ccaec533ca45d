package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"strings"
)

var (
	ErrNotFound   = errors.New("item not found")
	ErrValidation = errors.New("validation failed")

	ErrMissingKeys = fmt.Errorf("%w: missing required keys", ErrValidation)
	ErrIDImmutable = fmt.Errorf("%w: cannot update id field", ErrValidation)
)

const keyID = "id"

var requiredKeys = []string{"name", "cost", "quantity"}

// Item is a free-form record. name, cost and quantity must be present at
// creation; id is owned by the store.
type Item map[string]any

func (it Item) ID() (int64, bool) {
	v, ok := it[keyID]
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

func (it Item) Clone() Item {
	return maps.Clone(it)
}

func (it Item) missingKeys() []string {
	var missing []string
	for _, k := range requiredKeys {
		if _, ok := it[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

type Store interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, fields Item) (Item, error)
	Update(ctx context.Context, id int64, fields Item) (Item, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

func validateCreate(fields Item) error {
	if missing := fields.missingKeys(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKeys, strings.Join(missing, ", "))
	}
	return nil
}

// validateUpdate tolerates an id key equal to the stored id.
func validateUpdate(id int64, fields Item) error {
	v, ok := fields[keyID]
	if !ok {
		return nil
	}
	if got, ok := asInt64(v); ok && got == id {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrIDImmutable, v)
}

// asInt64 accepts any numeric JSON-ish value with an exact integer value.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatToInt64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
