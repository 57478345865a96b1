package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Attributes is free-form JSONB metadata (audit entry context, event
// payload extras). Decoding goes through json.Number so monetary values
// survive the round-trip without float truncation.
type Attributes map[string]any

// Scan implements sql.Scanner.
func (a *Attributes) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Attributes", src)
	}

	if len(raw) == 0 {
		*a = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	*a = m
	return nil
}

// Value implements driver.Valuer.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// GetString returns the string under key, or "".
func (a Attributes) GetString(key string) string {
	s, _ := a[key].(string)
	return s
}

// GetInt returns the integer under key, tolerating the numeric types
// JSON decoding can produce.
func (a Attributes) GetInt(key string) int64 {
	switch v := a[key].(type) {
	case json.Number:
		n, _ := v.Int64()
		return n
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// GetDecimal returns the value under key as a decimal, preserving the
// precision json.Number carries. Use this for money.
func (a Attributes) GetDecimal(key string) decimal.Decimal {
	var s string
	switch v := a[key].(type) {
	case json.Number:
		s = v.String()
	case string:
		s = v
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// GetBool returns the boolean under key, or false.
func (a Attributes) GetBool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Has reports whether key is present, nil values included.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Set stores a value, allocating the map on first use.
func (a *Attributes) Set(key string, value any) Attributes {
	if *a == nil {
		*a = make(Attributes)
	}
	(*a)[key] = value
	return *a
}
