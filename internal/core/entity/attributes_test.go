package entity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAttributes_ScanPreservesNumericPrecision(t *testing.T) {
	var attrs Attributes
	if err := attrs.Scan([]byte(`{"price":"19.99","qty":3,"loss":0.1}`)); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if got := attrs.GetInt("qty"); got != 3 {
		t.Errorf("GetInt(qty) = %d, want 3", got)
	}
	if got := attrs.GetDecimal("price"); !got.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("GetDecimal(price) = %s, want 19.99", got)
	}
	if got := attrs.GetDecimal("loss"); !got.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("GetDecimal(loss) = %s, want 0.1", got)
	}
}

func TestAttributes_ScanNil(t *testing.T) {
	attrs := Attributes{"stale": true}
	if err := attrs.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if attrs != nil {
		t.Errorf("Scan(nil) left %v, want nil map", attrs)
	}
}

func TestAttributes_Accessors(t *testing.T) {
	var attrs Attributes
	attrs.Set("source", "outbox")
	attrs.Set("published", true)

	if got := attrs.GetString("source"); got != "outbox" {
		t.Errorf("GetString(source) = %q", got)
	}
	if !attrs.GetBool("published") {
		t.Error("GetBool(published) = false, want true")
	}
	if !attrs.Has("source") || attrs.Has("missing") {
		t.Error("Has reported wrong membership")
	}
	if got := attrs.GetString("missing"); got != "" {
		t.Errorf("GetString(missing) = %q, want empty", got)
	}
	if !attrs.GetDecimal("missing").IsZero() {
		t.Error("GetDecimal(missing) should be zero")
	}
}
