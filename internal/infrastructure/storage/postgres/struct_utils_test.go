package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"swiftpos/internal/core/entity"
	"swiftpos/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Code  string `db:"code" json:"code"`
	Notes string `db:"-" json:"notes"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{"id", "created_at", "updated_at", "name", "code"}
	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "notes")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	cat := mockCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{
				ID:        id.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Name: "Sugar 1kg",
		},
		Code:  "SKU-001",
		Notes: "should be skipped",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "Sugar 1kg", m["name"])
	assert.Equal(t, "SKU-001", m["code"])
	_, hasNotes := m["notes"]
	assert.False(t, hasNotes)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap("not a struct"))
	assert.Nil(t, StructToMap(42))
}
