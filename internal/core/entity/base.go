// Package entity holds the building blocks domain entities embed.
package entity

import (
	"context"
	"time"

	"swiftpos/internal/core/id"
)

// Validatable is the self-check contract: Validate inspects internal
// invariants only, never the database, and returns a structured error
// describing the first violation.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity carries identity and timestamps shared by every stored
// record. IDs are UUIDv7 so primary keys sort by creation time.
type BaseEntity struct {
	ID id.ID `db:"id" json:"id"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Catalog is what reference data embeds: products, customers,
// suppliers, categories, units. Name is unique per table.
type Catalog struct {
	BaseEntity

	Name string `db:"name" json:"name"`
}

func NewCatalog(name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Name:       name,
	}
}

// Document is what operational records embed: sales, stock history
// entries, overheads.
type Document struct {
	BaseEntity

	// CreatedBy is the display name of the user who recorded the document.
	// A snapshot, not a foreign key: it survives user renames and deletions.
	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`
}

func NewDocument(createdBy string) Document {
	return Document{
		BaseEntity: NewBaseEntity(),
		CreatedBy:  createdBy,
	}
}
