package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"
)

// VendorItem maps a vendor's item code and description to a catalog item.
// This is the current mapping table; VendorItemCode is its legacy
// predecessor, still consulted for code lookups.
type VendorItem struct{ ent.Schema }

func (VendorItem) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "vendor_items"},
	}
}

func (VendorItem) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.UUID("vendor_id", uuid.UUID{}),
		field.UUID("item_id", uuid.UUID{}),
		field.String("item_code").Optional(),
		field.String("description").Optional(),
		field.Bool("is_active").Default(true),
	}
}

func (VendorItem) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("vendor", Vendor.Type).
			Ref("items").
			Field("vendor_id").
			Required().
			Unique(),
	}
}

func (VendorItem) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("vendor_id", "item_code"),
		index.Fields("vendor_id", "description"),
	}
}
