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

// VendorItemCode is the legacy code-to-item mapping table, predating
// VendorItem. Kept because invoices imported before the migration still
// resolve through it.
type VendorItemCode struct{ ent.Schema }

func (VendorItemCode) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "vendor_item_codes"},
	}
}

func (VendorItemCode) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.UUID("vendor_id", uuid.UUID{}),
		field.UUID("item_id", uuid.UUID{}),
		field.String("code").NotEmpty(),
	}
}

func (VendorItemCode) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("vendor", Vendor.Type).
			Ref("item_codes").
			Field("vendor_id").
			Required().
			Unique(),
	}
}

func (VendorItemCode) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("vendor_id", "code").Unique(),
	}
}
