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

type Vendor struct{ ent.Schema }

func (Vendor) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "vendors"},
	}
}

func (Vendor) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.String("name").NotEmpty(),
		// Kept in sync with normalize.VendorKey whenever name changes; the
		// resolver matches against this column exactly.
		field.String("normalized_name").NotEmpty(),
		field.Bool("is_active").Default(true),
	}
}

func (Vendor) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("items", VendorItem.Type),
		edge.To("item_codes", VendorItemCode.Type),
	}
}

func (Vendor) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("normalized_name"),
	}
}
