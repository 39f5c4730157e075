package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"github.com/google/uuid"
)

type Venue struct{ ent.Schema }

func (Venue) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "venues"},
	}
}

func (Venue) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.String("name").NotEmpty(),
		field.Bool("is_active").Default(true),
	}
}
