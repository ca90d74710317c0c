package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Tenant is one customer organization on the panel.
type Tenant struct {
	ent.Schema
}

func (Tenant) Mixin() []ent.Mixin {
	return []ent.Mixin{
		BaseMixin{},
	}
}

func (Tenant) Fields() []ent.Field {
	return []ent.Field{
		field.String("slug").
			NotEmpty().
			Unique().
			MaxLen(64),
		field.String("name").
			NotEmpty().
			MaxLen(255),
		field.String("billing_email").
			NotEmpty(),
		field.String("currency").
			Default("USD").
			MaxLen(3),
		field.String("logo_path").
			Optional(),
		field.Enum("status").
			Values("trial", "active", "suspended", "closed").
			Default("trial"),
	}
}

func (Tenant) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
	}
}
