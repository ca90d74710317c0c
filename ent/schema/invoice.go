package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Invoice is one billing document issued to a tenant. Amounts are
// stored in minor units to avoid float drift.
type Invoice struct {
	ent.Schema
}

func (Invoice) Mixin() []ent.Mixin {
	return []ent.Mixin{
		BaseMixin{},
		TenantMixin{},
	}
}

func (Invoice) Fields() []ent.Field {
	return []ent.Field{
		field.String("number").
			NotEmpty().
			Comment("Human-facing invoice number, unique per tenant."),
		field.Int64("amount_due").
			NonNegative(),
		field.Int64("amount_paid").
			Default(0).
			NonNegative(),
		field.String("currency").
			MaxLen(3),
		field.Enum("status").
			Values("draft", "open", "paid", "void").
			Default("draft"),
		field.Time("due_at").
			Optional().
			Nillable(),
		field.Time("paid_at").
			Optional().
			Nillable(),
	}
}

func (Invoice) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("tenant_id", "number").Unique(),
		index.Fields("status"),
		index.Fields("due_at"),
	}
}
