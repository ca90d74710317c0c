// Package schema declares the panel's persisted entities. Code
// generation is wired through entc in the usual way; the host only
// touches the generated client behind the plugin.Database interface.
package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
	"github.com/google/uuid"
)

// uuidSchemaType keeps UUID columns portable across the dialects the
// panel deploys on.
var uuidSchemaType = map[string]string{
	dialect.Postgres: "uuid",
	dialect.MySQL:    "char(36)",
	dialect.SQLite:   "text",
}

func newUUIDv7() uuid.UUID {
	v7, err := uuid.NewV7()
	if err != nil {
		panic("failed to create UUID v7: " + err.Error())
	}
	return v7
}

// BaseMixin gives every entity a time-ordered UUID key and audit
// timestamps.
type BaseMixin struct {
	mixin.Schema
}

func (BaseMixin) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(newUUIDv7).
			SchemaType(uuidSchemaType).
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
		field.Time("deleted_at").
			Optional().
			Nillable(),
	}
}

func (BaseMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
		index.Fields("deleted_at"),
	}
}

// TenantMixin scopes an entity to one tenant. Every query in the host
// filters on tenant_id; cross-tenant reads are a bug.
type TenantMixin struct {
	mixin.Schema
}

func (TenantMixin) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("tenant_id", uuid.UUID{}).
			SchemaType(uuidSchemaType).
			Immutable(),
	}
}

func (TenantMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("tenant_id"),
	}
}
