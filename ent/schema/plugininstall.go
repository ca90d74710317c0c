package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PluginInstall records which plugins a tenant has installed and the
// settings they chose. The route registry itself stays in memory; this
// table exists so installs survive restarts.
type PluginInstall struct {
	ent.Schema
}

func (PluginInstall) Mixin() []ent.Mixin {
	return []ent.Mixin{
		BaseMixin{},
		TenantMixin{},
	}
}

func (PluginInstall) Fields() []ent.Field {
	return []ent.Field{
		field.String("plugin_id").
			NotEmpty().
			MaxLen(128),
		field.String("version").
			NotEmpty().
			MaxLen(32),
		field.Bool("enabled").
			Default(true),
		field.JSON("settings", map[string]any{}).
			Optional(),
		field.Time("installed_at").
			Optional().
			Nillable(),
	}
}

func (PluginInstall) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("tenant_id", "plugin_id").Unique(),
		index.Fields("enabled"),
	}
}
