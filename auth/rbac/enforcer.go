// Package rbac guards the panel's admin surface with a casbin
// enforcer. Policies are seeded from configuration at boot and held
// in memory; the panel has no self-service role management, so there
// is no persistence adapter behind the enforcer.
package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

// modelText matches subjects through role groupings, objects with
// keyMatch2 so policies can use path wildcards like
// /api/v1/registry/*, and actions as case-exact HTTP methods or "*".
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Enforcer answers allow/deny questions for admin requests.
type Enforcer struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

// NewEnforcer builds an in-memory enforcer from policy triples
// (subject, object, action) and grouping pairs (member, role).
func NewEnforcer(policies [][]string, groupings [][]string, logger *zap.Logger) (*Enforcer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to load rbac model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	for _, p := range policies {
		if len(p) != 3 {
			return nil, fmt.Errorf("policy must be [subject, object, action], got %v", p)
		}
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("failed to add policy %v: %w", p, err)
		}
	}
	for _, g := range groupings {
		if len(g) != 2 {
			return nil, fmt.Errorf("grouping must be [member, role], got %v", g)
		}
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, fmt.Errorf("failed to add grouping %v: %w", g, err)
		}
	}

	logger.Info("rbac enforcer ready",
		zap.Int("policies", len(policies)),
		zap.Int("groupings", len(groupings)))

	return &Enforcer{enforcer: e, logger: logger}, nil
}

// Allow reports whether subject may perform action on object.
func (e *Enforcer) Allow(subject, object, action string) (bool, error) {
	ok, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforce failed: %w", err)
	}
	return ok, nil
}

// AddPolicy grants subject the action on object at runtime.
func (e *Enforcer) AddPolicy(subject, object, action string) error {
	if _, err := e.enforcer.AddPolicy(subject, object, action); err != nil {
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return nil
}

// RemovePolicy revokes a previously granted policy.
func (e *Enforcer) RemovePolicy(subject, object, action string) error {
	if _, err := e.enforcer.RemovePolicy(subject, object, action); err != nil {
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return nil
}

// AssignRole makes member inherit role's policies.
func (e *Enforcer) AssignRole(member, role string) error {
	if _, err := e.enforcer.AddGroupingPolicy(member, role); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// RolesFor lists the roles a member belongs to.
func (e *Enforcer) RolesFor(member string) ([]string, error) {
	roles, err := e.enforcer.GetRolesForUser(member)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	return roles, nil
}
