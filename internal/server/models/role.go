package models

import (
	"fmt"
	"sync"
)

// RestrictedRoleName is the role assigned to auto-provisioned accounts.
const RestrictedRoleName = "bluelink_user"

// Capabilities is the explicit capability set attached to a role. Each
// field answers one question; there is no open-ended capability map.
type Capabilities struct {
	Read             bool
	AccessAdmin      bool
	UploadFiles      bool
	EditPosts        bool
	PublishPosts     bool
	DeletePosts      bool
	ModerateComments bool
	ManageOptions    bool
}

// mutating reports whether the set grants any content-changing capability.
func (c Capabilities) mutating() bool {
	return c.UploadFiles || c.EditPosts || c.PublishPosts || c.DeletePosts ||
		c.ModerateComments || c.ManageOptions
}

// Role names a capability set.
type Role struct {
	Name         string
	Capabilities Capabilities
}

// NewRole validates and builds a role. A role granting any mutating
// capability must also grant Read; a role without a name is rejected.
func NewRole(name string, caps Capabilities) (*Role, error) {
	if name == "" {
		return nil, fmt.Errorf("role name must not be empty")
	}
	if caps.mutating() && !caps.Read {
		return nil, fmt.Errorf("role %q grants mutation without read", name)
	}
	return &Role{Name: name, Capabilities: caps}, nil
}

// RestrictedRole returns the role granted to auto-provisioned accounts:
// presence in the administrative area and read access, nothing that can
// publish, edit, or delete content.
func RestrictedRole() *Role {
	return &Role{
		Name: RestrictedRoleName,
		Capabilities: Capabilities{
			Read:        true,
			AccessAdmin: true,
		},
	}
}

// RoleRegistry is the in-process set of known roles. Registration is
// idempotent: an already-registered role is never redefined.
type RoleRegistry struct {
	mu    sync.RWMutex
	roles map[string]*Role
}

// NewRoleRegistry returns an empty registry.
func NewRoleRegistry() *RoleRegistry {
	return &RoleRegistry{roles: make(map[string]*Role)}
}

// Ensure registers role if no role with the same name exists yet and
// returns the registered instance.
func (r *RoleRegistry) Ensure(role *Role) *Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.roles[role.Name]; ok {
		return existing
	}
	r.roles[role.Name] = role
	return role
}

// Get returns the registered role with the given name.
func (r *RoleRegistry) Get(name string) (*Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[name]
	return role, ok
}
