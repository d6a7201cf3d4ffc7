// internal/ledger/access.go
package ledger

// Capability grants are the only mutable state of the access controller:
// a role set per address, mutated exclusively through GrantRole/RevokeRole.

// hasCapability reports whether identity holds role. Lock must be held.
func (l *Ledger) hasCapability(identity Address, role Role) bool {
	return l.state.roles[identity][role]
}

// requireCapability fails with Unauthorized when identity lacks role.
func (l *Ledger) requireCapability(identity Address, role Role) error {
	if !l.hasCapability(identity, role) {
		return errf(ErrUnauthorized, "%s lacks %s capability", identity, role)
	}
	return nil
}

// HasCapability is the read-side role check.
func (l *Ledger) HasCapability(identity Address, role Role) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hasCapability(identity, role)
}

// GrantRole grants role to identity. Admin only.
func (l *Ledger) GrantRole(caller, identity Address, role Role) error {
	release, err := l.begin(true)
	if err != nil {
		return err
	}
	defer release()
	if err := l.requireCapability(caller, RoleAdmin); err != nil {
		return err
	}
	if identity == "" {
		return errf(ErrInvalidInput, "empty identity")
	}
	if !ValidRole(role) {
		return errf(ErrInvalidInput, "unknown role %q", role)
	}
	if l.state.roles[identity] == nil {
		l.state.roles[identity] = make(map[Role]bool)
	}
	if l.state.roles[identity][role] {
		return nil // idempotent
	}
	l.state.roles[identity][role] = true
	l.emit("role.granted", map[string]interface{}{"identity": identity, "role": role, "by": caller})
	return nil
}

// RevokeRole removes role from identity. Admin only.
func (l *Ledger) RevokeRole(caller, identity Address, role Role) error {
	release, err := l.begin(true)
	if err != nil {
		return err
	}
	defer release()
	if err := l.requireCapability(caller, RoleAdmin); err != nil {
		return err
	}
	if !ValidRole(role) {
		return errf(ErrInvalidInput, "unknown role %q", role)
	}
	if !l.state.roles[identity][role] {
		return nil
	}
	delete(l.state.roles[identity], role)
	l.emit("role.revoked", map[string]interface{}{"identity": identity, "role": role, "by": caller})
	return nil
}
