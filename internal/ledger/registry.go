// internal/ledger/registry.go
package ledger

// Register creates the creator record for caller. One registration per
// identity; records are never deleted.
func (l *Ledger) Register(caller Address, username, bio, profileRef string, ctype CreatorType) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	if caller == "" || username == "" {
		return errf(ErrInvalidInput, "identity and username are required")
	}
	switch ctype {
	case CreatorTypeTraditional, CreatorTypeAI, CreatorTypeHybrid:
	default:
		return errf(ErrInvalidInput, "unknown creator type %q", ctype)
	}
	if existing, ok := l.state.creators[caller]; ok && existing.IsActive {
		return errf(ErrAlreadyRegistered, "creator %s", caller)
	}
	l.state.creators[caller] = &Creator{
		Address:      caller,
		Username:     username,
		Bio:          bio,
		ProfileRef:   profileRef,
		Type:         ctype,
		IsActive:     true,
		RegisteredAt: l.now(),
	}
	l.emit("creator.registered", map[string]interface{}{"identity": caller, "username": username, "type": ctype})
	return nil
}

// UpdateProfile mutates the caller's own profile fields.
func (l *Ledger) UpdateProfile(caller Address, username, bio, profileRef string) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	creator, err := l.activeCreator(caller)
	if err != nil {
		return err
	}
	if username == "" {
		return errf(ErrInvalidInput, "username is required")
	}
	creator.Username = username
	creator.Bio = bio
	creator.ProfileRef = profileRef
	l.emit("creator.profile_updated", map[string]interface{}{"identity": caller})
	return nil
}

// Follow adds target to the caller's following list and bumps the target's
// follower count.
func (l *Ledger) Follow(caller, target Address) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	if caller == target {
		return errf(ErrSelfReference, "cannot follow self")
	}
	if _, err := l.activeCreator(caller); err != nil {
		return err
	}
	targetCreator, err := l.activeCreator(target)
	if err != nil {
		return err
	}
	idx := l.state.followingIdx[caller]
	if idx == nil {
		idx = make(map[Address]int)
		l.state.followingIdx[caller] = idx
	}
	if _, ok := idx[target]; ok {
		return errf(ErrAlreadyFollowing, "%s -> %s", caller, target)
	}
	l.state.following[caller] = append(l.state.following[caller], target)
	idx[target] = len(l.state.following[caller]) - 1
	targetCreator.FollowerCount++
	l.emit("creator.followed", map[string]interface{}{"follower": caller, "target": target})
	return nil
}

// Unfollow removes target from the caller's following list via swap-remove.
// The list order is explicitly not preserved.
func (l *Ledger) Unfollow(caller, target Address) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	if caller == target {
		return errf(ErrSelfReference, "cannot unfollow self")
	}
	targetCreator, ok := l.state.creators[target]
	if !ok {
		return errf(ErrNotFound, "creator %s", target)
	}
	idx := l.state.followingIdx[caller]
	pos, following := idx[target]
	if !following {
		return errf(ErrNotFollowing, "%s -> %s", caller, target)
	}
	list := l.state.following[caller]
	last := len(list) - 1
	if pos != last {
		moved := list[last]
		list[pos] = moved
		idx[moved] = pos
	}
	l.state.following[caller] = list[:last]
	delete(idx, target)
	targetCreator.FollowerCount--
	l.emit("creator.unfollowed", map[string]interface{}{"follower": caller, "target": target})
	return nil
}

// VerifyCreator sets the verified flag. Moderator only; idempotent.
func (l *Ledger) VerifyCreator(caller, identity Address) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	if err := l.requireCapability(caller, RoleModerator); err != nil {
		return err
	}
	creator, err := l.activeCreator(identity)
	if err != nil {
		return err
	}
	if creator.IsVerified {
		return nil
	}
	creator.IsVerified = true
	l.emit("creator.verified", map[string]interface{}{"identity": identity, "by": caller})
	return nil
}

// stageEarnings validates a bump of a creator's lifetime earnings counter and
// returns the step that applies it. Internal: the economy, collaboration and
// marketplace engines stage before their transfer legs run, so an overflowing
// counter aborts the operation while balances are still untouched; the apply
// step itself cannot fail.
func (l *Ledger) stageEarnings(identity Address, amount int64) (func(), error) {
	creator, ok := l.state.creators[identity]
	if !ok {
		return nil, errf(ErrNotFound, "creator %s", identity)
	}
	total, err := checkedAdd(creator.TotalEarnings, amount)
	if err != nil {
		return nil, err
	}
	return func() { creator.TotalEarnings = total }, nil
}

// activeCreator looks up identity and requires it registered and active.
func (l *Ledger) activeCreator(identity Address) (*Creator, error) {
	creator, ok := l.state.creators[identity]
	if !ok {
		return nil, errf(ErrNotFound, "creator %s", identity)
	}
	if !creator.IsActive {
		return nil, errf(ErrInactiveEntity, "creator %s", identity)
	}
	return creator, nil
}

// GetCreator returns a copy of the creator record.
func (l *Ledger) GetCreator(identity Address) (Creator, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	creator, ok := l.state.creators[identity]
	if !ok {
		return Creator{}, errf(ErrNotFound, "creator %s", identity)
	}
	return *creator, nil
}

// Following returns the caller's following list. Order is unspecified.
func (l *Ledger) Following(identity Address) []Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	list := l.state.following[identity]
	out := make([]Address, len(list))
	copy(out, list)
	return out
}
