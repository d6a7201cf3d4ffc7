// internal/ledger/collab.go
package ledger

// ProposeCollaboration opens a weighted revenue-sharing agreement. Shares
// are basis points and must sum to exactly 10000; the proposer must be a
// participant; every participant must be an active creator.
func (l *Ledger) ProposeCollaboration(caller Address, participants []Address, shares []uint32, deadline int64) (uint64, error) {
	release, err := l.begin(false)
	if err != nil {
		return 0, err
	}
	defer release()
	if len(participants) < 2 {
		return 0, errf(ErrInvalidInput, "at least 2 participants required")
	}
	if len(participants) != len(shares) {
		return 0, errf(ErrInvalidInput, "%d participants but %d shares", len(participants), len(shares))
	}
	if deadline <= l.now() {
		return 0, errf(ErrInvalidInput, "deadline must be in the future")
	}
	seen := make(map[Address]bool, len(participants))
	proposerIncluded := false
	var sum uint64
	for i, p := range participants {
		if _, err := l.activeCreator(p); err != nil {
			return 0, err
		}
		if seen[p] {
			return 0, errf(ErrInvalidInput, "duplicate participant %s", p)
		}
		seen[p] = true
		if shares[i] == 0 {
			return 0, errf(ErrInvalidInput, "zero share for %s", p)
		}
		sum += uint64(shares[i])
		if p == caller {
			proposerIncluded = true
		}
	}
	if !proposerIncluded {
		return 0, errf(ErrInvalidInput, "proposer must be a participant")
	}
	if sum != bpsDenominator {
		return 0, errf(ErrInvalidInput, "shares sum to %d, want %d", sum, bpsDenominator)
	}

	l.state.nextCollabID++
	id := l.state.nextCollabID
	l.state.collabs[id] = &Collaboration{
		ID:           id,
		Proposer:     caller,
		Participants: append([]Address(nil), participants...),
		Shares:       append([]uint32(nil), shares...),
		Status:       CollabProposed,
		Deadline:     deadline,
		CreatedAt:    l.now(),
	}
	l.emit("collab.proposed", map[string]interface{}{
		"collab_id": id, "proposer": caller, "participants": len(participants),
	})
	return id, nil
}

// AcceptCollaboration moves a proposal to Active. Any participant may
// accept; a proposal past its deadline is implicitly expired.
func (l *Ledger) AcceptCollaboration(caller Address, collabID uint64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	collab, err := l.collabParticipant(caller, collabID)
	if err != nil {
		return err
	}
	if collab.Status != CollabProposed {
		return errf(ErrInvalidStateTransition, "collaboration %d is %s", collabID, collab.Status)
	}
	if l.now() >= collab.Deadline {
		return errf(ErrExpired, "collaboration %d proposal deadline passed", collabID)
	}
	collab.Status = CollabActive
	l.emit("collab.accepted", map[string]interface{}{"collab_id": collabID, "by": caller})
	return nil
}

// CompleteCollaboration moves an active agreement to Completed. Revenue may
// still be distributed afterwards.
func (l *Ledger) CompleteCollaboration(caller Address, collabID uint64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	collab, err := l.collabParticipant(caller, collabID)
	if err != nil {
		return err
	}
	if collab.Status != CollabActive {
		return errf(ErrInvalidStateTransition, "collaboration %d is %s", collabID, collab.Status)
	}
	collab.Status = CollabCompleted
	l.emit("collab.completed", map[string]interface{}{"collab_id": collabID, "by": caller})
	return nil
}

// CancelCollaboration cancels a pending proposal. Proposer or Admin only.
func (l *Ledger) CancelCollaboration(caller Address, collabID uint64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	collab, ok := l.state.collabs[collabID]
	if !ok {
		return errf(ErrNotFound, "collaboration %d", collabID)
	}
	if caller != collab.Proposer && !l.hasCapability(caller, RoleAdmin) {
		return errf(ErrUnauthorized, "only proposer or admin may cancel")
	}
	if collab.Status != CollabProposed {
		return errf(ErrInvalidStateTransition, "collaboration %d is %s", collabID, collab.Status)
	}
	collab.Status = CollabCancelled
	l.emit("collab.cancelled", map[string]interface{}{"collab_id": collabID, "by": caller})
	return nil
}

// DistributeRevenue splits payment across participants by share after the
// platform fee. Each participant receives floor(distributable*share/10000);
// the integer-division remainder (at most len(participants)-1 units) goes to
// the treasury with the fee, keeping the split exactly conserving.
func (l *Ledger) DistributeRevenue(caller Address, collabID uint64, payment int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	collab, ok := l.state.collabs[collabID]
	if !ok {
		return errf(ErrNotFound, "collaboration %d", collabID)
	}
	if collab.Status != CollabActive && collab.Status != CollabCompleted {
		return errf(ErrInvalidStateTransition, "collaboration %d is %s", collabID, collab.Status)
	}
	if payment <= 0 {
		return errf(ErrInvalidInput, "payment must be positive")
	}
	fee, distributable, err := l.feeSplit(payment)
	if err != nil {
		return err
	}

	amounts := make([]int64, len(collab.Participants))
	var distributed int64
	for i, share := range collab.Shares {
		amount, err := bpsShare(distributable, share)
		if err != nil {
			return err
		}
		amounts[i] = amount
		distributed += amount
	}
	remainder := distributable - distributed

	// Counter bumps are staged before the transfer legs so an overflow
	// aborts while every balance is still untouched.
	creditEarnings := make([]func(), len(collab.Participants))
	for i, p := range collab.Participants {
		creditEarnings[i], err = l.stageEarnings(p, amounts[i])
		if err != nil {
			return err
		}
	}
	total, err := checkedAdd(collab.TotalRevenue, payment)
	if err != nil {
		return err
	}

	// Effects after all computation: transfer each share, then fee plus
	// remainder to the treasury. Any failing leg aborts with the earlier
	// legs reversed.
	for i, p := range collab.Participants {
		if err := l.bank.Transfer(caller, p, amounts[i]); err != nil {
			for j := 0; j < i; j++ {
				l.bank.Transfer(collab.Participants[j], caller, amounts[j])
			}
			return err
		}
	}
	if err := l.bank.Transfer(caller, l.state.treasury, fee+remainder); err != nil {
		for j := range collab.Participants {
			l.bank.Transfer(collab.Participants[j], caller, amounts[j])
		}
		return err
	}
	for _, credit := range creditEarnings {
		credit()
	}
	collab.TotalRevenue = total
	l.emit("collab.revenue_distributed", map[string]interface{}{
		"collab_id": collabID, "payment": payment, "fee": fee, "remainder": remainder, "by": caller,
	})
	return nil
}

func (l *Ledger) collabParticipant(caller Address, collabID uint64) (*Collaboration, error) {
	collab, ok := l.state.collabs[collabID]
	if !ok {
		return nil, errf(ErrNotFound, "collaboration %d", collabID)
	}
	for _, p := range collab.Participants {
		if p == caller {
			return collab, nil
		}
	}
	return nil, errf(ErrUnauthorized, "%s is not a participant of collaboration %d", caller, collabID)
}

// GetCollaboration returns a copy of the agreement.
func (l *Ledger) GetCollaboration(collabID uint64) (Collaboration, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	collab, ok := l.state.collabs[collabID]
	if !ok {
		return Collaboration{}, errf(ErrNotFound, "collaboration %d", collabID)
	}
	out := *collab
	out.Participants = append([]Address(nil), collab.Participants...)
	out.Shares = append([]uint32(nil), collab.Shares...)
	return out, nil
}
