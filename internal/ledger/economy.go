// internal/ledger/economy.go
package ledger

// Purchase buys fixed-price content. The price is split fee/net, both legs
// must succeed, and payment above the price is never debited.
func (l *Ledger) Purchase(caller Address, contentID uint64, payment int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	content, err := l.activeContent(contentID)
	if err != nil {
		return err
	}
	if !content.ForSale {
		return errf(ErrInvalidStateTransition, "content %d is not for sale", contentID)
	}
	if caller == content.Creator {
		return errf(ErrSelfReference, "creator cannot buy own content")
	}
	if payment < content.Price {
		return errf(ErrInsufficientPayment, "payment %d below price %d", payment, content.Price)
	}
	fee, net, err := l.feeSplit(content.Price)
	if err != nil {
		return err
	}
	creditEarnings, err := l.stageEarnings(content.Creator, net)
	if err != nil {
		return err
	}
	if err := l.payout(caller, content.Creator, net, fee); err != nil {
		return err
	}
	creditEarnings()
	l.emit("content.purchased", map[string]interface{}{
		"content_id": contentID, "buyer": caller, "creator": content.Creator,
		"price": content.Price, "fee": fee, "net": net,
	})
	return nil
}

// Tip sends an arbitrary positive amount to the content's creator under the
// same fee split, and bumps the tip counter.
func (l *Ledger) Tip(caller Address, contentID uint64, amount int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	content, err := l.activeContent(contentID)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return errf(ErrInvalidInput, "tip amount must be positive")
	}
	if caller == content.Creator {
		return errf(ErrSelfReference, "creator cannot tip own content")
	}
	fee, net, err := l.feeSplit(amount)
	if err != nil {
		return err
	}
	creditEarnings, err := l.stageEarnings(content.Creator, net)
	if err != nil {
		return err
	}
	if err := l.payout(caller, content.Creator, net, fee); err != nil {
		return err
	}
	creditEarnings()
	content.Tips++
	l.emit("content.tipped", map[string]interface{}{
		"content_id": contentID, "tipper": caller, "amount": amount, "fee": fee,
	})
	return nil
}

// CreateSubscription opens the caller's monthly plan. One active plan per
// creator.
func (l *Ledger) CreateSubscription(caller Address, monthlyPrice int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	if _, err := l.activeCreator(caller); err != nil {
		return err
	}
	if monthlyPrice <= 0 {
		return errf(ErrInvalidInput, "monthly price must be positive")
	}
	if existing, ok := l.state.subscriptions[caller]; ok && existing.IsActive {
		return errf(ErrAlreadyExists, "subscription plan for %s", caller)
	}
	l.state.subscriptions[caller] = &Subscription{
		Creator:      caller,
		MonthlyPrice: monthlyPrice,
		IsActive:     true,
	}
	l.emit("subscription.created", map[string]interface{}{"creator": caller, "monthly_price": monthlyPrice})
	return nil
}

// Subscribe pays for 1..12 months of a creator's plan. Expiry stacks:
// newExpiry = max(currentExpiry, now) + months*30d. The subscriber count
// only grows on a first-time or lapsed subscription.
func (l *Ledger) Subscribe(caller, creator Address, months int, payment int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	if caller == creator {
		return errf(ErrSelfReference, "creator cannot subscribe to self")
	}
	if _, err := l.activeCreator(creator); err != nil {
		return err
	}
	sub, ok := l.state.subscriptions[creator]
	if !ok || !sub.IsActive {
		return errf(ErrNotFound, "subscription plan for %s", creator)
	}
	if months < 1 || months > MaxSubMonths {
		return errf(ErrInvalidInput, "months %d outside 1..%d", months, MaxSubMonths)
	}
	totalCost, err := checkedMul(sub.MonthlyPrice, int64(months))
	if err != nil {
		return err
	}
	if payment < totalCost {
		return errf(ErrInsufficientPayment, "payment %d below cost %d", payment, totalCost)
	}
	fee, net, err := l.feeSplit(totalCost)
	if err != nil {
		return err
	}

	now := l.now()
	key := subKey{Subscriber: caller, Creator: creator}
	current := l.state.subExpiry[key]
	lapsed := current <= now
	base := current
	if lapsed {
		base = now
	}
	extension, err := checkedMul(MonthSeconds, int64(months))
	if err != nil {
		return err
	}
	newExpiry, err := checkedAdd(base, extension)
	if err != nil {
		return err
	}

	creditEarnings, err := l.stageEarnings(creator, net)
	if err != nil {
		return err
	}
	if err := l.payout(caller, creator, net, fee); err != nil {
		return err
	}
	creditEarnings()
	l.state.subExpiry[key] = newExpiry
	if lapsed {
		sub.SubscriberCount++
	}
	l.emit("subscription.renewed", map[string]interface{}{
		"subscriber": caller, "creator": creator, "months": months,
		"expiry": newExpiry, "fee": fee,
	})
	return nil
}

// SubscriptionExpiry returns the expiry for one (subscriber, creator) pair,
// zero if none.
func (l *Ledger) SubscriptionExpiry(subscriber, creator Address) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.subExpiry[subKey{Subscriber: subscriber, Creator: creator}]
}

// GetSubscription returns a copy of a creator's plan.
func (l *Ledger) GetSubscription(creator Address) (Subscription, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sub, ok := l.state.subscriptions[creator]
	if !ok {
		return Subscription{}, errf(ErrNotFound, "subscription plan for %s", creator)
	}
	return *sub, nil
}

// VerifyAIProcessing consumes an oracle-signed receipt over
// (contentID, receiptRef) and records the receipt reference on the content.
func (l *Ledger) VerifyAIProcessing(caller Address, contentID uint64, receiptRef string, signature []byte) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	content, err := l.activeContent(contentID)
	if err != nil {
		return err
	}
	if receiptRef == "" {
		return errf(ErrInvalidInput, "receipt reference is required")
	}
	digest := AIReceiptDigest(contentID, receiptRef)
	signer, err := l.verifyAndConsume(digest, signature, RoleOracle)
	if err != nil {
		return err
	}
	content.AIReceiptRef = receiptRef
	l.emit("content.ai_verified", map[string]interface{}{
		"content_id": contentID, "receipt_ref": receiptRef, "oracle": signer, "by": caller,
	})
	return nil
}

// payout performs the two-leg split to a recipient and the treasury. Both
// legs come from the same payer; if the second leg fails after the first
// succeeded, the first is reversed so the call has no partial effect.
func (l *Ledger) payout(payer, recipient Address, net, fee int64) error {
	if err := l.bank.Transfer(payer, recipient, net); err != nil {
		return err
	}
	if err := l.bank.Transfer(payer, l.state.treasury, fee); err != nil {
		if undo := l.bank.Transfer(recipient, payer, net); undo != nil {
			// Reversal of an internal credit transfer cannot fail; a custom
			// Bank that fails here violates its contract.
			return errf(ErrPaymentFailed, "fee leg failed and reversal failed: %v", undo)
		}
		return err
	}
	return nil
}
