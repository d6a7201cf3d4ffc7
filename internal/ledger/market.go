// internal/ledger/market.go
package ledger

// MintContentAsset mints a plain tradable asset for published content and
// links the catalog record to it. Minter capability required; ownership goes
// to the content's creator.
func (l *Ledger) MintContentAsset(caller Address, contentID uint64, royaltyBps uint32, transferable bool) (uint64, error) {
	release, err := l.begin(false)
	if err != nil {
		return 0, err
	}
	defer release()
	if err := l.requireCapability(caller, RoleMinter); err != nil {
		return 0, err
	}
	content, err := l.activeContent(contentID)
	if err != nil {
		return 0, err
	}
	if royaltyBps > MaxRoyaltyBps {
		return 0, errf(ErrInvalidInput, "royalty %d exceeds cap %d", royaltyBps, MaxRoyaltyBps)
	}
	if content.IsNFT {
		return 0, errf(ErrAlreadyMinted, "content %d already linked to asset %d", contentID, content.NFTTokenID)
	}

	l.state.nextAssetID++
	id := l.state.nextAssetID
	l.state.assets[id] = &Asset{
		ID:           id,
		Creator:      content.Creator,
		Owner:        content.Creator,
		ContentID:    contentID,
		Type:         content.Type,
		RoyaltyBps:   royaltyBps,
		Transferable: transferable,
		Tags:         append([]string(nil), content.Tags...),
		MintedAt:     l.now(),
	}
	if err := l.markMinted(contentID, id); err != nil {
		return 0, err
	}
	l.emit("asset.minted", map[string]interface{}{
		"asset_id": id, "content_id": contentID, "owner": content.Creator, "by": caller,
	})
	return id, nil
}

// List opens a fixed-price or auction listing for a caller-owned asset. An
// asset carries at most one active listing.
func (l *Ledger) List(caller Address, assetID uint64, price int64, duration int64, isAuction bool, minIncrement int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	asset, ok := l.state.assets[assetID]
	if !ok {
		return errf(ErrNotFound, "asset %d", assetID)
	}
	if asset.Owner != caller {
		return errf(ErrUnauthorized, "asset %d is not owned by %s", assetID, caller)
	}
	if _, exists := l.state.listings[assetID]; exists {
		return errf(ErrAlreadyExists, "asset %d already listed", assetID)
	}
	if price <= 0 {
		return errf(ErrInvalidInput, "price must be positive")
	}
	if duration < 0 {
		return errf(ErrInvalidInput, "negative duration")
	}
	if isAuction && minIncrement <= 0 {
		return errf(ErrInvalidInput, "auction requires a positive minimum increment")
	}
	var deadline int64
	if duration > 0 {
		deadline, err = checkedAdd(l.now(), duration)
		if err != nil {
			return err
		}
	}
	l.state.listings[assetID] = &Listing{
		AssetID:         assetID,
		Seller:          caller,
		Price:           price,
		Deadline:        deadline,
		IsAuction:       isAuction,
		MinBidIncrement: minIncrement,
		ListedAt:        l.now(),
	}
	l.emit("market.listed", map[string]interface{}{
		"asset_id": assetID, "seller": caller, "price": price, "auction": isAuction,
	})
	return nil
}

// BuyNow settles a fixed-price listing at its asking price. The listing is
// cleared before any transfer leg runs; a failing leg restores it, so the
// call is all-or-nothing.
func (l *Ledger) BuyNow(caller Address, assetID uint64, payment int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	listing, ok := l.state.listings[assetID]
	if !ok {
		return errf(ErrNotFound, "listing for asset %d", assetID)
	}
	if listing.IsAuction {
		return errf(ErrInvalidStateTransition, "asset %d is an auction listing", assetID)
	}
	if listing.Deadline != 0 && l.now() >= listing.Deadline {
		return errf(ErrExpired, "listing for asset %d expired", assetID)
	}
	if caller == listing.Seller {
		return errf(ErrSelfReference, "seller cannot buy own listing")
	}
	if payment < listing.Price {
		return errf(ErrInsufficientPayment, "payment %d below price %d", payment, listing.Price)
	}
	if err := l.settleSale(caller, listing, listing.Price); err != nil {
		return err
	}
	return nil
}

// PlaceBid records a new highest bid on an auction listing. The previous
// highest bidder is refunded in full as part of accepting the new bid.
func (l *Ledger) PlaceBid(caller Address, assetID uint64, payment int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	listing, ok := l.state.listings[assetID]
	if !ok {
		return errf(ErrNotFound, "listing for asset %d", assetID)
	}
	if !listing.IsAuction {
		return errf(ErrInvalidStateTransition, "asset %d is a fixed-price listing", assetID)
	}
	if listing.Deadline != 0 && l.now() >= listing.Deadline {
		return errf(ErrExpired, "auction for asset %d ended", assetID)
	}
	if caller == listing.Seller {
		return errf(ErrSelfReference, "seller cannot bid on own auction")
	}
	minBid := listing.Price
	if listing.HighestBid > 0 {
		minBid, err = checkedAdd(listing.HighestBid, listing.MinBidIncrement)
		if err != nil {
			return err
		}
	}
	if payment < minBid {
		return errf(ErrInsufficientBid, "bid %d below minimum %d", payment, minBid)
	}

	// New bid into escrow first, then the outgoing refund, then state.
	if err := l.bank.Transfer(caller, escrowAccount, payment); err != nil {
		return err
	}
	if listing.HighestBid > 0 {
		if err := l.bank.Transfer(escrowAccount, listing.HighestBidder, listing.HighestBid); err != nil {
			l.bank.Transfer(escrowAccount, caller, payment)
			return err
		}
	}
	prev := listing.HighestBidder
	listing.HighestBidder = caller
	listing.HighestBid = payment
	l.emit("market.bid", map[string]interface{}{
		"asset_id": assetID, "bidder": caller, "bid": payment, "refunded": prev,
	})
	return nil
}

// EndAuction settles an auction at the final highest bid. Anyone may call
// once the deadline has passed; the seller may end early. With no bids the
// listing is simply cleared.
func (l *Ledger) EndAuction(caller Address, assetID uint64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	listing, ok := l.state.listings[assetID]
	if !ok {
		return errf(ErrNotFound, "listing for asset %d", assetID)
	}
	if !listing.IsAuction {
		return errf(ErrInvalidStateTransition, "asset %d is a fixed-price listing", assetID)
	}
	deadlinePassed := listing.Deadline != 0 && l.now() >= listing.Deadline
	if !deadlinePassed && caller != listing.Seller {
		return errf(ErrUnauthorized, "only the seller may end an auction early")
	}
	if listing.HighestBid == 0 {
		delete(l.state.listings, assetID)
		l.emit("market.auction_ended", map[string]interface{}{"asset_id": assetID, "sold": false})
		return nil
	}
	if err := l.settleSale(listing.HighestBidder, listing, listing.HighestBid); err != nil {
		return err
	}
	return nil
}

// CancelListing removes a listing. Seller or Admin only. Refund fields are
// read before the record is cleared; with an outstanding bid the highest
// bidder is refunded in full from escrow.
func (l *Ledger) CancelListing(caller Address, assetID uint64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	listing, ok := l.state.listings[assetID]
	if !ok {
		return errf(ErrNotFound, "listing for asset %d", assetID)
	}
	if caller != listing.Seller && !l.hasCapability(caller, RoleAdmin) {
		return errf(ErrUnauthorized, "only seller or admin may cancel")
	}
	refundTo := listing.HighestBidder
	refund := int64(0)
	if listing.IsAuction {
		refund = listing.HighestBid
	}
	delete(l.state.listings, assetID)
	if refund > 0 {
		if err := l.bank.Transfer(escrowAccount, refundTo, refund); err != nil {
			l.state.listings[assetID] = listing
			return err
		}
	}
	l.emit("market.cancelled", map[string]interface{}{
		"asset_id": assetID, "by": caller, "refunded": refund,
	})
	return nil
}

// settleSale clears the listing, pays royalty/fee/seller from payer funds
// and transfers ownership. For auctions the payer is the escrow account
// holding the final bid. Lock must be held.
func (l *Ledger) settleSale(buyer Address, listing *Listing, amount int64) error {
	asset, ok := l.state.assets[listing.AssetID]
	if !ok {
		return errf(ErrNotFound, "asset %d", listing.AssetID)
	}
	royalty, err := bpsShare(amount, asset.RoyaltyBps)
	if err != nil {
		return err
	}
	fee, err := bpsShare(amount, l.state.feeBps)
	if err != nil {
		return err
	}
	sellerAmount := amount - royalty - fee

	// Earnings bumps are staged up front so a counter overflow aborts before
	// any balance moves. Unregistered sellers simply carry no counter.
	var creditEarnings []func()
	if _, registered := l.state.creators[listing.Seller]; registered {
		credit, err := l.stageEarnings(listing.Seller, sellerAmount)
		if err != nil {
			return err
		}
		creditEarnings = append(creditEarnings, credit)
	}
	if royalty > 0 && asset.Creator != listing.Seller {
		if _, registered := l.state.creators[asset.Creator]; registered {
			credit, err := l.stageEarnings(asset.Creator, royalty)
			if err != nil {
				return err
			}
			creditEarnings = append(creditEarnings, credit)
		}
	}

	payer := buyer
	if listing.IsAuction {
		payer = escrowAccount
	}

	// Effects before transfers: the listing is gone before any leg runs.
	delete(l.state.listings, listing.AssetID)

	legs := []struct {
		to     Address
		amount int64
	}{
		{listing.Seller, sellerAmount},
		{asset.Creator, royalty},
		{l.state.treasury, fee},
	}
	for i, leg := range legs {
		if err := l.bank.Transfer(payer, leg.to, leg.amount); err != nil {
			for j := 0; j < i; j++ {
				l.bank.Transfer(legs[j].to, payer, legs[j].amount)
			}
			l.state.listings[listing.AssetID] = listing
			return err
		}
	}

	for _, credit := range creditEarnings {
		credit()
	}
	asset.Owner = buyer
	l.emit("market.sold", map[string]interface{}{
		"asset_id": listing.AssetID, "buyer": buyer, "seller": listing.Seller,
		"amount": amount, "royalty": royalty, "fee": fee,
	})
	return nil
}

// GetListing returns a copy of the active listing for an asset.
func (l *Ledger) GetListing(assetID uint64) (Listing, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	listing, ok := l.state.listings[assetID]
	if !ok {
		return Listing{}, errf(ErrNotFound, "listing for asset %d", assetID)
	}
	return *listing, nil
}
