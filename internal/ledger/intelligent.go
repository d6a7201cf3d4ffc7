// internal/ledger/intelligent.go
package ledger

// MintIntelligentAsset mints an asset whose off-chain payload is encrypted
// and committed to by metadataHash. Minter capability required. contentID
// may be 0 for assets without a catalog linkage.
func (l *Ledger) MintIntelligentAsset(caller, owner Address, encryptedRef string, metadataHash Hash32, ctype ContentType, royaltyBps uint32, transferable, updatable bool, tags []string, contentID uint64) (uint64, error) {
	release, err := l.begin(false)
	if err != nil {
		return 0, err
	}
	defer release()
	if err := l.requireCapability(caller, RoleMinter); err != nil {
		return 0, err
	}
	if _, err := l.activeCreator(owner); err != nil {
		return 0, err
	}
	if encryptedRef == "" {
		return 0, errf(ErrInvalidInput, "encrypted reference is required")
	}
	if metadataHash == zeroHash {
		return 0, errf(ErrInvalidInput, "zero metadata hash")
	}
	if royaltyBps > MaxRoyaltyBps {
		return 0, errf(ErrInvalidInput, "royalty %d exceeds cap %d", royaltyBps, MaxRoyaltyBps)
	}
	if len(tags) > MaxTags {
		return 0, errf(ErrInvalidInput, "%d tags exceeds limit of %d", len(tags), MaxTags)
	}
	if contentID != 0 {
		content, err := l.activeContent(contentID)
		if err != nil {
			return 0, err
		}
		if content.IsNFT {
			return 0, errf(ErrAlreadyMinted, "content %d already linked to asset %d", contentID, content.NFTTokenID)
		}
	}

	l.state.nextAssetID++
	id := l.state.nextAssetID
	l.state.assets[id] = &Asset{
		ID:           id,
		Creator:      owner,
		Owner:        owner,
		ContentID:    contentID,
		Type:         ctype,
		RoyaltyBps:   royaltyBps,
		Transferable: transferable,
		Tags:         append([]string(nil), tags...),
		MintedAt:     l.now(),
		Intelligence: &IntelligenceRecord{
			EncryptedReference: encryptedRef,
			MetadataHash:       metadataHash,
			Updatable:          updatable,
			Authorizations:     make(map[Address]string),
		},
	}
	if contentID != 0 {
		if err := l.markMinted(contentID, id); err != nil {
			return 0, err
		}
	}
	l.emit("iasset.minted", map[string]interface{}{
		"asset_id": id, "owner": owner, "content_id": contentID, "by": caller,
	})
	return id, nil
}

// UpdateAssetMetadata re-points an updatable intelligent asset at a new
// encrypted payload. Owner only.
func (l *Ledger) UpdateAssetMetadata(caller Address, assetID uint64, newRef string, newHash Hash32) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	asset, record, err := l.intelligentAsset(assetID)
	if err != nil {
		return err
	}
	if asset.Owner != caller {
		return errf(ErrUnauthorized, "asset %d is not owned by %s", assetID, caller)
	}
	if !record.Updatable {
		return errf(ErrInvalidStateTransition, "asset %d metadata is frozen", assetID)
	}
	if newRef == "" {
		return errf(ErrInvalidInput, "encrypted reference is required")
	}
	if newHash == zeroHash {
		return errf(ErrInvalidInput, "zero metadata hash")
	}
	record.EncryptedReference = newRef
	record.MetadataHash = newHash
	l.emit("iasset.metadata_updated", map[string]interface{}{"asset_id": assetID})
	return nil
}

// AuthorizeUsage stores an authorization blob for grantee on the asset.
// Owner only; a later grant for the same grantee replaces the blob.
func (l *Ledger) AuthorizeUsage(caller Address, assetID uint64, grantee Address, blob string) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	asset, record, err := l.intelligentAsset(assetID)
	if err != nil {
		return err
	}
	if asset.Owner != caller {
		return errf(ErrUnauthorized, "asset %d is not owned by %s", assetID, caller)
	}
	if grantee == "" || blob == "" {
		return errf(ErrInvalidInput, "grantee and authorization blob are required")
	}
	record.Authorizations[grantee] = blob
	l.emit("iasset.usage_authorized", map[string]interface{}{"asset_id": assetID, "grantee": grantee})
	return nil
}

// TransferWithProof runs the oracle-authorized transfer protocol: the stored
// metadata hash must match oldHash (stale proofs are rejected), the oracle
// signature over (assetID, from, to, oldHash, newHash) must verify and be
// unused, and then the metadata swap and ownership transfer apply together.
func (l *Ledger) TransferWithProof(caller Address, assetID uint64, to Address, oldHash, newHash Hash32, newRef string, oracleSignature []byte) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	asset, record, err := l.intelligentAsset(assetID)
	if err != nil {
		return err
	}
	if asset.Owner != caller {
		return errf(ErrUnauthorized, "asset %d is not owned by %s", assetID, caller)
	}
	if !asset.Transferable {
		return errf(ErrInvalidStateTransition, "asset %d is not transferable", assetID)
	}
	if to == "" {
		return errf(ErrInvalidInput, "empty recipient")
	}
	if to == caller {
		return errf(ErrSelfReference, "cannot transfer to self")
	}
	if newRef == "" {
		return errf(ErrInvalidInput, "encrypted reference is required")
	}
	if newHash == zeroHash {
		return errf(ErrInvalidInput, "zero metadata hash")
	}
	if record.MetadataHash != oldHash {
		return errf(ErrInvalidStateTransition, "stale proof: asset %d metadata hash changed", assetID)
	}
	if _, exists := l.state.listings[assetID]; exists {
		return errf(ErrInvalidStateTransition, "asset %d has an active listing", assetID)
	}

	digest := TransferDigest(assetID, caller, to, oldHash, newHash)
	oracle, err := l.verifyAndConsume(digest, oracleSignature, RoleOracle)
	if err != nil {
		return err
	}

	// Metadata swap and ownership transfer apply together after the digest
	// is consumed; nothing below can fail.
	record.EncryptedReference = newRef
	record.MetadataHash = newHash
	asset.Owner = to
	l.state.transferProofs = append(l.state.transferProofs, TransferProof{
		AssetID:            assetID,
		From:               caller,
		To:                 to,
		OldHash:            oldHash,
		NewHash:            newHash,
		EncryptedReference: newRef,
		Digest:             digest,
		VerifiedAt:         l.now(),
	})
	l.emit("iasset.transferred", map[string]interface{}{
		"asset_id": assetID, "from": caller, "to": to, "oracle": oracle,
	})
	return nil
}

// TransferAsset is the plain ownership transfer for assets outside the proof
// protocol. Intelligent assets must go through TransferWithProof; plain
// assets still require the transferable flag.
func (l *Ledger) TransferAsset(caller Address, assetID uint64, to Address) error {
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
	if !asset.Transferable {
		return errf(ErrInvalidStateTransition, "asset %d is not transferable", assetID)
	}
	if asset.Intelligence != nil {
		return errf(ErrInvalidStateTransition, "asset %d requires a transfer proof", assetID)
	}
	if to == "" {
		return errf(ErrInvalidInput, "empty recipient")
	}
	if to == caller {
		return errf(ErrSelfReference, "cannot transfer to self")
	}
	if _, exists := l.state.listings[assetID]; exists {
		return errf(ErrInvalidStateTransition, "asset %d has an active listing", assetID)
	}
	asset.Owner = to
	l.emit("asset.transferred", map[string]interface{}{"asset_id": assetID, "from": caller, "to": to})
	return nil
}

func (l *Ledger) intelligentAsset(assetID uint64) (*Asset, *IntelligenceRecord, error) {
	asset, ok := l.state.assets[assetID]
	if !ok {
		return nil, nil, errf(ErrNotFound, "asset %d", assetID)
	}
	if asset.Intelligence == nil {
		return nil, nil, errf(ErrInvalidStateTransition, "asset %d is not an intelligent asset", assetID)
	}
	return asset, asset.Intelligence, nil
}

// GetAsset returns a copy of the asset record.
func (l *Ledger) GetAsset(assetID uint64) (Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	asset, ok := l.state.assets[assetID]
	if !ok {
		return Asset{}, errf(ErrNotFound, "asset %d", assetID)
	}
	out := *asset
	out.Tags = append([]string(nil), asset.Tags...)
	if asset.Intelligence != nil {
		rec := *asset.Intelligence
		rec.Authorizations = make(map[Address]string, len(asset.Intelligence.Authorizations))
		for k, v := range asset.Intelligence.Authorizations {
			rec.Authorizations[k] = v
		}
		out.Intelligence = &rec
	}
	return out, nil
}

// TransferProofs returns the consumed proof records for one asset.
func (l *Ledger) TransferProofs(assetID uint64) []TransferProof {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []TransferProof
	for _, p := range l.state.transferProofs {
		if p.AssetID == assetID {
			out = append(out, p)
		}
	}
	return out
}
