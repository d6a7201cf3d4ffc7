// internal/ledger/catalog.go
package ledger

// InteractionKind selects the counter bumped by RecordInteraction.
type InteractionKind string

const (
	InteractionView InteractionKind = "view"
	InteractionLike InteractionKind = "like"
)

// Publish creates a content record owned by the caller and indexes it by
// type, category, tag and owner. Ids are monotonically assigned and never
// reused.
func (l *Ledger) Publish(caller Address, title, contentRef string, ctype ContentType, category string, price int64, forSale bool, tags []string) (uint64, error) {
	release, err := l.begin(false)
	if err != nil {
		return 0, err
	}
	defer release()
	creator, err := l.activeCreator(caller)
	if err != nil {
		return 0, err
	}
	if title == "" || contentRef == "" {
		return 0, errf(ErrInvalidInput, "title and content reference are required")
	}
	if len(tags) > MaxTags {
		return 0, errf(ErrInvalidInput, "%d tags exceeds limit of %d", len(tags), MaxTags)
	}
	if forSale && price <= 0 {
		return 0, errf(ErrInvalidInput, "sale price must be positive")
	}
	if price < 0 {
		return 0, errf(ErrInvalidInput, "negative price")
	}
	switch ctype {
	case ContentTypeImage, ContentTypeVideo, ContentTypeAudio, ContentTypeText, ContentTypeModel:
	default:
		return 0, errf(ErrInvalidInput, "unknown content type %q", ctype)
	}

	l.state.nextContentID++
	id := l.state.nextContentID
	content := &Content{
		ID:          id,
		Creator:     caller,
		Title:       title,
		ContentRef:  contentRef,
		Type:        ctype,
		Category:    category,
		Tags:        append([]string(nil), tags...),
		ForSale:     forSale,
		Price:       price,
		IsActive:    true,
		PublishedAt: l.now(),
	}
	l.state.contents[id] = content
	l.state.byType[ctype] = append(l.state.byType[ctype], id)
	if category != "" {
		l.state.byCategory[category] = append(l.state.byCategory[category], id)
	}
	for _, tag := range content.Tags {
		l.state.byTag[tag] = append(l.state.byTag[tag], id)
	}
	l.state.byOwner[caller] = append(l.state.byOwner[caller], id)
	creator.ContentCount++

	l.emit("content.published", map[string]interface{}{"content_id": id, "creator": caller, "type": ctype})
	return id, nil
}

// RecordInteraction bumps a view or like counter. No payment involved.
func (l *Ledger) RecordInteraction(contentID uint64, kind InteractionKind) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	content, err := l.activeContent(contentID)
	if err != nil {
		return err
	}
	switch kind {
	case InteractionView:
		content.Views++
	case InteractionLike:
		content.Likes++
	default:
		return errf(ErrInvalidInput, "unknown interaction %q", kind)
	}
	return nil
}

// SetForSale toggles the fixed-price flag on caller-owned content.
func (l *Ledger) SetForSale(caller Address, contentID uint64, forSale bool, price int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	content, err := l.activeContent(contentID)
	if err != nil {
		return err
	}
	if content.Creator != caller {
		return errf(ErrUnauthorized, "content %d is not owned by %s", contentID, caller)
	}
	if forSale && price <= 0 {
		return errf(ErrInvalidInput, "sale price must be positive")
	}
	content.ForSale = forSale
	content.Price = price
	return nil
}

// markMinted links content to its minted asset. Only the minting engines call
// it (lock already held). A second call is rejected: the linkage is set
// exactly once.
func (l *Ledger) markMinted(contentID, assetID uint64) error {
	content, err := l.activeContent(contentID)
	if err != nil {
		return err
	}
	if content.IsNFT {
		return errf(ErrAlreadyMinted, "content %d already linked to asset %d", contentID, content.NFTTokenID)
	}
	content.IsNFT = true
	content.NFTTokenID = assetID
	return nil
}

func (l *Ledger) activeContent(contentID uint64) (*Content, error) {
	content, ok := l.state.contents[contentID]
	if !ok {
		return nil, errf(ErrNotFound, "content %d", contentID)
	}
	if !content.IsActive {
		return nil, errf(ErrInactiveEntity, "content %d", contentID)
	}
	return content, nil
}

// GetContent returns a copy of the content record.
func (l *Ledger) GetContent(contentID uint64) (Content, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	content, ok := l.state.contents[contentID]
	if !ok {
		return Content{}, errf(ErrNotFound, "content %d", contentID)
	}
	out := *content
	out.Tags = append([]string(nil), content.Tags...)
	return out, nil
}

// ContentIDs returns ids from one discovery index.
func (l *Ledger) ContentIDsByType(ctype ContentType) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]uint64(nil), l.state.byType[ctype]...)
}

func (l *Ledger) ContentIDsByCategory(category string) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]uint64(nil), l.state.byCategory[category]...)
}

func (l *Ledger) ContentIDsByTag(tag string) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]uint64(nil), l.state.byTag[tag]...)
}

func (l *Ledger) ContentIDsByOwner(owner Address) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]uint64(nil), l.state.byOwner[owner]...)
}
