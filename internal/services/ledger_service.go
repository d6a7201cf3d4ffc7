// internal/services/ledger_service.go
package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/creolabs/creator-ledger/internal/config"
	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/models"
	"github.com/creolabs/creator-ledger/internal/utils"
)

// LedgerService owns the in-process ledger core and is the only writer to
// it. Every committed operation's events are journaled to Postgres and the
// affected read models are re-synced from core state, so the database always
// trails the core by at most one operation. A nil db (tests, dev without
// Postgres) skips persistence but keeps full core semantics.
type LedgerService struct {
	db   *gorm.DB
	cfg  *config.Config
	core *ledger.Ledger

	opMu  sync.Mutex
	bufMu sync.Mutex
	buf   []ledger.Event
}

func NewLedgerService(db *gorm.DB, cfg *config.Config) (*LedgerService, error) {
	s := &LedgerService{
		db:  db,
		cfg: cfg,
	}

	core, err := ledger.New(ledger.Config{
		Admin:    ledger.Address(cfg.Ledger.AdminAddress),
		Treasury: ledger.Address(cfg.Ledger.TreasuryAddress),
		FeeBps:   cfg.Ledger.FeeBps,
		Clock:    ledger.ClockFunc(func() int64 { return time.Now().Unix() }),
		EventSink: func(ev ledger.Event) {
			s.bufMu.Lock()
			s.buf = append(s.buf, ev)
			s.bufMu.Unlock()
		},
	})
	if err != nil {
		return nil, err
	}

	s.core = core
	return s, nil
}

// Core exposes the ledger for reads and capability checks. Mutations must go
// through the service wrappers so they get journaled.
func (s *LedgerService) Core() *ledger.Ledger {
	return s.core
}

func (s *LedgerService) drain() []ledger.Event {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	evs := s.buf
	s.buf = nil
	return evs
}

// commit runs one core operation and, if it succeeded, journals its events
// and re-syncs the read models it touched. Failed operations emit nothing,
// so the drained buffer is empty on the error path.
func (s *LedgerService) commit(op func() error) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := op()
	evs := s.drain()
	if err != nil {
		return err
	}

	s.journal(evs)
	s.syncReadModels(evs)
	return nil
}

func (s *LedgerService) journal(evs []ledger.Event) {
	for _, ev := range evs {
		logrus.WithFields(logrus.Fields{
			"seq":  ev.Seq,
			"kind": ev.Kind,
			"time": ev.Time,
		}).Info("Ledger event committed")

		if s.db == nil {
			continue
		}

		row := &models.LedgerEvent{
			Seq:        ev.Seq,
			LedgerTime: ev.Time,
			Kind:       ev.Kind,
			Payload:    models.JSONB(ev.Data),
		}
		if err := s.db.Create(row).Error; err != nil {
			logrus.WithError(err).WithField("seq", ev.Seq).Error("Failed to journal ledger event")
		}
	}
}

// syncReadModels collects the entities named in the committed events and
// upserts their read models from current core state.
func (s *LedgerService) syncReadModels(evs []ledger.Event) {
	if s.db == nil {
		return
	}

	creators := make(map[ledger.Address]struct{})
	contents := make(map[uint64]struct{})
	assets := make(map[uint64]struct{})
	collabs := make(map[uint64]struct{})

	for _, ev := range evs {
		for key, value := range ev.Data {
			switch key {
			case "content_id":
				if id, ok := value.(uint64); ok {
					contents[id] = struct{}{}
				}
			case "asset_id":
				if id, ok := value.(uint64); ok {
					assets[id] = struct{}{}
				}
			case "collab_id":
				if id, ok := value.(uint64); ok {
					collabs[id] = struct{}{}
				}
			case "identity", "creator", "follower", "target", "buyer", "seller",
				"from", "to", "subscriber", "grantee", "owner":
				if addr, ok := value.(ledger.Address); ok {
					creators[addr] = struct{}{}
				}
			}
		}
	}

	for addr := range creators {
		s.upsertCreator(addr)
	}
	for id := range contents {
		s.upsertContent(id)
	}
	for id := range assets {
		s.upsertAsset(id)
		s.upsertListing(id)
	}
	for id := range collabs {
		s.upsertCollaboration(id)
	}
}

func (s *LedgerService) upsertCreator(addr ledger.Address) {
	creator, err := s.core.GetCreator(addr)
	if err != nil {
		return // unregistered addresses have no read model
	}

	var rec models.CreatorRecord
	found := s.db.Where("address = ?", string(addr)).First(&rec).Error == nil

	rec.Address = string(creator.Address)
	rec.Username = creator.Username
	rec.Bio = creator.Bio
	rec.ProfileRef = creator.ProfileRef
	rec.CreatorType = string(creator.Type)
	rec.TotalEarnings = creator.TotalEarnings
	rec.FollowerCount = creator.FollowerCount
	rec.ContentCount = creator.ContentCount
	rec.IsVerified = creator.IsVerified
	rec.IsActive = creator.IsActive

	s.saveRecord(found, &rec, "creator", string(addr))
}

func (s *LedgerService) upsertContent(id uint64) {
	content, err := s.core.GetContent(id)
	if err != nil {
		return
	}

	var rec models.ContentRecord
	found := s.db.Where("content_id = ?", id).First(&rec).Error == nil

	rec.ContentID = content.ID
	rec.Creator = string(content.Creator)
	rec.Title = content.Title
	rec.ContentRef = content.ContentRef
	rec.ContentType = string(content.Type)
	rec.Category = content.Category
	rec.Tags = content.Tags
	rec.Views = content.Views
	rec.Likes = content.Likes
	rec.Tips = content.Tips
	rec.ForSale = content.ForSale
	rec.Price = content.Price
	rec.IsNFT = content.IsNFT
	rec.NFTTokenID = content.NFTTokenID
	rec.AIReceiptRef = content.AIReceiptRef
	rec.IsActive = content.IsActive

	s.saveRecord(found, &rec, "content", id)
}

func (s *LedgerService) upsertAsset(id uint64) {
	asset, err := s.core.GetAsset(id)
	if err != nil {
		return
	}

	var rec models.AssetRecord
	found := s.db.Where("asset_id = ?", id).First(&rec).Error == nil

	rec.AssetID = asset.ID
	rec.Creator = string(asset.Creator)
	rec.Owner = string(asset.Owner)
	rec.ContentID = asset.ContentID
	rec.AssetType = string(asset.Type)
	rec.RoyaltyBps = asset.RoyaltyBps
	rec.Transferable = asset.Transferable
	rec.IsIntelligent = asset.Intelligence != nil
	rec.Tags = asset.Tags

	s.saveRecord(found, &rec, "asset", id)
}

func (s *LedgerService) upsertListing(assetID uint64) {
	var rec models.ListingRecord
	found := s.db.Where("asset_id = ?", assetID).First(&rec).Error == nil

	listing, err := s.core.GetListing(assetID)
	if err != nil {
		// No open listing; close the read model if one exists.
		if found && rec.IsOpen {
			rec.IsOpen = false
			s.saveRecord(true, &rec, "listing", assetID)
		}
		return
	}

	rec.AssetID = listing.AssetID
	rec.Seller = string(listing.Seller)
	rec.Price = listing.Price
	rec.Deadline = listing.Deadline
	rec.IsAuction = listing.IsAuction
	rec.MinBidIncrement = listing.MinBidIncrement
	rec.HighestBidder = string(listing.HighestBidder)
	rec.HighestBid = listing.HighestBid
	rec.IsOpen = true

	s.saveRecord(found, &rec, "listing", assetID)
}

func (s *LedgerService) upsertCollaboration(id uint64) {
	collab, err := s.core.GetCollaboration(id)
	if err != nil {
		return
	}

	var rec models.CollaborationRecord
	found := s.db.Where("collab_id = ?", id).First(&rec).Error == nil

	rec.CollabID = collab.ID
	rec.Proposer = string(collab.Proposer)
	participants := make([]string, len(collab.Participants))
	for i, p := range collab.Participants {
		participants[i] = string(p)
	}
	rec.Participants = participants
	shares := make([]int64, len(collab.Shares))
	for i, sh := range collab.Shares {
		shares[i] = int64(sh)
	}
	rec.Shares = shares
	rec.Status = string(collab.Status)
	rec.Deadline = collab.Deadline
	rec.TotalRevenue = collab.TotalRevenue

	s.saveRecord(found, &rec, "collaboration", id)
}

func (s *LedgerService) saveRecord(found bool, rec interface{}, kind string, key interface{}) {
	var err error
	if found {
		err = s.db.Save(rec).Error
	} else {
		err = s.db.Create(rec).Error
	}
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"kind": kind,
			"key":  key,
		}).Error("Failed to sync read model")
	}
}

// --- creator registry ---

func (s *LedgerService) Register(caller ledger.Address, username, bio, profileRef string, ctype ledger.CreatorType) error {
	return s.commit(func() error { return s.core.Register(caller, username, bio, profileRef, ctype) })
}

func (s *LedgerService) UpdateProfile(caller ledger.Address, username, bio, profileRef string) error {
	return s.commit(func() error { return s.core.UpdateProfile(caller, username, bio, profileRef) })
}

func (s *LedgerService) Follow(caller, target ledger.Address) error {
	return s.commit(func() error { return s.core.Follow(caller, target) })
}

func (s *LedgerService) Unfollow(caller, target ledger.Address) error {
	return s.commit(func() error { return s.core.Unfollow(caller, target) })
}

func (s *LedgerService) VerifyCreator(caller, identity ledger.Address) error {
	return s.commit(func() error { return s.core.VerifyCreator(caller, identity) })
}

func (s *LedgerService) GrantRole(caller, identity ledger.Address, role ledger.Role) error {
	return s.commit(func() error { return s.core.GrantRole(caller, identity, role) })
}

func (s *LedgerService) RevokeRole(caller, identity ledger.Address, role ledger.Role) error {
	return s.commit(func() error { return s.core.RevokeRole(caller, identity, role) })
}

// --- content catalog ---

func (s *LedgerService) Publish(caller ledger.Address, title, contentRef string, ctype ledger.ContentType, category string, price int64, forSale bool, tags []string) (uint64, error) {
	var id uint64
	err := s.commit(func() error {
		var opErr error
		id, opErr = s.core.Publish(caller, title, contentRef, ctype, category, price, forSale, tags)
		return opErr
	})
	return id, err
}

func (s *LedgerService) RecordInteraction(contentID uint64, kind ledger.InteractionKind) error {
	// Interactions mutate counters without emitting events; sync directly.
	err := s.commit(func() error { return s.core.RecordInteraction(contentID, kind) })
	if err == nil && s.db != nil {
		s.upsertContent(contentID)
	}
	return err
}

func (s *LedgerService) SetForSale(caller ledger.Address, contentID uint64, forSale bool, price int64) error {
	err := s.commit(func() error { return s.core.SetForSale(caller, contentID, forSale, price) })
	if err == nil && s.db != nil {
		s.upsertContent(contentID)
	}
	return err
}

// --- economy ---

func (s *LedgerService) Purchase(caller ledger.Address, contentID uint64, payment int64) error {
	return s.commit(func() error { return s.core.Purchase(caller, contentID, payment) })
}

func (s *LedgerService) Tip(caller ledger.Address, contentID uint64, amount int64) error {
	return s.commit(func() error { return s.core.Tip(caller, contentID, amount) })
}

func (s *LedgerService) CreateSubscription(caller ledger.Address, monthlyPrice int64) error {
	return s.commit(func() error { return s.core.CreateSubscription(caller, monthlyPrice) })
}

func (s *LedgerService) Subscribe(caller, creator ledger.Address, months int, payment int64) error {
	return s.commit(func() error { return s.core.Subscribe(caller, creator, months, payment) })
}

func (s *LedgerService) VerifyAIProcessing(caller ledger.Address, contentID uint64, receiptRef string, signature []byte) error {
	return s.commit(func() error { return s.core.VerifyAIProcessing(caller, contentID, receiptRef, signature) })
}

// --- collaborations ---

func (s *LedgerService) ProposeCollaboration(caller ledger.Address, participants []ledger.Address, shares []uint32, deadline int64) (uint64, error) {
	var id uint64
	err := s.commit(func() error {
		var opErr error
		id, opErr = s.core.ProposeCollaboration(caller, participants, shares, deadline)
		return opErr
	})
	return id, err
}

func (s *LedgerService) AcceptCollaboration(caller ledger.Address, collabID uint64) error {
	return s.commit(func() error { return s.core.AcceptCollaboration(caller, collabID) })
}

func (s *LedgerService) CompleteCollaboration(caller ledger.Address, collabID uint64) error {
	return s.commit(func() error { return s.core.CompleteCollaboration(caller, collabID) })
}

func (s *LedgerService) CancelCollaboration(caller ledger.Address, collabID uint64) error {
	return s.commit(func() error { return s.core.CancelCollaboration(caller, collabID) })
}

func (s *LedgerService) DistributeRevenue(caller ledger.Address, collabID uint64, payment int64) error {
	return s.commit(func() error { return s.core.DistributeRevenue(caller, collabID, payment) })
}

// --- marketplace ---

func (s *LedgerService) MintContentAsset(caller ledger.Address, contentID uint64, royaltyBps uint32, transferable bool) (uint64, error) {
	var id uint64
	err := s.commit(func() error {
		var opErr error
		id, opErr = s.core.MintContentAsset(caller, contentID, royaltyBps, transferable)
		return opErr
	})
	return id, err
}

func (s *LedgerService) List(caller ledger.Address, assetID uint64, price, duration int64, isAuction bool, minIncrement int64) error {
	return s.commit(func() error { return s.core.List(caller, assetID, price, duration, isAuction, minIncrement) })
}

func (s *LedgerService) BuyNow(caller ledger.Address, assetID uint64, payment int64) error {
	return s.commit(func() error { return s.core.BuyNow(caller, assetID, payment) })
}

func (s *LedgerService) PlaceBid(caller ledger.Address, assetID uint64, payment int64) error {
	return s.commit(func() error { return s.core.PlaceBid(caller, assetID, payment) })
}

func (s *LedgerService) EndAuction(caller ledger.Address, assetID uint64) error {
	return s.commit(func() error { return s.core.EndAuction(caller, assetID) })
}

func (s *LedgerService) CancelListing(caller ledger.Address, assetID uint64) error {
	return s.commit(func() error { return s.core.CancelListing(caller, assetID) })
}

// --- intelligent assets ---

func (s *LedgerService) MintIntelligentAsset(caller, owner ledger.Address, encryptedRef string, metadataHash ledger.Hash32, ctype ledger.ContentType, royaltyBps uint32, transferable, updatable bool, tags []string, contentID uint64) (uint64, error) {
	var id uint64
	err := s.commit(func() error {
		var opErr error
		id, opErr = s.core.MintIntelligentAsset(caller, owner, encryptedRef, metadataHash, ctype, royaltyBps, transferable, updatable, tags, contentID)
		return opErr
	})
	return id, err
}

func (s *LedgerService) UpdateAssetMetadata(caller ledger.Address, assetID uint64, newRef string, newHash ledger.Hash32) error {
	return s.commit(func() error { return s.core.UpdateAssetMetadata(caller, assetID, newRef, newHash) })
}

func (s *LedgerService) AuthorizeUsage(caller ledger.Address, assetID uint64, grantee ledger.Address, blob string) error {
	return s.commit(func() error { return s.core.AuthorizeUsage(caller, assetID, grantee, blob) })
}

func (s *LedgerService) TransferWithProof(caller ledger.Address, assetID uint64, to ledger.Address, oldHash, newHash ledger.Hash32, newRef string, oracleSignature []byte) error {
	return s.commit(func() error {
		return s.core.TransferWithProof(caller, assetID, to, oldHash, newHash, newRef, oracleSignature)
	})
}

func (s *LedgerService) TransferAsset(caller ledger.Address, assetID uint64, to ledger.Address) error {
	return s.commit(func() error { return s.core.TransferAsset(caller, assetID, to) })
}

// --- administration ---

func (s *LedgerService) SetFeeBps(caller ledger.Address, feeBps uint32) error {
	return s.commit(func() error { return s.core.SetFeeBps(caller, feeBps) })
}

func (s *LedgerService) SetTreasury(caller, treasury ledger.Address) error {
	return s.commit(func() error { return s.core.SetTreasury(caller, treasury) })
}

func (s *LedgerService) Pause(caller ledger.Address) error {
	return s.commit(func() error { return s.core.Pause(caller) })
}

func (s *LedgerService) Unpause(caller ledger.Address) error {
	return s.commit(func() error { return s.core.Unpause(caller) })
}

func (s *LedgerService) SetOracle(caller, identity ledger.Address) error {
	return s.commit(func() error { return s.core.SetOracle(caller, identity) })
}

func (s *LedgerService) EmergencyWithdraw(caller, to ledger.Address) (int64, error) {
	var amount int64
	err := s.commit(func() error {
		var opErr error
		amount, opErr = s.core.EmergencyWithdraw(caller, to)
		return opErr
	})
	return amount, err
}

func (s *LedgerService) Deposit(identity ledger.Address, amount int64) error {
	return s.commit(func() error { return s.core.Deposit(identity, amount) })
}

func (s *LedgerService) Withdraw(identity ledger.Address, amount int64) error {
	return s.commit(func() error { return s.core.Withdraw(identity, amount) })
}

// --- read-model queries (browse surfaces) ---

func (s *LedgerService) SearchContents(params utils.PaginationParams) ([]models.ContentRecord, int64, error) {
	if s.db == nil {
		return nil, 0, nil
	}
	query := s.db.Model(&models.ContentRecord{}).Where("is_active = ?", true)

	if params.Search != "" {
		query = query.Where("title ILIKE ?", "%"+params.Search+"%")
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Tag != "" {
		query = query.Where("? = ANY(tags)", params.Tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	allowedSortFields := []string{"created_at", "views", "likes", "tips", "price"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var records []models.ContentRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *LedgerService) SearchCreators(params utils.PaginationParams) ([]models.CreatorRecord, int64, error) {
	if s.db == nil {
		return nil, 0, nil
	}
	query := s.db.Model(&models.CreatorRecord{}).Where("is_active = ?", true)

	if params.Search != "" {
		query = query.Where("username ILIKE ?", "%"+params.Search+"%")
	}
	if params.Category != "" {
		query = query.Where("creator_type = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	allowedSortFields := []string{"created_at", "total_earnings", "follower_count", "content_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var records []models.CreatorRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *LedgerService) SearchListings(params utils.PaginationParams) ([]models.ListingRecord, int64, error) {
	if s.db == nil {
		return nil, 0, nil
	}
	query := s.db.Model(&models.ListingRecord{}).Where("is_open = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	allowedSortFields := []string{"created_at", "price", "deadline", "highest_bid"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var records []models.ListingRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// PlatformStats aggregates the read models into an admin dashboard snapshot.
func (s *LedgerService) PlatformStats() map[string]interface{} {
	stats := map[string]interface{}{
		"fee_bps":  s.core.FeeBps(),
		"treasury": s.core.Treasury(),
		"paused":   s.core.Paused(),
	}
	if s.db == nil {
		return stats
	}

	var creators, contents, assets, openListings, collabs, events int64
	s.db.Model(&models.CreatorRecord{}).Count(&creators)
	s.db.Model(&models.ContentRecord{}).Count(&contents)
	s.db.Model(&models.AssetRecord{}).Count(&assets)
	s.db.Model(&models.ListingRecord{}).Where("is_open = ?", true).Count(&openListings)
	s.db.Model(&models.CollaborationRecord{}).Count(&collabs)
	s.db.Model(&models.LedgerEvent{}).Count(&events)

	var totalEarnings int64
	s.db.Model(&models.CreatorRecord{}).Select("COALESCE(SUM(total_earnings), 0)").Scan(&totalEarnings)

	stats["creators"] = creators
	stats["contents"] = contents
	stats["assets"] = assets
	stats["open_listings"] = openListings
	stats["collaborations"] = collabs
	stats["events"] = events
	stats["total_creator_earnings"] = totalEarnings
	return stats
}

func (s *LedgerService) RecentEvents(params utils.PaginationParams) ([]models.LedgerEvent, int64, error) {
	if s.db == nil {
		return nil, 0, nil
	}
	query := s.db.Model(&models.LedgerEvent{})
	if params.Search != "" {
		query = query.Where("kind = ?", params.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("seq desc")
	query = utils.ApplyPagination(query, params)

	var events []models.LedgerEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
