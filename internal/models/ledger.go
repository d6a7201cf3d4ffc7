// internal/models/ledger.go
package models

import (
	"github.com/lib/pq"
)

// Read models mirroring committed ledger state. They are upserted by the
// ledger service after each successful operation and serve the browse/query
// endpoints; the ledger core remains the source of truth.

type CreatorRecord struct {
	BaseModel
	Address       string `json:"address" gorm:"uniqueIndex;size:64;not null"`
	Username      string `json:"username" gorm:"size:50;not null;index"`
	Bio           string `json:"bio" gorm:"type:text"`
	ProfileRef    string `json:"profile_ref" gorm:"size:255"`
	CreatorType   string `json:"creator_type" gorm:"type:varchar(20);index"`
	TotalEarnings int64  `json:"total_earnings" gorm:"default:0"`
	FollowerCount int64  `json:"follower_count" gorm:"default:0"`
	ContentCount  int64  `json:"content_count" gorm:"default:0"`
	IsVerified    bool   `json:"is_verified" gorm:"default:false"`
	IsActive      bool   `json:"is_active" gorm:"default:true"`
}

type ContentRecord struct {
	BaseModel
	ContentID    uint64         `json:"content_id" gorm:"uniqueIndex;not null"`
	Creator      string         `json:"creator" gorm:"size:64;index;not null"`
	Title        string         `json:"title" gorm:"size:255;not null"`
	ContentRef   string         `json:"content_ref" gorm:"size:255;not null"`
	ContentType  string         `json:"content_type" gorm:"type:varchar(20);index"`
	Category     string         `json:"category" gorm:"size:100;index"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	Views        int64          `json:"views" gorm:"default:0"`
	Likes        int64          `json:"likes" gorm:"default:0"`
	Tips         int64          `json:"tips" gorm:"default:0"`
	ForSale      bool           `json:"for_sale" gorm:"default:false;index"`
	Price        int64          `json:"price" gorm:"default:0"`
	IsNFT        bool           `json:"is_nft" gorm:"default:false"`
	NFTTokenID   uint64         `json:"nft_token_id" gorm:"default:0"`
	AIReceiptRef string         `json:"ai_receipt_ref" gorm:"size:255"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
}

type AssetRecord struct {
	BaseModel
	AssetID       uint64         `json:"asset_id" gorm:"uniqueIndex;not null"`
	Creator       string         `json:"creator" gorm:"size:64;index"`
	Owner         string         `json:"owner" gorm:"size:64;index"`
	ContentID     uint64         `json:"content_id" gorm:"default:0"`
	AssetType     string         `json:"asset_type" gorm:"type:varchar(20)"`
	RoyaltyBps    uint32         `json:"royalty_bps" gorm:"default:0"`
	Transferable  bool           `json:"transferable" gorm:"default:true"`
	IsIntelligent bool           `json:"is_intelligent" gorm:"default:false;index"`
	Tags          pq.StringArray `json:"tags" gorm:"type:text[]"`
}

type ListingRecord struct {
	BaseModel
	AssetID         uint64 `json:"asset_id" gorm:"uniqueIndex;not null"`
	Seller          string `json:"seller" gorm:"size:64;index"`
	Price           int64  `json:"price" gorm:"not null"`
	Deadline        int64  `json:"deadline" gorm:"default:0"`
	IsAuction       bool   `json:"is_auction" gorm:"default:false;index"`
	MinBidIncrement int64  `json:"min_bid_increment" gorm:"default:0"`
	HighestBidder   string `json:"highest_bidder" gorm:"size:64"`
	HighestBid      int64  `json:"highest_bid" gorm:"default:0"`
	IsOpen          bool   `json:"is_open" gorm:"default:true;index"`
}

type CollaborationRecord struct {
	BaseModel
	CollabID     uint64         `json:"collab_id" gorm:"uniqueIndex;not null"`
	Proposer     string         `json:"proposer" gorm:"size:64;index"`
	Participants pq.StringArray `json:"participants" gorm:"type:text[]"`
	Shares       pq.Int64Array  `json:"shares" gorm:"type:bigint[]"`
	Status       string         `json:"status" gorm:"type:varchar(20);index"`
	Deadline     int64          `json:"deadline"`
	TotalRevenue int64          `json:"total_revenue" gorm:"default:0"`
}

// LedgerEvent is one committed event of the core's ordered log, appended
// exactly once per sequence number.
type LedgerEvent struct {
	BaseModel
	Seq        uint64 `json:"seq" gorm:"uniqueIndex;not null"`
	LedgerTime int64  `json:"ledger_time" gorm:"index"`
	Kind       string `json:"kind" gorm:"size:64;index;not null"`
	Payload    JSONB  `json:"payload" gorm:"type:jsonb"`
}

// Transfer journals external money movement (stripe deposits and payout
// requests) against a ledger address.
type Transfer struct {
	BaseModel
	Address          string         `json:"address" gorm:"size:64;index;not null"`
	Kind             TransferKind   `json:"kind" gorm:"type:varchar(20);index;not null"`
	Amount           int64          `json:"amount" gorm:"not null"`
	PaymentReference string         `json:"payment_reference" gorm:"size:255"`
	Status           TransferStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
}
