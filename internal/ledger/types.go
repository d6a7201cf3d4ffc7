// internal/ledger/types.go
package ledger

// Address is the opaque identity key every ledger entity is attributed to.
// The HTTP layer derives it from the authenticated account; the attestation
// verifier derives it from a recovered public key.
type Address string

// Hash32 is a 32-byte commitment (content references, metadata hashes,
// attestation digests).
type Hash32 [32]byte

var zeroHash Hash32

// Role is the closed capability set gating privileged operations.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleOracle    Role = "oracle"
	RoleMinter    Role = "minter"
)

// ValidRole reports whether r is a member of the closed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleOracle, RoleMinter:
		return true
	}
	return false
}

type CreatorType string

const (
	CreatorTypeTraditional CreatorType = "traditional"
	CreatorTypeAI          CreatorType = "ai_creator"
	CreatorTypeHybrid      CreatorType = "hybrid"
)

type ContentType string

const (
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
	ContentTypeText  ContentType = "text"
	ContentTypeModel ContentType = "model"
)

type CollabStatus string

const (
	CollabProposed  CollabStatus = "proposed"
	CollabActive    CollabStatus = "active"
	CollabCompleted CollabStatus = "completed"
	CollabCancelled CollabStatus = "cancelled"
)

// Creator is the identity and reputation record for one registered address.
// Created once per identity, never deleted.
type Creator struct {
	Address       Address
	Username      string
	Bio           string
	ProfileRef    string
	Type          CreatorType
	TotalEarnings int64
	FollowerCount int64
	ContentCount  int64
	IsVerified    bool
	IsActive      bool
	RegisteredAt  int64
}

// Content is one published item. Identity fields are immutable after
// publication; counters and the sale flag are mutable.
type Content struct {
	ID         uint64
	Creator    Address
	Title      string
	ContentRef string
	Type       ContentType
	Category   string
	Tags       []string

	Views int64
	Likes int64
	Tips  int64

	ForSale bool
	Price   int64

	IsNFT      bool
	NFTTokenID uint64

	AIReceiptRef string

	IsActive    bool
	PublishedAt int64
}

// Subscription is a creator's monthly plan. Per-pair expiries live in the
// state's subscription table keyed by (subscriber, creator).
type Subscription struct {
	Creator         Address
	MonthlyPrice    int64
	SubscriberCount int64
	IsActive        bool
}

// Collaboration is a multi-party revenue-sharing agreement. Shares are basis
// points and sum to exactly 10000, checked at proposal and never mutated.
type Collaboration struct {
	ID           uint64
	Proposer     Address
	Participants []Address
	Shares       []uint32
	Status       CollabStatus
	Deadline     int64
	TotalRevenue int64
	CreatedAt    int64
}

// Listing is the active sale state of one asset. At most one exists per
// asset at any time.
type Listing struct {
	AssetID         uint64
	Seller          Address
	Price           int64
	Deadline        int64 // 0 = no expiry
	IsAuction       bool
	MinBidIncrement int64
	HighestBidder   Address
	HighestBid      int64
	ListedAt        int64
}

// IntelligenceRecord holds the off-chain payload bindings of an intelligent
// asset: the encrypted reference and the commitment to it, plus per-grantee
// usage authorizations.
type IntelligenceRecord struct {
	EncryptedReference string
	MetadataHash       Hash32
	Updatable          bool
	Authorizations     map[Address]string
}

// Asset is a minted token. Plain assets carry no intelligence record;
// intelligent assets must move through the proof-based transfer protocol.
type Asset struct {
	ID           uint64
	Creator      Address
	Owner        Address
	ContentID    uint64 // 0 when minted without a catalog linkage
	Type         ContentType
	RoyaltyBps   uint32
	Transferable bool
	Tags         []string
	MintedAt     int64

	Intelligence *IntelligenceRecord
}

// TransferProof is the consumed record of one oracle-authorized intelligent
// transfer.
type TransferProof struct {
	AssetID            uint64
	From               Address
	To                 Address
	OldHash            Hash32
	NewHash            Hash32
	EncryptedReference string
	Digest             Hash32
	VerifiedAt         int64
}

// Event is one entry of the ordered ledger event log.
type Event struct {
	Seq  uint64
	Time int64
	Kind string
	Data map[string]interface{}
}
