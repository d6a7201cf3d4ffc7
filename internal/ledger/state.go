// internal/ledger/state.go
package ledger

// state is the single mapping-backed store every component mutates. It is
// owned by the Ledger facade and only touched while the writer lock is held,
// so no table carries its own synchronization.
type state struct {
	feeBps   uint32
	treasury Address
	paused   bool

	roles map[Address]map[Role]bool

	creators     map[Address]*Creator
	following    map[Address][]Address       // follower -> targets, swap-remove order
	followingIdx map[Address]map[Address]int // follower -> target -> slice index

	contents      map[uint64]*Content
	nextContentID uint64
	byType        map[ContentType][]uint64
	byCategory    map[string][]uint64
	byTag         map[string][]uint64
	byOwner       map[Address][]uint64

	subscriptions map[Address]*Subscription
	subExpiry     map[subKey]int64

	collabs      map[uint64]*Collaboration
	nextCollabID uint64

	assets      map[uint64]*Asset
	nextAssetID uint64
	listings    map[uint64]*Listing

	transferProofs []TransferProof
	usedDigests    map[Hash32]bool

	accounts map[Address]int64
}

type subKey struct {
	Subscriber Address
	Creator    Address
}

func newState(feeBps uint32, treasury Address) *state {
	return &state{
		feeBps:        feeBps,
		treasury:      treasury,
		roles:         make(map[Address]map[Role]bool),
		creators:      make(map[Address]*Creator),
		following:     make(map[Address][]Address),
		followingIdx:  make(map[Address]map[Address]int),
		contents:      make(map[uint64]*Content),
		byType:        make(map[ContentType][]uint64),
		byCategory:    make(map[string][]uint64),
		byTag:         make(map[string][]uint64),
		byOwner:       make(map[Address][]uint64),
		subscriptions: make(map[Address]*Subscription),
		subExpiry:     make(map[subKey]int64),
		collabs:       make(map[uint64]*Collaboration),
		assets:        make(map[uint64]*Asset),
		listings:      make(map[uint64]*Listing),
		usedDigests:   make(map[Hash32]bool),
		accounts:      make(map[Address]int64),
	}
}

// Bank is the value-transfer collaborator. The default implementation moves
// internal credit balances; a failing leg must leave both accounts untouched.
type Bank interface {
	Transfer(from, to Address, amount int64) error
	BalanceOf(identity Address) int64
	Credit(identity Address, amount int64) error
	Debit(identity Address, amount int64) error
}

// creditBank is the built-in Bank backed by the state's account table.
type creditBank struct {
	s *state
}

func (b *creditBank) Transfer(from, to Address, amount int64) error {
	if amount < 0 {
		return errf(ErrInvalidInput, "negative transfer amount %d", amount)
	}
	if amount == 0 {
		return nil
	}
	if b.s.accounts[from] < amount {
		return errf(ErrPaymentFailed, "account %s holds %d, needs %d", from, b.s.accounts[from], amount)
	}
	balance, err := checkedAdd(b.s.accounts[to], amount)
	if err != nil {
		return errf(ErrPaymentFailed, "credit %s", to)
	}
	b.s.accounts[from] -= amount
	b.s.accounts[to] = balance
	return nil
}

func (b *creditBank) BalanceOf(identity Address) int64 {
	return b.s.accounts[identity]
}

func (b *creditBank) Credit(identity Address, amount int64) error {
	if amount <= 0 {
		return errf(ErrInvalidInput, "credit amount %d", amount)
	}
	balance, err := checkedAdd(b.s.accounts[identity], amount)
	if err != nil {
		return err
	}
	b.s.accounts[identity] = balance
	return nil
}

func (b *creditBank) Debit(identity Address, amount int64) error {
	if amount <= 0 {
		return errf(ErrInvalidInput, "debit amount %d", amount)
	}
	if b.s.accounts[identity] < amount {
		return errf(ErrPaymentFailed, "account %s holds %d, needs %d", identity, b.s.accounts[identity], amount)
	}
	b.s.accounts[identity] -= amount
	return nil
}

// escrowAccount holds auction bids between acceptance and settlement.
const escrowAccount = Address("ledger:escrow")
