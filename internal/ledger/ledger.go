// internal/ledger/ledger.go
//
// Package ledger implements the deterministic creator-economy state machine:
// identities, content, subscriptions, collaborations, marketplace sales and
// oracle-attested intelligent-asset transfers over one mapping-backed store.
//
// Every state-mutating entry point runs as a single serialized critical
// section: a writer lock is taken for the whole call, effects are applied
// before any value-transfer leg, and any failure aborts the call with no
// partial mutation. Reads are served concurrently against committed state.
package ledger

import (
	"sync"
)

// Clock supplies the logical ledger time. It must be monotonically
// non-decreasing; deadline comparisons use >=/< against it.
type Clock interface {
	Now() int64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

// Limits bounded by the platform, not configurable past these caps.
const (
	MaxFeeBps     uint32 = 1000 // 10%
	MaxRoyaltyBps uint32 = 2500 // 25%
	MaxTags              = 10
	MaxSubMonths         = 12
	MonthSeconds  int64  = 30 * 24 * 60 * 60
)

// Config seeds a new Ledger.
type Config struct {
	Admin    Address
	Treasury Address
	FeeBps   uint32
	Clock    Clock
	// EventSink, when set, receives every committed event in order. It is
	// invoked inside the critical section; implementations must not call
	// back into the ledger.
	EventSink func(Event)
}

// Ledger is the facade every caller goes through. All exported mutating
// methods serialize on mu and run all-or-nothing.
type Ledger struct {
	mu       sync.RWMutex
	entered  bool
	state    *state
	bank     Bank
	clock    Clock
	sink     func(Event)
	eventSeq uint64
}

// New builds a ledger with the given admin, treasury and fee setting.
func New(cfg Config) (*Ledger, error) {
	if cfg.Admin == "" || cfg.Treasury == "" {
		return nil, errf(ErrInvalidInput, "admin and treasury addresses are required")
	}
	if cfg.FeeBps > MaxFeeBps {
		return nil, errf(ErrInvalidInput, "fee %d exceeds cap %d", cfg.FeeBps, MaxFeeBps)
	}
	if cfg.Clock == nil {
		return nil, errf(ErrInvalidInput, "clock is required")
	}
	s := newState(cfg.FeeBps, cfg.Treasury)
	s.roles[cfg.Admin] = map[Role]bool{RoleAdmin: true}
	return &Ledger{
		state: s,
		bank:  &creditBank{s: s},
		clock: cfg.Clock,
		sink:  cfg.EventSink,
	}, nil
}

// SetBank swaps the value-transfer collaborator. Intended for tests that
// exercise PaymentFailed atomicity; the default is the internal credit bank.
func (l *Ledger) SetBank(b Bank) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bank = b
}

// begin opens a mutating critical section. The entered flag rejects nested
// re-entry from collaborator callbacks; it is cleared on every exit path via
// the returned release func.
func (l *Ledger) begin(adminExempt bool) (func(), error) {
	l.mu.Lock()
	if l.entered {
		l.mu.Unlock()
		return nil, errf(ErrInvalidStateTransition, "reentrant call rejected")
	}
	if l.state.paused && !adminExempt {
		l.mu.Unlock()
		return nil, ErrPaused
	}
	l.entered = true
	return func() {
		l.entered = false
		l.mu.Unlock()
	}, nil
}

func (l *Ledger) now() int64 { return l.clock.Now() }

// emit appends to the event log. Call only with the writer lock held and only
// after the mutation it describes has been fully applied.
func (l *Ledger) emit(kind string, data map[string]interface{}) {
	l.eventSeq++
	ev := Event{Seq: l.eventSeq, Time: l.now(), Kind: kind, Data: data}
	if l.sink != nil {
		l.sink(ev)
	}
}

// feeSplit computes the platform split for amount under the current fee
// setting. net+fee == amount always holds exactly.
func (l *Ledger) feeSplit(amount int64) (fee, net int64, err error) {
	fee, err = bpsShare(amount, l.state.feeBps)
	if err != nil {
		return 0, 0, err
	}
	return fee, amount - fee, nil
}

// --- Admin operations -------------------------------------------------------

// SetFeeBps updates the platform fee. Admin only; bounded by MaxFeeBps.
func (l *Ledger) SetFeeBps(caller Address, feeBps uint32) error {
	release, err := l.begin(true)
	if err != nil {
		return err
	}
	defer release()
	if err := l.requireCapability(caller, RoleAdmin); err != nil {
		return err
	}
	if feeBps > MaxFeeBps {
		return errf(ErrInvalidInput, "fee %d exceeds cap %d", feeBps, MaxFeeBps)
	}
	l.state.feeBps = feeBps
	l.emit("admin.fee_updated", map[string]interface{}{"fee_bps": feeBps, "by": caller})
	return nil
}

// SetTreasury points the fee sink at a new address. Admin only.
func (l *Ledger) SetTreasury(caller, treasury Address) error {
	release, err := l.begin(true)
	if err != nil {
		return err
	}
	defer release()
	if err := l.requireCapability(caller, RoleAdmin); err != nil {
		return err
	}
	if treasury == "" {
		return errf(ErrInvalidInput, "empty treasury address")
	}
	l.state.treasury = treasury
	l.emit("admin.treasury_updated", map[string]interface{}{"treasury": treasury, "by": caller})
	return nil
}

// Pause blocks all non-admin mutating calls until Unpause.
func (l *Ledger) Pause(caller Address) error {
	release, err := l.begin(true)
	if err != nil {
		return err
	}
	defer release()
	if err := l.requireCapability(caller, RoleAdmin); err != nil {
		return err
	}
	l.state.paused = true
	l.emit("admin.paused", map[string]interface{}{"by": caller})
	return nil
}

// Unpause lifts an admin pause.
func (l *Ledger) Unpause(caller Address) error {
	release, err := l.begin(true)
	if err != nil {
		return err
	}
	defer release()
	if err := l.requireCapability(caller, RoleAdmin); err != nil {
		return err
	}
	l.state.paused = false
	l.emit("admin.unpaused", map[string]interface{}{"by": caller})
	return nil
}

// SetOracle grants the Oracle capability to identity. Shorthand for
// GrantRole(caller, identity, RoleOracle).
func (l *Ledger) SetOracle(caller, identity Address) error {
	return l.GrantRole(caller, identity, RoleOracle)
}

// EmergencyWithdraw drains the escrow account to the given address. Admin
// only; intended for recovery after a halted auction market.
func (l *Ledger) EmergencyWithdraw(caller, to Address) (int64, error) {
	release, err := l.begin(true)
	if err != nil {
		return 0, err
	}
	defer release()
	if err := l.requireCapability(caller, RoleAdmin); err != nil {
		return 0, err
	}
	if to == "" {
		return 0, errf(ErrInvalidInput, "empty withdrawal address")
	}
	amount := l.bank.BalanceOf(escrowAccount)
	if amount == 0 {
		return 0, nil
	}
	if err := l.bank.Transfer(escrowAccount, to, amount); err != nil {
		return 0, err
	}
	l.emit("admin.emergency_withdraw", map[string]interface{}{"to": to, "amount": amount, "by": caller})
	return amount, nil
}

// Deposit credits an identity's account. Invoked by the payment on-ramp after
// an external charge settles; not part of the public ledger surface.
func (l *Ledger) Deposit(identity Address, amount int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	if identity == "" {
		return errf(ErrInvalidInput, "empty identity")
	}
	if err := l.bank.Credit(identity, amount); err != nil {
		return err
	}
	l.emit("account.deposited", map[string]interface{}{"identity": identity, "amount": amount})
	return nil
}

// Withdraw debits an identity's account for an external payout.
func (l *Ledger) Withdraw(identity Address, amount int64) error {
	release, err := l.begin(false)
	if err != nil {
		return err
	}
	defer release()
	if err := l.bank.Debit(identity, amount); err != nil {
		return err
	}
	l.emit("account.withdrawn", map[string]interface{}{"identity": identity, "amount": amount})
	return nil
}

// --- Read surface -----------------------------------------------------------

func (l *Ledger) FeeBps() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.feeBps
}

func (l *Ledger) Treasury() Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.treasury
}

func (l *Ledger) Paused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.paused
}

func (l *Ledger) BalanceOf(identity Address) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bank.BalanceOf(identity)
}
