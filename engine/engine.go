package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config engine tunables
type Config struct {
	// delay before an admin parameter change becomes effective
	GovDelay time.Duration
	// external accrue triggers below this gap are no-ops
	MinAccrualGap time.Duration
	// max relative deviation between the two liquidation price reads
	MaxPriceDeviation decimal.Decimal
	// flash loan fee fraction
	FlashFee decimal.Decimal
}

// Engine serialized market operations
//
// Operations on one market never interleave their accrue-then-mutate
// sequence: a per-market mutex serializes them, while unrelated markets
// proceed in parallel. A per-account in-flight flag rejects re-entrant
// calls on the same account instead of queueing them.
type Engine struct {
	db            core.Transactor
	cfg           Config
	marketStore   core.IMarketStore
	positionStore core.IPositionStore
	vaultStore    core.IVaultStore
	eventStore    core.IEventStore
	paramStore    core.IParamStore
	marketService core.IMarketService
	accountz      core.IAccountService
	oraclez       core.IPriceOracleService

	mux      sync.Mutex
	locks    map[string]*sync.Mutex
	inFlight map[string]bool
}

// New new engine
func New(
	db core.Transactor,
	cfg Config,
	marketStore core.IMarketStore,
	positionStore core.IPositionStore,
	vaultStore core.IVaultStore,
	eventStore core.IEventStore,
	paramStore core.IParamStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	priceService core.IPriceOracleService,
) *Engine {
	if !cfg.MaxPriceDeviation.IsPositive() {
		cfg.MaxPriceDeviation = decimal.NewFromFloat(0.02)
	}

	return &Engine{
		db:            db,
		cfg:           cfg,
		marketStore:   marketStore,
		positionStore: positionStore,
		vaultStore:    vaultStore,
		eventStore:    eventStore,
		paramStore:    paramStore,
		marketService: marketService,
		accountz:      accountService,
		oraclez:       priceService,
	}
}

func (e *Engine) marketLock(assetID string) *sync.Mutex {
	e.mux.Lock()
	defer e.mux.Unlock()

	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}

	lock, ok := e.locks[assetID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[assetID] = lock
	}

	return lock
}

// acquire set the in-flight flag of every account, all or nothing
func (e *Engine) acquire(users ...string) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	if e.inFlight == nil {
		e.inFlight = make(map[string]bool)
	}

	for _, u := range users {
		if e.inFlight[u] {
			return core.ErrOperationInFlight
		}
	}

	for _, u := range users {
		e.inFlight[u] = true
	}

	return nil
}

func (e *Engine) release(users ...string) {
	e.mux.Lock()
	defer e.mux.Unlock()

	for _, u := range users {
		delete(e.inFlight, u)
	}
}

// session one atomic operation: a transaction plus the market locks taken
// on its behalf. All writes commit together or not at all.
type session struct {
	eng  *Engine
	tx   *db.DB
	now  time.Time
	held map[string]bool
	// lock release order, reverse of acquisition
	order []string
	// highest asset this session has blocked on so far
	ceiling string
}

// run executes fn inside one transaction with the accounts guarded
func (e *Engine) run(ctx context.Context, users []string, fn func(ctx context.Context, s *session) error) error {
	if err := e.acquire(users...); err != nil {
		return err
	}
	defer e.release(users...)

	s := &session{
		eng:  e,
		now:  time.Now(),
		held: make(map[string]bool),
	}
	defer s.unlockAll()

	return e.db.Tx(func(tx *db.DB) error {
		s.tx = tx
		return fn(ctx, s)
	})
}

// lock acquires the given market locks in ascending asset order.
//
// A session may only ever BLOCK on a lock above everything it already
// holds; every wait edge then points upward and no cycle can form. An
// acquisition below the ceiling, which happens when a flash loan
// callback touches a lesser market, is attempted without waiting and
// fails with ErrOperationInFlight when contended, so the transaction
// rolls back instead of deadlocking.
func (s *session) lock(assets ...string) error {
	pending := make([]string, 0, len(assets))
	for _, a := range assets {
		if a != "" && !s.held[a] {
			pending = append(pending, a)
		}
	}

	sort.Strings(pending)

	for _, a := range pending {
		if s.held[a] {
			continue
		}

		mu := s.eng.marketLock(a)
		if a > s.ceiling {
			mu.Lock()
			s.ceiling = a
		} else if !mu.TryLock() {
			return core.ErrOperationInFlight
		}

		s.held[a] = true
		s.order = append(s.order, a)
	}

	return nil
}

func (s *session) unlockAll() {
	for i := len(s.order) - 1; i >= 0; i-- {
		s.eng.marketLock(s.order[i]).Unlock()
	}

	s.order = nil
	s.held = nil
}

// market locks the market and accrues its interest up to now. Every
// operation obtains its markets through here, so accrual always precedes
// any balance read in the same logical step.
func (s *session) market(ctx context.Context, assetID string) (*core.Market, error) {
	if err := s.lock(assetID); err != nil {
		return nil, err
	}

	market, err := s.eng.marketStore.Find(ctx, s.tx, assetID)
	if err != nil {
		return nil, err
	}

	if err := s.eng.marketService.AccrueInterest(ctx, s.tx, market, s.now); err != nil {
		return nil, err
	}

	return market, nil
}

// userMarkets locks and accrues every market the user holds a position
// in, plus the extra assets, so a following liquidity calculation only
// ever reads accrued markets.
func (s *session) userMarkets(ctx context.Context, userID string, extra ...string) (map[string]*core.Market, error) {
	positions, err := s.eng.positionStore.FindByUser(ctx, s.tx, userID)
	if err != nil {
		return nil, err
	}

	assets := make([]string, 0, len(positions)+len(extra))
	for _, p := range positions {
		assets = append(assets, p.AssetID)
	}
	assets = append(assets, extra...)

	if err := s.lock(assets...); err != nil {
		return nil, err
	}

	markets := make(map[string]*core.Market, len(assets))
	for _, asset := range assets {
		if _, ok := markets[asset]; ok {
			continue
		}

		market, err := s.market(ctx, asset)
		if err != nil {
			return nil, err
		}
		markets[asset] = market
	}

	return markets, nil
}

// emit writes the event row inside the transaction, strictly after the
// mutations it describes; an event therefore exists iff its mutations are
// durable.
func (s *session) emit(ctx context.Context, event *core.Event) error {
	event.CreatedAt = s.now
	return s.eng.eventStore.Create(ctx, s.tx, event)
}

// amount columns are decimal(32,16), 16 integer digits at most
var maxAmount = decimal.New(1, 16)

// checkAmount truncates amount to the 8 decimal places operations work
// in and bounds it against the column capacity
func checkAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Truncate(8)
	if !amount.IsPositive() {
		return amount, core.ErrInvalidAmount
	}

	if amount.GreaterThanOrEqual(maxAmount) {
		return amount, core.ErrAmountOverflow
	}

	return amount, nil
}
