package engine

import (
	"context"
	"database/sql"
	"time"

	"lever/core"
	accountservice "lever/service/account"
	marketservice "lever/service/market"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// in-memory backing state shared by the fake stores; the fake transactor
// snapshots it on entry and restores it when the unit of work fails, so
// rollback semantics hold without a database
type state struct {
	markets   map[string]*core.Market
	positions map[string]*core.Position
	balances  map[string]decimal.Decimal
	prices    map[string]*core.Price
	tickers   map[string]*core.PriceTicker
	events    []*core.Event
	params    []*core.ParamChange
	nextID    uint64
}

func newState() *state {
	return &state{
		markets:   make(map[string]*core.Market),
		positions: make(map[string]*core.Position),
		balances:  make(map[string]decimal.Decimal),
		prices:    make(map[string]*core.Price),
		tickers:   make(map[string]*core.PriceTicker),
	}
}

func (s *state) id() uint64 {
	s.nextID++
	return s.nextID
}

func key(userID, assetID string) string {
	return userID + "/" + assetID
}

func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID

	for k, v := range s.markets {
		m := *v
		c.markets[k] = &m
	}
	for k, v := range s.positions {
		p := *v
		c.positions[k] = &p
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.prices {
		p := *v
		c.prices[k] = &p
	}
	for k, v := range s.tickers {
		t := *v
		c.tickers[k] = &t
	}
	for _, e := range s.events {
		event := *e
		c.events = append(c.events, &event)
	}
	for _, p := range s.params {
		change := *p
		c.params = append(c.params, &change)
	}

	return c
}

func (s *state) restore(snap *state) {
	*s = *snap
}

type fakeDB struct {
	st *state
}

func (f *fakeDB) Tx(fn func(tx *db.DB) error) error {
	snap := f.st.clone()
	if err := fn(nil); err != nil {
		f.st.restore(snap)
		return err
	}

	return nil
}

type fakeMarketStore struct {
	st *state
}

func (f *fakeMarketStore) Save(ctx context.Context, tx *db.DB, market *core.Market) error {
	m := *market
	if m.ID == 0 {
		m.ID = f.st.id()
		market.ID = m.ID
	}
	f.st.markets[m.AssetID] = &m
	return nil
}

func (f *fakeMarketStore) Find(ctx context.Context, tx *db.DB, assetID string) (*core.Market, error) {
	m, ok := f.st.markets[assetID]
	if !ok {
		return nil, core.ErrMarketNotFound
	}

	row := *m
	return &row, nil
}

func (f *fakeMarketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	for _, m := range f.st.markets {
		if m.Symbol == symbol {
			row := *m
			return &row, nil
		}
	}

	return nil, core.ErrMarketNotFound
}

func (f *fakeMarketStore) All(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	for _, m := range f.st.markets {
		row := *m
		markets = append(markets, &row)
	}

	return markets, nil
}

func (f *fakeMarketStore) AllAsMap(ctx context.Context) (map[string]*core.Market, error) {
	markets, err := f.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*core.Market, len(markets))
	for _, m := range markets {
		out[m.AssetID] = m
	}

	return out, nil
}

func (f *fakeMarketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	market.Version++
	row := *market
	f.st.markets[market.AssetID] = &row
	return nil
}

type fakePositionStore struct {
	st *state
}

func (f *fakePositionStore) Create(ctx context.Context, tx *db.DB, position *core.Position) error {
	position.ID = f.st.id()
	row := *position
	f.st.positions[key(position.UserID, position.AssetID)] = &row
	return nil
}

func (f *fakePositionStore) Find(ctx context.Context, tx *db.DB, userID, assetID string) (*core.Position, error) {
	if p, ok := f.st.positions[key(userID, assetID)]; ok {
		row := *p
		return &row, nil
	}

	return &core.Position{
		UserID:      userID,
		AssetID:     assetID,
		SupplyIndex: decimal.New(1, 0),
		BorrowIndex: decimal.New(1, 0),
	}, nil
}

func (f *fakePositionStore) FindByUser(ctx context.Context, tx *db.DB, userID string) ([]*core.Position, error) {
	var positions []*core.Position
	for _, p := range f.st.positions {
		if p.UserID == userID {
			row := *p
			positions = append(positions, &row)
		}
	}

	return positions, nil
}

func (f *fakePositionStore) FindByAsset(ctx context.Context, assetID string) ([]*core.Position, error) {
	var positions []*core.Position
	for _, p := range f.st.positions {
		if p.AssetID == assetID {
			row := *p
			positions = append(positions, &row)
		}
	}

	return positions, nil
}

func (f *fakePositionStore) Users(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var users []string
	for _, p := range f.st.positions {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			users = append(users, p.UserID)
		}
	}

	return users, nil
}

func (f *fakePositionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	if position.ID == 0 {
		return f.Create(ctx, tx, position)
	}

	position.Version++
	row := *position
	f.st.positions[key(position.UserID, position.AssetID)] = &row
	return nil
}

type fakeVaultStore struct {
	st *state
}

func (f *fakeVaultStore) Transfer(ctx context.Context, tx *db.DB, from, to, assetID string, amount decimal.Decimal) error {
	balance := f.st.balances[key(from, assetID)]
	if balance.LessThan(amount) {
		return core.ErrInsufficientBalance
	}

	f.st.balances[key(from, assetID)] = balance.Sub(amount)
	f.st.balances[key(to, assetID)] = f.st.balances[key(to, assetID)].Add(amount)
	return nil
}

func (f *fakeVaultStore) Credit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal) error {
	f.st.balances[key(userID, assetID)] = f.st.balances[key(userID, assetID)].Add(amount)
	return nil
}

func (f *fakeVaultStore) Balance(ctx context.Context, tx *db.DB, userID, assetID string) (decimal.Decimal, error) {
	return f.st.balances[key(userID, assetID)], nil
}

func (f *fakeVaultStore) FindByUser(ctx context.Context, userID string) ([]*core.Balance, error) {
	var balances []*core.Balance
	for k, v := range f.st.balances {
		if len(k) > len(userID) && k[:len(userID)] == userID && k[len(userID)] == '/' {
			balances = append(balances, &core.Balance{
				UserID:  userID,
				AssetID: k[len(userID)+1:],
				Amount:  v,
			})
		}
	}

	return balances, nil
}

type fakeEventStore struct {
	st *state
}

func (f *fakeEventStore) Create(ctx context.Context, tx *db.DB, event *core.Event) error {
	event.ID = f.st.id()
	row := *event
	f.st.events = append(f.st.events, &row)
	return nil
}

func (f *fakeEventStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	for _, e := range f.st.events {
		if e.ID > fromID {
			row := *e
			events = append(events, &row)
		}
		if len(events) >= limit {
			break
		}
	}

	return events, nil
}

func (f *fakeEventStore) ListByUser(ctx context.Context, userID string, limit int) ([]*core.Event, error) {
	var events []*core.Event
	for _, e := range f.st.events {
		if e.UserID == userID {
			row := *e
			events = append(events, &row)
		}
		if len(events) >= limit {
			break
		}
	}

	return events, nil
}

type fakeParamStore struct {
	st *state
}

func (f *fakeParamStore) Create(ctx context.Context, tx *db.DB, change *core.ParamChange) error {
	change.ID = f.st.id()
	row := *change
	f.st.params = append(f.st.params, &row)
	return nil
}

func (f *fakeParamStore) ListDue(ctx context.Context, tx *db.DB, assetID string, now time.Time) ([]*core.ParamChange, error) {
	var changes []*core.ParamChange
	for _, p := range f.st.params {
		if p.AssetID == assetID && !p.AppliedAt.Valid && !p.EffectiveAt.After(now) {
			row := *p
			changes = append(changes, &row)
		}
	}

	return changes, nil
}

func (f *fakeParamStore) ListPending(ctx context.Context, assetID string) ([]*core.ParamChange, error) {
	var changes []*core.ParamChange
	for _, p := range f.st.params {
		if p.AssetID == assetID && !p.AppliedAt.Valid {
			row := *p
			changes = append(changes, &row)
		}
	}

	return changes, nil
}

func (f *fakeParamStore) MarkApplied(ctx context.Context, tx *db.DB, change *core.ParamChange, at time.Time) error {
	for _, p := range f.st.params {
		if p.ID == change.ID {
			p.AppliedAt = sql.NullTime{Time: at, Valid: true}
			return nil
		}
	}

	return nil
}

type fakeOracle struct {
	st *state
}

func (f *fakeOracle) GetPrice(ctx context.Context, market *core.Market, now time.Time) (*core.Price, error) {
	p, ok := f.st.prices[market.AssetID]
	if !ok || !p.Valid(now, market.MaxPriceAge) {
		return nil, core.ErrStalePrice
	}

	row := *p
	return &row, nil
}

func (f *fakeOracle) GetPriceUnchecked(ctx context.Context, market *core.Market) (*core.Price, error) {
	p, ok := f.st.prices[market.AssetID]
	if !ok {
		return nil, core.ErrStalePrice
	}

	row := *p
	return &row, nil
}

func (f *fakeOracle) PullPriceTicker(ctx context.Context, symbol string, t time.Time) (*core.PriceTicker, error) {
	ticker, ok := f.st.tickers[symbol]
	if !ok {
		return nil, core.ErrStalePrice
	}

	row := *ticker
	return &row, nil
}

// testEnv one engine over fake stores, real market and account services
type testEnv struct {
	st  *state
	eng *Engine
}

func newTestEnv(cfg Config) *testEnv {
	st := newState()

	marketStore := &fakeMarketStore{st: st}
	positionStore := &fakePositionStore{st: st}
	vaultStore := &fakeVaultStore{st: st}
	eventStore := &fakeEventStore{st: st}
	paramStore := &fakeParamStore{st: st}
	oracle := &fakeOracle{st: st}

	eng := New(
		&fakeDB{st: st},
		cfg,
		marketStore,
		positionStore,
		vaultStore,
		eventStore,
		paramStore,
		marketservice.New(marketStore, paramStore),
		accountservice.New(marketStore, positionStore, oracle),
		oracle,
	)

	return &testEnv{st: st, eng: eng}
}

// addMarket installs a market with sane interest parameters. The indices
// start at one and last_accrued_at is parked an hour ahead, so operations
// see zero elapsed time and tests get deterministic numbers unless they
// move last_accrued_at into the past themselves.
func (env *testEnv) addMarket(assetID, symbol string, collateralFactor string) *core.Market {
	market := &core.Market{
		ID:                   env.st.id(),
		AssetID:              assetID,
		Symbol:               symbol,
		BorrowIndex:          decimal.New(1, 0),
		SupplyIndex:          decimal.New(1, 0),
		LastAccruedAt:        time.Now().Unix() + 3600,
		ReserveFactor:        decimal.NewFromFloat(0.2),
		CollateralFactor:     mustDecimal(collateralFactor),
		LiquidationIncentive: decimal.NewFromFloat(0.1),
		CloseFactor:          decimal.NewFromFloat(0.5),
		MaxPriceAge:          120,
		BaseRate:             decimal.NewFromFloat(0.025),
		Multiplier:           decimal.NewFromFloat(0.2),
		JumpMultiplier:       decimal.NewFromFloat(1.5),
		Kink:                 decimal.NewFromFloat(0.8),
	}
	env.st.markets[assetID] = market
	return market
}

func (env *testEnv) setPrice(assetID, symbol string, price string) {
	v := mustDecimal(price)
	env.st.prices[assetID] = &core.Price{
		AssetID: assetID,
		Price:   v,
		Time:    time.Now(),
	}
	env.st.tickers[symbol] = &core.PriceTicker{
		Symbol: symbol,
		Price:  v,
		Time:   time.Now(),
	}
}

func (env *testEnv) setTicker(symbol string, price string) {
	env.st.tickers[symbol] = &core.PriceTicker{
		Symbol: symbol,
		Price:  mustDecimal(price),
		Time:   time.Now(),
	}
}

func (env *testEnv) credit(userID, assetID string, amount string) {
	env.st.balances[key(userID, assetID)] = env.st.balances[key(userID, assetID)].Add(mustDecimal(amount))
}

func (env *testEnv) balance(userID, assetID string) decimal.Decimal {
	return env.st.balances[key(userID, assetID)]
}

func (env *testEnv) position(userID, assetID string) *core.Position {
	if p, ok := env.st.positions[key(userID, assetID)]; ok {
		return p
	}

	return &core.Position{
		UserID:      userID,
		AssetID:     assetID,
		SupplyIndex: decimal.New(1, 0),
		BorrowIndex: decimal.New(1, 0),
	}
}

func (env *testEnv) market(assetID string) *core.Market {
	return env.st.markets[assetID]
}

func mustDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}

	return d
}
