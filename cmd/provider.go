package cmd

import (
	"time"

	"lever/core"
	"lever/engine"
	accountservice "lever/service/account"
	marketservice "lever/service/market"
	notifierservice "lever/service/notifier"
	"lever/service/oracle"
	"lever/store/event"
	"lever/store/market"
	"lever/store/param"
	"lever/store/position"
	"lever/store/price"
	"lever/store/vault"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideMarketStore(db *db.DB) core.IMarketStore {
	return market.New(db)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

func provideVaultStore(db *db.DB) core.IVaultStore {
	return vault.New(db)
}

func provideEventStore(db *db.DB) core.IEventStore {
	return event.New(db)
}

func provideParamStore(db *db.DB) core.IParamStore {
	return param.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.New(db)
}

func providePriceService(priceStore core.IPriceStore) core.IPriceOracleService {
	return oracle.New(&cfg.Oracle, priceStore)
}

func provideMarketService(marketStore core.IMarketStore, paramStore core.IParamStore) core.IMarketService {
	return marketservice.New(marketStore, paramStore)
}

func provideAccountService(marketStore core.IMarketStore, positionStore core.IPositionStore, priceService core.IPriceOracleService) core.IAccountService {
	return accountservice.New(marketStore, positionStore, priceService)
}

func provideNotifier() core.INotifier {
	return notifierservice.New(&cfg.Notifier)
}

func provideEngine(
	db *db.DB,
	marketStore core.IMarketStore,
	positionStore core.IPositionStore,
	vaultStore core.IVaultStore,
	eventStore core.IEventStore,
	paramStore core.IParamStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	priceService core.IPriceOracleService,
) *engine.Engine {
	return engine.New(
		db,
		engine.Config{
			GovDelay:          time.Duration(cfg.App.GovDelaySeconds) * time.Second,
			MinAccrualGap:     time.Duration(cfg.App.MinAccrualGapSeconds) * time.Second,
			MaxPriceDeviation: cfg.App.MaxPriceDeviation,
			FlashFee:          cfg.App.FlashFee,
		},
		marketStore,
		positionStore,
		vaultStore,
		eventStore,
		paramStore,
		marketService,
		accountService,
		priceService,
	)
}
