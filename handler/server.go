package handler

import (
	"net/http"

	"lever/core"
	"lever/handler/rest"
)

// Server bundles the api dependencies
type Server struct {
	cfg            *core.Config
	marketStore    core.IMarketStore
	positionStore  core.IPositionStore
	eventStore     core.IEventStore
	marketService  core.IMarketService
	accountService core.IAccountService
	priceService   core.IPriceOracleService
	engine         rest.Engine
}

// New new server
func New(
	cfg *core.Config,
	marketStore core.IMarketStore,
	positionStore core.IPositionStore,
	eventStore core.IEventStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	priceService core.IPriceOracleService,
	engine rest.Engine,
) Server {
	return Server{
		cfg:            cfg,
		marketStore:    marketStore,
		positionStore:  positionStore,
		eventStore:     eventStore,
		marketService:  marketService,
		accountService: accountService,
		priceService:   priceService,
		engine:         engine,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	return rest.Handle(
		s.cfg,
		s.marketStore,
		s.positionStore,
		s.eventStore,
		s.marketService,
		s.accountService,
		s.priceService,
		s.engine,
	)
}
