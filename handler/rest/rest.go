package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lever/core"
	"lever/handler/render"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

// Engine market operation surface consumed by the api
type Engine interface {
	Accrue(ctx context.Context, assetID string) error
	SetReserveFactor(ctx context.Context, assetID string, value decimal.Decimal) error
	SetBorrowCap(ctx context.Context, assetID string, value decimal.Decimal) error
	SetMarketStatus(ctx context.Context, assetID string, status core.MarketStatus) error
}

// Handle handle rest api request
func Handle(
	cfg *core.Config,
	marketStore core.IMarketStore,
	positionStore core.IPositionStore,
	eventStore core.IEventStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	priceService core.IPriceOracleService,
	engine Engine,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/markets", allMarketsHandler(marketStore, marketService, priceService))
	router.Get("/markets/{symbol}", marketHandler(marketStore, marketService, priceService))
	router.Post("/markets/{symbol}/accrue", accrueHandler(marketStore, engine))
	router.Get("/accounts/{user}", accountHandler(marketStore, positionStore, eventStore, accountService, priceService))
	router.Get("/events", eventsHandler(eventStore))

	router.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin(cfg))
		r.Post("/markets/{symbol}/reserve-factor", reserveFactorHandler(marketStore, engine))
		r.Post("/markets/{symbol}/borrow-cap", borrowCapHandler(marketStore, engine))
		r.Post("/markets/{symbol}/status", marketStatusHandler(marketStore, engine))
	})

	return router
}

// requireAdmin gates the admin surface on a bearer token listed in the
// node config
func requireAdmin(cfg *core.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !cfg.IsAdmin(bearerToken(r)) {
				render.ForbiddenRequest(w, errors.New("forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func bearerToken(r *http.Request) string {
	s := r.Header.Get("Authorization")
	return strings.TrimPrefix(s, "Bearer ")
}
