package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"lever/core"
	"lever/handler/render"
	"lever/handler/views"

	"github.com/bluele/gcache"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var (
	marketCache = gcache.New(64).LRU().Build()
	marketSF    singleflight.Group
)

const marketCacheTTL = 5 * time.Second

func allMarketsHandler(marketStore core.IMarketStore, marketService core.IMarketService, priceService core.IPriceOracleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v, err, _ := marketSF.Do("all_markets", func() (interface{}, error) {
			if cached, err := marketCache.Get("all_markets"); err == nil {
				return cached, nil
			}

			markets, err := marketStore.All(ctx)
			if err != nil {
				return nil, err
			}

			marketViews := make([]*views.Market, 0, len(markets))
			for _, m := range markets {
				marketViews = append(marketViews, getMarketView(ctx, m, marketService, priceService))
			}

			_ = marketCache.SetWithExpire("all_markets", marketViews, marketCacheTTL)
			return marketViews, nil
		})
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, v)
	}
}

func marketHandler(marketStore core.IMarketStore, marketService core.IMarketService, priceService core.IPriceOracleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
		market, err := marketStore.FindBySymbol(ctx, symbol)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, getMarketView(ctx, market, marketService, priceService))
	}
}

func accrueHandler(marketStore core.IMarketStore, engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
		market, err := marketStore.FindBySymbol(ctx, symbol)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := engine.Accrue(ctx, market.AssetID); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

// getMarketView values the market for display only; prices go through
// the unchecked path and fall back to zero, never to an error
func getMarketView(ctx context.Context, market *core.Market, marketService core.IMarketService, priceService core.IPriceOracleService) *views.Market {
	price := decimal.Zero
	if p, err := priceService.GetPriceUnchecked(ctx, market); err == nil {
		price = p.Price
	}

	return &views.Market{
		Market:          *market,
		UtilizationRate: marketService.CurUtilizationRate(ctx, market),
		SupplyAPY:       marketService.CurSupplyRate(ctx, market),
		BorrowAPY:       marketService.CurBorrowRate(ctx, market),
		Liquidity:       market.Liquidity(),
		Price:           price,
	}
}
