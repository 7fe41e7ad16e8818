package rest

import (
	"net/http"
	"strings"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func reserveFactorHandler(marketStore core.IMarketStore, engine Engine) http.HandlerFunc {
	return adminParamHandler(marketStore, func(r *http.Request, assetID string, value decimal.Decimal) error {
		return engine.SetReserveFactor(r.Context(), assetID, value)
	})
}

func borrowCapHandler(marketStore core.IMarketStore, engine Engine) http.HandlerFunc {
	return adminParamHandler(marketStore, func(r *http.Request, assetID string, value decimal.Decimal) error {
		return engine.SetBorrowCap(r.Context(), assetID, value)
	})
}

func adminParamHandler(marketStore core.IMarketStore, apply func(r *http.Request, assetID string, value decimal.Decimal) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Value decimal.Decimal `json:"value"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
		market, err := marketStore.FindBySymbol(ctx, symbol)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := apply(r, market.AssetID, params.Value); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

func marketStatusHandler(marketStore core.IMarketStore, engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Status core.MarketStatus `json:"status"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
		market, err := marketStore.FindBySymbol(ctx, symbol)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := engine.SetMarketStatus(ctx, market.AssetID, params.Status); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}
