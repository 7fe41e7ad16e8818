package rest

import (
	"net/http"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"
	"lever/handler/views"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func accountHandler(
	marketStore core.IMarketStore,
	positionStore core.IPositionStore,
	eventStore core.IEventStore,
	accountService core.IAccountService,
	priceService core.IPriceOracleService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			WithEvents bool `json:"with_events"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		userID := chi.URLParam(r, "user")

		positions, err := positionStore.FindByUser(ctx, nil, userID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		account := views.Account{
			UserID:          userID,
			CollateralValue: decimal.Zero,
			DebtValue:       decimal.Zero,
			Positions:       make([]*views.AccountPosition, 0, len(positions)),
		}

		for _, p := range positions {
			market, err := marketStore.Find(ctx, nil, p.AssetID)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			leg := &views.AccountPosition{
				AssetID:       p.AssetID,
				Symbol:        market.Symbol,
				SupplyBalance: accountService.CurSupplyBalance(ctx, p, market),
				BorrowBalance: accountService.CurBorrowBalance(ctx, p, market),
			}
			account.Positions = append(account.Positions, leg)

			// display valuation goes through the unchecked path, one stale
			// reading must not blank the whole account page
			price, err := priceService.GetPriceUnchecked(ctx, market)
			if err != nil {
				continue
			}

			account.CollateralValue = account.CollateralValue.
				Add(leg.SupplyBalance.Mul(price.Price).Mul(market.CollateralFactor))
			account.DebtValue = account.DebtValue.
				Add(leg.BorrowBalance.Mul(price.Price)).
				Add(p.FlashOutstanding.Mul(price.Price))
		}

		liquidity := core.AccountLiquidity{
			UserID:          userID,
			CollateralValue: account.CollateralValue,
			DebtValue:       account.DebtValue,
		}
		account.HealthFactor = liquidity.HealthFactor()
		account.Healthy = liquidity.Healthy()

		if params.WithEvents {
			events, err := eventStore.ListByUser(ctx, userID, 50)
			if err != nil {
				render.BadRequest(w, err)
				return
			}
			account.Events = events
		}

		render.JSON(w, account)
	}
}
