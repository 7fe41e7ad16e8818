package oracle

import (
	"context"
	"fmt"
	"time"

	"lever/core"
	"lever/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
)

type priceService struct {
	cfg        *core.Oracle
	priceStore core.IPriceStore
}

// New new oracle gateway
func New(cfg *core.Oracle, priceStore core.IPriceStore) core.IPriceOracleService {
	return &priceService{
		cfg:        cfg,
		priceStore: priceStore,
	}
}

// GetPrice checked read path
//
// The reading must be younger than the market staleness bound, otherwise
// ErrStalePrice. Every state-mutating code path reads prices through here.
func (s *priceService) GetPrice(ctx context.Context, market *core.Market, now time.Time) (*core.Price, error) {
	price, err := s.priceStore.Find(ctx, market.AssetID)
	if err != nil {
		return nil, err
	}

	if !price.Valid(now, market.MaxPriceAge) {
		return nil, core.ErrStalePrice
	}

	return price, nil
}

// GetPriceUnchecked read path without the staleness check, confined to
// read-only views
func (s *priceService) GetPriceUnchecked(ctx context.Context, market *core.Market) (*core.Price, error) {
	return s.priceStore.Find(ctx, market.AssetID)
}

// PullPriceTicker pull the live ticker from the feed
func (s *priceService) PullPriceTicker(ctx context.Context, symbol string, t time.Time) (*core.PriceTicker, error) {
	url := fmt.Sprintf("%s/api/v1/tickers/%s?ts=%d", s.cfg.EndPoint, symbol, t.UTC().Unix())
	logger.FromContext(ctx).Debugln("pull price:", url)

	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	var ticker core.PriceTicker
	if err := resthttp.ParseResponse(resp, &ticker); err != nil {
		return nil, err
	}

	if !ticker.Price.IsPositive() {
		return nil, core.ErrStalePrice
	}

	if ticker.Time.IsZero() {
		ticker.Time = t
	}

	return &ticker, nil
}
