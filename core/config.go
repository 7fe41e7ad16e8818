package core

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config lever node config
type Config struct {
	App      App       `json:"app" valid:"required"`
	DB       db.Config `json:"db"`
	Oracle   Oracle    `json:"oracle" valid:"required"`
	Notifier Notifier  `json:"notifier"`
	Admins   []string  `json:"admins"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	Location string `json:"location"`
	// delay before an admin parameter change becomes effective, seconds
	GovDelaySeconds int64 `json:"gov_delay_seconds"`
	// external accrue triggers below this gap are no-ops, seconds
	MinAccrualGapSeconds int64 `json:"min_accrual_gap_seconds"`
	// max relative deviation between the two liquidation price reads
	MaxPriceDeviation decimal.Decimal `json:"max_price_deviation"`
	// flash loan fee fraction
	FlashFee decimal.Decimal `json:"flash_fee"`
}

// Oracle price feed config
type Oracle struct {
	EndPoint string `json:"end_point" valid:"required"`
	// poll interval in seconds
	PullIntervalSeconds int64 `json:"pull_interval_seconds"`
}

// Notifier event sink config, events are logged when the endpoint is empty
type Notifier struct {
	EndPoint string `json:"end_point"`
	Batch    int    `json:"batch"`
}
