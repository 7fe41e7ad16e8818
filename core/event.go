package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Action operation kind carried by an event
type Action int

const (
	// ActionDeposit deposit
	ActionDeposit Action = iota + 1
	// ActionWithdraw withdraw
	ActionWithdraw
	// ActionBorrow borrow
	ActionBorrow
	// ActionRepay repay
	ActionRepay
	// ActionTransferCollateral collateral transfer between accounts
	ActionTransferCollateral
	// ActionLiquidate liquidation
	ActionLiquidate
	// ActionFlashLoan flash loan issued and repaid
	ActionFlashLoan
	// ActionParamChange admin parameter change recorded
	ActionParamChange
)

var actionNames = map[Action]string{
	ActionDeposit:            "deposit",
	ActionWithdraw:           "withdraw",
	ActionBorrow:             "borrow",
	ActionRepay:              "repay",
	ActionTransferCollateral: "transfer_collateral",
	ActionLiquidate:          "liquidate",
	ActionFlashLoan:          "flash_loan",
	ActionParamChange:        "param_change",
}

func (a Action) String() string {
	return actionNames[a]
}

// Event ordered notification of a committed state mutation
//
// Rows are written in the same transaction as the mutations they describe,
// so an event exists iff its mutation is durable. The auto increment id is
// the delivery order.
type Event struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID    string          `sql:"size:36;unique_index:event_trace_idx" json:"trace_id"`
	UserID     string          `sql:"size:36;index:event_user_idx" json:"user_id"`
	Action     Action          `json:"action"`
	AssetID    string          `sql:"size:36" json:"asset_id"`
	Amount     decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Data       types.JSONText  `sql:"type:varchar(2048)" json:"data,omitempty"`
	NotifiedAt sql.NullTime    `json:"notified_at,omitempty"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// SetData marshal v into the event payload
func (e *Event) SetData(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	e.Data = data
	return nil
}

// LiquidationData immutable payload of a liquidation event
type LiquidationData struct {
	Borrower      string          `json:"borrower"`
	Liquidator    string          `json:"liquidator"`
	DebtAssetID   string          `json:"debt_asset_id"`
	RepayAmount   decimal.Decimal `json:"repay_amount"`
	SeizedAssetID string          `json:"seized_asset_id"`
	SeizedAmount  decimal.Decimal `json:"seized_amount"`
	PriceUsed     decimal.Decimal `json:"price_used"`
	BonusFraction decimal.Decimal `json:"bonus_fraction"`
}

// IEventStore event store interface
type IEventStore interface {
	Create(ctx context.Context, tx *db.DB, event *Event) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Event, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Event, error)
}

// INotifier delivers committed events to the indexer sink, in id order
type INotifier interface {
	Notify(ctx context.Context, event *Event) error
}
