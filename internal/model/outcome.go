package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification is the reconciliation verdict for one asset.
type Classification string

const (
	// Sufficient: spendable balance covers the spend on its own.
	Sufficient Classification = "sufficient"
	// Overlapping: pending offers hold the missing coins but the new offer
	// may reuse them without cancelling first (validate-only requests).
	Overlapping Classification = "overlapping"
	// Conflicting: pending offers hold the missing coins and must be
	// cancelled before the new offer can be created.
	Conflicting Classification = "conflicting"
)

// AssetStatus is the reconciliation result for one offered asset. Amounts
// are in smallest units.
type AssetStatus struct {
	Asset          AssetRef        `json:"asset"`
	WalletID       uint32          `json:"wallet_id"`
	Classification Classification  `json:"classification"`
	Spending       decimal.Decimal `json:"spending"`
	Spendable      decimal.Decimal `json:"spendable"`
	Confirmed      decimal.Decimal `json:"confirmed"`
	Locked         decimal.Decimal `json:"locked"`
	Offers         []OfferRecord   `json:"offers,omitempty"` // offers to touch to free capacity
}

// RoyaltyCharge records the royalty an NFT trade adds to a fungible asset.
type RoyaltyCharge struct {
	NFT        string          `json:"nft"`
	Asset      AssetRef        `json:"asset"`
	Direction  string          `json:"direction"`
	RoyaltyBPS uint32          `json:"royalty_bps"`
	Base       decimal.Decimal `json:"base"`
	Royalty    decimal.Decimal `json:"royalty"`
	Total      decimal.Decimal `json:"total"`
}

// ReconciliationOutcome is the engine's output: signed per-wallet spends in
// smallest units, NFT drivers keyed by launcher id, the fee and the offers
// that stand in the way.
type ReconciliationOutcome struct {
	ID                          string                     `json:"id" db:"id"`
	WalletSpend                 map[string]decimal.Decimal `json:"wallet_spend" db:"wallet_spend"`
	NFTDrivers                  map[string]DriverMetadata  `json:"nft_drivers" db:"nft_drivers"`
	Fee                         decimal.Decimal            `json:"fee" db:"fee"`
	Royalties                   []RoyaltyCharge            `json:"royalties,omitempty" db:"royalties"`
	Statuses                    []AssetStatus              `json:"statuses" db:"statuses"`
	OffersRequiringCancellation []AssetStatus              `json:"offers_requiring_cancellation" db:"offers_requiring_cancellation"`
	ValidateOnly                bool                       `json:"validate_only" db:"validate_only"`
	CreatedAt                   time.Time                  `json:"created_at" db:"created_at"`
}

// CancellationTradeIDs returns the distinct trade ids of every offer named
// in OffersRequiringCancellation, in first-seen order.
func (o *ReconciliationOutcome) CancellationTradeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, st := range o.OffersRequiringCancellation {
		for _, rec := range st.Offers {
			if !seen[rec.TradeID] {
				seen[rec.TradeID] = true
				ids = append(ids, rec.TradeID)
			}
		}
	}
	return ids
}
