package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side says which half of a trade a row belongs to.
type Side string

const (
	Offered   Side = "offered"
	Requested Side = "requested"
)

// TradeRow is one line item of a trade request. Amount is in the asset's
// display unit; an invalid (null) amount means the field was left blank.
type TradeRow struct {
	Asset  AssetRef            `json:"asset"`
	Amount decimal.NullDecimal `json:"amount"`
}

// UnmarshalJSON treats a null, empty or all-blank amount as not given.
func (r *TradeRow) UnmarshalJSON(b []byte) error {
	var raw struct {
		Asset  AssetRef        `json:"asset"`
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Asset = raw.Asset
	r.Amount = decimal.NullDecimal{}
	if blankAmount(raw.Amount) {
		return nil
	}
	return r.Amount.UnmarshalJSON(raw.Amount)
}

func blankAmount(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// OfferSide is one side of a trade, partitioned by asset kind.
type OfferSide struct {
	Native []TradeRow `json:"native,omitempty"`
	Tokens []TradeRow `json:"tokens,omitempty"`
	NFTs   []TradeRow `json:"nfts,omitempty"`
}

// Rows returns every row of the side: native first, then tokens, then NFTs.
func (s OfferSide) Rows() []TradeRow {
	rows := make([]TradeRow, 0, len(s.Native)+len(s.Tokens)+len(s.NFTs))
	rows = append(rows, s.Native...)
	rows = append(rows, s.Tokens...)
	rows = append(rows, s.NFTs...)
	return rows
}

// Empty reports whether the side has no rows at all.
func (s OfferSide) Empty() bool {
	return len(s.Native) == 0 && len(s.Tokens) == 0 && len(s.NFTs) == 0
}

// OfferRequest is a user's full trade intent.
type OfferRequest struct {
	Offered   OfferSide           `json:"offered"`
	Requested OfferSide           `json:"requested"`
	Fee       decimal.NullDecimal `json:"fee"` // native display units, offered side

	// ValidateOnly builds the offer for preview; the result need not be
	// valid immediately.
	ValidateOnly bool `json:"validate_only,omitempty"`
}

// OfferStatus mirrors the wallet backend's trade status names.
type OfferStatus string

const (
	StatusPendingAccept  OfferStatus = "PENDING_ACCEPT"
	StatusPendingConfirm OfferStatus = "PENDING_CONFIRM"
	StatusPendingCancel  OfferStatus = "PENDING_CANCEL"
	StatusCancelled      OfferStatus = "CANCELLED"
	StatusConfirmed      OfferStatus = "CONFIRMED"
	StatusFailed         OfferStatus = "FAILED"
)

// Lock keys with special meaning in OfferRecord.Locked.
const (
	LockKeyNative = "xch"
	LockKeyFee    = "unknown"
)

// OfferRecord is one of the user's own trade offers as reported by the
// wallet backend. Locked amounts are in smallest units, keyed by lock key
// (LockKeyNative, LockKeyFee, a token asset id or an NFT launcher id).
type OfferRecord struct {
	TradeID   string                     `json:"trade_id" db:"trade_id"`
	Status    OfferStatus                `json:"status" db:"status"`
	IsMyOffer bool                       `json:"is_my_offer" db:"is_my_offer"`
	CreatedAt time.Time                  `json:"created_at" db:"created_at"`
	Locked    map[string]decimal.Decimal `json:"locked" db:"locked"`
	Infos     map[string]AssetKind       `json:"infos,omitempty" db:"infos"` // summary type per lock key
}

// PendingAccept reports whether the offer is the user's own and still
// waiting for a taker.
func (o OfferRecord) PendingAccept() bool {
	return o.IsMyOffer && OfferStatus(strings.ToUpper(string(o.Status))) == StatusPendingAccept
}

// PendingLock is the aggregated lock on one asset across pending offers.
// Native locks keep trade and fee sub-totals apart.
type PendingLock struct {
	Asset       AssetRef        `json:"asset"`
	TradeAmount decimal.Decimal `json:"trade_amount"`
	FeeAmount   decimal.Decimal `json:"fee_amount"`
	Offers      []OfferRecord   `json:"offers"`

	HasTrade bool `json:"has_trade"`
	HasFee   bool `json:"has_fee"`
}

// Locked is the total amount held by pending offers.
func (l *PendingLock) Locked() decimal.Decimal {
	if l == nil {
		return decimal.Zero
	}
	return l.TradeAmount.Add(l.FeeAmount)
}

// NativeWithFee reports whether a native lock merged a trade amount and a
// fee-only amount.
func (l *PendingLock) NativeWithFee() bool {
	return l != nil && l.HasTrade && l.HasFee
}

// TradeIDs lists the contributing offers' ids in order.
func (l *PendingLock) TradeIDs() []string {
	if l == nil {
		return nil
	}
	ids := make([]string, len(l.Offers))
	for i, o := range l.Offers {
		ids[i] = o.TradeID
	}
	return ids
}

// NFTInfo is the wallet backend's record of one NFT.
type NFTInfo struct {
	LauncherID     string   `json:"launcher_id" db:"launcher_id"`
	WalletID       uint32   `json:"wallet_id" db:"wallet_id"` // 0 when not owned
	DataURIs       []string `json:"data_uris" db:"data_uris"`
	DataHash       string   `json:"data_hash" db:"data_hash"`
	MetadataURIs   []string `json:"metadata_uris" db:"metadata_uris"`
	MetadataHash   string   `json:"metadata_hash" db:"metadata_hash"`
	LicenseURIs    []string `json:"license_uris" db:"license_uris"`
	LicenseHash    string   `json:"license_hash" db:"license_hash"`
	RoyaltyBPS     uint32   `json:"royalty_bps" db:"royalty_bps"`
	RoyaltyAddress string   `json:"royalty_address,omitempty" db:"royalty_address"`
	OwnerDID       string   `json:"owner_did,omitempty" db:"owner_did"`
}

// DriverMetadata describes how to spend an NFT inside an offer.
type DriverMetadata struct {
	Type           string   `json:"type"` // always "singleton"
	LauncherID     string   `json:"launcher_id"`
	DataURIs       []string `json:"data_uris"`
	DataHash       string   `json:"data_hash"`
	MetadataURIs   []string `json:"metadata_uris"`
	MetadataHash   string   `json:"metadata_hash"`
	LicenseURIs    []string `json:"license_uris"`
	LicenseHash    string   `json:"license_hash"`
	RoyaltyBPS     uint32   `json:"royalty_bps"`
	RoyaltyAddress string   `json:"royalty_address,omitempty"`
	OwnerDID       string   `json:"owner_did,omitempty"`
}

// NFTDriver is the result of building an NFT spend driver.
type NFTDriver struct {
	Wallet      WalletHandle   `json:"wallet"`
	SpendAmount int64          `json:"spend_amount"` // -1 when offering, +1 when requesting
	Metadata    DriverMetadata `json:"metadata"`
}
