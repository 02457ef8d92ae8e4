// Package balance decides whether the user can fund each offered asset,
// given live balances and what their pending offers already hold.
package balance

import (
	"github.com/shopspring/decimal"

	"github.com/atmx/offer-engine/internal/model"
)

var nftUnit = decimal.NewFromInt(1)

// Input is everything needed to validate one row.
type Input struct {
	Row     model.TradeRow
	Side    model.Side
	Wallet  *model.WalletHandle // nil when the row did not resolve
	Balance model.BalanceSnapshot
	Pending *model.PendingLock

	// Required overrides the row amount (smallest units) when the asset
	// must also cover fees or royalties. Zero means use the row amount.
	Required decimal.Decimal

	ValidateOnly bool
}

// Validate applies the row checks and, for offered rows, classifies the
// asset. A nil status with a nil error means the row is a requested-side
// placeholder and is skipped. Requested rows that pass return a nil status.
func Validate(in Input) (*model.AssetStatus, error) {
	amount, skip, err := CheckRow(in.Row, in.Side, in.Wallet)
	if err != nil || skip || in.Side == model.Requested {
		return nil, err
	}

	required := amount
	if in.Required.IsPositive() {
		required = in.Required
	}
	st, err := Classify(in.Row.Asset, in.Wallet.WalletID, required, in.Balance, in.Pending, in.ValidateOnly)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CheckRow validates a row's selection and amount and returns the amount
// in smallest units. NFT rows always move exactly one unit. skip is true
// for requested-side zero amounts.
func CheckRow(row model.TradeRow, side model.Side, wallet *model.WalletHandle) (amount decimal.Decimal, skip bool, err error) {
	asset := row.Asset.String()
	if wallet == nil || !row.Asset.Selected() {
		return decimal.Zero, false, model.NewError(model.KindMissingAssetSelection, asset,
			"%s row has no asset selected", side)
	}

	switch row.Asset.Kind {
	case model.KindNFT:
		return nftUnit, false, nil
	case model.KindNative, model.KindToken:
	case model.KindUnset:
		return decimal.Zero, false, model.NewError(model.KindMissingAssetSelection, asset,
			"%s row has no asset selected", side)
	}

	if !row.Amount.Valid {
		return decimal.Zero, false, model.NewError(model.KindMissingAmount, asset,
			"%s amount for %s is required", side, asset)
	}
	if row.Amount.Decimal.IsNegative() {
		return decimal.Zero, false, model.NewError(model.KindInvalidAmount, asset,
			"%s amount for %s must not be negative", side, asset)
	}
	if row.Amount.Decimal.IsZero() {
		if side == model.Requested {
			return decimal.Zero, true, nil
		}
		return decimal.Zero, false, model.NewError(model.KindMissingAmount, asset,
			"%s amount for %s must be greater than zero", side, asset)
	}

	amount, err = model.ToSmallest(row.Asset.Kind, row.Amount.Decimal)
	if err != nil {
		return decimal.Zero, false, model.NewError(model.KindInvalidAmount, asset, "%s: %w", asset, err)
	}
	return amount, false, nil
}

// Classify compares required against the spendable balance and the
// pending lock. Spendable alone covering the spend is sufficient whatever
// the locks; otherwise the locks must cover the gap or the request fails.
func Classify(asset model.AssetRef, walletID uint32, required decimal.Decimal, snap model.BalanceSnapshot,
	lock *model.PendingLock, validateOnly bool) (model.AssetStatus, error) {
	locked := lock.Locked()
	st := model.AssetStatus{
		Asset:          asset,
		WalletID:       walletID,
		Classification: model.Sufficient,
		Spending:       required,
		Spendable:      snap.Spendable,
		Confirmed:      snap.Confirmed,
		Locked:         locked,
	}

	if snap.Spendable.GreaterThanOrEqual(required) {
		return st, nil
	}

	if snap.Spendable.Add(locked).LessThan(required) {
		return model.AssetStatus{}, model.NewError(model.KindInsufficientTotalBalance, asset.String(),
			"amount %s exceeds total balance %s (spendable %s + locked %s) for %s",
			required, snap.Spendable.Add(locked), snap.Spendable, locked, asset)
	}

	st.Classification = model.Conflicting
	if validateOnly {
		st.Classification = model.Overlapping
	}
	st.Offers = append(st.Offers, lock.Offers...)
	return st, nil
}
