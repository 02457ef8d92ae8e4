// Package pending folds the user's own outstanding offers into per-asset
// lock totals.
package pending

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atmx/offer-engine/internal/model"
)

// TokenDirectory tells the aggregator which lock keys are known tokens.
// *catalog.Catalog satisfies it.
type TokenDirectory interface {
	TokenKnown(assetID string) bool
}

// Locks is the aggregation result keyed by asset. NFT entries are keyed by
// launcher id.
type Locks map[model.AssetRef]*model.PendingLock

// For returns the lock on ref, or nil.
func (l Locks) For(ref model.AssetRef) *model.PendingLock {
	return l[ref]
}

// ForNFT returns the lock on the NFT with the given launcher id, or nil.
func (l Locks) ForNFT(launcherID string) *model.PendingLock {
	return l[model.AssetRef{Kind: model.KindNFT, ID: model.NormalizeHex(launcherID)}]
}

// Aggregate sums the locked amounts of every pending-accept offer created
// by the user. The native trade key and the fee sentinel fold into one
// native lock with separate sub-totals. The result does not depend on the
// order of offers.
func Aggregate(offers []model.OfferRecord, tokens TokenDirectory) Locks {
	locks := make(Locks)

	for _, offer := range offers {
		if !offer.PendingAccept() {
			continue
		}
		for key, amount := range offer.Locked {
			ref, isFee := classify(key, offer.Infos, tokens)
			if !ref.Selected() {
				slog.Debug("pending lock with unrecognized key", "trade_id", offer.TradeID, "key", key)
				continue
			}

			lock, ok := locks[ref]
			if !ok {
				lock = &model.PendingLock{Asset: ref, TradeAmount: decimal.Zero, FeeAmount: decimal.Zero}
				locks[ref] = lock
			}
			if isFee {
				lock.FeeAmount = lock.FeeAmount.Add(amount)
				lock.HasFee = true
			} else {
				lock.TradeAmount = lock.TradeAmount.Add(amount)
				lock.HasTrade = true
			}
			if !contains(lock.Offers, offer.TradeID) {
				lock.Offers = append(lock.Offers, offer)
			}
		}
	}

	for _, lock := range locks {
		sort.Slice(lock.Offers, func(i, j int) bool {
			return lock.Offers[i].TradeID < lock.Offers[j].TradeID
		})
	}
	return locks
}

// classify maps a lock key to an asset. The second result is true for the
// fee sentinel.
func classify(key string, infos map[string]model.AssetKind, tokens TokenDirectory) (model.AssetRef, bool) {
	switch strings.ToLower(key) {
	case model.LockKeyNative:
		return model.Native(), false
	case model.LockKeyFee:
		return model.Native(), true
	}

	id := model.NormalizeHex(key)
	if id == "" {
		return model.AssetRef{}, false
	}
	kind := infoKind(infos, key)
	switch kind {
	case model.KindNFT:
		return model.AssetRef{Kind: model.KindNFT, ID: id}, false
	case model.KindNative:
		return model.Native(), false
	case model.KindToken:
		return model.Token(id), false
	case model.KindUnset:
		// Without summary info only tokens in the directory can be offered,
		// so only those locks matter.
		if tokens != nil && tokens.TokenKnown(id) {
			return model.Token(id), false
		}
	}
	return model.AssetRef{}, false
}

func infoKind(infos map[string]model.AssetKind, key string) model.AssetKind {
	if k, ok := infos[key]; ok {
		return k
	}
	id := model.NormalizeHex(key)
	for k, kind := range infos {
		if model.NormalizeHex(k) == id {
			return kind
		}
	}
	return model.KindUnset
}

func contains(offers []model.OfferRecord, tradeID string) bool {
	for _, o := range offers {
		if o.TradeID == tradeID {
			return true
		}
	}
	return false
}
