package pending

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/atmx/offer-engine/internal/model"
)

const (
	tokenA   = "a628c1c2c6fcb74d53746157e438e108eab5c0bb3e5c80ff9b1910b3e4832913"
	launcher = "7d5b4a1e9c0f2b3a4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4"
)

type knownTokens map[string]bool

func (k knownTokens) TokenKnown(id string) bool { return k[model.NormalizeHex(id)] }

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func offer(id string, locked map[string]decimal.Decimal) model.OfferRecord {
	return model.OfferRecord{
		TradeID:   id,
		Status:    model.StatusPendingAccept,
		IsMyOffer: true,
		Locked:    locked,
	}
}

func sampleOffers() []model.OfferRecord {
	nftOffer := offer("t4", map[string]decimal.Decimal{launcher: n(1)})
	nftOffer.Infos = map[string]model.AssetKind{launcher: model.KindNFT}
	return []model.OfferRecord{
		offer("t1", map[string]decimal.Decimal{"xch": n(300)}),
		offer("t2", map[string]decimal.Decimal{"unknown": n(5), tokenA: n(1000)}),
		offer("t3", map[string]decimal.Decimal{"XCH": n(200), "UNKNOWN": n(7)}),
		nftOffer,
	}
}

func TestAggregate_SumsAndMergesNative(t *testing.T) {
	locks := Aggregate(sampleOffers(), knownTokens{tokenA: true})

	native := locks.For(model.Native())
	require.NotNil(t, native)
	require.True(t, native.TradeAmount.Equal(n(500)))
	require.True(t, native.FeeAmount.Equal(n(12)))
	require.True(t, native.Locked().Equal(n(512)))
	require.True(t, native.NativeWithFee())
	require.Equal(t, []string{"t1", "t2", "t3"}, native.TradeIDs())

	tok := locks.For(model.Token(tokenA))
	require.NotNil(t, tok)
	require.True(t, tok.Locked().Equal(n(1000)))
	require.Equal(t, []string{"t2"}, tok.TradeIDs())

	nft := locks.ForNFT(launcher)
	require.NotNil(t, nft)
	require.True(t, nft.Locked().Equal(n(1)))
}

func TestAggregate_FeeOnlyIsNotFlaggedCombined(t *testing.T) {
	locks := Aggregate([]model.OfferRecord{offer("t1", map[string]decimal.Decimal{"unknown": n(9)})}, nil)
	native := locks.For(model.Native())
	require.NotNil(t, native)
	require.False(t, native.NativeWithFee())
	require.True(t, native.Locked().Equal(n(9)))
}

func TestAggregate_SkipsNonPending(t *testing.T) {
	confirmed := offer("done", map[string]decimal.Decimal{"xch": n(100)})
	confirmed.Status = model.StatusConfirmed
	theirs := offer("theirs", map[string]decimal.Decimal{"xch": n(100)})
	theirs.IsMyOffer = false

	locks := Aggregate([]model.OfferRecord{confirmed, theirs}, nil)
	require.Empty(t, locks)
}

func TestAggregate_DropsUnknownTokenWithoutInfo(t *testing.T) {
	locks := Aggregate([]model.OfferRecord{offer("t1", map[string]decimal.Decimal{"beef": n(10)})}, knownTokens{})
	require.Empty(t, locks)
}

func TestAggregate_Commutative(t *testing.T) {
	base := sampleOffers()
	want := Aggregate(base, knownTokens{tokenA: true})

	permute(base, 0, func(p []model.OfferRecord) {
		got := Aggregate(p, knownTokens{tokenA: true})
		require.Len(t, got, len(want))
		for ref, w := range want {
			g := got.For(ref)
			require.NotNil(t, g, "missing %s", ref)
			require.True(t, g.TradeAmount.Equal(w.TradeAmount), "%s trade", ref)
			require.True(t, g.FeeAmount.Equal(w.FeeAmount), "%s fee", ref)
			require.Equal(t, w.TradeIDs(), g.TradeIDs(), "%s offers", ref)
			require.Equal(t, w.NativeWithFee(), g.NativeWithFee())
		}
	})
}

// permute calls fn with a copy of every permutation of offers.
func permute(offers []model.OfferRecord, k int, fn func([]model.OfferRecord)) {
	if k == len(offers) {
		cp := make([]model.OfferRecord, len(offers))
		copy(cp, offers)
		fn(cp)
		return
	}
	for i := k; i < len(offers); i++ {
		offers[k], offers[i] = offers[i], offers[k]
		permute(offers, k+1, fn)
		offers[k], offers[i] = offers[i], offers[k]
	}
}
