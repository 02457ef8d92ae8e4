package balance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atmx/offer-engine/internal/model"
)

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func amt(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var tokenWallet = &model.WalletHandle{WalletID: 2, Kind: model.KindToken, AssetID: "abcd"}

func snap(spendable int64) model.BalanceSnapshot {
	return model.BalanceSnapshot{WalletID: 2, Spendable: n(spendable), Confirmed: n(spendable)}
}

func lockOf(amount int64, ids ...string) *model.PendingLock {
	l := &model.PendingLock{Asset: model.Token("abcd"), TradeAmount: n(amount), HasTrade: true}
	for _, id := range ids {
		l.Offers = append(l.Offers, model.OfferRecord{TradeID: id})
	}
	return l
}

func TestValidate_Sufficient(t *testing.T) {
	st, err := Validate(Input{
		Row:     model.TradeRow{Asset: model.Token("abcd"), Amount: amt("0.5")},
		Side:    model.Offered,
		Wallet:  tokenWallet,
		Balance: snap(500),
		Pending: lockOf(300, "t1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Classification != model.Sufficient {
		t.Errorf("expected sufficient, got %s", st.Classification)
	}
	if len(st.Offers) != 0 {
		t.Errorf("sufficient status should not name offers to cancel, got %d", len(st.Offers))
	}
	if !st.Spending.Equal(n(500)) {
		t.Errorf("expected spending 500, got %s", st.Spending)
	}
}

func TestValidate_Conflicting(t *testing.T) {
	st, err := Validate(Input{
		Row:     model.TradeRow{Asset: model.Token("abcd"), Amount: amt("0.7")},
		Side:    model.Offered,
		Wallet:  tokenWallet,
		Balance: snap(500),
		Pending: lockOf(300, "t1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Classification != model.Conflicting {
		t.Errorf("expected conflicting, got %s", st.Classification)
	}
	if len(st.Offers) != 1 || st.Offers[0].TradeID != "t1" {
		t.Errorf("expected offer t1, got %+v", st.Offers)
	}
}

func TestValidate_OverlappingWhenValidateOnly(t *testing.T) {
	st, err := Validate(Input{
		Row:          model.TradeRow{Asset: model.Token("abcd"), Amount: amt("0.7")},
		Side:         model.Offered,
		Wallet:       tokenWallet,
		Balance:      snap(500),
		Pending:      lockOf(300, "t1"),
		ValidateOnly: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Classification != model.Overlapping {
		t.Errorf("expected overlapping, got %s", st.Classification)
	}
}

func TestValidate_InsufficientTotal(t *testing.T) {
	_, err := Validate(Input{
		Row:     model.TradeRow{Asset: model.Token("abcd"), Amount: amt("0.9")},
		Side:    model.Offered,
		Wallet:  tokenWallet,
		Balance: snap(500),
		Pending: lockOf(300, "t1"),
	})
	if !errors.Is(err, model.ErrInsufficientTotalBalance) {
		t.Fatalf("expected insufficient total balance, got %v", err)
	}
}

func TestValidate_RequiredOverride(t *testing.T) {
	_, err := Validate(Input{
		Row:      model.TradeRow{Asset: model.Token("abcd"), Amount: amt("0.4")},
		Side:     model.Offered,
		Wallet:   tokenWallet,
		Balance:  snap(500),
		Required: n(501),
	})
	if !errors.Is(err, model.ErrInsufficientTotalBalance) {
		t.Fatalf("expected override to be enforced, got %v", err)
	}
}

func TestValidate_MissingSelection(t *testing.T) {
	_, err := Validate(Input{Row: model.TradeRow{Amount: amt("1")}, Side: model.Offered})
	if !errors.Is(err, model.ErrMissingAssetSelection) {
		t.Fatalf("expected missing selection, got %v", err)
	}
}

func TestValidate_MissingAmount(t *testing.T) {
	for _, side := range []model.Side{model.Offered, model.Requested} {
		_, err := Validate(Input{Row: model.TradeRow{Asset: model.Token("abcd")}, Side: side, Wallet: tokenWallet})
		if !errors.Is(err, model.ErrMissingAmount) {
			t.Errorf("%s: expected missing amount for blank, got %v", side, err)
		}
	}
	_, err := Validate(Input{Row: model.TradeRow{Asset: model.Token("abcd"), Amount: amt("0")}, Side: model.Offered, Wallet: tokenWallet})
	if !errors.Is(err, model.ErrMissingAmount) {
		t.Errorf("expected missing amount for offered zero, got %v", err)
	}
}

func TestValidate_RequestedZeroSkipped(t *testing.T) {
	st, err := Validate(Input{Row: model.TradeRow{Asset: model.Token("abcd"), Amount: amt("0")}, Side: model.Requested, Wallet: tokenWallet})
	if err != nil || st != nil {
		t.Fatalf("expected skip, got %v %v", st, err)
	}
}

func TestCheckRow_PrecisionAndSign(t *testing.T) {
	if _, _, err := CheckRow(model.TradeRow{Asset: model.Token("abcd"), Amount: amt("0.0005")}, model.Offered, tokenWallet); !errors.Is(err, model.ErrInvalidAmount) {
		t.Errorf("expected invalid amount for sub-mojo, got %v", err)
	}
	if _, _, err := CheckRow(model.TradeRow{Asset: model.Token("abcd"), Amount: amt("-1")}, model.Offered, tokenWallet); !errors.Is(err, model.ErrInvalidAmount) {
		t.Errorf("expected invalid amount for negative, got %v", err)
	}
}

func TestCheckRow_NFTIsOneUnit(t *testing.T) {
	w := &model.WalletHandle{Kind: model.KindNFT, LauncherID: "ff"}
	a, skip, err := CheckRow(model.TradeRow{Asset: model.NFT("nft1x")}, model.Offered, w)
	if err != nil || skip || !a.Equal(n(1)) {
		t.Errorf("expected one unit, got %s %v %v", a, skip, err)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	lock := lockOf(300, "t1")
	rank := map[model.Classification]int{model.Sufficient: 0, model.Overlapping: 1, model.Conflicting: 1}
	worst := 2 // error
	prev := worst
	for spendable := int64(0); spendable <= 1000; spendable += 50 {
		st, err := Classify(model.Token("abcd"), 2, n(700), snap(spendable), lock, false)
		cur := worst
		if err == nil {
			cur = rank[st.Classification]
		}
		if cur > prev {
			t.Fatalf("classification worsened at spendable=%d", spendable)
		}
		prev = cur
	}
	if prev != 0 {
		t.Errorf("expected sufficient at high spendable")
	}
}
