package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToSmallest_Native(t *testing.T) {
	v, err := ToSmallest(KindNative, decimal.RequireFromString("1.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(decimal.NewFromInt(1_500_000_000_000)) {
		t.Errorf("expected 1500000000000 mojo, got %s", v)
	}
}

func TestToSmallest_Token(t *testing.T) {
	v, err := ToSmallest(KindToken, decimal.RequireFromString("2.125"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(decimal.NewFromInt(2125)) {
		t.Errorf("expected 2125, got %s", v)
	}
}

func TestToSmallest_TooPrecise(t *testing.T) {
	if _, err := ToSmallest(KindToken, decimal.RequireFromString("0.0001")); err == nil {
		t.Error("expected error for sub-mojo token amount")
	}
}

func TestToDisplay_RoundTrip(t *testing.T) {
	in := decimal.RequireFromString("0.000000000001")
	v, err := ToSmallest(KindNative, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ToDisplay(KindNative, v).Equal(in) {
		t.Errorf("round trip mismatch: %s", ToDisplay(KindNative, v))
	}
}

func TestAssetKind_UnmarshalAliases(t *testing.T) {
	for in, want := range map[string]AssetKind{"XCH": KindNative, "CAT": KindToken, "SINGLETON": KindNFT, "nft": KindNFT} {
		var k AssetKind
		if err := k.UnmarshalText([]byte(in)); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if k != want {
			t.Errorf("%s: expected %s, got %s", in, want, k)
		}
	}
}

func TestToken_Normalizes(t *testing.T) {
	if Token("0xABCD") != Token("abcd") {
		t.Error("token refs should compare equal after normalization")
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(KindMissingAmount, "token:ab", "amount is required"))
	if !errors.Is(err, ErrMissingAmount) {
		t.Error("expected errors.Is to match kind sentinel")
	}
	if errors.Is(err, ErrUnknownAsset) {
		t.Error("kinds should not cross-match")
	}
	if !errors.Is(err, &Error{Kind: KindMissingAmount, Asset: "token:ab"}) {
		t.Error("expected asset-specific match")
	}
}

func TestErrors_FlattensJoin(t *testing.T) {
	joined := errors.Join(
		NewError(KindMissingAmount, "a", "a"),
		errors.Join(NewError(KindUnknownAsset, "b", "b")),
	)
	got := Errors(joined)
	if len(got) != 2 || got[0].Kind != KindMissingAmount || got[1].Kind != KindUnknownAsset {
		t.Errorf("unexpected flatten result: %v", got)
	}
}
