package royalty

import (
	"testing"

	"github.com/shopspring/decimal"
)

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAdjust_AssetForNFT(t *testing.T) {
	got := Adjust(n(1_000_000_000), n(1_000_000), 500, AssetForNFT)
	if !got.Equal(n(1_051_000_000)) {
		t.Errorf("expected 1051000000, got %s", got)
	}
}

func TestAdjust_NFTForAsset(t *testing.T) {
	got := Adjust(n(1_000_000_000), n(1_000_000), 500, NFTForAsset)
	if !got.Equal(n(1_050_000_000)) {
		t.Errorf("expected fee excluded: 1050000000, got %s", got)
	}
}

func TestAdjust_ZeroRoyaltyPassthrough(t *testing.T) {
	for _, dir := range []Direction{NFTForAsset, AssetForNFT} {
		for _, fee := range []int64{0, 1, 1_000_000} {
			got := Adjust(n(123_456), n(fee), 0, dir)
			if !got.Equal(n(123_456)) {
				t.Errorf("dir=%s fee=%d: expected base unchanged, got %s", dir, fee, got)
			}
		}
	}
}

func TestAmount_FloorsFractionalMojo(t *testing.T) {
	// 999 * 250 / 10000 = 24.975
	got := Amount(n(999), 250)
	if !got.Equal(n(24)) {
		t.Errorf("expected 24, got %s", got)
	}
}

func TestAmount_FullRoyalty(t *testing.T) {
	if got := Amount(n(700), MaxBPS); !got.Equal(n(700)) {
		t.Errorf("expected 700, got %s", got)
	}
}

func TestAmount_NonPositiveBase(t *testing.T) {
	if got := Amount(decimal.Zero, 500); !got.IsZero() {
		t.Errorf("expected zero, got %s", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(10000); err != nil {
		t.Errorf("10000 bps should be valid: %v", err)
	}
	if err := Validate(10001); err != ErrInvalidBPS {
		t.Errorf("expected ErrInvalidBPS, got %v", err)
	}
}
