// Package royalty computes royalty-inflated totals for trades that pair an
// NFT with a fungible asset.
//
// All arithmetic is in smallest units; percentages are basis points.
package royalty

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Direction says which side of the trade the NFT is on.
type Direction int

const (
	// NFTForAsset: the NFT is offered and the fungible asset requested.
	// The buyer pays the royalty on top of the price.
	NFTForAsset Direction = iota
	// AssetForNFT: the fungible asset is offered and the NFT requested.
	// The local user reserves price, fee and royalty.
	AssetForNFT
)

func (d Direction) String() string {
	if d == AssetForNFT {
		return "asset_for_nft"
	}
	return "nft_for_asset"
}

// MaxBPS is 100%.
const MaxBPS = 10000

// ErrInvalidBPS is returned by Validate for percentages above 100%.
var ErrInvalidBPS = errors.New("royalty: basis points must be between 0 and 10000")

var bpsScale = decimal.NewFromInt(MaxBPS)

// Amount returns floor(base * bps / 10000).
func Amount(base decimal.Decimal, bps uint32) decimal.Decimal {
	if bps == 0 || !base.IsPositive() {
		return decimal.Zero
	}
	return base.Mul(decimal.NewFromInt(int64(bps))).Div(bpsScale).Floor()
}

// Adjust returns the total that must be reserved for base once the NFT's
// royalty is applied. With bps == 0 it returns base unchanged.
func Adjust(base, fee decimal.Decimal, bps uint32, dir Direction) decimal.Decimal {
	if bps == 0 {
		return base
	}
	total := base.Add(Amount(base, bps))
	if dir == AssetForNFT {
		total = total.Add(fee)
	}
	return total
}

// Validate checks that bps is a valid percentage.
func Validate(bps uint32) error {
	if bps > MaxBPS {
		return ErrInvalidBPS
	}
	return nil
}
