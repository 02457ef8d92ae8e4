package offer

import (
	"context"

	"github.com/atmx/offer-engine/internal/model"
)

// BalanceLookup reads a live balance for one wallet. Implementations must
// not serve cached values: spendable balance moves as offers come and go.
type BalanceLookup interface {
	FetchBalance(ctx context.Context, walletID uint32) (model.BalanceSnapshot, error)
}

// NFTDriverBuilder builds the spend driver for one NFT. isOffering is true
// when the user gives the NFT away.
type NFTDriverBuilder interface {
	BuildDriver(ctx context.Context, nftID string, isOffering bool) (model.NFTDriver, error)
}

// Options tune request validation.
type Options struct {
	// AllowEmptyOffered permits request-only offers with nothing offered.
	AllowEmptyOffered bool
}
