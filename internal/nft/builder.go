// Package nft builds spend drivers for NFTs named in an offer.
package nft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/atmx/offer-engine/internal/catalog"
	"github.com/atmx/offer-engine/internal/model"
	"github.com/atmx/offer-engine/internal/royalty"
)

// DriverType is the puzzle driver every NFT spend uses.
const DriverType = "singleton"

// ErrNotOwned is returned when an offered NFT sits in no wallet of the user.
var ErrNotOwned = errors.New("nft: offered nft is not held by any wallet")

// Source looks up NFT records by launcher id.
type Source interface {
	GetNFT(ctx context.Context, launcherID string) (*model.NFTInfo, error)
}

// Builder resolves NFT ids to driver metadata. Records are cached by
// launcher id since their on-chain metadata never changes.
type Builder struct {
	src   Source
	cache *lru.Cache[string, model.NFTInfo]
}

// NewBuilder creates a builder with an LRU of the given size.
func NewBuilder(src Source, cacheSize int) (*Builder, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, model.NFTInfo](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Builder{src: src, cache: cache}, nil
}

// BuildDriver decodes nftID, loads its record and returns the driver. An
// offered NFT must be held by one of the user's wallets.
func (b *Builder) BuildDriver(ctx context.Context, nftID string, isOffering bool) (model.NFTDriver, error) {
	launcher, err := catalog.LauncherID(nftID)
	if err != nil {
		return model.NFTDriver{}, err
	}

	info, err := b.lookup(ctx, launcher, isOffering)
	if err != nil {
		return model.NFTDriver{}, err
	}
	if err := royalty.Validate(info.RoyaltyBPS); err != nil {
		// Force a re-read once the record is corrected.
		b.Invalidate(launcher)
		return model.NFTDriver{}, fmt.Errorf("nft %s: %w", nftID, err)
	}
	if isOffering && info.WalletID == 0 {
		return model.NFTDriver{}, fmt.Errorf("%w: %s", ErrNotOwned, nftID)
	}

	drv := model.NFTDriver{
		Wallet: model.WalletHandle{
			WalletID:   info.WalletID,
			Kind:       model.KindNFT,
			LauncherID: launcher,
		},
		SpendAmount: 1,
		Metadata:    Metadata(info),
	}
	if isOffering {
		drv.SpendAmount = -1
	}
	return drv, nil
}

// Invalidate drops a cached record, e.g. after the NFT changes wallets.
func (b *Builder) Invalidate(launcherID string) {
	b.cache.Remove(model.NormalizeHex(launcherID))
}

// lookup serves from cache except when offering: ownership must be fresh.
func (b *Builder) lookup(ctx context.Context, launcher string, fresh bool) (model.NFTInfo, error) {
	if !fresh {
		if info, ok := b.cache.Get(launcher); ok {
			return info, nil
		}
	}

	info, err := b.src.GetNFT(ctx, launcher)
	if err != nil {
		return model.NFTInfo{}, fmt.Errorf("load nft %s: %w", launcher, err)
	}
	if b.cache.Add(launcher, *info) {
		slog.Debug("nft cache evicted entry", "launcher_id", launcher)
	}
	return *info, nil
}

// Metadata converts a record into driver metadata.
func Metadata(info model.NFTInfo) model.DriverMetadata {
	return model.DriverMetadata{
		Type:           DriverType,
		LauncherID:     model.NormalizeHex(info.LauncherID),
		DataURIs:       info.DataURIs,
		DataHash:       info.DataHash,
		MetadataURIs:   info.MetadataURIs,
		MetadataHash:   info.MetadataHash,
		LicenseURIs:    info.LicenseURIs,
		LicenseHash:    info.LicenseHash,
		RoyaltyBPS:     info.RoyaltyBPS,
		RoyaltyAddress: info.RoyaltyAddress,
		OwnerDID:       info.OwnerDID,
	}
}
