package nft

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atmx/offer-engine/internal/catalog"
	"github.com/atmx/offer-engine/internal/model"
	"github.com/atmx/offer-engine/internal/royalty"
	"github.com/atmx/offer-engine/internal/store"
)

type countingSource struct {
	*store.MemoryStore
	calls atomic.Int32
}

func (c *countingSource) GetNFT(ctx context.Context, id string) (*model.NFTInfo, error) {
	c.calls.Add(1)
	return c.MemoryStore.GetNFT(ctx, id)
}

var launcher = strings.Repeat("ab", 32)

func newSource(t *testing.T, info model.NFTInfo) *countingSource {
	t.Helper()
	src := &countingSource{MemoryStore: store.NewMemoryStore()}
	require.NoError(t, src.SaveNFT(context.Background(), &info))
	return src
}

func TestBuildDriver_Offering(t *testing.T) {
	src := newSource(t, model.NFTInfo{LauncherID: launcher, WalletID: 5, RoyaltyBPS: 300, DataURIs: []string{"https://x"}})
	b, err := NewBuilder(src, 8)
	require.NoError(t, err)

	drv, err := b.BuildDriver(context.Background(), launcher, true)
	require.NoError(t, err)
	require.Equal(t, int64(-1), drv.SpendAmount)
	require.Equal(t, uint32(5), drv.Wallet.WalletID)
	require.Equal(t, launcher, drv.Wallet.LauncherID)
	require.Equal(t, DriverType, drv.Metadata.Type)
	require.Equal(t, uint32(300), drv.Metadata.RoyaltyBPS)
	require.Equal(t, []string{"https://x"}, drv.Metadata.DataURIs)
}

func TestBuildDriver_RequestedByBech32(t *testing.T) {
	src := newSource(t, model.NFTInfo{LauncherID: launcher})
	b, err := NewBuilder(src, 8)
	require.NoError(t, err)

	id, err := catalog.EncodeNFTID(launcher)
	require.NoError(t, err)

	drv, err := b.BuildDriver(context.Background(), id, false)
	require.NoError(t, err)
	require.Equal(t, int64(1), drv.SpendAmount)
	require.Equal(t, uint32(0), drv.Wallet.WalletID)
}

func TestBuildDriver_OfferingUnownedFails(t *testing.T) {
	src := newSource(t, model.NFTInfo{LauncherID: launcher})
	b, err := NewBuilder(src, 8)
	require.NoError(t, err)

	_, err = b.BuildDriver(context.Background(), launcher, true)
	require.ErrorIs(t, err, ErrNotOwned)
}

func TestBuildDriver_Errors(t *testing.T) {
	src := newSource(t, model.NFTInfo{LauncherID: launcher, WalletID: 2, RoyaltyBPS: 20000})
	b, err := NewBuilder(src, 8)
	require.NoError(t, err)

	_, err = b.BuildDriver(context.Background(), "not-an-nft", false)
	require.True(t, errors.Is(err, catalog.ErrBadNFTEncoding))

	_, err = b.BuildDriver(context.Background(), strings.Repeat("cd", 32), false)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = b.BuildDriver(context.Background(), launcher, false)
	require.ErrorIs(t, err, royalty.ErrInvalidBPS)
}

func TestBuildDriver_BadRoyaltyNotCached(t *testing.T) {
	src := newSource(t, model.NFTInfo{LauncherID: launcher, RoyaltyBPS: 20000})
	b, err := NewBuilder(src, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = b.BuildDriver(ctx, launcher, false)
	require.ErrorIs(t, err, royalty.ErrInvalidBPS)

	require.NoError(t, src.SaveNFT(ctx, &model.NFTInfo{LauncherID: launcher, RoyaltyBPS: 500}))

	drv, err := b.BuildDriver(ctx, launcher, false)
	require.NoError(t, err)
	require.Equal(t, uint32(500), drv.Metadata.RoyaltyBPS)
	require.Equal(t, int32(2), src.calls.Load())
}

func TestBuildDriver_CachesRequestedOnly(t *testing.T) {
	src := newSource(t, model.NFTInfo{LauncherID: launcher, WalletID: 3})
	b, err := NewBuilder(src, 8)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.BuildDriver(ctx, launcher, false)
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), src.calls.Load())

	_, err = b.BuildDriver(ctx, launcher, true)
	require.NoError(t, err)
	require.Equal(t, int32(2), src.calls.Load())

	b.Invalidate(strings.ToUpper(launcher))
	_, err = b.BuildDriver(ctx, launcher, false)
	require.NoError(t, err)
	require.Equal(t, int32(3), src.calls.Load())
}
