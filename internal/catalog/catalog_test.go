package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atmx/offer-engine/internal/model"
)

const launcher = "7d5b4a1e9c0f2b3a4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4"

func testWallets() []model.WalletInfo {
	return []model.WalletInfo{
		{ID: 1, Name: "Chia Wallet", Kind: model.KindNative},
		{ID: 2, Name: "Spacebucks", Kind: model.KindToken, AssetID: "A628C1C2C6FCB74D53746157E438E108EAB5C0BB3E5C80FF9B1910B3E4832913"},
		{ID: 3, Name: "NFT Wallet", Kind: model.KindNFT},
	}
}

func TestResolve_Native(t *testing.T) {
	c := New(testWallets())
	h, err := c.Resolve(model.Native())
	require.NoError(t, err)
	require.Equal(t, uint32(1), h.WalletID)
	require.Equal(t, model.KindNative, h.Kind)
	require.Equal(t, "1", h.SpendKey())
}

func TestResolve_NoStandardWallet(t *testing.T) {
	c := New(testWallets()[1:])
	_, err := c.Resolve(model.Native())
	require.True(t, errors.Is(err, model.ErrNoStandardWallet))
}

func TestResolve_TokenCaseInsensitive(t *testing.T) {
	c := New(testWallets())
	h, err := c.Resolve(model.Token("0xa628c1c2c6fcb74d53746157e438e108eab5c0bb3e5c80ff9b1910b3e4832913"))
	require.NoError(t, err)
	require.Equal(t, uint32(2), h.WalletID)
	require.Equal(t, "a628c1c2c6fcb74d53746157e438e108eab5c0bb3e5c80ff9b1910b3e4832913", h.AssetID)
}

func TestResolve_UnknownToken(t *testing.T) {
	c := New(testWallets())
	_, err := c.Resolve(model.Token("deadbeef"))
	require.True(t, errors.Is(err, model.ErrUnknownAsset))

	var me *model.Error
	require.True(t, errors.As(err, &me))
	require.Equal(t, "token:deadbeef", me.Asset)
}

func TestResolve_Unselected(t *testing.T) {
	c := New(testWallets())
	for _, ref := range []model.AssetRef{{}, {Kind: model.KindToken}, {Kind: model.KindNFT}} {
		_, err := c.Resolve(ref)
		require.True(t, errors.Is(err, model.ErrMissingAssetSelection), "ref %v", ref)
	}
}

func TestResolve_NFT(t *testing.T) {
	id, err := EncodeNFTID(launcher)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(id, "nft1"))

	c := New(testWallets())
	h, err := c.Resolve(model.NFT(id))
	require.NoError(t, err)
	require.Equal(t, model.KindNFT, h.Kind)
	require.Equal(t, launcher, h.LauncherID)
	require.Equal(t, launcher, h.SpendKey())
}

func TestResolve_InvalidNFT(t *testing.T) {
	c := New(testWallets())
	_, err := c.Resolve(model.NFT("nft1notreallyanid"))
	require.True(t, errors.Is(err, model.ErrInvalidNFTID))
}

func TestLauncherID(t *testing.T) {
	encoded, err := EncodeNFTID(launcher)
	require.NoError(t, err)

	testcases := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "bech32m", in: encoded, want: launcher},
		{name: "hex", in: launcher, want: launcher},
		{name: "0x hex upper", in: "0x" + strings.ToUpper(launcher), want: launcher},
		{name: "wrong prefix", in: strings.Replace(encoded, "nft1", "xch1", 1), wantErr: ErrBadNFTEncoding},
		{name: "garbage", in: "hello", wantErr: ErrBadNFTEncoding},
		{name: "short hex", in: launcher[:10], wantErr: ErrBadNFTEncoding},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LauncherID(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeNFTID_RejectsShortLauncher(t *testing.T) {
	_, err := EncodeNFTID("abcd")
	require.ErrorIs(t, err, ErrBadLauncherLen)
}
