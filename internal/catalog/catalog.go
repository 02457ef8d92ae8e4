// Package catalog resolves asset references to the wallets that hold them.
//
// NFTs are only validated here: building a spendable handle for an NFT needs
// on-chain metadata and is left to the NFT driver builder.
package catalog

import (
	"github.com/atmx/offer-engine/internal/model"
)

// Catalog is a read-only view over the wallet directory.
type Catalog struct {
	standard *model.WalletInfo
	tokens   map[string]model.WalletInfo // normalized asset id → wallet
}

// New indexes a wallet directory. The first standard wallet wins.
func New(wallets []model.WalletInfo) *Catalog {
	c := &Catalog{tokens: make(map[string]model.WalletInfo)}
	for i := range wallets {
		w := wallets[i]
		switch w.Kind {
		case model.KindNative:
			if c.standard == nil {
				c.standard = &w
			}
		case model.KindToken:
			id := model.NormalizeHex(w.AssetID)
			if _, dup := c.tokens[id]; !dup && id != "" {
				c.tokens[id] = w
			}
		case model.KindNFT, model.KindUnset:
		}
	}
	return c
}

// Resolve maps an asset reference to its wallet handle.
func (c *Catalog) Resolve(ref model.AssetRef) (model.WalletHandle, error) {
	switch ref.Kind {
	case model.KindNative:
		if c.standard == nil {
			return model.WalletHandle{}, model.NewError(model.KindNoStandardWallet, ref.String(),
				"no standard wallet available")
		}
		return model.WalletHandle{WalletID: c.standard.ID, Kind: model.KindNative}, nil

	case model.KindToken:
		if ref.ID == "" {
			return model.WalletHandle{}, model.NewError(model.KindMissingAssetSelection, "", "token not selected")
		}
		w, ok := c.tokens[model.NormalizeHex(ref.ID)]
		if !ok {
			return model.WalletHandle{}, model.NewError(model.KindUnknownAsset, ref.String(),
				"no wallet for asset id %s", ref.ID)
		}
		return model.WalletHandle{WalletID: w.ID, Kind: model.KindToken, AssetID: model.NormalizeHex(w.AssetID)}, nil

	case model.KindNFT:
		if ref.ID == "" {
			return model.WalletHandle{}, model.NewError(model.KindMissingAssetSelection, "", "nft not selected")
		}
		launcher, err := LauncherID(ref.ID)
		if err != nil {
			return model.WalletHandle{}, model.NewError(model.KindInvalidNFTID, ref.String(),
				"invalid nft id %s: %w", ref.ID, err)
		}
		return model.WalletHandle{Kind: model.KindNFT, LauncherID: launcher}, nil

	default:
		return model.WalletHandle{}, model.NewError(model.KindMissingAssetSelection, "", "asset not selected")
	}
}

// TokenKnown reports whether the directory holds a wallet for assetID.
func (c *Catalog) TokenKnown(assetID string) bool {
	_, ok := c.tokens[model.NormalizeHex(assetID)]
	return ok
}
