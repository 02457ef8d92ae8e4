package offer

import (
	"errors"
	"strings"

	"github.com/atmx/offer-engine/internal/catalog"
	"github.com/atmx/offer-engine/internal/model"
)

// identity returns a key under which two rows name the same asset. NFT ids
// are compared by launcher id when they decode.
func identity(ref model.AssetRef) string {
	switch ref.Kind {
	case model.KindNative:
		return "native"
	case model.KindToken:
		return "token:" + model.NormalizeHex(ref.ID)
	case model.KindNFT:
		if launcher, err := catalog.LauncherID(ref.ID); err == nil {
			return "nft:" + launcher
		}
		return "nft:" + strings.ToLower(ref.ID)
	default:
		return ""
	}
}

// checkDuplicates rejects assets that appear on both sides and NFTs used
// more than once. It runs before any collaborator is called.
func checkDuplicates(req model.OfferRequest) error {
	offered := make(map[string]bool)
	for _, r := range req.Offered.Rows() {
		if r.Asset.Selected() {
			offered[identity(r.Asset)] = true
		}
	}

	var errs []error
	reported := make(map[string]bool)
	for _, r := range req.Requested.Rows() {
		if !r.Asset.Selected() {
			continue
		}
		id := identity(r.Asset)
		if offered[id] && !reported[id] {
			reported[id] = true
			errs = append(errs, model.NewError(model.KindDuplicateAssetAcrossSides, r.Asset.String(),
				"%s is both offered and requested", r.Asset))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	nfts := make(map[string]int)
	for _, side := range []model.OfferSide{req.Offered, req.Requested} {
		for _, r := range side.Rows() {
			if r.Asset.Kind == model.KindNFT && r.Asset.Selected() {
				id := identity(r.Asset)
				nfts[id]++
				if nfts[id] == 2 {
					errs = append(errs, model.NewError(model.KindDuplicateNFTUsage, r.Asset.String(),
						"nft %s is used more than once", r.Asset.ID))
				}
			}
		}
	}
	return errors.Join(errs...)
}
