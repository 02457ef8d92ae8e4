// Package model defines the core domain types shared across the offer engine.
// All amounts use shopspring/decimal; never float64 for money.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetKind classifies an asset. The set is closed: every switch over it
// must handle each kind.
type AssetKind int

const (
	// KindUnset is the zero value and means no asset was selected.
	KindUnset AssetKind = iota
	KindNative
	KindToken
	KindNFT
)

func (k AssetKind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindToken:
		return "token"
	case KindNFT:
		return "nft"
	default:
		return "unset"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k AssetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The wallet backend's
// summary tags (XCH, CAT, SINGLETON) are accepted as aliases.
func (k *AssetKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "native", "xch", "standard":
		*k = KindNative
	case "token", "cat":
		*k = KindToken
	case "nft", "singleton":
		*k = KindNFT
	case "", "unset":
		*k = KindUnset
	default:
		return fmt.Errorf("model: unknown asset kind %q", string(b))
	}
	return nil
}

// AssetRef identifies an asset independent of any wallet. It is comparable
// and used directly as a map key.
type AssetRef struct {
	Kind AssetKind `json:"kind"`
	ID   string    `json:"id,omitempty"` // token asset id or NFT id; empty for native
}

// Native returns the reference to the chain's native asset.
func Native() AssetRef { return AssetRef{Kind: KindNative} }

// Token returns a token reference with a normalized asset id.
func Token(assetID string) AssetRef {
	return AssetRef{Kind: KindToken, ID: NormalizeHex(assetID)}
}

// NFT returns an NFT reference for the given NFT id or launcher id.
func NFT(nftID string) AssetRef {
	return AssetRef{Kind: KindNFT, ID: strings.TrimSpace(nftID)}
}

// Selected reports whether the reference names an asset at all.
func (r AssetRef) Selected() bool {
	switch r.Kind {
	case KindNative:
		return true
	case KindToken, KindNFT:
		return r.ID != ""
	default:
		return false
	}
}

func (r AssetRef) String() string {
	if r.Kind == KindNative {
		return "native"
	}
	return r.Kind.String() + ":" + r.ID
}

// NormalizeHex lower-cases a hex identifier and strips any 0x prefix.
func NormalizeHex(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "0x")
}

// WalletInfo is one entry of the wallet directory.
type WalletInfo struct {
	ID      uint32    `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	Kind    AssetKind `json:"kind" db:"kind"`
	AssetID string    `json:"asset_id,omitempty" db:"asset_id"` // tokens only
}

// WalletHandle is a resolved wallet for one asset.
type WalletHandle struct {
	WalletID   uint32    `json:"wallet_id"`
	Kind       AssetKind `json:"kind"`
	AssetID    string    `json:"asset_id,omitempty"`
	LauncherID string    `json:"launcher_id,omitempty"` // NFTs only
}

// SpendKey is the key the wallet backend expects in an offer dictionary:
// the wallet id for fungible assets and the launcher id for NFTs.
func (h WalletHandle) SpendKey() string {
	if h.Kind == KindNFT {
		return h.LauncherID
	}
	return strconv.FormatUint(uint64(h.WalletID), 10)
}

// BalanceSnapshot is a live balance read for one wallet, in smallest units.
type BalanceSnapshot struct {
	WalletID  uint32          `json:"wallet_id" db:"wallet_id"`
	Confirmed decimal.Decimal `json:"confirmed" db:"confirmed"`
	Spendable decimal.Decimal `json:"spendable" db:"spendable"`
	FetchedAt time.Time       `json:"fetched_at" db:"fetched_at"`
}
