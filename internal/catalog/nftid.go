package catalog

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/atmx/offer-engine/internal/model"
)

// NFTPrefix is the human-readable part of an encoded NFT id.
const NFTPrefix = "nft"

// launcherIDLen is the byte length of a singleton launcher id.
const launcherIDLen = 32

var (
	ErrBadNFTPrefix   = errors.New("catalog: nft id must use the nft prefix")
	ErrBadNFTEncoding = errors.New("catalog: nft id must be bech32m encoded")
	ErrBadLauncherLen = errors.New("catalog: launcher id must be 32 bytes")
)

// LauncherID decodes an NFT id into its hex launcher id. Both the bech32m
// form (nft1...) and a raw 64-character hex launcher id are accepted.
func LauncherID(nftID string) (string, error) {
	s := strings.TrimSpace(nftID)
	if isHexLauncher(s) {
		return model.NormalizeHex(s), nil
	}

	hrp, data, version, err := bech32.DecodeGeneric(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadNFTEncoding, err)
	}
	if hrp != NFTPrefix {
		return "", fmt.Errorf("%w: got %q", ErrBadNFTPrefix, hrp)
	}
	if version != bech32.VersionM {
		return "", ErrBadNFTEncoding
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadNFTEncoding, err)
	}
	if len(raw) != launcherIDLen {
		return "", fmt.Errorf("%w: got %d", ErrBadLauncherLen, len(raw))
	}
	return hex.EncodeToString(raw), nil
}

// EncodeNFTID encodes a hex launcher id as an nft1... id.
func EncodeNFTID(launcherID string) (string, error) {
	raw, err := hex.DecodeString(model.NormalizeHex(launcherID))
	if err != nil {
		return "", fmt.Errorf("catalog: launcher id is not hex: %w", err)
	}
	if len(raw) != launcherIDLen {
		return "", fmt.Errorf("%w: got %d", ErrBadLauncherLen, len(raw))
	}
	data, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(NFTPrefix, data)
}

func isHexLauncher(s string) bool {
	s = model.NormalizeHex(s)
	if len(s) != 2*launcherIDLen {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
