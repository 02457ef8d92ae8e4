package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/atmx/offer-engine/internal/model"
	"github.com/atmx/offer-engine/internal/store"
)

// State is a JSON snapshot of the wallet backend.
type State struct {
	Wallets  []model.WalletInfo      `json:"wallets"`
	Balances []model.BalanceSnapshot `json:"balances"`
	Offers   []model.OfferRecord     `json:"offers"`
	NFTs     []model.NFTInfo         `json:"nfts"`
}

// loadState reads a snapshot file into a fresh in-memory store.
func loadState(ctx context.Context, path string) (*store.MemoryStore, error) {
	var st State
	if err := readJSON(path, &st); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	ms := store.NewMemoryStore()
	for _, w := range st.Wallets {
		if err := ms.UpsertWallet(ctx, w); err != nil {
			return nil, fmt.Errorf("state wallet %d: %w", w.ID, err)
		}
	}
	for _, b := range st.Balances {
		if err := ms.SetBalance(ctx, b); err != nil {
			return nil, err
		}
	}
	for _, o := range st.Offers {
		if err := ms.SaveOffer(ctx, o); err != nil {
			return nil, fmt.Errorf("state offer: %w", err)
		}
	}
	for i := range st.NFTs {
		if err := ms.SaveNFT(ctx, &st.NFTs[i]); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
