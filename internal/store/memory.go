package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/atmx/offer-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu       sync.RWMutex
	wallets  map[uint32]model.WalletInfo
	balances map[uint32]model.BalanceSnapshot
	offers   map[string]model.OfferRecord
	nfts     map[string]model.NFTInfo
	outcomes []model.ReconciliationOutcome
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets:  make(map[uint32]model.WalletInfo),
		balances: make(map[uint32]model.BalanceSnapshot),
		offers:   make(map[string]model.OfferRecord),
		nfts:     make(map[string]model.NFTInfo),
	}
}

func (s *MemoryStore) ListWallets(_ context.Context) ([]model.WalletInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := make([]model.WalletInfo, 0, len(s.wallets))
	for _, w := range s.wallets {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return wallets, nil
}

func (s *MemoryStore) UpsertWallet(_ context.Context, w model.WalletInfo) error {
	if w.ID == 0 {
		return fmt.Errorf("wallet id must be non-zero")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	w.AssetID = model.NormalizeHex(w.AssetID)
	s.wallets[w.ID] = w
	return nil
}

func (s *MemoryStore) FetchBalance(_ context.Context, walletID uint32) (model.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.balances[walletID]
	if !ok {
		return model.BalanceSnapshot{}, fmt.Errorf("balance for wallet %d: %w", walletID, ErrNotFound)
	}
	b.FetchedAt = time.Now().UTC()
	return b, nil
}

func (s *MemoryStore) SetBalance(_ context.Context, snap model.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[snap.WalletID] = snap
	return nil
}

func (s *MemoryStore) ListOffers(_ context.Context) ([]model.OfferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := make([]model.OfferRecord, 0, len(s.offers))
	for _, o := range s.offers {
		offers = append(offers, o)
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].CreatedAt.Before(offers[j].CreatedAt) })
	return offers, nil
}

func (s *MemoryStore) SaveOffer(_ context.Context, rec model.OfferRecord) error {
	if rec.TradeID == "" {
		return fmt.Errorf("trade id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offers[rec.TradeID] = rec
	return nil
}

func (s *MemoryStore) GetNFT(_ context.Context, launcherID string) (*model.NFTInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.nfts[model.NormalizeHex(launcherID)]
	if !ok {
		return nil, fmt.Errorf("nft %s: %w", launcherID, ErrNotFound)
	}
	// Store a copy to avoid external mutation.
	copy := info
	return &copy, nil
}

func (s *MemoryStore) SaveNFT(_ context.Context, info *model.NFTInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *info
	copy.LauncherID = model.NormalizeHex(info.LauncherID)
	s.nfts[copy.LauncherID] = copy
	return nil
}

func (s *MemoryStore) InsertOutcome(_ context.Context, out *model.ReconciliationOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outcomes = append(s.outcomes, *out)
	return nil
}

func (s *MemoryStore) ListOutcomes(_ context.Context, limit int) ([]model.ReconciliationOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.ReconciliationOutcome
	for i := len(s.outcomes) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, s.outcomes[i])
	}
	return result, nil
}
