package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atmx/offer-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache for the wallet directory and NFT records. Writes go to the primary
// store and invalidate the cache. Balances and offers always come from the
// primary so a reconciliation never sees stale spendable amounts.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) UpsertWallet(ctx context.Context, w model.WalletInfo) error {
	if err := s.primary.UpsertWallet(ctx, w); err != nil {
		return err
	}
	s.rdb.Del(ctx, walletsKey)
	return nil
}

func (s *CachedStore) SaveNFT(ctx context.Context, info *model.NFTInfo) error {
	if err := s.primary.SaveNFT(ctx, info); err != nil {
		return err
	}
	s.rdb.Del(ctx, nftKey(info.LauncherID))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) ListWallets(ctx context.Context) ([]model.WalletInfo, error) {
	data, err := s.rdb.Get(ctx, walletsKey).Bytes()
	if err == nil {
		var wallets []model.WalletInfo
		if json.Unmarshal(data, &wallets) == nil {
			return wallets, nil
		}
	}

	// Cache miss: read from primary.
	wallets, err := s.primary.ListWallets(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(wallets); err == nil {
		s.rdb.Set(ctx, walletsKey, data, s.ttl)
	}
	return wallets, nil
}

func (s *CachedStore) GetNFT(ctx context.Context, launcherID string) (*model.NFTInfo, error) {
	data, err := s.rdb.Get(ctx, nftKey(launcherID)).Bytes()
	if err == nil {
		var info model.NFTInfo
		if json.Unmarshal(data, &info) == nil {
			return &info, nil
		}
	}

	info, err := s.primary.GetNFT(ctx, launcherID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(info); err == nil {
		s.rdb.Set(ctx, nftKey(launcherID), data, s.ttl)
	}
	return info, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) FetchBalance(ctx context.Context, walletID uint32) (model.BalanceSnapshot, error) {
	return s.primary.FetchBalance(ctx, walletID)
}

func (s *CachedStore) SetBalance(ctx context.Context, snap model.BalanceSnapshot) error {
	return s.primary.SetBalance(ctx, snap)
}

func (s *CachedStore) ListOffers(ctx context.Context) ([]model.OfferRecord, error) {
	return s.primary.ListOffers(ctx)
}

func (s *CachedStore) SaveOffer(ctx context.Context, rec model.OfferRecord) error {
	return s.primary.SaveOffer(ctx, rec)
}

func (s *CachedStore) InsertOutcome(ctx context.Context, out *model.ReconciliationOutcome) error {
	return s.primary.InsertOutcome(ctx, out)
}

func (s *CachedStore) ListOutcomes(ctx context.Context, limit int) ([]model.ReconciliationOutcome, error) {
	return s.primary.ListOutcomes(ctx, limit)
}

// --- Cache helpers ---

const walletsKey = "wallets"

func nftKey(launcherID string) string { return fmt.Sprintf("nft:%s", model.NormalizeHex(launcherID)) }
