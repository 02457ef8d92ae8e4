// Package store defines the wallet-backend state the offer engine reads:
// the wallet directory, live balances, the user's offers and NFT records,
// plus an audit log of reconciliation outcomes. Implementations include
// PostgreSQL (source of truth), Redis (read-through cache), and in-memory
// (for testing and development).
package store

import (
	"context"
	"errors"

	"github.com/atmx/offer-engine/internal/model"
)

// ErrNotFound is returned when a wallet, balance or NFT is missing.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface. It satisfies offer.BalanceLookup.
type Store interface {
	// --- Wallet directory ---

	// ListWallets returns every wallet, ordered by id.
	ListWallets(ctx context.Context) ([]model.WalletInfo, error)

	// UpsertWallet creates or replaces a wallet entry.
	UpsertWallet(ctx context.Context, w model.WalletInfo) error

	// --- Balances (never cached) ---

	// FetchBalance returns the current balance of one wallet.
	FetchBalance(ctx context.Context, walletID uint32) (model.BalanceSnapshot, error)

	// SetBalance records a wallet's balance.
	SetBalance(ctx context.Context, snap model.BalanceSnapshot) error

	// --- Offers ---

	// ListOffers returns the user's offer records in every status.
	ListOffers(ctx context.Context) ([]model.OfferRecord, error)

	// SaveOffer creates or replaces an offer record.
	SaveOffer(ctx context.Context, rec model.OfferRecord) error

	// --- NFTs ---

	// GetNFT returns the record for a launcher id.
	GetNFT(ctx context.Context, launcherID string) (*model.NFTInfo, error)

	// SaveNFT creates or replaces an NFT record.
	SaveNFT(ctx context.Context, info *model.NFTInfo) error

	// --- Reconciliation audit log (append-only) ---

	// InsertOutcome appends a reconciliation outcome.
	InsertOutcome(ctx context.Context, out *model.ReconciliationOutcome) error

	// ListOutcomes returns the most recent outcomes, newest first.
	ListOutcomes(ctx context.Context, limit int) ([]model.ReconciliationOutcome, error)
}
