package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atmx/offer-engine/internal/model"
)

//go:embed schema.sql
var schema string

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All amounts are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *PostgresStore) ListWallets(ctx context.Context) ([]model.WalletInfo, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, kind, asset_id FROM wallets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []model.WalletInfo
	for rows.Next() {
		var w model.WalletInfo
		var id int64
		var kind string
		if err := rows.Scan(&id, &w.Name, &kind, &w.AssetID); err != nil {
			return nil, err
		}
		if err := w.Kind.UnmarshalText([]byte(kind)); err != nil {
			return nil, err
		}
		w.ID = uint32(id)
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (s *PostgresStore) UpsertWallet(ctx context.Context, w model.WalletInfo) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wallets (id, name, kind, asset_id) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind, asset_id = EXCLUDED.asset_id`,
		int64(w.ID), w.Name, w.Kind.String(), model.NormalizeHex(w.AssetID),
	)
	return err
}

func (s *PostgresStore) FetchBalance(ctx context.Context, walletID uint32) (model.BalanceSnapshot, error) {
	var confirmedS, spendableS string
	err := s.pool.QueryRow(ctx,
		`SELECT confirmed::TEXT, spendable::TEXT FROM balances WHERE wallet_id = $1`, int64(walletID)).
		Scan(&confirmedS, &spendableS)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.BalanceSnapshot{}, fmt.Errorf("balance for wallet %d: %w", walletID, ErrNotFound)
	}
	if err != nil {
		return model.BalanceSnapshot{}, fmt.Errorf("fetch balance %d: %w", walletID, err)
	}

	snap := model.BalanceSnapshot{WalletID: walletID}
	snap.Confirmed, _ = decimal.NewFromString(confirmedS)
	snap.Spendable, _ = decimal.NewFromString(spendableS)
	snap.FetchedAt = time.Now().UTC()
	return snap, nil
}

func (s *PostgresStore) SetBalance(ctx context.Context, snap model.BalanceSnapshot) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO balances (wallet_id, confirmed, spendable, updated_at)
		 VALUES ($1, $2::NUMERIC, $3::NUMERIC, now())
		 ON CONFLICT (wallet_id) DO UPDATE
		 SET confirmed = EXCLUDED.confirmed, spendable = EXCLUDED.spendable, updated_at = now()`,
		int64(snap.WalletID), snap.Confirmed.String(), snap.Spendable.String(),
	)
	return err
}

func (s *PostgresStore) ListOffers(ctx context.Context) ([]model.OfferRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT trade_id, status, is_my_offer, created_at, locked, infos
		 FROM offers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []model.OfferRecord
	for rows.Next() {
		var o model.OfferRecord
		var status string
		var locked, infos []byte
		if err := rows.Scan(&o.TradeID, &status, &o.IsMyOffer, &o.CreatedAt, &locked, &infos); err != nil {
			return nil, err
		}
		o.Status = model.OfferStatus(status)
		if err := json.Unmarshal(locked, &o.Locked); err != nil {
			return nil, fmt.Errorf("offer %s locked: %w", o.TradeID, err)
		}
		if err := json.Unmarshal(infos, &o.Infos); err != nil {
			return nil, fmt.Errorf("offer %s infos: %w", o.TradeID, err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (s *PostgresStore) SaveOffer(ctx context.Context, o model.OfferRecord) error {
	locked, err := json.Marshal(o.Locked)
	if err != nil {
		return err
	}
	infos, err := json.Marshal(o.Infos)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO offers (trade_id, status, is_my_offer, created_at, locked, infos)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (trade_id) DO UPDATE
		 SET status = EXCLUDED.status, is_my_offer = EXCLUDED.is_my_offer,
		     locked = EXCLUDED.locked, infos = EXCLUDED.infos`,
		o.TradeID, string(o.Status), o.IsMyOffer, o.CreatedAt, locked, infos,
	)
	return err
}

func (s *PostgresStore) GetNFT(ctx context.Context, launcherID string) (*model.NFTInfo, error) {
	var n model.NFTInfo
	var walletID int64
	var bps int32
	err := s.pool.QueryRow(ctx,
		`SELECT launcher_id, wallet_id, data_uris, data_hash, metadata_uris, metadata_hash,
		        license_uris, license_hash, royalty_bps, royalty_address, owner_did
		 FROM nfts WHERE launcher_id = $1`, model.NormalizeHex(launcherID)).
		Scan(&n.LauncherID, &walletID, &n.DataURIs, &n.DataHash, &n.MetadataURIs, &n.MetadataHash,
			&n.LicenseURIs, &n.LicenseHash, &bps, &n.RoyaltyAddress, &n.OwnerDID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("nft %s: %w", launcherID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get nft %s: %w", launcherID, err)
	}
	n.WalletID = uint32(walletID)
	n.RoyaltyBPS = uint32(bps)
	return &n, nil
}

func (s *PostgresStore) SaveNFT(ctx context.Context, n *model.NFTInfo) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO nfts (launcher_id, wallet_id, data_uris, data_hash, metadata_uris, metadata_hash,
		                   license_uris, license_hash, royalty_bps, royalty_address, owner_did)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (launcher_id) DO UPDATE
		 SET wallet_id = EXCLUDED.wallet_id, data_uris = EXCLUDED.data_uris, data_hash = EXCLUDED.data_hash,
		     metadata_uris = EXCLUDED.metadata_uris, metadata_hash = EXCLUDED.metadata_hash,
		     license_uris = EXCLUDED.license_uris, license_hash = EXCLUDED.license_hash,
		     royalty_bps = EXCLUDED.royalty_bps, royalty_address = EXCLUDED.royalty_address,
		     owner_did = EXCLUDED.owner_did`,
		model.NormalizeHex(n.LauncherID), int64(n.WalletID), nonNil(n.DataURIs), n.DataHash,
		nonNil(n.MetadataURIs), n.MetadataHash, nonNil(n.LicenseURIs), n.LicenseHash,
		int32(n.RoyaltyBPS), n.RoyaltyAddress, n.OwnerDID,
	)
	return err
}

func (s *PostgresStore) InsertOutcome(ctx context.Context, out *model.ReconciliationOutcome) error {
	body, err := json.Marshal(out)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO reconciliation_outcomes (id, created_at, validate_only, fee, body)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5)`,
		out.ID, out.CreatedAt, out.ValidateOnly, out.Fee.String(), body,
	)
	return err
}

func (s *PostgresStore) ListOutcomes(ctx context.Context, limit int) ([]model.ReconciliationOutcome, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT body FROM reconciliation_outcomes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []model.ReconciliationOutcome
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var o model.ReconciliationOutcome
		if err := json.Unmarshal(body, &o); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
