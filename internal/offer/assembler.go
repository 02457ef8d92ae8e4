// Package offer turns a trade request into wallet-spend instructions.
//
// The Assembler resolves every row, reads live balances and NFT drivers
// concurrently, applies royalties, and classifies each offered asset
// against what the user's pending offers already hold. It never mutates
// wallet or offer state; the outcome only recommends which offers to cancel.
package offer

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/atmx/offer-engine/internal/balance"
	"github.com/atmx/offer-engine/internal/catalog"
	"github.com/atmx/offer-engine/internal/metrics"
	"github.com/atmx/offer-engine/internal/model"
	"github.com/atmx/offer-engine/internal/pending"
	"github.com/atmx/offer-engine/internal/royalty"
)

// Assembler is stateless between calls and safe for concurrent use.
type Assembler struct {
	balances BalanceLookup
	drivers  NFTDriverBuilder
	opts     Options
}

// NewAssembler creates an assembler over the given collaborators.
func NewAssembler(balances BalanceLookup, drivers NFTDriverBuilder, opts Options) *Assembler {
	return &Assembler{
		balances: balances,
		drivers:  drivers,
		opts:     opts,
	}
}

// row is a trade row after resolution and unit conversion.
type row struct {
	src    model.TradeRow
	side   model.Side
	wallet model.WalletHandle
	amount decimal.Decimal // smallest units
}

// requirement is what one offered fungible asset must cover.
type requirement struct {
	asset  model.AssetRef
	wallet model.WalletHandle
	base   decimal.Decimal // offered rows only
	extra  decimal.Decimal // fee and royalties
}

func (r *requirement) total() decimal.Decimal { return r.base.Add(r.extra) }

// Assemble reconciles req against the wallet directory and the user's
// pending offers. It returns a complete outcome or an error, never both.
func (a *Assembler) Assemble(ctx context.Context, req model.OfferRequest, wallets []model.WalletInfo,
	pendingOffers []model.OfferRecord) (*model.ReconciliationOutcome, error) {
	start := time.Now()
	out, err := a.assemble(ctx, req, wallets, pendingOffers)
	metrics.ReconcileLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		kinds := make([]string, 0, 1)
		for _, e := range model.Errors(err) {
			kinds = append(kinds, string(e.Kind))
		}
		metrics.Reconciliations.WithLabelValues("error").Inc()
		slog.Warn("offer reconciliation failed", "err", err, "kinds", strings.Join(kinds, ","))
		return nil, err
	}

	metrics.Reconciliations.WithLabelValues("ok").Inc()
	for _, st := range out.Statuses {
		metrics.AssetClassifications.WithLabelValues(st.Asset.Kind.String(), string(st.Classification)).Inc()
	}
	slog.Info("offer reconciled",
		"id", out.ID,
		"assets", len(out.Statuses),
		"cancellations", len(out.OffersRequiringCancellation),
		"fee", out.Fee.String(),
		"validate_only", out.ValidateOnly,
	)
	return out, nil
}

func (a *Assembler) assemble(ctx context.Context, req model.OfferRequest, wallets []model.WalletInfo,
	pendingOffers []model.OfferRecord) (*model.ReconciliationOutcome, error) {
	// --- Shape checks (no collaborator calls) ---
	if req.Offered.Empty() && !a.opts.AllowEmptyOffered {
		return nil, model.NewError(model.KindEmptyOffer, "", "nothing offered")
	}
	if err := checkDuplicates(req); err != nil {
		return nil, err
	}

	// --- Resolve rows ---
	cat := catalog.New(wallets)
	offered, requested, fee, err := resolve(cat, req)
	if err != nil {
		return nil, err
	}
	locks := pending.Aggregate(pendingOffers, cat)

	reqs, order := requirements(offered)
	if fee.IsPositive() {
		native, err := nativeRequirement(cat, reqs, &order)
		if err != nil {
			return nil, err
		}
		native.extra = native.extra.Add(fee)
	}

	// --- Fan out balance lookups and driver builds ---
	snaps, drivers, err := a.fetch(ctx, reqs, offered, requested)
	if err != nil {
		return nil, err
	}

	// --- Royalties ---
	royalties := applyRoyalties(reqs, order, offered, requested, drivers, fee)

	// --- Classify offered assets ---
	var statuses []model.AssetStatus
	var errs []error
	validate := func(in balance.Input) {
		in.Side = model.Offered
		in.ValidateOnly = req.ValidateOnly
		st, err := balance.Validate(in)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if st != nil {
			statuses = append(statuses, *st)
		}
	}
	for _, ref := range order {
		r := reqs[ref]
		wallet := r.wallet
		validate(balance.Input{
			Row:      summedRow(r),
			Wallet:   &wallet,
			Balance:  snaps[r.wallet.WalletID],
			Pending:  locks.For(ref),
			Required: r.total(),
		})
	}
	for _, rw := range offered {
		if rw.wallet.Kind != model.KindNFT {
			continue
		}
		lock := locks.ForNFT(rw.wallet.LauncherID)
		wallet := rw.wallet
		wallet.WalletID = drivers[rw.wallet.LauncherID].Wallet.WalletID
		validate(balance.Input{
			Row:     rw.src,
			Wallet:  &wallet,
			Balance: nftBalance(wallet.WalletID, lock),
			Pending: lock,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// --- Spend instructions ---
	out := &model.ReconciliationOutcome{
		ID:           uuid.New().String(),
		WalletSpend:  make(map[string]decimal.Decimal),
		NFTDrivers:   make(map[string]model.DriverMetadata),
		Fee:          fee,
		Royalties:    royalties,
		Statuses:     statuses,
		ValidateOnly: req.ValidateOnly,
		CreatedAt:    time.Now().UTC(),
	}
	for _, rw := range append(append([]row{}, offered...), requested...) {
		key := rw.wallet.SpendKey()
		delta := rw.amount
		if rw.side == model.Offered {
			delta = delta.Neg()
		}
		if rw.wallet.Kind == model.KindNFT {
			drv := drivers[rw.wallet.LauncherID]
			delta = decimal.NewFromInt(drv.SpendAmount)
			out.NFTDrivers[key] = drv.Metadata
		}
		out.WalletSpend[key] = out.WalletSpend[key].Add(delta)
	}
	for _, st := range statuses {
		if st.Classification != model.Sufficient {
			out.OffersRequiringCancellation = append(out.OffersRequiringCancellation, st)
		}
	}
	return out, nil
}

// resolve runs the catalog and row checks on every row, collecting all row
// errors. Requested-side placeholders are dropped.
func resolve(cat *catalog.Catalog, req model.OfferRequest) (offered, requested []row, fee decimal.Decimal, err error) {
	var errs []error
	for _, side := range []model.Side{model.Offered, model.Requested} {
		src := req.Offered
		if side == model.Requested {
			src = req.Requested
		}
		for _, tr := range src.Rows() {
			var handle *model.WalletHandle
			if tr.Asset.Selected() {
				h, rerr := cat.Resolve(tr.Asset)
				if rerr != nil {
					errs = append(errs, rerr)
					continue
				}
				handle = &h
			}
			amount, skip, cerr := balance.CheckRow(tr, side, handle)
			if cerr != nil {
				errs = append(errs, cerr)
				continue
			}
			if skip {
				continue
			}
			rw := row{src: tr, side: side, wallet: *handle, amount: amount}
			if side == model.Offered {
				offered = append(offered, rw)
			} else {
				requested = append(requested, rw)
			}
		}
	}

	fee = decimal.Zero
	if req.Fee.Valid {
		switch {
		case req.Fee.Decimal.IsNegative():
			errs = append(errs, model.NewError(model.KindInvalidAmount, "fee", "fee must not be negative"))
		default:
			f, ferr := model.ToSmallest(model.KindNative, req.Fee.Decimal)
			if ferr != nil {
				errs = append(errs, model.NewError(model.KindInvalidAmount, "fee", "fee: %w", ferr))
			} else {
				fee = f
			}
		}
	}

	if len(errs) > 0 {
		return nil, nil, decimal.Zero, errors.Join(errs...)
	}
	return offered, requested, fee, nil
}

// requirements sums offered fungible rows per asset. order lists native
// first, then tokens by asset id.
func requirements(offered []row) (map[model.AssetRef]*requirement, []model.AssetRef) {
	reqs := make(map[model.AssetRef]*requirement)
	for _, rw := range offered {
		if rw.wallet.Kind == model.KindNFT {
			continue
		}
		ref := assetOf(rw.wallet)
		r, ok := reqs[ref]
		if !ok {
			r = &requirement{asset: ref, wallet: rw.wallet, base: decimal.Zero, extra: decimal.Zero}
			reqs[ref] = r
		}
		r.base = r.base.Add(rw.amount)
	}
	order := make([]model.AssetRef, 0, len(reqs))
	for ref := range reqs {
		order = append(order, ref)
	}
	sortRefs(order)
	return reqs, order
}

// nativeRequirement returns the native requirement, creating it for
// fee-only requests.
func nativeRequirement(cat *catalog.Catalog, reqs map[model.AssetRef]*requirement, order *[]model.AssetRef) (*requirement, error) {
	if r, ok := reqs[model.Native()]; ok {
		return r, nil
	}
	h, err := cat.Resolve(model.Native())
	if err != nil {
		return nil, err
	}
	r := &requirement{asset: model.Native(), wallet: h, base: decimal.Zero, extra: decimal.Zero}
	reqs[model.Native()] = r
	*order = append(*order, model.Native())
	sortRefs(*order)
	return r, nil
}

// fetch reads one balance per distinct offered wallet and builds a driver
// per NFT row, all concurrently. Drivers are keyed by launcher id.
func (a *Assembler) fetch(ctx context.Context, reqs map[model.AssetRef]*requirement, offered, requested []row) (
	map[uint32]model.BalanceSnapshot, map[string]model.NFTDriver, error) {
	var mu sync.Mutex
	snaps := make(map[uint32]model.BalanceSnapshot)
	drivers := make(map[string]model.NFTDriver)

	g, gCtx := errgroup.WithContext(ctx)

	seen := make(map[uint32]bool)
	for _, r := range reqs {
		walletID := r.wallet.WalletID
		if seen[walletID] {
			continue
		}
		seen[walletID] = true
		g.Go(func() error {
			start := time.Now()
			snap, err := a.balances.FetchBalance(gCtx, walletID)
			if err != nil {
				metrics.BalanceLookupLatency.WithLabelValues("error").Observe(time.Since(start).Seconds())
				return model.NewError(model.KindBalanceUnavailable, r.asset.String(),
					"balance unavailable for wallet %d: %w", walletID, err)
			}
			metrics.BalanceLookupLatency.WithLabelValues("ok").Observe(time.Since(start).Seconds())
			mu.Lock()
			snaps[walletID] = snap
			mu.Unlock()
			return nil
		})
	}

	for _, rw := range append(append([]row{}, offered...), requested...) {
		if rw.wallet.Kind != model.KindNFT {
			continue
		}
		g.Go(func() error {
			drv, err := a.drivers.BuildDriver(gCtx, rw.src.Asset.ID, rw.side == model.Offered)
			if err != nil {
				metrics.NFTDriverBuilds.WithLabelValues("error").Inc()
				return model.NewError(model.KindNFTDriverError, rw.src.Asset.String(),
					"nft driver for %s: %w", rw.src.Asset.ID, err)
			}
			metrics.NFTDriverBuilds.WithLabelValues("ok").Inc()
			mu.Lock()
			drivers[rw.wallet.LauncherID] = drv
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return snaps, drivers, nil
}

// applyRoyalties raises offered fungible requirements by the royalties of
// requested NFTs and reports the royalties buyers owe on offered NFTs.
// NFT-for-NFT trades carry no royalty.
func applyRoyalties(reqs map[model.AssetRef]*requirement, order []model.AssetRef, offered, requested []row,
	drivers map[string]model.NFTDriver, fee decimal.Decimal) []model.RoyaltyCharge {
	var charges []model.RoyaltyCharge

	for _, nft := range requested {
		if nft.wallet.Kind != model.KindNFT {
			continue
		}
		bps := drivers[nft.wallet.LauncherID].Metadata.RoyaltyBPS
		if bps == 0 {
			continue
		}
		for _, ref := range order {
			r := reqs[ref]
			if !r.base.IsPositive() {
				continue
			}
			rfee := decimal.Zero
			if ref.Kind == model.KindNative {
				rfee = fee
			}
			amount := royalty.Amount(r.base, bps)
			r.extra = r.extra.Add(amount)
			charges = append(charges, model.RoyaltyCharge{
				NFT:        nft.src.Asset.ID,
				Asset:      ref,
				Direction:  royalty.AssetForNFT.String(),
				RoyaltyBPS: bps,
				Base:       r.base,
				Royalty:    amount,
				Total:      royalty.Adjust(r.base, rfee, bps, royalty.AssetForNFT),
			})
		}
	}

	for _, nft := range offered {
		if nft.wallet.Kind != model.KindNFT {
			continue
		}
		bps := drivers[nft.wallet.LauncherID].Metadata.RoyaltyBPS
		if bps == 0 {
			continue
		}
		for _, rw := range requested {
			if rw.wallet.Kind == model.KindNFT {
				continue
			}
			charges = append(charges, model.RoyaltyCharge{
				NFT:        nft.src.Asset.ID,
				Asset:      assetOf(rw.wallet),
				Direction:  royalty.NFTForAsset.String(),
				RoyaltyBPS: bps,
				Base:       rw.amount,
				Royalty:    royalty.Amount(rw.amount, bps),
				Total:      royalty.Adjust(rw.amount, decimal.Zero, bps, royalty.NFTForAsset),
			})
		}
	}
	return charges
}

// summedRow is the single offered row standing for every row of one
// fungible asset. A fee-only native requirement carries the fee itself.
func summedRow(r *requirement) model.TradeRow {
	amount := r.base
	if !amount.IsPositive() {
		amount = r.total()
	}
	return model.TradeRow{
		Asset:  r.asset,
		Amount: decimal.NewNullDecimal(model.ToDisplay(r.asset.Kind, amount)),
	}
}

// nftBalance is the availability of one NFT: it is spendable unless a
// pending offer already holds it.
func nftBalance(walletID uint32, lock *model.PendingLock) model.BalanceSnapshot {
	spendable := decimal.NewFromInt(1).Sub(lock.Locked())
	if spendable.IsNegative() {
		spendable = decimal.Zero
	}
	return model.BalanceSnapshot{WalletID: walletID, Confirmed: decimal.NewFromInt(1), Spendable: spendable}
}

// assetOf returns the canonical asset for a resolved fungible wallet.
func assetOf(h model.WalletHandle) model.AssetRef {
	switch h.Kind {
	case model.KindNative:
		return model.Native()
	case model.KindToken:
		return model.Token(h.AssetID)
	case model.KindNFT:
		return model.AssetRef{Kind: model.KindNFT, ID: h.LauncherID}
	default:
		return model.AssetRef{}
	}
}

func sortRefs(refs []model.AssetRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind < refs[j].Kind
		}
		return refs[i].ID < refs[j].ID
	})
}
