// Package api provides the HTTP handlers for reconciling offers and for
// inspecting the wallet state a reconciliation reads.
//
// All amounts use shopspring/decimal; never float64 for money.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/atmx/offer-engine/internal/catalog"
	"github.com/atmx/offer-engine/internal/model"
	"github.com/atmx/offer-engine/internal/offer"
	"github.com/atmx/offer-engine/internal/pending"
	"github.com/atmx/offer-engine/internal/royalty"
	"github.com/atmx/offer-engine/internal/store"
)

// Service handles offer operations. Reconciliation never writes wallet or
// offer state, so requests run concurrently without a service-wide lock.
type Service struct {
	store     store.Store
	assembler *offer.Assembler
	wsHub     *WSHub // optional WebSocket hub for real-time broadcasts
}

// NewService creates a new offer service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, assembler *offer.Assembler, hub *WSHub) *Service {
	return &Service{
		store:     st,
		assembler: assembler,
		wsHub:     hub,
	}
}

// --- Request/Response types ---

// RoyaltyRequest is the JSON body for POST /royalty.
type RoyaltyRequest struct {
	Base       decimal.Decimal `json:"base"` // smallest units
	Fee        decimal.Decimal `json:"fee"`
	RoyaltyBPS uint32          `json:"royalty_bps"`
	Direction  string          `json:"direction"` // "nft_for_asset" or "asset_for_nft"
}

// RoyaltyResponse is the JSON body returned from POST /royalty.
type RoyaltyResponse struct {
	Royalty decimal.Decimal `json:"royalty"`
	Total   decimal.Decimal `json:"total"`
}

// NFTResponse is the JSON body returned from GET /nft/{nftID}.
type NFTResponse struct {
	NFTID      string          `json:"nft_id"`
	LauncherID string          `json:"launcher_id"`
	Info       *model.NFTInfo  `json:"info"`
	Locked     bool            `json:"locked"`
	Offers     []string        `json:"offers,omitempty"`
	Royalty    decimal.Decimal `json:"royalty_percent"`
}

// LockView is one aggregated pending lock as returned by
// GET /offers/pending/locks.
type LockView struct {
	*model.PendingLock
	NativeWithFee bool `json:"native_with_fee"` // trade and fee-only amounts merged
}

// --- HTTP Handlers ---

// Reconcile handles POST /api/v1/offers/reconcile
// Runs one reconciliation pass and records the outcome.
func (s *Service) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req model.OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		writeError(w, "failed to load wallets", http.StatusInternalServerError)
		return
	}
	offers, err := s.store.ListOffers(ctx)
	if err != nil {
		writeError(w, "failed to load offers", http.StatusInternalServerError)
		return
	}

	out, err := s.assembler.Assemble(ctx, req, wallets, offers)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if err := s.store.InsertOutcome(ctx, out); err != nil {
		slog.Error("failed to record outcome", "id", out.ID, "err", err)
		writeError(w, "failed to record outcome", http.StatusInternalServerError)
		return
	}

	// Broadcast the outcome via WebSocket.
	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:          "offer_reconciled",
			OutcomeID:     out.ID,
			ValidateOnly:  out.ValidateOnly,
			Assets:        len(out.Statuses),
			Cancellations: out.CancellationTradeIDs(),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// ListReconciliations handles GET /api/v1/offers/reconciliations
// Returns recent outcomes, newest first, limited by ?limit=N (default 50).
func (s *Service) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	outcomes, err := s.store.ListOutcomes(r.Context(), limit)
	if err != nil {
		writeError(w, "failed to list reconciliations", http.StatusInternalServerError)
		return
	}
	if outcomes == nil {
		outcomes = []model.ReconciliationOutcome{}
	}
	writeJSON(w, http.StatusOK, outcomes)
}

// ListWallets handles GET /api/v1/wallets
func (s *Service) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.store.ListWallets(r.Context())
	if err != nil {
		writeError(w, "failed to list wallets", http.StatusInternalServerError)
		return
	}
	if wallets == nil {
		wallets = []model.WalletInfo{}
	}
	writeJSON(w, http.StatusOK, wallets)
}

// ListPendingOffers handles GET /api/v1/offers/pending
// Returns the user's own offers still waiting for a taker.
func (s *Service) ListPendingOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.store.ListOffers(r.Context())
	if err != nil {
		writeError(w, "failed to list offers", http.StatusInternalServerError)
		return
	}

	result := []model.OfferRecord{}
	for _, o := range offers {
		if o.PendingAccept() {
			result = append(result, o)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// PendingLocks handles GET /api/v1/offers/pending/locks
// Returns what pending offers hold per asset, native first.
func (s *Service) PendingLocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		writeError(w, "failed to load wallets", http.StatusInternalServerError)
		return
	}
	offers, err := s.store.ListOffers(ctx)
	if err != nil {
		writeError(w, "failed to load offers", http.StatusInternalServerError)
		return
	}

	locks := pending.Aggregate(offers, catalog.New(wallets))
	result := make([]LockView, 0, len(locks))
	for _, l := range locks {
		result = append(result, LockView{PendingLock: l, NativeWithFee: l.NativeWithFee()})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Asset, result[j].Asset
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	})
	writeJSON(w, http.StatusOK, result)
}

// Royalty handles POST /api/v1/royalty
// Computes the royalty-adjusted amount for one NFT trade leg.
func (s *Service) Royalty(w http.ResponseWriter, r *http.Request) {
	var req RoyaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var dir royalty.Direction
	switch req.Direction {
	case "", royalty.NFTForAsset.String():
		dir = royalty.NFTForAsset
	case royalty.AssetForNFT.String():
		dir = royalty.AssetForNFT
	default:
		writeError(w, "direction must be nft_for_asset or asset_for_nft", http.StatusBadRequest)
		return
	}
	if err := royalty.Validate(req.RoyaltyBPS); err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if req.Base.IsNegative() || req.Fee.IsNegative() {
		writeError(w, "base and fee must be non-negative", http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, RoyaltyResponse{
		Royalty: royalty.Amount(req.Base, req.RoyaltyBPS),
		Total:   royalty.Adjust(req.Base, req.Fee, req.RoyaltyBPS, dir),
	})
}

// GetNFT handles GET /api/v1/nft/{nftID}
// Accepts either encoding of the id and reports whether a pending offer
// holds the NFT.
func (s *Service) GetNFT(w http.ResponseWriter, r *http.Request) {
	nftID := chi.URLParam(r, "nftID")

	launcher, err := catalog.LauncherID(nftID)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	info, err := s.store.GetNFT(ctx, launcher)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "nft not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "failed to load nft", http.StatusInternalServerError)
		return
	}

	encoded, err := catalog.EncodeNFTID(launcher)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := NFTResponse{
		NFTID:      encoded,
		LauncherID: launcher,
		Info:       info,
		Royalty:    decimal.NewFromInt(int64(info.RoyaltyBPS)).Shift(-2),
	}

	offers, err := s.store.ListOffers(ctx)
	if err != nil {
		writeError(w, "failed to load offers", http.StatusInternalServerError)
		return
	}
	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		writeError(w, "failed to load wallets", http.StatusInternalServerError)
		return
	}
	if lock := pending.Aggregate(offers, catalog.New(wallets)).ForNFT(launcher); lock != nil {
		resp.Locked = true
		resp.Offers = lock.TradeIDs()
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Response helpers ---

// ErrorResponse is the JSON error body. Kind and Asset are set for engine
// errors; Errors lists every row error when more than one was found.
type ErrorResponse struct {
	Error  string        `json:"error"`
	Kind   string        `json:"kind,omitempty"`
	Asset  string        `json:"asset,omitempty"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail describes one engine error.
type ErrorDetail struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Asset string `json:"asset,omitempty"`
}

// StatusFor maps an engine error kind to an HTTP status.
func StatusFor(kind model.ErrorKind) int {
	if kind == model.KindBalanceUnavailable {
		return http.StatusServiceUnavailable
	}
	switch kind.Class() {
	case model.ClassInput:
		return http.StatusUnprocessableEntity
	case model.ClassState:
		return http.StatusConflict
	case model.ClassCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeEngineError reports a failed reconciliation. The first error found
// decides the status code.
func writeEngineError(w http.ResponseWriter, err error) {
	errs := model.Errors(err)
	if len(errs) == 0 {
		slog.Error("reconciliation failed", "err", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	first := errs[0]
	resp := ErrorResponse{
		Error: err.Error(),
		Kind:  string(first.Kind),
		Asset: first.Asset,
	}
	if len(errs) > 1 {
		for _, e := range errs {
			resp.Errors = append(resp.Errors, ErrorDetail{Error: e.Error(), Kind: string(e.Kind), Asset: e.Asset})
		}
	}
	writeJSON(w, StatusFor(first.Kind), resp)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
