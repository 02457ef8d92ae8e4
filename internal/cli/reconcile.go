package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atmx/offer-engine/internal/model"
	"github.com/atmx/offer-engine/internal/nft"
	"github.com/atmx/offer-engine/internal/offer"
)

func newReconcileCmd() *cobra.Command {
	var (
		statePath    string
		requestPath  string
		validateOnly bool
		allowEmpty   bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile an offer request against a wallet state snapshot",
		Long: `Reads a trade request and a wallet state snapshot, runs one reconciliation
pass and prints the outcome as JSON. Engine errors are printed as JSON and
make the command exit non-zero.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ms, err := loadState(ctx, statePath)
			if err != nil {
				return err
			}
			var req model.OfferRequest
			if err := readJSON(requestPath, &req); err != nil {
				return fmt.Errorf("request: %w", err)
			}
			if validateOnly {
				req.ValidateOnly = true
			}

			builder, err := nft.NewBuilder(ms, 64)
			if err != nil {
				return err
			}
			assembler := offer.NewAssembler(ms, builder, offer.Options{AllowEmptyOffered: allowEmpty})

			wallets, err := ms.ListWallets(ctx)
			if err != nil {
				return fmt.Errorf("list wallets: %w", err)
			}
			offers, err := ms.ListOffers(ctx)
			if err != nil {
				return fmt.Errorf("list offers: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			out, err := assembler.Assemble(ctx, req, wallets, offers)
			if err != nil {
				var details []map[string]string
				for _, e := range model.Errors(err) {
					details = append(details, map[string]string{
						"kind":  string(e.Kind),
						"asset": e.Asset,
						"error": e.Error(),
					})
				}
				if encErr := enc.Encode(map[string]any{"errors": details}); encErr != nil {
					return fmt.Errorf("write errors: %w", encErr)
				}
				return fmt.Errorf("reconciliation failed: %w", err)
			}
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "wallet state snapshot (JSON)")
	cmd.Flags().StringVar(&requestPath, "request", "", "offer request (JSON)")
	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "preview the offer; report overlaps instead of conflicts")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty-offered", false, "accept requests that offer nothing")
	cmd.MarkFlagRequired("state")
	cmd.MarkFlagRequired("request")
	return cmd
}
