package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atmx/offer-engine/internal/catalog"
)

func newNFTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nft",
		Short: "Convert between NFT ids and launcher ids",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <nft-id>",
		Short: "Print the launcher id of an nft1... id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launcher, err := catalog.LauncherID(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), launcher)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "encode <launcher-id>",
		Short: "Print the nft1... id of a hex launcher id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := catalog.EncodeNFTID(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})

	return cmd
}
