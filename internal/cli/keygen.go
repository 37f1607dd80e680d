package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/marketd/internal/core/market"
	"github.com/LeJamon/marketd/internal/crypto"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an operator keypair",
	Long: `Generate a secp256k1 keypair and print the private key, public key
and account ID. The account ID goes into market.operator in marketd.toml;
the private key signs settlement authorizations and must stay offline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := crypto.GenerateKeypair()
		if err != nil {
			return err
		}
		fmt.Printf("private_key: %s\n", kp.PrivateKey)
		fmt.Printf("public_key:  %s\n", kp.PublicKey)
		fmt.Printf("account_id:  %s\n", kp.AccountID)
		return nil
	},
}

var signCmd = &cobra.Command{
	Use:   "sign <private-key> <collection-owner> <collection-fee-bps> <counterpart>",
	Short: "Sign a settlement authorization",
	Long: `Produce the settlement authorization a buyer or accepting owner must
attach to market_buyItem or market_acceptOffer: the operator's signature
over the collection owner, the collection fee and the counterpart account.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		collectionOwner, err := crypto.ParseAccountID(args[1])
		if err != nil {
			return fmt.Errorf("invalid collection owner: %w", err)
		}
		var feeBps uint32
		if _, err := fmt.Sscanf(args[2], "%d", &feeBps); err != nil {
			return fmt.Errorf("invalid fee bps: %w", err)
		}
		counterpart, err := crypto.ParseAccountID(args[3])
		if err != nil {
			return fmt.Errorf("invalid counterpart: %w", err)
		}

		sig, err := crypto.Sign(market.AuthorizationMessage(collectionOwner, feeBps, counterpart), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("authorization: %s\n", sig)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(signCmd)
}
