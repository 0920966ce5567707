// Command cep masks and looks up Brazilian postal codes (CEP) from the
// command line, using the same masker and ViaCEP client as the storefront.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/coffee-delivery/internal/address"
	"github.com/dukerupert/coffee-delivery/internal/cep"
)

type lookupOptions struct {
	baseURL string
	timeout time.Duration
	asJSON  bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cep",
		Short:         "Mask and look up Brazilian postal codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMaskCmd(), newLookupCmd())
	return root
}

func newMaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mask [input]",
		Short: "Print the field value a postal-code input would show",
		Long: `Applies the checkout masking rules to input: non-digits are dropped and a
complete eight-digit code is shown as NNNNN-NNN. Input with more than eight
digits is rejected.

Example:
  cep mask 01310100   # 01310-100
  cep mask 0131       # 0131`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cep.Apply(args[0])
			if in.Rejected {
				return fmt.Errorf("%q has more than %d digits", args[0], cep.Length)
			}
			fmt.Fprintln(cmd.OutOrStdout(), in.Display)
			return nil
		},
	}
}

func newLookupCmd() *cobra.Command {
	opts := lookupOptions{}
	cmd := &cobra.Command{
		Use:   "lookup [code]",
		Short: "Look a postal code up in ViaCEP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "base-url", address.DefaultViaCEPURL, "ViaCEP base URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "request timeout")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	return cmd
}

func runLookup(cmd *cobra.Command, opts lookupOptions, code string) error {
	digits, ok := cep.Normalize(code)
	if !ok {
		return address.ErrInvalidCEP
	}

	client := address.NewViaCEPClient(address.ViaCEPConfig{
		BaseURL: opts.baseURL,
		Timeout: opts.timeout,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := client.Lookup(ctx, digits)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", cep.Mask(digits), err)
	}
	if result.NotFound {
		return fmt.Errorf("CEP %s not found", cep.Mask(digits))
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"cep":      cep.Mask(digits),
			"street":   result.Street,
			"district": result.District,
			"city":     result.City,
			"state":    result.State,
		})
	}

	fmt.Fprintf(out, "%s\n%s\n%s - %s, %s\n", cep.Mask(digits), result.Street, result.District, result.City, result.State)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
