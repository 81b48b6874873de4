package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zebapy/openapi-fetcher/internal/request"
	"github.com/zebapy/openapi-fetcher/internal/store"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Manage stored auth tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newTokensSetCmd(), newTokensListCmd(), newTokensRemoveCmd())
	return cmd
}

func newTokensSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Store or replace a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			value, err := flags.GetString("value")
			if err != nil {
				return err
			}
			if strings.TrimSpace(value) == "" {
				return newUsageError("tokens set: --value is required")
			}
			authType, err := flags.GetString("auth-type")
			if err != nil {
				return err
			}
			authType = strings.ToLower(strings.TrimSpace(authType))
			switch authType {
			case "", string(request.AuthBearer), string(request.AuthAPIKey), string(request.AuthBasic):
			default:
				return newUsageError(fmt.Sprintf("unsupported --auth-type %q (allowed: bearer, api-key, basic)", authType))
			}
			header, err := flags.GetString("header")
			if err != nil {
				return err
			}
			specName, err := flags.GetString("spec")
			if err != nil {
				return err
			}

			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			rec := store.TokenRecord{
				ID:     strings.TrimSpace(args[0]),
				Spec:   strings.TrimSpace(specName),
				Type:   authType,
				Header: strings.TrimSpace(header),
				Value:  value,
			}
			if rec.Type == "" {
				rec.Type = string(request.AuthBearer)
			}
			if err := st.Tokens.Set(rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored token %s (%s)\n", rec.ID, rec.Type)
			return nil
		},
	}
	cmd.Flags().String("value", "", "Token value (basic tokens must be pre-encoded user:password)")
	cmd.Flags().String("auth-type", "", "Auth type (bearer|api-key|basic); defaults to bearer")
	cmd.Flags().String("header", "", "Header name for api-key tokens (default "+request.DefaultAPIKeyHeader+")")
	cmd.Flags().String("spec", "", "Spec name this token belongs to")
	return cmd
}

func newTokensListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tokens (values redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			records, err := st.Tokens.List()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no tokens stored")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tHEADER\tSPEC")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.ID, rec.Type, rec.Header, rec.Spec)
			}
			return w.Flush()
		},
	}
}

func newTokensRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])
			if err := st.Tokens.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed token %s\n", id)
			return nil
		},
	}
}
