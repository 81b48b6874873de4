package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zebapy/openapi-fetcher/internal/endpoint"
	"github.com/zebapy/openapi-fetcher/internal/request"
)

func newCurlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curl <spec> <METHOD> <PATH>",
		Short: "Generate a cURL command for an endpoint",
		Long: "Generate a shell-safe cURL command for an endpoint. Missing path parameters " +
			"stay as {name} placeholders, so an incomplete command is still produced.",
		Example: strings.TrimSpace(`  oaf curl petstore GET /pets/{petId} -p petId=42
  oaf curl petstore POST /pets --example-body --token-id prod --compact`),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveRequestConfig(cmd, args)
			if err != nil {
				return err
			}
			return runCurl(cmd, cfg)
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().Bool("compact", false, "Emit a one-line command instead of the multi-line form")
	return cmd
}

func runCurl(cmd *cobra.Command, cfg *RequestConfig) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	doc, err := loadSpecDoc(cmd.Context(), st, cfg.Spec)
	if err != nil {
		return err
	}
	ep, ok := endpoint.Find(endpoint.Extract(doc), cfg.Method, cfg.Path)
	if !ok {
		return newUsageError(fmt.Sprintf("no endpoint %s %s in spec %q", cfg.Method, cfg.Path, cfg.Spec))
	}
	opts, err := requestOptions(st, cfg, doc.Servers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Compact {
		fmt.Fprintln(out, request.CompactCurl(ep, opts))
		return nil
	}
	fmt.Fprintln(out, request.Curl(ep, opts))
	return nil
}
