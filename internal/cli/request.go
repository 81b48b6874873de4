package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/zebapy/openapi-fetcher/internal/request"
	"github.com/zebapy/openapi-fetcher/internal/spec"
	"github.com/zebapy/openapi-fetcher/internal/store"
)

// RequestConfig captures all inputs that influence one curl or call
// invocation after merging defaults, config file values, and CLI overrides.
type RequestConfig struct {
	Spec        string
	Method      string
	Path        string
	BaseURL     string
	Token       string
	TokenID     string
	AuthType    string
	AuthHeader  string
	Body        string
	ExampleBody bool
	Compact     bool
	Params      map[string]string
}

// fileRequestConfig is the YAML shape of the optional config file. Only
// request defaults live there; spec/method/path always come from arguments.
type fileRequestConfig struct {
	BaseURL    string `yaml:"base-url"`
	AuthType   string `yaml:"auth-type"`
	AuthHeader string `yaml:"auth-header"`
	Token      string `yaml:"token"`
	TokenID    string `yaml:"token-id"`
}

func addRequestFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("base-url", "", "Base URL to prepend to the endpoint path (defaults to the spec's first server)")
	flags.String("token", "", "Auth token value")
	flags.String("token-id", "", "Use a stored token by ID")
	flags.String("auth-type", "", "Auth type (bearer|api-key|basic); defaults to bearer")
	flags.String("auth-header", "", "Header name for api-key auth (default "+request.DefaultAPIKeyHeader+")")
	flags.String("body", "", "Raw JSON request body")
	flags.Bool("example-body", false, "Synthesize a placeholder body from the schema when no --body is given")
	flags.StringArrayP("param", "p", nil, "Parameter value as name=value (repeatable)")
}

func resolveRequestConfig(cmd *cobra.Command, args []string) (*RequestConfig, error) {
	cfg := &RequestConfig{
		Spec:   strings.TrimSpace(args[0]),
		Method: strings.ToUpper(strings.TrimSpace(args[1])),
		Path:   strings.TrimSpace(args[2]),
		Params: map[string]string{},
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		if err := applyRequestConfigFromFile(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyRequestFlagOverrides(cmd.Flags(), cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyRequestConfigFromFile(cfg *RequestConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config %s: %v", path, err))
	}
	var file fileRequestConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return newUsageError(fmt.Sprintf("parse config %s: %v", path, err))
	}
	cfg.BaseURL = file.BaseURL
	cfg.AuthType = file.AuthType
	cfg.AuthHeader = file.AuthHeader
	cfg.Token = file.Token
	cfg.TokenID = file.TokenID
	return nil
}

func applyRequestFlagOverrides(flags *pflag.FlagSet, cfg *RequestConfig) error {
	if flags.Changed("base-url") {
		value, err := flags.GetString("base-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = value
	}
	if flags.Changed("token") {
		value, err := flags.GetString("token")
		if err != nil {
			return err
		}
		cfg.Token = value
	}
	if flags.Changed("token-id") {
		value, err := flags.GetString("token-id")
		if err != nil {
			return err
		}
		cfg.TokenID = value
	}
	if flags.Changed("auth-type") {
		value, err := flags.GetString("auth-type")
		if err != nil {
			return err
		}
		cfg.AuthType = value
	}
	if flags.Changed("auth-header") {
		value, err := flags.GetString("auth-header")
		if err != nil {
			return err
		}
		cfg.AuthHeader = value
	}
	if flags.Changed("body") {
		value, err := flags.GetString("body")
		if err != nil {
			return err
		}
		cfg.Body = value
	}
	if flags.Changed("example-body") {
		value, err := flags.GetBool("example-body")
		if err != nil {
			return err
		}
		cfg.ExampleBody = value
	}
	if flags.Changed("compact") {
		value, err := flags.GetBool("compact")
		if err != nil {
			return err
		}
		cfg.Compact = value
	}
	if flags.Changed("param") {
		values, err := flags.GetStringArray("param")
		if err != nil {
			return err
		}
		for _, kv := range values {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return newUsageError(fmt.Sprintf("invalid --param %q (expected name=value)", kv))
			}
			cfg.Params[strings.TrimSpace(name)] = value
		}
	}
	return nil
}

func (c *RequestConfig) normalize() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Token = strings.TrimSpace(c.Token)
	c.TokenID = strings.TrimSpace(c.TokenID)
	c.AuthType = strings.ToLower(strings.TrimSpace(c.AuthType))
	c.AuthHeader = strings.TrimSpace(c.AuthHeader)
}

func (c *RequestConfig) validate() error {
	if c.Spec == "" || c.Method == "" || c.Path == "" {
		return newUsageError("spec, method, and path are required")
	}
	switch c.AuthType {
	case "", string(request.AuthBearer), string(request.AuthAPIKey), string(request.AuthBasic):
	default:
		return newUsageError(fmt.Sprintf("unsupported --auth-type %q (allowed: bearer, api-key, basic)", c.AuthType))
	}
	return nil
}

// requestOptions materializes generation options, resolving a stored token
// and defaulting the base URL to the spec's first server.
func requestOptions(st *store.Store, cfg *RequestConfig, servers []spec.Server) (request.Options, error) {
	opts := request.Options{
		BaseURL:            cfg.BaseURL,
		AuthToken:          cfg.Token,
		AuthType:           request.AuthType(cfg.AuthType),
		AuthHeader:         cfg.AuthHeader,
		IncludeExampleBody: cfg.ExampleBody,
		ParamValues:        cfg.Params,
		BodyJSON:           cfg.Body,
	}
	if opts.AuthType == "" {
		opts.AuthType = request.AuthBearer
	}
	if cfg.TokenID != "" && opts.AuthToken == "" {
		tok, err := st.Tokens.Get(cfg.TokenID)
		if err != nil {
			return request.Options{}, err
		}
		opts.AuthToken = tok.Value
		if tok.Type != "" {
			opts.AuthType = request.AuthType(tok.Type)
		}
		if tok.Header != "" {
			opts.AuthHeader = tok.Header
		}
	}
	if opts.BaseURL == "" && len(servers) > 0 {
		opts.BaseURL = servers[0].URL
	}
	if opts.BaseURL == "" {
		return request.Options{}, newUsageError("no base URL: the spec declares no servers, pass --base-url")
	}
	return opts, nil
}
