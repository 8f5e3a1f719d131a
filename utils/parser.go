package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KSimonJNR/paystream/amount"
	"github.com/KSimonJNR/paystream/contract"
	"github.com/KSimonJNR/paystream/types"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultDeploymentFile = "deployment.json"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validators
	_ = validate.RegisterValidation("network", validateNetworkTag)
	_ = validate.RegisterValidation("felt", validateFeltTag)
}

// FileConfig is the on-disk form of types.Config. Durations are strings such
// as "30s" and the deployment may be inline or point at a deployment file.
type FileConfig struct {
	Network        string            `json:"network" toml:"network"`
	NodeURL        string            `json:"nodeUrl" toml:"node_url"`
	WalletURL      string            `json:"walletUrl" toml:"wallet_url"`
	Deployment     types.Deployment  `json:"deployment,omitempty" toml:"deployment,omitempty"`
	DeploymentFile string            `json:"deploymentFile,omitempty" toml:"deployment_file,omitempty"`
	ABIDir         string            `json:"abiDir,omitempty" toml:"abi_dir,omitempty"`
	Decimals       *int              `json:"decimals,omitempty" toml:"decimals,omitempty"`
	Timeout        string            `json:"timeout,omitempty" toml:"timeout,omitempty"`
	PollInterval   string            `json:"pollInterval,omitempty" toml:"poll_interval,omitempty"`
	Headers        map[string]string `json:"headers,omitempty" toml:"headers,omitempty"`
	LogLevel       string            `json:"logLevel,omitempty" toml:"log_level,omitempty"`
	EnableMetrics  bool              `json:"enableMetrics,omitempty" toml:"enable_metrics,omitempty"`
}

// ToConfig resolves defaults, loads the deployment file when no inline
// deployment is given and validates the result.
func (f *FileConfig) ToConfig() (*types.Config, error) {
	cfg := &types.Config{
		Network:        types.Network(f.Network),
		NodeURL:        f.NodeURL,
		WalletURL:      f.WalletURL,
		Deployment:     f.Deployment,
		ABIDir:         f.ABIDir,
		Decimals:       amount.DefaultDecimals,
		DefaultTimeout: DefaultTimeout,
		Headers:        f.Headers,
		LogLevel:       f.LogLevel,
		EnableMetrics:  f.EnableMetrics,
	}
	if f.Decimals != nil {
		cfg.Decimals = *f.Decimals
	}

	var err error
	if f.Timeout != "" {
		if cfg.DefaultTimeout, err = parseDuration("timeout", f.Timeout); err != nil {
			return nil, err
		}
	}
	if f.PollInterval != "" {
		if cfg.PollInterval, err = parseDuration("pollInterval", f.PollInterval); err != nil {
			return nil, err
		}
	}

	if len(cfg.Deployment) == 0 {
		path := f.DeploymentFile
		if path == "" {
			path = DefaultDeploymentFile
		}
		if cfg.Deployment, err = LoadDeployment(path); err != nil {
			return nil, err
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig parses a JSON config document.
func ParseConfig(data []byte) (*types.Config, error) {
	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse config: %v", err),
		}
	}
	return fc.ToConfig()
}

// ValidateConfig checks cfg against its struct tags.
func ValidateConfig(cfg *types.Config) error {
	if cfg == nil {
		return &types.Error{Code: types.ErrConfigError, Message: "config is nil"}
	}
	if err := validate.Struct(cfg); err != nil {
		return &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("validation failed: %s", describe(err)),
		}
	}
	return nil
}

// ParseDeployment parses a deployment descriptor such as
// {"paystream": "0x…", "mock_erc20": "0x…"}. Addresses are normalized.
func ParseDeployment(data []byte) (types.Deployment, error) {
	var d types.Deployment
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse deployment: %v", err),
		}
	}
	if len(d) == 0 {
		return nil, &types.Error{Code: types.ErrConfigError, Message: "deployment is empty"}
	}

	out := make(types.Deployment, len(d))
	for name, addr := range d {
		norm, err := contract.NormalizeAddress(addr)
		if err != nil {
			return nil, &types.Error{
				Code:    types.ErrConfigError,
				Message: fmt.Sprintf("deployment %s: %v", name, err),
			}
		}
		out[name] = norm
	}
	return out, nil
}

// LoadDeployment reads and parses a deployment file.
func LoadDeployment(path string) (types.Deployment, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to read deployment: %v", err),
		}
	}
	return ParseDeployment(data)
}

// ValidateStreamParams checks that every field of a new stream is filled and
// the schedule ends after it starts.
func ValidateStreamParams(p *types.StreamParams) error {
	if p == nil {
		return &types.Error{Code: types.ErrInvalidArgument, Message: "stream params are nil"}
	}
	if err := validate.Struct(p); err != nil {
		return &types.Error{
			Code:    types.ErrInvalidArgument,
			Message: describe(err),
		}
	}
	return nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid %s: %v", field, err),
		}
	}
	return d, nil
}

// Custom validator functions
func validateNetworkTag(fl validator.FieldLevel) bool {
	return types.Network(fl.Field().String()).IsValid()
}

func validateFeltTag(fl validator.FieldLevel) bool {
	_, err := contract.ParseFelt(fl.Field().String())
	return err == nil
}

// ParseTimestamp reads a point in time as unix seconds or one of the common
// date layouts and returns unix seconds.
func ParseTimestamp(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseUint(s, 10, 64); err == nil {
		return secs, nil
	}

	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			if t.Unix() < 0 {
				break
			}
			return uint64(t.Unix()), nil
		}
	}

	return 0, &types.Error{
		Code:    types.ErrInvalidArgument,
		Message: fmt.Sprintf("unable to parse time: %s", s),
	}
}
