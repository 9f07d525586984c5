// Package cost projects a plan's resource profile into a monetary figure
// for a cloud provider and execution frequency.
package cost

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider selects a cloud rate table.
type Provider string

const (
	AWS   Provider = "aws"
	GCP   Provider = "gcp"
	Azure Provider = "azure"
)

// Rates holds the per-unit prices for one provider.
type Rates struct {
	ComputeUnitCostPerMs float64 `yaml:"compute_unit_cost_per_ms"`
	IOCostPerBuffer      float64 `yaml:"io_cost_per_buffer"`
}

// defaultRates is process-wide read-only configuration. Figures are
// advisory approximations of on-demand pricing, not billing data.
var defaultRates = map[Provider]Rates{
	AWS:   {ComputeUnitCostPerMs: 0.0000012, IOCostPerBuffer: 0.00000020},
	GCP:   {ComputeUnitCostPerMs: 0.0000011, IOCostPerBuffer: 0.00000018},
	Azure: {ComputeUnitCostPerMs: 0.0000013, IOCostPerBuffer: 0.00000022},
}

// ParseProvider normalizes a user-supplied provider name.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case AWS:
		return AWS, nil
	case GCP:
		return GCP, nil
	case Azure:
		return Azure, nil
	}
	return "", fmt.Errorf("unknown provider %q: must be aws, gcp, or azure", s)
}

// RatesFor returns the rate table for a provider, applying any overrides
// from the user's rates.yaml. Unknown providers fall back to AWS rates so
// the engine never fails mid-analysis.
func RatesFor(p Provider) Rates {
	rates, ok := defaultRates[p]
	if !ok {
		rates = defaultRates[AWS]
	}
	if override, ok := loadOverrides()[p]; ok {
		if override.ComputeUnitCostPerMs > 0 {
			rates.ComputeUnitCostPerMs = override.ComputeUnitCostPerMs
		}
		if override.IOCostPerBuffer > 0 {
			rates.IOCostPerBuffer = override.IOCostPerBuffer
		}
	}
	return rates
}

const ratesFileName = "rates.yaml"

var configDirFunc = configDir

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(base, "pgimpact"), nil
}

// RatesPath returns the location of the rates override file.
func RatesPath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ratesFileName), nil
}

func loadOverrides() map[Provider]Rates {
	path, err := RatesPath()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var overrides map[Provider]Rates
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil
	}
	return overrides
}

// RatesTemplate is the commented starter file written by `pgimpact init`.
const RatesTemplate = `# pgimpact rate overrides.
# Values replace the built-in defaults per provider; omit a field to keep
# the default. Units: dollars per compute-millisecond and per buffer page.
#
# aws:
#   compute_unit_cost_per_ms: 0.0000012
#   io_cost_per_buffer: 0.0000002
# gcp:
#   compute_unit_cost_per_ms: 0.0000011
#   io_cost_per_buffer: 0.00000018
# azure:
#   compute_unit_cost_per_ms: 0.0000013
#   io_cost_per_buffer: 0.00000022
`

// WriteRatesTemplate creates the override template, refusing to clobber an
// existing file unless forced.
func WriteRatesTemplate(force bool) (string, error) {
	path, err := RatesPath()
	if err != nil {
		return "", err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(RatesTemplate), 0600); err != nil {
		return "", fmt.Errorf("writing config %s: %w", path, err)
	}
	return path, nil
}
