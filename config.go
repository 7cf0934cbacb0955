package jwtauth

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/cybergodev/jwtauth/internal/signing"
)

// Config represents processor configuration. Every field can be read from
// the environment with LoadConfig.
type Config struct {
	// Type is written to the typ header of issued tokens.
	Type string `env:"JWTAUTH_TYPE" envDefault:"JWT" yaml:"type" json:"type"`

	// AllowedAlgorithms is the alg allow-list applied when validating.
	AllowedAlgorithms []string `env:"JWTAUTH_ALLOWED_ALGORITHMS" envDefault:"HS256" envSeparator:"," yaml:"allowed_algorithms" json:"allowed_algorithms"`

	// SecretMinLength is the minimum secret length in bytes.
	SecretMinLength int `env:"JWTAUTH_SECRET_MIN_LENGTH" envDefault:"12" yaml:"secret_min_length" json:"secret_min_length"`

	// StrictSecret additionally rejects low-entropy secrets.
	StrictSecret bool `env:"JWTAUTH_STRICT_SECRET" envDefault:"false" yaml:"strict_secret" json:"strict_secret"`
}

// DefaultConfig returns the configuration used by the package-level helpers.
func DefaultConfig() Config {
	return Config{
		Type:              DefaultType,
		AllowedAlgorithms: []string{signing.AlgHS256},
		SecretMinLength:   DefaultSecretMinLength,
		StrictSecret:      false,
	}
}

// LoadConfig reads a Config from JWTAUTH_* environment variables, applying
// the defaults above, and validates it.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}

	if strings.TrimSpace(c.Type) == "" {
		return fmt.Errorf("%w: type cannot be empty", ErrInvalidConfig)
	}

	if len(c.AllowedAlgorithms) == 0 {
		return fmt.Errorf("%w: at least one algorithm must be allowed", ErrInvalidConfig)
	}
	for _, alg := range c.AllowedAlgorithms {
		if _, err := signing.Lookup(alg); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if c.SecretMinLength < DefaultSecretMinLength {
		return fmt.Errorf("%w: secret minimum length must be at least %d, got %d",
			ErrInvalidConfig, DefaultSecretMinLength, c.SecretMinLength)
	}

	return nil
}

// SecretValidator returns the secret policy described by the configuration.
func (c *Config) SecretValidator() SecretValidator {
	policy := SecretPolicy{MinLength: c.SecretMinLength}
	if c.StrictSecret {
		return EntropySecretPolicy{SecretPolicy: policy}
	}
	return policy
}
