package app

import (
	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/domain/shopper"
)

const envPrefix = "STOREFRONT"

// Config holds the application configuration, loadable from environment
// variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	SeedFile string        `env:"SEED_FILE" flag:"seed-file" usage:"Seed file (.json or .json.gz); the built-in demo is used when empty"`
	NoColor  bool          `env:"NO_COLOR" flag:"no-color" default:"false" usage:"Disable ANSI colors in the transcript"`
	Shopper  ShopperConfig `env:"SHOPPER" flag:"shopper"`
}

// ShopperConfig overrides the customer named by the seed.
type ShopperConfig struct {
	FirstName string `env:"FIRST_NAME" flag:"first-name" usage:"Customer first name"`
	LastName  string `env:"LAST_NAME" flag:"last-name" usage:"Customer last name"`
}

// LoadConfig loads configuration from environment variables, flags and
// YAML config files.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: envPrefix,
		Files:     []string{"storefront.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}

// Seed returns the configured seed with shopper overrides applied.
func (c *Config) Seed() (*catalog.Seed, error) {
	var (
		seed *catalog.Seed
		err  error
	)
	if c.SeedFile == "" {
		seed, err = catalog.Default()
	} else {
		seed, err = catalog.Load(c.SeedFile)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load seed")
	}

	if first, last := c.Shopper.FirstName, c.Shopper.LastName; first != "" || last != "" {
		if first == "" {
			first = seed.Shopper.FirstName()
		}
		if last == "" {
			last = seed.Shopper.LastName()
		}
		seed.Shopper = shopper.New(first, last)
	}
	return seed, nil
}
