package devserver

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// Seed is the initial content of the dev server.
type Seed struct {
	Accounts  []SeedAccount               `yaml:"accounts"`
	Resources map[string][]map[string]any `yaml:"resources"`
	Analytics map[string]any              `yaml:"analytics"`
}

// SeedAccount is a login the dev server accepts.
type SeedAccount struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// DefaultSeed returns the built-in sample data.
func DefaultSeed() (Seed, error) {
	return parseSeed(defaultSeed)
}

func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return s, nil
}

// Apply loads the seed into store and accounts.
func (s Seed) Apply(store *Store, accounts *Accounts) error {
	for resource, records := range s.Resources {
		for _, rec := range records {
			if _, err := store.Create(resource, rec); err != nil {
				return fmt.Errorf("seeding %s: %w", resource, err)
			}
		}
	}
	if s.Analytics != nil {
		store.SetAnalytics(s.Analytics)
	}
	for _, a := range s.Accounts {
		if err := accounts.Add(a.Email, a.Password, a.Role); err != nil {
			return fmt.Errorf("seeding account %s: %w", a.Email, err)
		}
	}
	return nil
}

// Populate builds a store and account set from seed, adding the admin login.
func Populate(seed Seed, adminEmail, adminPassword string) (*Store, *Accounts, error) {
	store, accounts := NewStore(), NewAccounts()
	if err := seed.Apply(store, accounts); err != nil {
		return nil, nil, err
	}
	if adminEmail != "" {
		if err := accounts.Add(adminEmail, adminPassword, "Admin"); err != nil {
			return nil, nil, fmt.Errorf("adding admin account: %w", err)
		}
	}
	return store, accounts, nil
}
