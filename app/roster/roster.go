// Package roster holds the fixed list of source accounts the feed aggregates.
// The roster is loaded once at startup and never mutated afterwards.
package roster

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Account struct {
	Handle          string `yaml:"handle"`
	GuaranteedFresh bool   `yaml:"guaranteed_fresh"`
}

type Roster struct {
	accounts   []Account
	guaranteed map[string]bool
}

// defaultAccounts is the built-in roster, used when no roster file is configured.
var defaultAccounts = []Account{
	{Handle: "BambroughKevin"},
	{Handle: "zerohedge", GuaranteedFresh: true},
	{Handle: "KobeissiLetter", GuaranteedFresh: true},
	{Handle: "hkuppy"},
	{Handle: "quakes99"},
	{Handle: "WatcherGuru"},
	{Handle: "nntaleb"},
	{Handle: "tferriss"},
	{Handle: "TheEconomist", GuaranteedFresh: true},
	{Handle: "JohnPolomny"},
	{Handle: "SantiagoAuFund"},
	{Handle: "BarbarianCap"},
	{Handle: "JoshYoung"},
	{Handle: "wmiddelkoop"},
	{Handle: "White_Rabbit_OG"},
	{Handle: "colonelhomsi"},
	{Handle: "HydroGraphInc"},
}

type rosterFile struct {
	Accounts []Account `yaml:"accounts"`
}

// Load returns the roster from the given YAML file, or the built-in default
// roster when path is empty.
func Load(path string) (*Roster, error) {
	if path == "" {
		return New(defaultAccounts)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var parsed rosterFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse roster YAML: %w", err)
	}

	r, err := New(parsed.Accounts)
	if err != nil {
		return nil, fmt.Errorf("invalid roster %s: %w", path, err)
	}

	slog.Debug("Roster loaded from file", "path", path, "accounts", r.Size())
	return r, nil
}

// New builds a roster from the given accounts, validating handles and
// rejecting duplicates (case-insensitive).
func New(accounts []Account) (*Roster, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("roster must contain at least one account")
	}

	guaranteed := make(map[string]bool)
	seen := make(map[string]bool)
	kept := make([]Account, 0, len(accounts))

	for i, account := range accounts {
		handle := strings.TrimSpace(account.Handle)
		if handle == "" {
			return nil, fmt.Errorf("account at index %d has an empty handle", i)
		}

		key := strings.ToLower(handle)
		if seen[key] {
			return nil, fmt.Errorf("duplicate account handle: %s", handle)
		}
		seen[key] = true

		if account.GuaranteedFresh {
			guaranteed[key] = true
		}

		kept = append(kept, Account{Handle: handle, GuaranteedFresh: account.GuaranteedFresh})
	}

	return &Roster{accounts: kept, guaranteed: guaranteed}, nil
}

// Accounts returns the roster in its configured order.
func (r *Roster) Accounts() []Account {
	accounts := make([]Account, len(r.accounts))
	copy(accounts, r.accounts)
	return accounts
}

// IsGuaranteedFresh reports whether the handle is subject to the short
// freshness window. Lookup is case-insensitive.
func (r *Roster) IsGuaranteedFresh(handle string) bool {
	return r.guaranteed[strings.ToLower(handle)]
}

func (r *Roster) Size() int {
	return len(r.accounts)
}
