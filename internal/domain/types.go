package domain

import (
	"fmt"
	"strings"
)

// Domain is one of the fixed business domains partitioning the estate.
type Domain string

const (
	Sales      Domain = "Sales"
	Finance    Domain = "Finance"
	Customer   Domain = "Customer"
	Accounting Domain = "Accounting"
	Retail     Domain = "Retail"
	Nonedw     Domain = "Nonedw"
	Associates Domain = "Associates"
)

// ScopeAll selects every domain in canonical order.
const ScopeAll = "All"

// Domains returns the canonical domain order. Positional correlation between
// plan category sequences depends on this order staying fixed.
func Domains() []Domain {
	return []Domain{Sales, Finance, Customer, Accounting, Retail, Nonedw, Associates}
}

func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains() {
		if string(d) == strings.TrimSpace(s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// Tier is an environment instance of a domain's resources.
type Tier string

const (
	TierQA   Tier = "qa"
	TierProd Tier = "prod"
	TierDR   Tier = "DR"
)

// ParseEnvironment accepts the two selectable source environments. The DR tier
// is never a source; it is always the destination.
func ParseEnvironment(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierQA:
		return TierQA, nil
	case TierProd:
		return TierProd, nil
	default:
		return "", fmt.Errorf("environment must be %q or %q, got %q", TierQA, TierProd, s)
	}
}

// Mode tags a run as failover or failback. Direction of resolution is always
// source environment to DR; mode is carried through as metadata for operators
// and the run ledger.
type Mode string

const (
	ModeFailover Mode = "failover"
	ModeFailback Mode = "failback"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFailover:
		return ModeFailover, nil
	case ModeFailback:
		return ModeFailback, nil
	default:
		return "", fmt.Errorf("mode must be %q or %q, got %q", ModeFailover, ModeFailback, s)
	}
}

// Selection captures the originating parameters of a plan. Constructed once
// from external input and immutable afterwards; the builder embeds it into the
// plan for audit and for executors that need the original environment tag.
type Selection struct {
	Mode        Mode
	Storage     bool
	Snowflake   bool
	Azure       bool
	Scope       string // ScopeAll or one domain name
	Environment Tier
}

func (s Selection) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if s.Environment != TierQA && s.Environment != TierProd {
		return fmt.Errorf("environment must be %q or %q, got %q", TierQA, TierProd, s.Environment)
	}
	if s.Scope != ScopeAll {
		if _, err := ParseDomain(s.Scope); err != nil {
			return err
		}
	}
	return nil
}

// ScopeDomains returns the domains the selection covers, in canonical order.
func (s Selection) ScopeDomains() []Domain {
	if s.Scope == ScopeAll {
		return Domains()
	}
	return []Domain{Domain(s.Scope)}
}
