// Package identity derives the human-readable, collision-resistant
// identifiers used across the pipeline: sequence tokens, opportunity IDs,
// product IDs, and line-item UIDs. Everything except token resolution is a
// pure function of its inputs; token resolution talks to a narrow store
// contract and is the only operation with a side effect.
//
// The string formats are a durable external contract:
//   - token:          "Q3" + digits (4-digit zero-padded in the common path)
//   - opportunity ID: "{SalesGroup}{Token}" (e.g. "ENT1Q30005")
//   - product ID:     "{PillarID}{SolutionID}{ServiceID}{BrandCode}"
//   - UID:            "{OpportunityID}-{ProductID}-{timestamp}{index}"
package identity

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TokenPrefix is the fixed two-character sequence-token prefix.
	TokenPrefix = "Q3"

	// SeedToken is issued to the very first opportunity name ever recorded.
	SeedToken = "Q30000"

	// DefaultSalesGroup substitutes an absent sales group in opportunity IDs.
	DefaultSalesGroup = "GEN"

	// Placeholders substituted for catalog misses when building product IDs.
	PlaceholderPillar   = "GEN"
	PlaceholderSolution = "0"
	PlaceholderService  = "S0"
	PlaceholderBrand    = "GEN"
)

// tokenRE recovers a sequence token embedded in a legacy opportunity ID.
var tokenRE = regexp.MustCompile(`(Q3\d+)`)

// SequenceStore is the persistence contract token resolution requires. The
// store must enforce uniqueness on both name and token; InsertToken surfaces
// a violation as an error so the caller can retry the enclosing operation.
type SequenceStore interface {
	// FindToken returns the token recorded for name, or "" when absent.
	FindToken(ctx context.Context, name string) (string, error)
	// MaxToken returns the greatest token issued so far, or "" when none exist.
	MaxToken(ctx context.Context) (string, error)
	// InsertToken persists a new (name, token) pair.
	InsertToken(ctx context.Context, name, token string) error
}

// CatalogParts is the result of a pillar/solution/service triple lookup.
// Empty fields mean the catalog missed that dimension.
type CatalogParts struct {
	PillarID   string
	SolutionID string
	ServiceID  string
}

// ResolveSequenceToken returns the token for an opportunity name, minting and
// persisting one on first use. Resolution is idempotent per name: a second
// call with the same name returns the identical token with no side effect.
//
// Minting reads the current maximum token and increments its numeric suffix,
// re-padded to four digits. An empty store yields SeedToken. A max token that
// fails to parse falls back to "Q3{unix}" so forward progress never stops on
// corrupt data (best-effort uniqueness; the store's unique constraints catch
// a same-second collision).
func ResolveSequenceToken(ctx context.Context, store SequenceStore, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	existing, err := store.FindToken(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	max, err := store.MaxToken(ctx)
	if err != nil {
		return "", err
	}
	token := NextToken(max, time.Now())

	if err := store.InsertToken(ctx, name, token); err != nil {
		return "", err
	}
	return token, nil
}

// NextToken computes the successor of the given maximum token. It is split
// out from ResolveSequenceToken so the increment/fallback rules are testable
// without a store.
func NextToken(max string, now time.Time) string {
	if max == "" {
		return SeedToken
	}
	num, err := strconv.Atoi(strings.TrimPrefix(max, TokenPrefix))
	if err != nil {
		// Corrupt max token: derive from wall clock to stay ahead of any
		// well-formed 4-digit token.
		return fmt.Sprintf("%s%d", TokenPrefix, now.Unix())
	}
	return fmt.Sprintf("%s%04d", TokenPrefix, num+1)
}

// BuildOpportunityID concatenates the sales group code and sequence token.
// An absent sales group defaults to "GEN".
func BuildOpportunityID(salesGroup, token string) string {
	salesGroup = strings.TrimSpace(salesGroup)
	if salesGroup == "" {
		salesGroup = DefaultSalesGroup
	}
	return salesGroup + token
}

// BuildProductID assembles a product code from catalog lookup results,
// substituting a placeholder per missing field (a partial hit still keeps the
// found parts). Embedded spaces are stripped and the result is uppercased.
func BuildProductID(parts CatalogParts, brandCode string) string {
	pillar := parts.PillarID
	if pillar == "" {
		pillar = PlaceholderPillar
	}
	solution := parts.SolutionID
	if solution == "" {
		solution = PlaceholderSolution
	}
	service := parts.ServiceID
	if service == "" {
		service = PlaceholderService
	}
	if brandCode == "" {
		brandCode = PlaceholderBrand
	}
	id := pillar + solution + service + brandCode
	return strings.ToUpper(strings.ReplaceAll(id, " ", ""))
}

// BuildUID derives a line item's globally unique identifier. batchTS must be
// shared by every line of one submission so the lines remain reconstructable
// as a batch; indexInBatch (0-based) disambiguates lines minted in the same
// second and is appended to the timestamp without a separator.
func BuildUID(opportunityID, productID string, batchTS time.Time, indexInBatch int) string {
	return fmt.Sprintf("%s-%s-%d%d", opportunityID, productID, batchTS.Unix(), indexInBatch)
}

// RegenerateUID recombines a new opportunity/product ID pair with the
// temporal segment of the old UID, preserving when the line was originally
// created across reclassification. A malformed old UID (fewer than three
// '-'-separated segments) gets a fresh timestamp segment instead of failing.
func RegenerateUID(oldUID, opportunityID, productID string, now time.Time) string {
	segs := strings.Split(oldUID, "-")
	ts := fmt.Sprintf("%d0", now.Unix())
	if len(segs) >= 3 {
		ts = segs[len(segs)-1]
	}
	return fmt.Sprintf("%s-%s-%s", opportunityID, productID, ts)
}

// ExtractToken recovers the sequence token embedded in an opportunity ID for
// legacy rows whose name is missing from the sequence ledger. When no Q3
// pattern matches it falls back to the last six characters.
func ExtractToken(opportunityID string) string {
	if m := tokenRE.FindString(opportunityID); m != "" {
		return m
	}
	if len(opportunityID) > 6 {
		return opportunityID[len(opportunityID)-6:]
	}
	return opportunityID
}
