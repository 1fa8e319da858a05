package domain

import "context"

// MaxUplineHops bounds any upline walk. A chain longer than this is
// treated as corrupted data, not a longer chain.
const MaxUplineHops = 64

// ReferralGraph is a read-only view over the account hierarchy: each
// account has at most one upline sponsor, so the graph is a forest.
type ReferralGraph interface {
	// UplineChain returns the ancestors of the account, nearest first,
	// up to maxDepth. Reaching a root before maxDepth is not an error:
	// the chain is simply shorter.
	UplineChain(ctx context.Context, accountID string, maxDepth int) ([]string, error)

	// QualifyingLegCount counts the account's direct downline branches
	// with at least one sale in the period.
	QualifyingLegCount(ctx context.Context, accountID string, period Period) (int, error)
}

// WalkUpline iterates parent pointers from start, collecting up to
// maxDepth ancestors. parentOf returns nil for a root. A repeated node
// or more than MaxUplineHops hops means the stored graph is cyclic and
// the walk fails with ErrGraphCycle wrapped as an integrity fault.
func WalkUpline(parentOf func(accountID string) (*string, error), start string, maxDepth int) ([]string, error) {
	if maxDepth > MaxUplineHops {
		maxDepth = MaxUplineHops
	}
	visited := map[string]struct{}{start: {}}
	chain := make([]string, 0, maxDepth)
	current := start
	for hops := 0; len(chain) < maxDepth; hops++ {
		if hops >= MaxUplineHops {
			return nil, Integrity(ErrGraphCycle)
		}
		parent, err := parentOf(current)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		if _, seen := visited[*parent]; seen {
			return nil, Integrity(ErrGraphCycle)
		}
		visited[*parent] = struct{}{}
		chain = append(chain, *parent)
		current = *parent
	}
	return chain, nil
}
