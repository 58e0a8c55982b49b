package main

import "fmt"

// Run executes the compact command.
func (c *CompactCmd) Run(deps *Dependencies) error {
	now := deps.Now()

	results, err := deps.Results.DeleteExpired(deps.Ctx, now)
	if err != nil {
		return fmt.Errorf("compacting results: %w", err)
	}

	entries, err := deps.FetchCache.DeleteStale(deps.Ctx, now.Add(-c.OlderThan))
	if err != nil {
		return fmt.Errorf("compacting fetch cache: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Removed %d expired results and %d stale fetch cache entries\n", results, entries)
	return nil
}
