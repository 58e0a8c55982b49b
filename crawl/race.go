package crawl

import (
	"context"
	"fmt"

	"github.com/fwojciec/mise"
	"golang.org/x/sync/errgroup"
)

// candidate is a draft that reached the validity gate.
type candidate struct {
	rank    int
	draft   *mise.RecipeDraft
	verdict verdict
}

// raceResult is what one StrategyRace produced.
type raceResult struct {
	winner   *candidate
	rejected []candidate
	trail    []mise.Attempt
}

type outcome struct {
	rank   int
	source mise.Source
	draft  *mise.RecipeDraft
	err    error
}

// race runs every strategy concurrently over the same page. Strategies are
// ranked by position: a valid draft is accepted as soon as every
// higher-ranked strategy has finished without one, so structured data beats
// a heuristic parse that happens to finish first. Accepting a winner cancels
// all strategies still running, and race does not return until they exit.
func race(ctx context.Context, stage string, page *mise.Page, strategies []mise.Strategy) (*raceResult, error) {
	var g errgroup.Group
	defer func() { _ = g.Wait() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan outcome, len(strategies))
	for i, s := range strategies {
		g.Go(func() error {
			draft, err := s.Extract(ctx, page)
			results <- outcome{rank: i, source: s.Source(), draft: draft, err: err}
			return nil
		})
	}

	res := &raceResult{}
	done := make([]bool, len(strategies))
	valid := make([]*candidate, len(strategies))
	for range strategies {
		var o outcome
		select {
		case o = <-results:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		done[o.rank] = true

		switch {
		case o.err != nil:
			res.trail = append(res.trail, mise.Attempt{Stage: stage, Source: o.source, Reason: o.err.Error()})
		case o.draft == nil:
			res.trail = append(res.trail, mise.Attempt{Stage: stage, Source: o.source, Reason: "no candidate"})
		default:
			c := candidate{rank: o.rank, draft: o.draft, verdict: validate(o.draft)}
			if c.verdict.ok {
				valid[o.rank] = &c
			} else {
				res.rejected = append(res.rejected, c)
				res.trail = append(res.trail, mise.Attempt{Stage: stage, Source: o.source, Reason: c.verdict.reason})
			}
		}

		for r := range strategies {
			if valid[r] != nil {
				res.winner = valid[r]
				return res, nil
			}
			if !done[r] {
				break
			}
		}
	}
	return res, nil
}

// bestRejected returns the rejected candidate with the highest readiness
// ratio, preferring higher-ranked strategies on ties.
func bestRejected(rejected []candidate) (candidate, bool) {
	var best candidate
	var found bool
	for _, c := range rejected {
		if c.verdict.ingredientLike < minIngredientLines {
			continue
		}
		if !found || c.verdict.readiness() > best.verdict.readiness() ||
			(c.verdict.readiness() == best.verdict.readiness() && c.rank < best.rank) {
			best, found = c, true
		}
	}
	return best, found
}

func describe(c candidate) string {
	return fmt.Sprintf("%s readiness %.2f", c.draft.Source, c.verdict.readiness())
}
