// Package crawl orchestrates recipe extraction. It owns the escalation
// ladder: result cache, static fetch, domain fingerprint, strategy race,
// headless render, readiness check and AI fallback.
package crawl

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/mise"
	"github.com/google/uuid"
)

var _ mise.RecipeCrawler = (*Crawler)(nil)

// Default budgets.
const (
	DefaultAITimeout = 75 * time.Second
	DefaultMaxAIText = 12000
)

// Trail stages.
const (
	stageCache       = "cache"
	stageFetch       = "fetch"
	stageFingerprint = "fingerprint"
	stageStatic      = "static"
	stageRender      = "render"
	stageRendered    = "rendered"
	stageAI          = "ai"
)

// Crawler turns a recipe URL into a validated recipe.
//
// Fetcher and Strategies are required; Strategies are raced in rank order.
// Every other collaborator is optional and its rung of the ladder is
// skipped when nil.
type Crawler struct {
	Fetcher      mise.Fetcher
	Renderer     mise.Fetcher
	Strategies   []mise.Strategy
	Fingerprint  mise.FingerprintExtractor
	Fingerprints mise.FingerprintService
	Results      mise.ResultCache
	Extractors   []mise.Extractor
	Converter    mise.Converter
	AI           mise.AIExtractor
	Enricher     mise.Enricher
	Logger       *slog.Logger

	Now               func() time.Time
	Timeout           time.Duration // whole-crawl deadline; zero means none
	RenderRetryDelays []time.Duration
	AITimeout         time.Duration
	MaxAIText         int
}

// crawlState carries one crawl through the ladder.
type crawlState struct {
	url         string
	domain      string
	now         time.Time
	fingerprint *mise.DomainFingerprint
	static      *mise.Page
	rendered    *mise.Page
	rejected    []candidate
	trail       []mise.Attempt
}

func (s *crawlState) note(stage string, source mise.Source, reason string) {
	s.trail = append(s.trail, mise.Attempt{Stage: stage, Source: source, Reason: reason})
}

// lastPage returns the most complete DOM seen so far.
func (s *crawlState) lastPage() *mise.Page {
	if s.rendered != nil {
		return s.rendered
	}
	return s.static
}

// Crawl returns a validated recipe for rawURL. A fresh cached outcome is
// served without network access; exhausting the ladder returns
// *mise.ExtractionFailed, which is cached as a failure.
func (c *Crawler) Crawl(ctx context.Context, rawURL string) (*mise.Recipe, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, mise.Errorf(mise.EINVALID, "invalid recipe URL %q", rawURL)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	st := &crawlState{url: rawURL, domain: mise.Domain(rawURL), now: c.now()}
	log := c.logger().With("url", rawURL)

	if rec := c.freshRecord(ctx, st); rec != nil {
		log.Debug("served from result cache", "success", rec.Success)
		if rec.Success {
			return rec.Recipe, nil
		}
		return nil, &mise.ExtractionFailed{
			URL:   rawURL,
			Trail: []mise.Attempt{{Stage: stageCache, Reason: rec.Error}},
		}
	}

	st.fingerprint = c.findFingerprint(ctx, st.domain)

	html, err := c.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		st.note(stageFetch, "", err.Error())
		log.Debug("static fetch failed, escalating", "err", err)
	} else {
		st.static = &mise.Page{URL: rawURL, HTML: html}
		draft, err := c.extract(ctx, st, stageStatic, st.static)
		if err != nil {
			return nil, err
		}
		if draft != nil {
			return c.finish(ctx, st, draft)
		}
	}

	if c.Renderer != nil {
		delays := c.RenderRetryDelays
		if delays == nil {
			delays = DefaultRenderRetryDelays()
		}
		html, err := FetchWithRetryDelays(ctx, rawURL, c.Renderer.Fetch, log.Debug, delays)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			st.note(stageRender, "", err.Error())
			log.Debug("render failed", "err", err)
		} else {
			st.rendered = &mise.Page{URL: rawURL, HTML: html, Rendered: true}
			draft, err := c.extract(ctx, st, stageRendered, st.rendered)
			if err != nil {
				return nil, err
			}
			if draft != nil {
				return c.finish(ctx, st, draft)
			}
		}
	}

	if best, ok := bestRejected(st.rejected); ok && best.verdict.readiness() >= readinessThreshold {
		log.Debug("accepting deterministic parse", "candidate", describe(best))
		return c.finish(ctx, st, best.draft)
	}

	if c.AI != nil {
		draft, err := c.extractWithAI(ctx, st)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			st.note(stageAI, mise.SourceAI, err.Error())
			log.Debug("ai fallback failed", "err", err)
		} else {
			return c.finish(ctx, st, draft)
		}
	}

	return nil, c.fail(ctx, st)
}

// freshRecord returns the unexpired result-cache record for the URL, or nil.
func (c *Crawler) freshRecord(ctx context.Context, st *crawlState) *mise.CacheRecord {
	if c.Results == nil {
		return nil
	}
	rec, err := c.Results.FindResult(ctx, st.url)
	if err != nil {
		if mise.ErrorCode(err) != mise.ENOTFOUND {
			c.logger().Warn("result cache lookup failed", "url", st.url, "err", err)
		}
		return nil
	}
	if rec.Expired(st.now) || (rec.Success && rec.Recipe == nil) {
		return nil
	}
	return rec
}

func (c *Crawler) findFingerprint(ctx context.Context, domain string) *mise.DomainFingerprint {
	if c.Fingerprints == nil || c.Fingerprint == nil || domain == "" {
		return nil
	}
	fp, err := c.Fingerprints.FindFingerprint(ctx, domain)
	if err != nil {
		if mise.ErrorCode(err) != mise.ENOTFOUND {
			c.logger().Warn("fingerprint lookup failed", "domain", domain, "err", err)
		}
		return nil
	}
	return fp
}

// extract tries the domain fingerprint and then, if it falls short, races
// the strategies over page. It returns nil when nothing valid was found.
func (c *Crawler) extract(ctx context.Context, st *crawlState, stage string, page *mise.Page) (*mise.RecipeDraft, error) {
	if st.fingerprint != nil {
		draft, err := c.Fingerprint.ExtractWithFingerprint(ctx, page, st.fingerprint)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			st.note(stageFingerprint, mise.SourceFingerprint, err.Error())
		case draft == nil:
			st.note(stageFingerprint, mise.SourceFingerprint, "no candidate")
		case countIngredientLike(draft) >= minIngredientLines:
			return draft, nil
		default:
			st.note(stageFingerprint, mise.SourceFingerprint, "fewer than 2 ingredient-like lines")
		}
	}

	res, err := race(ctx, stage, page, c.Strategies)
	if err != nil {
		return nil, err
	}
	st.trail = append(st.trail, res.trail...)
	st.rejected = append(st.rejected, res.rejected...)
	if res.winner == nil {
		return nil, nil
	}
	return res.winner.draft, nil
}

func (c *Crawler) extractWithAI(ctx context.Context, st *crawlState) (*mise.RecipeDraft, error) {
	page := st.lastPage()
	if page == nil {
		return nil, errors.New("no page to read")
	}
	text, err := c.pageText(page)
	if err != nil {
		return nil, err
	}
	req := mise.AIRequest{URL: st.url, Text: text, ImageURL: candidateImage(st.rejected)}
	if lang, ok := mise.DetectLanguageByMarkers(text); ok {
		req.Language = lang
	}

	timeout := c.AITimeout
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	draft, err := c.AI.ExtractRecipe(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(draft.Ingredients) == 0 {
		return nil, &mise.AIParseError{Reason: "no ingredients"}
	}
	draft.Source = mise.SourceAI
	return draft, nil
}

// finish enriches the winning draft, remembers the domain fingerprint and
// caches the recipe.
func (c *Crawler) finish(ctx context.Context, st *crawlState, draft *mise.RecipeDraft) (*mise.Recipe, error) {
	log := c.logger().With("url", st.url, "source", draft.Source)

	page := st.static
	if page == nil {
		page = st.rendered
	}
	if c.Enricher != nil && page != nil {
		if err := c.Enricher.Enrich(ctx, draft, page); err != nil {
			log.Warn("enrichment failed", "err", err)
		}
	}
	if draft.Instructions == nil {
		draft.Instructions = []string{}
	}

	c.rememberFingerprint(ctx, st, draft)

	r := &mise.Recipe{
		ID:          uuid.NewString(),
		SourceURL:   st.url,
		ExtractedAt: st.now,
		RecipeDraft: *draft,
	}
	if c.Results != nil {
		if err := c.Results.SaveResult(context.WithoutCancel(ctx), mise.NewSuccessRecord(st.url, r, st.now)); err != nil {
			log.Warn("caching result failed", "err", err)
		}
	}
	log.Info("recipe extracted", "ingredients", len(r.Ingredients), "instructions", len(r.Instructions))
	return r, nil
}

func (c *Crawler) rememberFingerprint(ctx context.Context, st *crawlState, draft *mise.RecipeDraft) {
	if c.Fingerprints == nil || st.domain == "" {
		return
	}
	if len(draft.Selectors) == 0 && len(draft.SchemaKeys) == 0 {
		return
	}
	source := draft.Source
	if source == mise.SourceFingerprint && st.fingerprint != nil {
		source = st.fingerprint.Source
	}
	fp := &mise.DomainFingerprint{
		Domain:      st.domain,
		Selectors:   draft.Selectors,
		SchemaKeys:  draft.SchemaKeys,
		Source:      source,
		LastUpdated: st.now,
	}
	if err := c.Fingerprints.UpsertFingerprint(context.WithoutCancel(ctx), fp); err != nil {
		c.logger().Warn("saving fingerprint failed", "domain", st.domain, "err", err)
	}
}

// fail builds the terminal error and caches it. A canceled crawl is not
// cached since it says nothing about the page.
func (c *Crawler) fail(ctx context.Context, st *crawlState) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	ef := &mise.ExtractionFailed{URL: st.url, Trail: st.trail}
	if c.Results != nil {
		if err := c.Results.SaveResult(context.WithoutCancel(ctx), mise.NewFailureRecord(st.url, ef.Error(), st.now)); err != nil {
			c.logger().Warn("caching failure failed", "url", st.url, "err", err)
		}
	}
	c.logger().Info("extraction failed", "url", st.url, "attempts", len(st.trail))
	return ef
}

func (c *Crawler) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
