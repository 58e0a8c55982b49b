package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/crawl"
)

// Run executes the crawl command: the recipe is printed as indented JSON.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	r, err := deps.Crawler.Crawl(deps.Ctx, c.URL)
	if werr := waitImages(deps); werr != nil {
		deps.Logger.Warn("image download failed", "err", werr)
	}
	if err != nil {
		reportFailure(deps, err)
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// reportFailure lists the attempts of an exhausted crawl on stderr. Other
// errors are left to the caller.
func reportFailure(deps *Dependencies, err error) {
	var xe *mise.ExtractionFailed
	if errors.As(err, &xe) {
		fmt.Fprintf(deps.Stderr, "No recipe found at %s. Attempts:\n%s", xe.URL, crawl.FormatTrail(xe.Trail))
	}
}

func waitImages(deps *Dependencies) error {
	if deps.Images == nil {
		return nil
	}
	return deps.Images.Wait()
}
