// Package ingest sequences one ingestion run: pick a source target, open a
// browser session, dismiss consent, navigate, extract, persist. Stage
// failures become a reported outcome, never a process crash.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-jobharvest/internal/browser"
	"go-jobharvest/internal/events"
	"go-jobharvest/internal/models"
	"go-jobharvest/internal/scraper"
)

// Store is the slice of persistence the orchestrator needs.
type Store interface {
	PickActiveSource(ctx context.Context) (*models.SourceTarget, error)
	TouchSourceUsed(ctx context.Context, id string) error
	InsertListing(ctx context.Context, l models.JobListing) (inserted bool, err error)
}

// Session is one open browser, exclusively owned by a single run.
type Session interface {
	Navigate(ctx context.Context, url string) error
	DismissConsent(timeout time.Duration)
	Settle()
	Document() scraper.Document
	OpenDetail(ctx context.Context, url string) (scraper.Document, error)
	Close()
}

// Browser opens sessions.
type Browser interface {
	Open(ctx context.Context) (Session, error)
}

// NewPlaywrightBrowser adapts the concrete launcher to the Browser interface.
func NewPlaywrightBrowser(l *browser.Launcher) Browser {
	return launcherBrowser{l: l}
}

type launcherBrowser struct {
	l *browser.Launcher
}

func (b launcherBrowser) Open(ctx context.Context) (Session, error) {
	s, err := b.l.Open(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type Orchestrator struct {
	store          Store
	browser        Browser
	engine         *scraper.Engine
	consentTimeout time.Duration
}

func New(store Store, b Browser, engine *scraper.Engine) *Orchestrator {
	return &Orchestrator{
		store:          store,
		browser:        b,
		engine:         engine,
		consentTimeout: 5 * time.Second,
	}
}

// Run executes one scheduled batch ingestion and always returns a RunResult;
// fatal stage failures come back as Success=false, not as an error the caller
// could accidentally let crash the process.
func (o *Orchestrator) Run(ctx context.Context) models.RunResult {
	//Idle -> TargetSelected
	target, err := o.store.PickActiveSource(ctx)
	if err != nil {
		return fail(nil, fmt.Sprintf("selecting target: %v", err))
	}
	log.Printf("[ingest] target selected: %s", target.URL)

	//Stamp usage before scraping so a crash mid-run is still visible
	if err := o.store.TouchSourceUsed(ctx, target.ID); err != nil {
		log.Printf("[ingest] could not stamp last_used for %s: %v", target.ID, err)
	}

	//TargetSelected -> SessionOpen
	session, err := o.browser.Open(ctx)
	if err != nil {
		return fail(target, fmt.Sprintf("launching browser: %v", err))
	}
	defer session.Close()

	//SessionOpen -> Navigated. A navigation timeout is absorbed: extraction
	//runs against whatever DOM state exists.
	if err := session.Navigate(ctx, target.URL); err != nil {
		log.Printf("[ingest] navigation degraded, continuing: %v", err)
	}
	session.DismissConsent(o.consentTimeout)
	session.Settle()

	//Navigated -> Extracted
	listings, err := o.extractBatch(session)
	if err != nil {
		return fail(target, fmt.Sprintf("extraction failed: %v", err))
	}
	log.Printf("[ingest] extracted %d candidate(s)", len(listings))

	//Extracted -> Persisted. Each record is offered independently; one bad
	//record never sinks the batch.
	var newListings []models.JobListing
	for _, l := range listings {
		inserted, err := o.store.InsertListing(ctx, l)
		if err != nil {
			log.Printf("[ingest] could not persist %s: %v", l.Link, err)
			continue
		}
		if inserted {
			newListings = append(newListings, l)
		}
	}

	//Persisted -> Done
	log.Printf("[ingest] run done: found=%d saved=%d", len(listings), len(newListings))
	return models.RunResult{
		Target:      target,
		JobsFound:   len(listings),
		JobsSaved:   len(newListings),
		Success:     true,
		NewListings: newListings,
	}
}

// RunSingle executes interactive single-job mode, streaming progress into the
// reporter. It emits at most one data event and exactly one terminal event,
// and the browser session is torn down on every path out.
func (o *Orchestrator) RunSingle(ctx context.Context, rep events.Reporter) {
	defer func() {
		if r := recover(); r != nil {
			rep.Error(fmt.Sprintf("scrape failed: %v", r))
		}
	}()

	rep.Step(1, "Selecting source target")
	target, err := o.store.PickActiveSource(ctx)
	if err != nil {
		rep.Error(fmt.Sprintf("selecting target: %v", err))
		return
	}
	if err := o.store.TouchSourceUsed(ctx, target.ID); err != nil {
		log.Printf("[ingest] could not stamp last_used for %s: %v", target.ID, err)
	}

	rep.Step(2, "Launching browser")
	session, err := o.browser.Open(ctx)
	if err != nil {
		rep.Error(fmt.Sprintf("launching browser: %v", err))
		return
	}
	defer session.Close()

	rep.Step(3, fmt.Sprintf("Navigating to %s", target.URL))
	if err := session.Navigate(ctx, target.URL); err != nil {
		log.Printf("[ingest] navigation degraded, continuing: %v", err)
	}
	session.DismissConsent(o.consentTimeout)
	session.Settle()

	rep.Step(4, "Extracting first result")
	candidate, ok := o.engine.ExtractFirst(session.Document())
	if !ok {
		rep.Error("no job results found on the page")
		return
	}

	rep.Step(5, "Opening detail page")
	doc, err := session.OpenDetail(ctx, candidate.Link)
	if err != nil {
		rep.Error(fmt.Sprintf("opening detail page: %v", err))
		return
	}
	if desc := o.engine.ExtractDetail(doc); desc != "" {
		candidate.Description = desc
	}

	rep.Data(candidate)
	rep.Complete(fmt.Sprintf("Scraped %q", candidate.Title))
}

// extractBatch shields the run from a total-extraction blowup: a panic inside
// the engine or the page adapter aborts this run with a report, with anything
// already persisted left intact.
func (o *Orchestrator) extractBatch(session Session) (listings []models.JobListing, err error) {
	defer func() {
		if r := recover(); r != nil {
			listings = nil
			err = fmt.Errorf("extraction panic: %v", r)
		}
	}()
	return o.engine.ExtractBatch(session.Document()), nil
}

func fail(target *models.SourceTarget, msg string) models.RunResult {
	log.Printf("[ingest] run aborted: %s", msg)
	return models.RunResult{
		Target:  target,
		Success: false,
		Error:   msg,
	}
}
