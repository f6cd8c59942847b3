package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-jobharvest/internal/scraper"
)

// ErrLaunch wraps a browser startup failure. Fatal to the run.
var ErrLaunch = errors.New("browser launch failed")

// ErrNavigationTimeout marks a navigation that never reached a quiescent
// network state. Recoverable: the page usually has enough DOM to extract from,
// target sites keep long-polling requests open that never settle.
var ErrNavigationTimeout = errors.New("navigation timeout")

type Options struct {
	BrowserPath       string
	Headless          bool
	NavigationTimeout time.Duration
	ElementTimeout    time.Duration
	ScreenshotDir     string
}

// Launcher starts headless browser sessions.
type Launcher struct {
	opts Options
}

func NewLauncher(opts Options) *Launcher {
	if opts.NavigationTimeout == 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	if opts.ElementTimeout == 0 {
		opts.ElementTimeout = 3 * time.Second
	}
	return &Launcher{opts: opts}
}

// Open launches the browser and one page. The caller owns the session and
// must Close it on every exit path.
func (l *Launcher) Open(ctx context.Context) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: could not start driver: %v", ErrLaunch, err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
	}
	if l.opts.BrowserPath != "" {
		launchOpts.ExecutablePath = playwright.String(l.opts.BrowserPath)
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	page, err := b.NewPage()
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("%w: could not open page: %v", ErrLaunch, err)
	}

	return &Session{
		pw:      pw,
		browser: b,
		page:    page,
		opts:    l.opts,
		shots:   NewScreenshotDebugger(l.opts.ScreenshotDir),
	}, nil
}

// Session owns one browser process and one tab, exclusive to a single run.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	opts    Options
	shots   *ScreenshotDebugger

	closeOnce sync.Once
}

// Navigate drives the page to url and waits for the network to go quiet. A
// timeout returns ErrNavigationTimeout with whatever DOM state exists left on
// the page for best-effort extraction.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.opts.NavigationTimeout.Milliseconds())),
	})
	if err != nil {
		s.shots.CaptureAndLog(s.page, "navigation-degraded", fmt.Sprintf("navigation to %s did not settle", url))
		return fmt.Errorf("%w: %s: %v", ErrNavigationTimeout, url, err)
	}
	return nil
}

// Settle nudges the page the way the site expects a human to: a short pause,
// a scroll to trigger lazy-loaded result cards.
func (s *Session) Settle() {
	RandomDelay(300, 800)
	NudgeScroll(s.page)
}

// Document exposes the current page to the extraction engine.
func (s *Session) Document() scraper.Document {
	return &pageDocument{
		page:    s.page,
		timeout: float64(s.opts.ElementTimeout.Milliseconds()),
	}
}

// OpenDetail navigates the tab to a listing's detail page and returns its
// document. Navigation timeouts degrade the same way Navigate does.
func (s *Session) OpenDetail(ctx context.Context, url string) (scraper.Document, error) {
	err := s.Navigate(ctx, url)
	if err != nil && !errors.Is(err, ErrNavigationTimeout) {
		return nil, err
	}
	if err != nil {
		log.Printf("[browser] detail page %s did not settle, extracting anyway", url)
	}
	return s.Document(), nil
}

// Close tears down the page, browser and driver. Safe to call more than once;
// only the first call does the work. An orphaned browser process is a severe
// defect, so every run path must reach this.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := s.browser.Close(); err != nil {
			log.Printf("[browser] close error: %v", err)
		}
		if err := s.pw.Stop(); err != nil {
			log.Printf("[browser] driver stop error: %v", err)
		}
	})
}
