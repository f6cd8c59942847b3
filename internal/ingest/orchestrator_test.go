package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobharvest/internal/database"
	"go-jobharvest/internal/events"
	"go-jobharvest/internal/models"
	"go-jobharvest/internal/scraper"
)

// ---- fakes ----

type stubNode struct {
	title string
	link  string
}

func (n stubNode) Text(selector string) (string, bool) {
	if selector == "a" {
		return n.title, true
	}
	return "", false
}

func (n stubNode) Attr(selector, name string) (string, bool) {
	if selector == "a" && name == "href" {
		return n.link, true
	}
	return "", false
}

type stubDoc struct {
	nodes []scraper.Node
	inner map[string]string
	body  string
	base  string
}

func (d stubDoc) QueryAll(selector string) ([]scraper.Node, error) {
	if selector == ".card" {
		return d.nodes, nil
	}
	return nil, nil
}

func (d stubDoc) InnerText(selector string) (string, bool) {
	v, ok := d.inner[selector]
	return v, ok
}

func (d stubDoc) BodyText() (string, error) { return d.body, nil }
func (d stubDoc) BaseURL() string           { return d.base }

type fakeStore struct {
	target    *models.SourceTarget
	pickErr   error
	seen      map[string]bool
	failLinks map[string]bool
	calls     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		target: &models.SourceTarget{
			ID:     "src-1",
			URL:    "https://jobs.example.com/search",
			Active: true,
		},
		seen:      map[string]bool{},
		failLinks: map[string]bool{},
	}
}

func (s *fakeStore) PickActiveSource(ctx context.Context) (*models.SourceTarget, error) {
	s.calls = append(s.calls, "pick")
	if s.pickErr != nil {
		return nil, s.pickErr
	}
	return s.target, nil
}

func (s *fakeStore) TouchSourceUsed(ctx context.Context, id string) error {
	s.calls = append(s.calls, "touch:"+id)
	return nil
}

func (s *fakeStore) InsertListing(ctx context.Context, l models.JobListing) (bool, error) {
	s.calls = append(s.calls, "insert:"+l.Link)
	if s.failLinks[l.Link] {
		return false, errors.New("constraint violation")
	}
	if s.seen[l.Link] {
		return false, nil
	}
	s.seen[l.Link] = true
	return true, nil
}

type fakeSession struct {
	doc        scraper.Document
	detailDoc  scraper.Document
	navErr     error
	detailErr  error
	panicOnDoc bool
	closed     bool
	navigated  []string
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return s.navErr
}

func (s *fakeSession) DismissConsent(timeout time.Duration) {}
func (s *fakeSession) Settle()                              {}

func (s *fakeSession) Document() scraper.Document {
	if s.panicOnDoc {
		panic("page adapter blew up")
	}
	return s.doc
}

func (s *fakeSession) OpenDetail(ctx context.Context, url string) (scraper.Document, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return s.detailDoc, nil
}

func (s *fakeSession) Close() { s.closed = true }

type fakeBrowser struct {
	session *fakeSession
	openErr error
	opens   int
}

func (b *fakeBrowser) Open(ctx context.Context) (Session, error) {
	b.opens++
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.session, nil
}

func testEngine() *scraper.Engine {
	return scraper.NewEngine(scraper.Catalog{
		Containers:    []string{".card"},
		Title:         []scraper.FieldRule{{Selector: "a"}},
		Link:          []scraper.FieldRule{{Selector: "a", Attr: "href"}},
		DetailContent: []string{".desc"},
	}, 50, 500)
}

func resultsDoc(n int) stubDoc {
	doc := stubDoc{base: "https://jobs.example.com/search"}
	links := []string{
		"https://jobs.example.com/jobs/1",
		"https://jobs.example.com/jobs/2",
		"https://jobs.example.com/jobs/3",
	}
	titles := []string{"Go Developer", "Backend Engineer", "SRE"}
	for i := 0; i < n; i++ {
		doc.nodes = append(doc.nodes, stubNode{title: titles[i], link: links[i]})
	}
	return doc
}

// ---- batch mode ----

func TestRun_HappyPathAndDedupIdempotence(t *testing.T) {
	store := newFakeStore()
	session := &fakeSession{doc: resultsDoc(3)}
	b := &fakeBrowser{session: session}
	orch := New(store, b, testEngine())

	first := orch.Run(context.Background())
	require.True(t, first.Success)
	assert.Equal(t, 3, first.JobsFound)
	assert.Equal(t, 3, first.JobsSaved)
	assert.True(t, session.closed)

	//the newly stored records ride along for notifications
	require.Len(t, first.NewListings, 3)
	assert.Equal(t, "Go Developer", first.NewListings[0].Title)

	//same page again: everything found, nothing newly stored
	session2 := &fakeSession{doc: resultsDoc(3)}
	b.session = session2
	second := orch.Run(context.Background())
	require.True(t, second.Success)
	assert.Equal(t, 3, second.JobsFound)
	assert.Equal(t, 0, second.JobsSaved)
	assert.Empty(t, second.NewListings)
	assert.True(t, session2.closed)
}

func TestRun_NoActiveTargetsSkipsBrowserLaunch(t *testing.T) {
	store := newFakeStore()
	store.pickErr = database.ErrNoActiveSources
	b := &fakeBrowser{session: &fakeSession{}}
	orch := New(store, b, testEngine())

	result := orch.Run(context.Background())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no active source targets")
	assert.Equal(t, 0, b.opens, "no browser may be launched without a target")
}

func TestRun_LaunchFailureAborts(t *testing.T) {
	store := newFakeStore()
	b := &fakeBrowser{openErr: errors.New("chromium not found")}
	orch := New(store, b, testEngine())

	result := orch.Run(context.Background())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "launching browser")
}

func TestRun_NavigationTimeoutDegradesButExtracts(t *testing.T) {
	store := newFakeStore()
	session := &fakeSession{
		doc:    resultsDoc(2),
		navErr: errors.New("navigation timeout: page never settled"),
	}
	orch := New(store, &fakeBrowser{session: session}, testEngine())

	result := orch.Run(context.Background())

	require.True(t, result.Success, "a navigation timeout must not abort the run")
	assert.Equal(t, 2, result.JobsFound)
	assert.True(t, session.closed)
}

func TestRun_ExtractionPanicAbortsWithReportAndCloses(t *testing.T) {
	store := newFakeStore()
	session := &fakeSession{panicOnDoc: true}
	orch := New(store, &fakeBrowser{session: session}, testEngine())

	result := orch.Run(context.Background())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "extraction")
	assert.True(t, session.closed, "browser must be closed on the panic path")
}

func TestRun_PerRecordPersistFailureIsSkipped(t *testing.T) {
	store := newFakeStore()
	store.failLinks["https://jobs.example.com/jobs/2"] = true
	session := &fakeSession{doc: resultsDoc(3)}
	orch := New(store, &fakeBrowser{session: session}, testEngine())

	result := orch.Run(context.Background())

	require.True(t, result.Success)
	assert.Equal(t, 3, result.JobsFound)
	assert.Equal(t, 2, result.JobsSaved)
}

func TestRun_LastUsedStampedBeforeScraping(t *testing.T) {
	store := newFakeStore()
	session := &fakeSession{doc: resultsDoc(1)}
	orch := New(store, &fakeBrowser{session: session}, testEngine())

	orch.Run(context.Background())

	require.GreaterOrEqual(t, len(store.calls), 2)
	assert.Equal(t, "pick", store.calls[0])
	assert.Equal(t, "touch:src-1", store.calls[1])
}

// ---- single-job mode ----

func collect(r *events.StreamReporter) []events.Event {
	var out []events.Event
	for ev := range r.Events() {
		out = append(out, ev)
	}
	return out
}

func TestRunSingle_EventOrdering(t *testing.T) {
	store := newFakeStore()
	detail := strings.Repeat("We are looking for a Go engineer. ", 5)
	session := &fakeSession{
		doc:       resultsDoc(2),
		detailDoc: stubDoc{inner: map[string]string{".desc": detail}},
	}
	orch := New(store, &fakeBrowser{session: session}, testEngine())

	rep := events.NewStreamReporter(32)
	orch.RunSingle(context.Background(), rep)
	got := collect(rep)

	require.NotEmpty(t, got)
	//one or more steps, then exactly one data, then exactly one complete
	i := 0
	for ; i < len(got) && got[i].Type == events.TypeStep; i++ {
	}
	assert.Greater(t, i, 0, "at least one step event")
	require.Equal(t, events.TypeData, got[i].Type)
	require.NotNil(t, got[i].Listing)
	assert.Equal(t, "Go Developer", got[i].Listing.Title)
	assert.Contains(t, got[i].Listing.Description, "Go engineer")
	require.Equal(t, events.TypeComplete, got[i+1].Type)
	assert.Equal(t, len(got), i+2, "nothing may follow complete")
	assert.True(t, session.closed)
}

func TestRunSingle_NoResultsEndsWithError(t *testing.T) {
	store := newFakeStore()
	session := &fakeSession{doc: stubDoc{}}
	orch := New(store, &fakeBrowser{session: session}, testEngine())

	rep := events.NewStreamReporter(32)
	orch.RunSingle(context.Background(), rep)
	got := collect(rep)

	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.Equal(t, events.TypeError, last.Type)
	for _, ev := range got[:len(got)-1] {
		assert.Equal(t, events.TypeStep, ev.Type)
	}
	assert.True(t, session.closed)
}

func TestRunSingle_LaunchFailureEndsWithError(t *testing.T) {
	store := newFakeStore()
	orch := New(store, &fakeBrowser{openErr: errors.New("chromium not found")}, testEngine())

	rep := events.NewStreamReporter(32)
	orch.RunSingle(context.Background(), rep)
	got := collect(rep)

	require.NotEmpty(t, got)
	assert.Equal(t, events.TypeError, got[len(got)-1].Type)
	for _, ev := range got {
		assert.NotEqual(t, events.TypeData, ev.Type)
	}
}
