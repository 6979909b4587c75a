// Package intel runs the console's intelligence scan: a paced sequence of
// progress labels followed by one grounded research call about a brief's
// client.
package intel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/muttaqilab/studio/internal/content"
)

// Steps are shown in order, one per pace interval, before the query.
var Steps = []string{
	"Initializing Deep Scan Protocol...",
	"Bypassing Surface-Level Corporate Masks...",
	"Extracting Market Authority Data...",
	"Correlating Identity Signals...",
	"Reconstructing Strategic Manifest...",
}

const (
	FailureText = "Scan Failed. Secure connection error."
	EmptyText   = "No intelligence recovered."

	DefaultPace = 800 * time.Millisecond
)

var errNoAnalyzer = errors.New("no analyzer configured")

// Prompt builds the research request for a brief.
func Prompt(b content.Brief) string {
	return fmt.Sprintf(
		"Research lead: %s from %s. Goals: %s. Provide a brutalist strategic analysis, market positioning, and core brand risks.",
		b.ClientName, b.CompanyName, b.ProjectGoals)
}

// Scan is the visible state of one scan.
type Scan struct {
	BriefID string
	Client  string
	Company string
	// Step indexes Steps while the scan is pacing; it equals len(Steps)
	// once the query is in flight.
	Step    int
	Done    bool
	Failed  bool
	Text    string
	HTML    string
	Sources []Source
	Started time.Time
}

// Label is the progress text to show while the scan runs.
func (s Scan) Label() string {
	if s.Step < len(Steps) {
		return Steps[s.Step]
	}
	return Steps[len(Steps)-1]
}

// Percent is the progress bar position. Only a finished scan reaches 100.
func (s Scan) Percent() int {
	if s.Done {
		return 100
	}
	return min((s.Step+1)*100/(len(Steps)+1), 99)
}

type run struct {
	session string
	scan    Scan
	cancel  context.CancelFunc
	done    chan struct{}
}

// Runner keeps at most one scan per console session.
type Runner struct {
	analyzer Analyzer
	pace     time.Duration
	log      *slog.Logger
	md       goldmark.Markdown

	// OnStep, when set, is called as each label is shown.
	OnStep func(session string, step int)

	mu    sync.Mutex
	scans map[string]*run
}

// NewRunner creates a runner. A nil analyzer makes every scan fail.
func NewRunner(a Analyzer, pace time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		analyzer: a,
		pace:     pace,
		log:      logger.With("component", "intel"),
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		scans:    make(map[string]*run),
	}
}

// Open starts a scan of b for session. If the session is already showing
// a scan of the same brief, that scan is returned unchanged; a scan of a
// different brief is cancelled first.
func (r *Runner) Open(session string, b content.Brief) Scan {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.scans[session]; ok {
		if cur.scan.BriefID == b.ID {
			return cur.scan.clone()
		}
		cur.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	rn := &run{
		session: session,
		scan: Scan{
			BriefID: b.ID,
			Client:  b.ClientName,
			Company: b.CompanyName,
			Started: time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.scans[session] = rn

	go r.execute(ctx, rn, Prompt(b))
	return rn.scan.clone()
}

// Close cancels and forgets the session's scan.
func (r *Runner) Close(session string) {
	r.mu.Lock()
	rn, ok := r.scans[session]
	delete(r.scans, session)
	r.mu.Unlock()

	if ok {
		rn.cancel()
	}
}

// Current returns the session's scan, if one is open.
func (r *Runner) Current(session string) (Scan, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn, ok := r.scans[session]
	if !ok {
		return Scan{}, false
	}
	return rn.scan.clone(), true
}

// Shutdown cancels every scan and waits for them to stop.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	runs := make([]*run, 0, len(r.scans))
	for sid, rn := range r.scans {
		runs = append(runs, rn)
		delete(r.scans, sid)
	}
	r.mu.Unlock()

	for _, rn := range runs {
		rn.cancel()
		<-rn.done
	}
}

func (r *Runner) execute(ctx context.Context, rn *run, prompt string) {
	defer close(rn.done)

	for i := range Steps {
		if !r.update(rn, func(s *Scan) { s.Step = i }) {
			return
		}
		if r.OnStep != nil {
			r.OnStep(rn.session, i)
		}

		t := time.NewTimer(r.pace)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
	r.update(rn, func(s *Scan) { s.Step = len(Steps) })

	var (
		res Result
		err error
	)
	if r.analyzer == nil {
		err = errNoAnalyzer
	} else {
		res, err = r.analyzer.Analyze(ctx, prompt)
	}

	// A cancelled scan publishes nothing.
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		r.log.Warn("scan failed", "session", rn.session, "brief", rn.scan.BriefID, "error", err)
		r.update(rn, func(s *Scan) {
			s.Done = true
			s.Failed = true
			s.Text = FailureText
			s.HTML = ""
			s.Sources = nil
		})
		return
	}

	text := res.Text
	if strings.TrimSpace(text) == "" {
		text = EmptyText
	}
	html := r.render(text)
	r.update(rn, func(s *Scan) {
		s.Done = true
		s.Text = text
		s.HTML = html
		s.Sources = res.Sources
	})
}

// update applies fn if rn is still the session's current scan.
func (r *Runner) update(rn *run, fn func(*Scan)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scans[rn.session] != rn {
		return false
	}
	fn(&rn.scan)
	return true
}

func (r *Runner) render(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		r.log.Warn("render analysis", "error", err)
		return ""
	}
	return buf.String()
}

func (s Scan) clone() Scan {
	s.Sources = append([]Source(nil), s.Sources...)
	return s
}
