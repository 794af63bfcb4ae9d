package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	cdplog "github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/consolescan/consolescan/internal/model"
)

// Fallback viewport used when the configured window size cannot be
// parsed.
const (
	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
)

// Options configures a browser session.
type Options struct {
	// Headless runs the browser without a visible window.
	Headless bool

	// DisableGPU disables GPU acceleration.
	DisableGPU bool

	// NoSandbox bypasses the browser's OS sandbox.
	NoSandbox bool

	// DisableSharedMemory avoids /dev/shm for browser scratch space.
	DisableSharedMemory bool

	// WindowSize is the viewport as "width,height".
	WindowSize string

	// UserAgent is the identifying string the browser sends on page
	// requests. Empty keeps the browser default.
	UserAgent string

	// PageLoadTimeout bounds each navigation.
	PageLoadTimeout time.Duration

	// ScriptTimeout bounds the document-readiness poll that runs after
	// the load event.
	ScriptTimeout time.Duration

	// Threshold is the minimum severity captured. Records below it are
	// dropped at the event listener, before buffering.
	Threshold model.Severity

	// Logger receives session lifecycle and driver output. Nil falls
	// back to slog.Default.
	Logger *slog.Logger
}

// Session is one headless Chrome process reused across a whole run.
// Console records accumulate in an in-memory buffer between
// navigations; Navigate clears the buffer and Diagnostics drains it.
//
// Session is not safe for concurrent use. Pages are visited strictly
// sequentially, so the only concurrency is between the caller and the
// DevTools event listener, which the internal mutex covers.
type Session struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc

	pageLoadTimeout time.Duration
	scriptTimeout   time.Duration
	threshold       model.Severity
	logger          *slog.Logger

	mu      sync.Mutex
	records []model.Diagnostic
}

// NewSession launches the browser and attaches the console listeners.
// A non-nil error here means no URL can be processed at all; callers
// must treat it as fatal for the run.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 60 * time.Second
	}
	if opts.ScriptTimeout <= 0 {
		opts.ScriptTimeout = 30 * time.Second
	}

	width, height := parseWindowSize(opts.WindowSize)

	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.DisableGPU),
		chromedp.Flag("no-sandbox", opts.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", opts.DisableSharedMemory),
		chromedp.WindowSize(width, height),
	}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		execOpts = append(execOpts, chromedp.UserAgent(ua))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, execOpts...)

	// Route driver chatter to debug level so it only appears with
	// verbose logging enabled.
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp: " + fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug("chromedp error: " + fmt.Sprintf(format, args...))
		}),
	)

	s := &Session{
		browserCtx:      browserCtx,
		cancelBrowser:   cancelBrowser,
		cancelAlloc:     cancelAlloc,
		pageLoadTimeout: opts.PageLoadTimeout,
		scriptTimeout:   opts.ScriptTimeout,
		threshold:       opts.Threshold,
		logger:          logger,
	}

	chromedp.ListenTarget(browserCtx, s.handleEvent)

	// Starting the browser and enabling the event domains is the only
	// point where a missing or broken Chrome install surfaces.
	if err := chromedp.Run(browserCtx, runtime.Enable(), cdplog.Enable()); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser session: %w", err)
	}

	logger.Debug("browser session started",
		"headless", opts.Headless,
		"window", fmt.Sprintf("%dx%d", width, height),
		"threshold", s.threshold.String())
	return s, nil
}

// Navigate visits pageURL and waits for the load event, bounded by the
// page-load timeout. The diagnostic buffer is cleared first so that
// Diagnostics returns only records from this navigation.
func (s *Session) Navigate(ctx context.Context, pageURL string) error {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()

	navCtx, cancel := context.WithTimeout(s.browserCtx, s.pageLoadTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(navCtx, chromedp.Navigate(pageURL))
	if err == nil {
		s.waitDocumentReady()
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrNavigationTimeout, s.pageLoadTimeout)
	}
	return &SessionError{Op: "navigate", Err: err}
}

// waitDocumentReady polls document.readyState until "complete" or the
// script timeout elapses. Navigation already waited for the load
// event, so this only matters for pages that rewrite themselves during
// load; a timeout here is not an error, the page is simply read as-is.
func (s *Session) waitDocumentReady() {
	ctx, cancel := context.WithTimeout(s.browserCtx, s.scriptTimeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		var readyState string
		if err := chromedp.Run(ctx, chromedp.Evaluate(`document.readyState`, &readyState)); err != nil {
			s.logger.Debug("readiness poll stopped", "error", err)
			return
		}
		if readyState == "complete" {
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Diagnostics drains the records captured since the last Navigate.
// The error return exists for callers that treat retrieval failure as
// zero records; with in-process buffering it is always nil.
func (s *Session) Diagnostics(_ context.Context) ([]model.Diagnostic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := s.records
	s.records = nil
	return drained, nil
}

// Close shuts the browser down. Safe to call once on every exit path.
func (s *Session) Close() error {
	err := chromedp.Cancel(s.browserCtx)
	s.cancelBrowser()
	s.cancelAlloc()
	if err != nil {
		return fmt.Errorf("close browser session: %w", err)
	}
	return nil
}

// handleEvent maps DevTools events onto diagnostic records. Runs on
// chromedp's event goroutine, hence the locking in record.
func (s *Session) handleEvent(ev any) {
	switch ev := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		s.record(model.Diagnostic{
			Severity:  severityForAPIType(ev.Type),
			Message:   formatArgs(ev.Args),
			Timestamp: epochMillis(ev.Timestamp),
			Source:    "console",
		})
	case *runtime.EventExceptionThrown:
		s.record(model.Diagnostic{
			Severity:  model.SeveritySevere,
			Message:   exceptionMessage(ev.ExceptionDetails),
			Timestamp: epochMillis(ev.Timestamp),
			Source:    "exception",
		})
	case *cdplog.EventEntryAdded:
		if ev.Entry == nil {
			return
		}
		s.record(model.Diagnostic{
			Severity:  severityForLogLevel(ev.Entry.Level),
			Message:   ev.Entry.Text,
			Timestamp: epochMillis(ev.Entry.Timestamp),
			Source:    string(ev.Entry.Source),
		})
	}
}

// record buffers d if it meets the severity threshold.
func (s *Session) record(d model.Diagnostic) {
	if d.Severity < s.threshold {
		return
	}
	s.mu.Lock()
	s.records = append(s.records, d)
	s.mu.Unlock()
}

// severityForAPIType maps console API call types onto the severity
// scale. console.error and failed assertions are severe; warnings map
// to warning; everything else (log, info, debug, trace, dir, ...) is
// informational.
func severityForAPIType(t runtime.APIType) model.Severity {
	switch t {
	case runtime.APITypeError, runtime.APITypeAssert:
		return model.SeveritySevere
	case runtime.APITypeWarning:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// severityForLogLevel maps browser log entry levels (network failures,
// security warnings and the like) onto the severity scale.
func severityForLogLevel(l cdplog.Level) model.Severity {
	switch l {
	case cdplog.LevelError:
		return model.SeveritySevere
	case cdplog.LevelWarning:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// formatArgs renders console call arguments the way the console would:
// space-separated, strings unquoted, everything else in its JSON or
// described form.
func formatArgs(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if text := formatRemoteObject(arg); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// formatRemoteObject renders one console argument as text.
func formatRemoteObject(obj *runtime.RemoteObject) string {
	if obj == nil {
		return ""
	}
	if obj.Type == runtime.TypeString && len(obj.Value) > 0 {
		var s string
		if err := json.Unmarshal(obj.Value, &s); err == nil {
			return s
		}
	}
	if len(obj.Value) > 0 {
		return string(obj.Value)
	}
	if obj.Description != "" {
		return obj.Description
	}
	return string(obj.Type)
}

// exceptionMessage extracts a readable message from exception details.
// The exception object's description usually carries the message plus
// stack trace; the bare Text field ("Uncaught") is the fallback.
func exceptionMessage(d *runtime.ExceptionDetails) string {
	if d == nil {
		return "unknown exception"
	}
	if d.Exception != nil && d.Exception.Description != "" {
		return d.Exception.Description
	}
	msg := d.Text
	if d.URL != "" {
		msg = fmt.Sprintf("%s (%s:%d)", msg, d.URL, d.LineNumber)
	}
	return msg
}

// epochMillis converts a DevTools timestamp to epoch milliseconds,
// substituting the current time when the event carries none.
func epochMillis(ts *runtime.Timestamp) int64 {
	if ts == nil {
		return time.Now().UnixMilli()
	}
	return ts.Time().UnixMilli()
}

// parseWindowSize parses a "width,height" string, falling back to the
// 1920x1080 default on any malformed input.
func parseWindowSize(s string) (width, height int) {
	parts := strings.SplitN(strings.TrimSpace(s), ",", 2)
	if len(parts) != 2 {
		return defaultWindowWidth, defaultWindowHeight
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return defaultWindowWidth, defaultWindowHeight
	}
	return w, h
}
