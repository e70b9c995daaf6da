// Package render drives a shared headless-Chrome process (via go-rod) to turn
// print markup into PDF bytes. The browser is expensive to boot, so exactly
// one process is launched lazily and reused for every render call; each call
// gets its own page, so concurrent renders do not block each other.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// ErrRenderTimeout is returned when content does not settle within the bound.
// The shared browser stays healthy; only the offending render call fails.
var ErrRenderTimeout = errors.New("render timed out waiting for content to settle")

// ErrEngineStartup wraps a failed browser launch. The launch is retried on the
// next render call, so a transient failure does not poison the engine.
var ErrEngineStartup = errors.New("render engine failed to start")

const (
	// defaultSettleDelay gives images time to finish decoding after the page
	// reports network idle.
	defaultSettleDelay = 500 * time.Millisecond
	// defaultRenderTimeout bounds one whole render call.
	defaultRenderTimeout = 60 * time.Second
	// networkIdleWindow is how long the page must stay quiet to count as idle.
	networkIdleWindow = 300 * time.Millisecond
)

// Engine owns the headless browser process.
type Engine struct {
	settleDelay   time.Duration
	renderTimeout time.Duration

	mu      sync.Mutex
	browser *rod.Browser
}

// NewEngine creates an engine. The browser is not launched until the first
// render call. Zero durations fall back to the defaults.
func NewEngine(settleDelay, renderTimeout time.Duration) *Engine {
	if settleDelay <= 0 {
		settleDelay = defaultSettleDelay
	}
	if renderTimeout <= 0 {
		renderTimeout = defaultRenderTimeout
	}
	return &Engine{
		settleDelay:   settleDelay,
		renderTimeout: renderTimeout,
	}
}

// ensureStarted launches the browser on first use and returns the shared
// handle. A failed launch is not cached: the next call tries again.
func (e *Engine) ensureStarted() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	logrus.Info("launching headless render engine")
	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineStartup, err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineStartup, err)
	}

	e.browser = browser
	return browser, nil
}

// RenderToPDF loads the markup document into a fresh page, waits for content
// to settle, and rasterizes it honoring the options. The markup's own @page
// size directive wins over the nominal paper format when they conflict.
func (e *Engine) RenderToPDF(ctx context.Context, markup string, opts PDFOptions) ([]byte, error) {
	browser, err := e.ensureStarted()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.renderTimeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("creating render page: %w", err)
	}
	defer func() {
		// Detach from the render context before closing: it may already be
		// done, and the target must still be released from the shared browser.
		if err := page.Context(context.Background()).Close(); err != nil {
			logrus.WithError(err).Warn("failed to close render page")
		}
	}()
	page = page.Context(ctx)

	if err := page.SetDocumentContent(markup); err != nil {
		return nil, timeoutOr(ctx, fmt.Errorf("loading markup document: %w", err))
	}
	if err := page.WaitLoad(); err != nil {
		return nil, timeoutOr(ctx, fmt.Errorf("waiting for document load: %w", err))
	}
	// Network idle plus a fixed settle delay lets photos finish decoding.
	waitIdle := page.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	waitIdle()
	if err := sleepCtx(ctx, e.settleDelay); err != nil {
		return nil, timeoutOr(ctx, err)
	}

	stream, err := page.PDF(printRequest(opts))
	if err != nil {
		return nil, timeoutOr(ctx, fmt.Errorf("printing to PDF: %w", err))
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, timeoutOr(ctx, fmt.Errorf("reading PDF stream: %w", err))
	}
	return pdf, nil
}

// Shutdown tears the browser process down. It is the only way the process
// exits and is normally called once at application shutdown, never mid-task.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser == nil {
		return
	}
	if err := e.browser.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close render engine")
	}
	e.browser = nil
	logrus.Info("render engine stopped")
}

// printRequest maps PDFOptions onto the devtools print call.
func printRequest(opts PDFOptions) *proto.PagePrintToPDF {
	w, h := opts.PaperSizeMM()
	return &proto.PagePrintToPDF{
		Landscape:         opts.Orientation == OrientationLandscape,
		PrintBackground:   opts.IncludeBackground,
		PaperWidth:        f64(mmToInches(w)),
		PaperHeight:       f64(mmToInches(h)),
		MarginTop:         f64(mmToInches(opts.Margins.TopMM)),
		MarginBottom:      f64(mmToInches(opts.Margins.BottomMM)),
		MarginLeft:        f64(mmToInches(opts.Margins.LeftMM)),
		MarginRight:       f64(mmToInches(opts.Margins.RightMM)),
		PreferCSSPageSize: true,
	}
}

// timeoutOr converts a context-deadline failure into ErrRenderTimeout.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrRenderTimeout
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func f64(v float64) *float64 {
	return &v
}
