package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/cvstudio/internal/models"
)

// A4 portrait in inches and in CSS pixels at 96dpi.
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
	a4WidthPx  = 794
	a4HeightPx = 1123
)

type Renderer interface {
	RenderPDF(ctx context.Context, cv models.FormattedCV) ([]byte, error)
	RenderPageImages(ctx context.Context, cv models.FormattedCV) ([][]byte, error)
}

// Chrome prints through a headless Chrome started per call.
type Chrome struct {
	execPath string
	assets   Assets
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewChrome(execPath string, assets Assets, log logrus.FieldLogger) *Chrome {
	return &Chrome{execPath: execPath, assets: assets, timeout: 60 * time.Second, log: log}
}

func (r *Chrome) RenderPDF(ctx context.Context, cv models.FormattedCV) ([]byte, error) {
	var pdf []byte
	err := r.run(ctx, cv, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(a4WidthIn).
			WithPaperHeight(a4HeightIn).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			WithPreferCSSPageSize(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// RenderPageImages captures each page box as a PNG, in page order.
func (r *Chrome) RenderPageImages(ctx context.Context, cv models.FormattedCV) ([][]byte, error) {
	pages := len(Layout(cv))
	shots := make([][]byte, pages)

	actions := make([]chromedp.Action, 0, pages)
	for i := range shots {
		actions = append(actions, chromedp.Screenshot(fmt.Sprintf("#page-%d", i+1), &shots[i], chromedp.ByQuery))
	}
	if err := r.run(ctx, cv, actions...); err != nil {
		return nil, err
	}
	return shots, nil
}

func (r *Chrome) run(ctx context.Context, cv models.FormattedCV, actions ...chromedp.Action) error {
	html, err := RenderHTML(cv, r.assets)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "cv-render-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0o600); err != nil {
		return err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(a4WidthPx, a4HeightPx),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	cctx, cancelTimeout := context.WithTimeout(cctx, r.timeout)
	defer cancelTimeout()

	var settled bool
	start := time.Now()
	steps := []chromedp.Action{
		chromedp.EmulateViewport(a4WidthPx, a4HeightPx),
		chromedp.Navigate("file://" + filepath.ToSlash(htmlPath)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// every <img> must have settled, loaded or failed, before capture
		chromedp.Poll(`Array.from(document.images).every(i => i.complete)`, &settled,
			chromedp.WithPollingTimeout(15*time.Second)),
	}
	if err := chromedp.Run(cctx, append(steps, actions...)...); err != nil {
		return fmt.Errorf("chrome: %w", err)
	}

	r.log.WithFields(logrus.Fields{"latency_ms": time.Since(start).Milliseconds()}).Debug("cv rendered")
	return nil
}
