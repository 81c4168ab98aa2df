// Package automation drives a headless browser to turn picklist pages into PDFs.
package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const defaultTimeout = 60 * time.Second

// ErrEmptyPage is returned when there is no HTML to print.
var ErrEmptyPage = errors.New("page content is empty")

// Printer renders HTML to PDF with Chrome.
type Printer struct {
	// BrowserBin is the Chrome binary; empty lets rod find or download one.
	BrowserBin string
	Timeout    time.Duration
	Landscape  bool
	log        *zap.Logger
}

// NewPrinter returns a printer using bin, or rod's own browser when bin is empty.
func NewPrinter(bin string, log *zap.Logger) *Printer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Printer{BrowserBin: bin, Timeout: defaultTimeout, Landscape: true, log: log.Named("printer")}
}

// PrintHTML loads html into a fresh headless browser and prints it.
func (p *Printer) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyPage
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	l := launcher.New().Context(ctx).Headless(true).Leakless(false)
	if p.BrowserBin != "" {
		l = l.Bin(p.BrowserBin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("failed to load page content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("page did not finish loading: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:         p.Landscape,
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print PDF: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("generated PDF is empty")
	}

	p.log.Info("PDF rendered", zap.Int("bytes", len(data)), zap.Duration("duration", time.Since(start)))
	return data, nil
}
