package pdf

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"trackdechets/internal/config"
)

// A4 in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
	margin   = 0.4
)

const pageCloseTimeout = 5 * time.Second

// RodRenderer prints documents with a headless Chromium driven through the DevTools protocol.
// The browser is started on first use and shared by concurrent renders.
type RodRenderer struct {
	cfg config.PDFConfig
	log *zap.Logger
	// launch starts a local browser and returns its control URL and a function killing it.
	launch func() (string, func(), error)

	mu      sync.Mutex
	browser *rod.Browser
}

var _ Renderer = (*RodRenderer)(nil)

// NewRodRenderer returns a renderer using cfg. Nothing is launched until the first Render.
func NewRodRenderer(cfg config.PDFConfig, log *zap.Logger) *RodRenderer {
	return &RodRenderer{cfg: cfg, log: log.With(zap.String("component", "pdf")), launch: launchBrowser(cfg)}
}

func launchBrowser(cfg config.PDFConfig) func() (string, func(), error) {
	return func() (string, func(), error) {
		l := launcher.New().
			Headless(true).
			NoSandbox(true).
			Set(flags.Flag("disable-dev-shm-usage"))
		if cfg.BrowserBin != "" {
			l = l.Bin(cfg.BrowserBin)
		}
		u, err := l.Launch()
		if err != nil {
			l.Kill()
			return "", nil, err
		}
		return u, l.Kill, nil
	}
}

func (r *RodRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	controlURL := r.cfg.ControlURL
	var kill func()
	if controlURL == "" {
		u, k, err := r.launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL, kill = u, k
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		// A browser we launched would otherwise outlive the failed connection.
		if kill != nil {
			kill()
		}
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	r.log.Info("browser_connected", zap.String("control_url", controlURL))
	r.browser = b
	return b, nil
}

// Render prints data to an A4 PDF.
func (r *RodRenderer) Render(ctx context.Context, data *Data) ([]byte, error) {
	html, err := HTML(data)
	if err != nil {
		return nil, err
	}
	b, err := r.connect()
	if err != nil {
		return nil, err
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		// ctx may already be done after a timeout; the tab is closed regardless.
		closeCtx, cancel := detached(ctx)
		defer cancel()
		if err := page.Context(closeCtx).Close(); err != nil {
			r.log.Warn("page_close_failed", zap.Error(err))
		}
	}()

	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      gson.Num(a4Width),
		PaperHeight:     gson.Num(a4Height),
		MarginTop:       gson.Num(margin),
		MarginBottom:    gson.Num(margin),
		MarginLeft:      gson.Num(margin),
		MarginRight:     gson.Num(margin),
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	out, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return out, nil
}

// detached returns a context carrying the values of ctx but not its cancellation,
// bounded by pageCloseTimeout.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), pageCloseTimeout)
}

// Close shuts the browser down if it was started.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
