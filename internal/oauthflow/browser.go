package oauthflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// BrowserOpener shows the consent page in a visible Chrome app window of a
// fixed size, driven over the DevTools protocol.
type BrowserOpener struct {
	Bin    string // empty uses the browser rod finds or downloads
	Width  int
	Height int
	Log    *zap.Logger
}

func NewBrowserOpener(bin string, log *zap.Logger) *BrowserOpener {
	return &BrowserOpener{Bin: bin, Width: 520, Height: 680, Log: log}
}

func (o *BrowserOpener) Open(ctx context.Context, url string) (Window, error) {
	l := launcher.New().
		Headless(false).
		Set(flags.Flag("app"), url).
		Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", o.Width, o.Height)).
		Set(flags.Flag("no-first-run")).
		Set(flags.Flag("no-default-browser-check"))
	if o.Bin != "" {
		l = l.Bin(o.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	// the handshake outlives the open call's context
	browser = browser.Context(context.Background())

	pages, err := browser.Pages()
	if err == nil && len(pages) == 0 {
		err = errors.New("no page was created")
	}
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("consent window did not appear: %w", err)
	}

	o.Log.Debug("Opened consent window", zap.String("target", string(pages.First().TargetID)))
	return &browserWindow{launcher: l, browser: browser, target: pages.First().TargetID}, nil
}

type browserWindow struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	target   proto.TargetTargetID
	once     sync.Once
}

// Closed reports true once the target is gone, including when the user quit
// the whole browser.
func (w *browserWindow) Closed() bool {
	_, err := proto.TargetGetTargetInfo{TargetID: w.target}.Call(w.browser)
	return err != nil
}

func (w *browserWindow) Close() error {
	w.once.Do(func() {
		// fails when the user already quit the browser
		_ = w.browser.Close()
		w.launcher.Kill()
		w.launcher.Cleanup()
	})
	return nil
}
