package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// PageRenderer returns the HTML of a page after client-side rendering
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// RodRenderer renders pages in a headless browser launched per call
type RodRenderer struct {
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewRodRenderer creates a new RodRenderer
func NewRodRenderer(timeout time.Duration, logger logrus.FieldLogger) *RodRenderer {
	return &RodRenderer{
		timeout: timeout,
		log:     logger.WithField("component", "rod_renderer"),
	}
}

// Render loads url and returns the rendered document HTML. Hosts that resolve
// to non-public addresses are never opened.
func (r *RodRenderer) Render(ctx context.Context, url string) (rendered string, err error) {
	log := r.log.WithField("url", url)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := resolvesToPublicHost(ctx, url); err != nil {
		return "", err
	}

	path, exists := launcher.LookPath()
	if !exists {
		return "", errors.New("rod browser dependency not found")
	}
	l := launcher.New().Context(ctx).Bin(path).Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err = browser.Connect(); err != nil {
		l.Kill()
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Error closing rod browser instance")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}

	page = page.Context(ctx)

	if err = page.WaitLoad(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("rendering timed out for %s: %w", url, ctx.Err())
		}
		return "", fmt.Errorf("failed waiting for page load: %w", err)
	}

	rendered, err = page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read rendered html: %w", err)
	}
	log.Debug("Page rendered")
	return rendered, nil
}
