package heuristic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/mdiasanta/req-hunter/internal/scraper"
)

const (
	viewportWidth  = 1280
	viewportHeight = 900
	// quiet period that counts as "network idle"
	requestIdleWindow = 500 * time.Millisecond
)

// RodBrowser launches a dedicated Chromium per session through go-rod.
type RodBrowser struct {
	Headless  bool
	Bin       string // empty lets rod find or download a browser
	Timeout   time.Duration
	UserAgent string
}

// NewRodBrowser builds a RodBrowser from scraper settings.
func NewRodBrowser(settings scraper.Settings) *RodBrowser {
	ua := settings.UserAgent
	if ua == "" {
		ua = scraper.DefaultUserAgent
	}
	return &RodBrowser{
		Headless:  settings.Headless,
		Bin:       settings.BrowserBin,
		Timeout:   settings.Timeout,
		UserAgent: ua,
	}
}

// NewSession launches Chromium, opens an incognito context and a single tab in it.
func (b *RodBrowser) NewSession(ctx context.Context) (Page, error) {
	l := launcher.New().
		Context(ctx).
		Headless(b.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled")
	if b.Bin != "" {
		l = l.Bin(b.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}

	session := &rodPage{launcher: l, browser: browser, timeout: b.Timeout}

	incognito, err := browser.Incognito()
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("create incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	session.page = page

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.UserAgent}); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("set user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return session, nil
}

type rodPage struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

func (p *rodPage) Navigate(url string) error {
	page := p.page.Timeout(p.timeout)
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (p *rodPage) WaitSettled(timeout time.Duration) error {
	page := p.page.Timeout(timeout)
	defer page.CancelTimeout()

	wait := page.WaitRequestIdle(requestIdleWindow, nil, nil, nil)
	wait()
	return page.GetContext().Err()
}

func (p *rodPage) URL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *rodPage) Title() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (p *rodPage) BodyText() (string, error) {
	res, err := p.eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *rodPage) Links() ([]Link, error) {
	res, err := p.eval(`() => Array.from(document.querySelectorAll("a[href]")).map(a => ({
		href: a.getAttribute("href") || "",
		text: a.innerText || "",
	}))`)
	if err != nil {
		return nil, err
	}
	items := res.Value.Arr()
	links := make([]Link, 0, len(items))
	for _, item := range items {
		links = append(links, Link{Href: item.Get("href").Str(), Text: item.Get("text").Str()})
	}
	return links, nil
}

// findNextJS locates the visible "Next" pagination control, or null.
const findNextJS = `() => {
	const visible = el => !!(el.offsetParent || el.getClientRects().length);
	const isNext = el => {
		const rel = (el.getAttribute("rel") || "").toLowerCase().split(/\s+/);
		if (rel.includes("next")) return true;
		const label = ((el.getAttribute("aria-label") || "") + " " + (el.getAttribute("title") || "")).toLowerCase();
		if (/\bnext\b/.test(label)) return true;
		const text = (el.innerText || "").trim().toLowerCase();
		return ["next", "next page", "next ›", "next »", "›", "»", ">"].includes(text);
	};
	const els = document.querySelectorAll("a, button, [role=button], [role=link]");
	return Array.from(els).find(el => visible(el) && isNext(el)) || null;
}`

func (p *rodPage) Next() (NextState, error) {
	res, err := p.eval(`() => {
		const el = (` + findNextJS + `)();
		if (!el) return "absent";
		const disabled = el.disabled === true ||
			el.getAttribute("aria-disabled") === "true" ||
			/\bdisabled\b/i.test(String(el.className || ""));
		return disabled ? "disabled" : "enabled";
	}`)
	if err != nil {
		return NextAbsent, err
	}
	switch res.Value.Str() {
	case "enabled":
		return NextEnabled, nil
	case "disabled":
		return NextDisabled, nil
	default:
		return NextAbsent, nil
	}
}

func (p *rodPage) ClickNext() error {
	res, err := p.eval(`() => {
		const el = (` + findNextJS + `)();
		if (!el) return false;
		el.click();
		return true;
	}`)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return errors.New("next control disappeared")
	}
	return nil
}

func (p *rodPage) ActiveToken() (string, error) {
	res, err := p.eval(`() => {
		const selectors = [
			"[aria-current=page]",
			".pagination .active",
			".pagination .current",
			".pager .active",
			"[class*=pagination] [class*=active]",
			"[class*=pagination] [class*=current]",
		];
		for (const sel of selectors) {
			const el = document.querySelector(sel);
			const text = el ? (el.innerText || el.textContent || "").trim() : "";
			if (text) return text;
		}
		return location.href;
	}`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *rodPage) Screenshot() ([]byte, error) {
	return p.page.Screenshot(true, nil)
}

// Close closes the tab, the browser and kills the Chromium process.
func (p *rodPage) Close() error {
	var errs []error
	if p.page != nil {
		if err := p.page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	p.launcher.Kill()
	p.launcher.Cleanup()
	return errors.Join(errs...)
}

func (p *rodPage) eval(js string) (*proto.RuntimeRemoteObject, error) {
	page := p.page.Timeout(p.timeout)
	defer page.CancelTimeout()
	return page.Eval(js)
}
