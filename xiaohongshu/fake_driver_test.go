package xiaohongshu

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/xhs-publisher/browser"
	"github.com/xhs-publisher/config"
	"github.com/xhs-publisher/session"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDriver 按脚本响应的浏览器
type fakeDriver struct {
	mu sync.Mutex

	url      string
	navigate func(url string) (string, error)
	visible  map[string]bool
	attached map[string]bool
	fail     map[string]error

	cookies []session.Cookie
	added   []session.Cookie
	calls   []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		visible:  map[string]bool{},
		attached: map[string]bool{},
		fail:     map[string]error{},
	}
}

func (f *fakeDriver) show(locs ...browser.Locator) {
	for _, l := range locs {
		f.visible[l.String()] = true
	}
}

func (f *fakeDriver) attach(locs ...browser.Locator) {
	for _, l := range locs {
		f.attached[l.String()] = true
	}
}

func (f *fakeDriver) failOn(op string, loc browser.Locator) {
	f.fail[op+" "+loc.String()] = &browser.ActionError{Kind: browser.ErrActionFailed, Op: op, Target: loc.String()}
}

func (f *fakeDriver) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeDriver) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeDriver) Navigate(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("navigate %s", url)
	if f.navigate == nil {
		f.url = url
		return nil
	}
	landed, err := f.navigate(url)
	if err != nil {
		return &browser.ActionError{Kind: browser.ErrNavigation, Op: "navigate", Target: url, Err: err}
	}
	f.url = landed
	return nil
}

func (f *fakeDriver) CurrentURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *fakeDriver) Find(loc browser.Locator, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attached[loc.String()] || f.visible[loc.String()] {
		return nil
	}
	return &browser.ActionError{Kind: browser.ErrNotFound, Op: "find", Target: loc.String()}
}

func (f *fakeDriver) FirstVisible(locs []browser.Locator, _ time.Duration) (browser.Locator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range locs {
		if f.visible[l.String()] {
			return l, nil
		}
	}
	return nil, &browser.ActionError{Kind: browser.ErrNotFound, Op: "first-visible", Target: fmt.Sprint(len(locs))}
}

func (f *fakeDriver) act(op string, loc browser.Locator, arg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[op+" "+loc.String()]; err != nil {
		return err
	}
	if arg == "" {
		f.record("%s %s", op, loc)
	} else {
		f.record("%s %s %s", op, loc, arg)
	}
	return nil
}

func (f *fakeDriver) Click(loc browser.Locator) error {
	return f.act("click", loc, "")
}

func (f *fakeDriver) Fill(loc browser.Locator, text string) error {
	return f.act("fill", loc, text)
}

func (f *fakeDriver) Press(loc browser.Locator, key string) error {
	return f.act("press", loc, key)
}

func (f *fakeDriver) UploadFile(loc browser.Locator, path string) error {
	return f.act("upload", loc, path)
}

func (f *fakeDriver) UploadViaChooser(trigger browser.Locator, path string) error {
	return f.act("chooser", trigger, path)
}

func (f *fakeDriver) InjectFile(loc browser.Locator, path string) error {
	return f.act("inject", loc, path)
}

func (f *fakeDriver) Screenshot(path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("screenshot %s", path)
	return path, nil
}

func (f *fakeDriver) ScreenshotElement(loc browser.Locator, path string) (string, error) {
	if err := f.act("screenshot-element", loc, path); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeDriver) Cookies() ([]session.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookies, nil
}

func (f *fakeDriver) AddCookies(cookies []session.Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, cookies...)
	f.record("add-cookies %d", len(cookies))
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Login.PollInterval = 5 * time.Millisecond
	cfg.Login.Timeout = 2 * time.Second
	cfg.Login.QRScreenshot = "/shots/qr.png"
	cfg.Publish.ScreenshotDir = "/shots"
	return cfg
}

func testStore() *session.Store {
	return session.NewStore("/home/tester/.xiaohongshu_publisher/cookies.json", session.WithFs(afero.NewMemMapFs()))
}
