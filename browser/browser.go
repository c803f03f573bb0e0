package browser

import (
	"encoding/base64"
	"math/rand/v2"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/jonfriesen/playwright-go-stealth"
	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"github.com/xhs-publisher/config"
	"github.com/xhs-publisher/logging"
	"github.com/xhs-publisher/session"
	"go.uber.org/zap"
)

// 反检测启动参数
var launchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-dev-shm-usage",
	"--no-first-run",
	"--no-default-browser-check",
	"--disable-extensions",
	"--disable-infobars",
	"--no-sandbox",
}

// Session 单个浏览器页面会话，串行使用
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	defaultDomain string
	elementWait   time.Duration
	minDelay      time.Duration
	maxDelay      time.Duration
	rng           *rand.Rand
	logger        *zap.Logger
}

// Launch 启动 Chromium 并打开一个页面，失败时释放已创建的资源
func Launch(cfg *config.Config, logger *zap.Logger) (*Session, error) {
	logger = logging.OrNop(logger).Named("browser")

	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "启动 Playwright 失败")
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Browser.Headless),
		Args:     append(append([]string{}, launchArgs...), cfg.Browser.ExtraArgs...),
	}
	if cfg.Browser.SlowMo > 0 {
		opts.SlowMo = playwright.Float(cfg.Browser.SlowMo)
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		pw.Stop()
		return nil, errors.Wrap(err, "启动浏览器失败")
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(cfg.Browser.UserAgent),
		Viewport: &playwright.Size{
			Width:  cfg.Browser.Width,
			Height: cfg.Browser.Height,
		},
		IsMobile:          playwright.Bool(false),
		HasTouch:          playwright.Bool(false),
		Locale:            playwright.String(cfg.Browser.Locale),
		TimezoneId:        playwright.String(cfg.Browser.Timezone),
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, errors.Wrap(err, "创建浏览器上下文失败")
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, errors.Wrap(err, "创建页面失败")
	}

	if cfg.Browser.Stealth {
		if err := stealth.Inject(page); err != nil {
			logger.Warn("⚠️ 注入stealth脚本失败", zap.Error(err))
		} else {
			logger.Debug("🥷 已启用反检测模式")
		}
	}

	page.SetDefaultTimeout(float64(cfg.Timeouts.ElementWait.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(cfg.Timeouts.PageLoad.Milliseconds()))

	logger.Info("🌐 浏览器已启动", zap.Bool("headless", cfg.Browser.Headless))

	return &Session{
		pw:            pw,
		browser:       browser,
		context:       context,
		page:          page,
		defaultDomain: cfg.Session.DefaultDomain,
		elementWait:   cfg.Timeouts.ElementWait,
		minDelay:      cfg.Timeouts.MinDelay,
		maxDelay:      cfg.Timeouts.MaxDelay,
		rng:           rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		logger:        logger,
	}, nil
}

// Navigate 打开地址并等待网络空闲
func (s *Session) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return newActionError(ErrNavigation, "navigate", url, err)
	}
	s.logger.Debug("📄 已打开页面", zap.String("url", s.page.URL()))
	s.pause()
	return nil
}

// CurrentURL 当前页面地址
func (s *Session) CurrentURL() string {
	return s.page.URL()
}

// Find 等待元素挂载到 DOM 上
func (s *Session) Find(loc Locator, timeout time.Duration) error {
	err := loc.Resolve(s.page).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: s.millis(timeout),
	})
	if err != nil {
		return newActionError(ErrNotFound, "find", loc.String(), err)
	}
	return nil
}

// FirstVisible 按顺序尝试定位器，返回第一个可见的。
// timeout 是每个定位器的等待时间。
func (s *Session) FirstVisible(locs []Locator, timeout time.Duration) (Locator, error) {
	for _, loc := range locs {
		err := loc.Resolve(s.page).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: s.millis(timeout),
		})
		if err == nil {
			s.logger.Debug("🔍 找到元素", zap.Stringer("locator", loc))
			return loc, nil
		}
	}
	return nil, newActionError(ErrNotFound, "first-visible", describe(locs), nil)
}

// Click 点击第一个匹配的元素
func (s *Session) Click(loc Locator) error {
	if err := loc.Resolve(s.page).First().Click(); err != nil {
		return newActionError(ErrActionFailed, "click", loc.String(), err)
	}
	s.pause()
	return nil
}

// Fill 清空并填入文本
func (s *Session) Fill(loc Locator, text string) error {
	if err := loc.Resolve(s.page).First().Fill(text); err != nil {
		return newActionError(ErrActionFailed, "fill", loc.String(), err)
	}
	s.pause()
	return nil
}

// Press 在元素上按键
func (s *Session) Press(loc Locator, key string) error {
	if err := loc.Resolve(s.page).First().Press(key); err != nil {
		return newActionError(ErrActionFailed, "press", loc.String(), err)
	}
	s.pause()
	return nil
}

// UploadFile 直接给 file input 设置文件
func (s *Session) UploadFile(loc Locator, path string) error {
	if err := loc.Resolve(s.page).First().SetInputFiles([]string{path}); err != nil {
		return newActionError(ErrActionFailed, "upload", loc.String(), err)
	}
	s.pause()
	return nil
}

// UploadViaChooser 点击上传区域，在弹出的文件选择框里选中文件
func (s *Session) UploadViaChooser(trigger Locator, path string) error {
	chooser, err := s.page.ExpectFileChooser(func() error {
		return trigger.Resolve(s.page).First().Click()
	})
	if err != nil {
		return newActionError(ErrActionFailed, "file-chooser", trigger.String(), err)
	}
	if err := chooser.SetFiles([]string{path}); err != nil {
		return newActionError(ErrActionFailed, "file-chooser", trigger.String(), err)
	}
	s.pause()
	return nil
}

// injectFileScript 用 DataTransfer 构造 File 并触发 change 事件
const injectFileScript = `(input, file) => {
	const bytes = Uint8Array.from(atob(file.data), c => c.charCodeAt(0));
	const dt = new DataTransfer();
	dt.items.add(new File([bytes], file.name, { type: file.type }));
	input.files = dt.files;
	input.dispatchEvent(new Event('input', { bubbles: true }));
	input.dispatchEvent(new Event('change', { bubbles: true }));
	return input.files.length;
}`

// InjectFile 把文件内容通过脚本塞进 file input，前两种上传方式都失败时使用
func (s *Session) InjectFile(loc Locator, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newActionError(ErrActionFailed, "inject-file", path, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	_, err = loc.Resolve(s.page).First().Evaluate(injectFileScript, map[string]interface{}{
		"name": filepath.Base(path),
		"type": mimeType,
		"data": base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return newActionError(ErrActionFailed, "inject-file", loc.String(), err)
	}
	s.pause()
	return nil
}

// Screenshot 保存当前页面截图，返回写入的路径
func (s *Session) Screenshot(path string) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", newActionError(ErrActionFailed, "screenshot", path, err)
		}
	}
	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	}); err != nil {
		return "", newActionError(ErrActionFailed, "screenshot", path, err)
	}
	s.logger.Debug("📸 已保存截图", zap.String("path", path))
	return path, nil
}

// ScreenshotElement 只截取第一个匹配的元素，比如登录二维码
func (s *Session) ScreenshotElement(loc Locator, path string) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", newActionError(ErrActionFailed, "screenshot-element", path, err)
		}
	}
	if _, err := loc.Resolve(s.page).First().Screenshot(playwright.LocatorScreenshotOptions{
		Path: playwright.String(path),
	}); err != nil {
		return "", newActionError(ErrActionFailed, "screenshot-element", loc.String(), err)
	}
	s.logger.Debug("📸 已保存元素截图", zap.Stringer("locator", loc), zap.String("path", path))
	return path, nil
}

// Cookies 读取浏览器上下文中的Cookie
func (s *Session) Cookies() ([]session.Cookie, error) {
	cookies, err := s.context.Cookies()
	if err != nil {
		return nil, newActionError(ErrActionFailed, "cookies", s.defaultDomain, err)
	}
	return session.FromPlaywright(cookies), nil
}

// AddCookies 把保存的Cookie加载到浏览器上下文
func (s *Session) AddCookies(cookies []session.Cookie) error {
	if err := s.context.AddCookies(session.ToPlaywright(cookies, s.defaultDomain)); err != nil {
		return newActionError(ErrActionFailed, "add-cookies", s.defaultDomain, err)
	}
	s.logger.Debug("🍪 已加载cookies", zap.Int("count", len(cookies)))
	return nil
}

// Close 关闭页面、浏览器和 Playwright，可重复调用
func (s *Session) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.context != nil {
		keep(s.context.Close())
		s.context = nil
	}
	if s.browser != nil {
		keep(s.browser.Close())
		s.browser = nil
	}
	if s.pw != nil {
		keep(s.pw.Stop())
		s.pw = nil
	}

	if firstErr != nil {
		return errors.Wrap(firstErr, "关闭浏览器失败")
	}
	s.logger.Info("👋 浏览器已关闭")
	return nil
}

// pause 模拟人工操作的随机停顿
func (s *Session) pause() {
	time.Sleep(randomDelay(s.rng, s.minDelay, s.maxDelay))
}

func (s *Session) millis(timeout time.Duration) *float64 {
	if timeout <= 0 {
		timeout = s.elementWait
	}
	return playwright.Float(float64(timeout.Milliseconds()))
}

func randomDelay(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int64N(int64(hi-lo)+1))
}

func describe(locs []Locator) string {
	if len(locs) == 0 {
		return "<none>"
	}
	out := locs[0].String()
	for _, l := range locs[1:] {
		out += " | " + l.String()
	}
	return out
}
