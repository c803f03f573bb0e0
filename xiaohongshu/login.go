package xiaohongshu

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xhs-publisher/browser"
	"github.com/xhs-publisher/config"
	"github.com/xhs-publisher/logging"
	"github.com/xhs-publisher/session"
	"go.uber.org/zap"
)

// LoginState 扫码登录流程的状态
type LoginState int

const (
	NotStarted LoginState = iota
	AwaitingLoginClick
	AwaitingQRSelection
	PollingForAuth
	Authenticated
	TimedOut
	Failed
)

func (s LoginState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case AwaitingLoginClick:
		return "AwaitingLoginClick"
	case AwaitingQRSelection:
		return "AwaitingQRSelection"
	case PollingForAuth:
		return "PollingForAuth"
	case Authenticated:
		return "Authenticated"
	case TimedOut:
		return "TimedOut"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

var (
	// ErrLoginTimeout 没有找到登录入口，或等待扫码超时
	ErrLoginTimeout = errors.New("登录超时")
	// ErrLoginAborted 用户取消了登录
	ErrLoginAborted = errors.New("登录已取消")
)

// LoginPoller 小红书创作平台登录：优先复用Cookie，失败时扫码登录
type LoginPoller struct {
	driver  Driver
	store   *session.Store
	cfg     *config.Config
	logger  *zap.Logger
	confirm ConfirmFunc

	state       LoginState
	transitions []LoginState
}

// LoginOption 配置 LoginPoller
type LoginOption func(*LoginPoller)

// WithLoginConfirm 找不到扫码登录入口且策略为 confirm 时调用
func WithLoginConfirm(fn ConfirmFunc) LoginOption {
	return func(lp *LoginPoller) {
		lp.confirm = fn
	}
}

// NewLoginPoller 创建登录检查器
func NewLoginPoller(driver Driver, store *session.Store, cfg *config.Config, logger *zap.Logger, opts ...LoginOption) *LoginPoller {
	lp := &LoginPoller{
		driver: driver,
		store:  store,
		cfg:    cfg,
		logger: logging.OrNop(logger).Named("login"),
		state:  NotStarted,
	}
	for _, opt := range opts {
		opt(lp)
	}
	return lp
}

// State 当前状态
func (lp *LoginPoller) State() LoginState {
	return lp.state
}

// Transitions 本次登录经历过的状态，按顺序
func (lp *LoginPoller) Transitions() []LoginState {
	return append([]LoginState(nil), lp.transitions...)
}

func (lp *LoginPoller) setState(s LoginState) {
	lp.state = s
	lp.transitions = append(lp.transitions, s)
	lp.logger.Debug("🔄 登录状态变化", zap.Stringer("state", s))
}

// IsAuthenticatedURL 地址不含登录标记且包含创作平台标记时认为已登录
func IsAuthenticatedURL(url, loginMarker, authenticatedMarker string) bool {
	return !strings.Contains(url, loginMarker) && strings.Contains(url, authenticatedMarker)
}

func (lp *LoginPoller) authenticated() bool {
	return IsAuthenticatedURL(lp.driver.CurrentURL(), lp.cfg.Login.LoginMarker, lp.cfg.Login.AuthenticatedMarker)
}

// EnsureSession 保证浏览器处于登录状态。
// 保存的Cookie看起来有效时先加载并检查，不行再扫码登录。
func (lp *LoginPoller) EnsureSession(ctx context.Context) error {
	cookies := lp.store.Load()
	if lp.store.IsValid(cookies) {
		lp.logger.Info("📂 尝试使用保存的Cookie登录", zap.Int("count", len(cookies)))

		if err := lp.restore(cookies); err != nil {
			lp.logger.Warn("⚠️ Cookie登录失败", zap.Error(err))
		} else if lp.authenticated() {
			lp.setState(Authenticated)
			lp.logger.Info("✅ Cookie登录成功，欢迎回来~")
			// 服务端可能已轮换Cookie
			if err := lp.SaveSession(); err != nil {
				lp.logger.Warn("⚠️ 刷新保存的Cookie失败", zap.Error(err))
			}
			return nil
		} else {
			lp.logger.Warn("⚠️ Cookie已过期，需要重新登录", zap.String("url", lp.driver.CurrentURL()))
		}
	} else {
		lp.logger.Info("🔐 没有可用的登录Cookie")
	}

	state, err := lp.Login(ctx)
	if err != nil {
		return errors.Wrapf(err, "登录失败（%s）", state)
	}
	return nil
}

func (lp *LoginPoller) restore(cookies []session.Cookie) error {
	if err := lp.driver.AddCookies(cookies); err != nil {
		return err
	}
	return lp.driver.Navigate(lp.cfg.Platform.CheckPage())
}

// Login 执行扫码登录，成功后保存Cookie
func (lp *LoginPoller) Login(ctx context.Context) (LoginState, error) {
	lp.transitions = nil
	lp.state = NotStarted

	if err := ctx.Err(); err != nil {
		lp.setState(Failed)
		return Failed, err
	}

	lp.logger.Info("🔐 启动扫码登录流程")
	if err := lp.driver.Navigate(lp.cfg.Platform.LoginPage()); err != nil {
		lp.setState(Failed)
		return Failed, errors.Wrap(err, "打开登录页失败")
	}
	lp.setState(AwaitingLoginClick)

	loginButtons := append(browser.CSSList(lp.cfg.Selectors.LoginButton), browser.ButtonList(lp.cfg.Selectors.LoginKeywords)...)
	button, err := lp.driver.FirstVisible(loginButtons, lp.cfg.Timeouts.ElementWait)
	if err == nil {
		err = lp.driver.Click(button)
	}
	if err != nil {
		lp.logger.Warn("❌ 未找到登录按钮", zap.Error(err))
		lp.setState(TimedOut)
		return TimedOut, ErrLoginTimeout
	}
	lp.logger.Info("✅ 已点击登录按钮", zap.Stringer("locator", button))
	lp.setState(AwaitingQRSelection)

	if err := lp.selectQRLogin(ctx); err != nil {
		lp.setState(Failed)
		return Failed, err
	}

	lp.captureQR()

	lp.setState(PollingForAuth)
	state, err := lp.poll(ctx)
	lp.setState(state)
	if err != nil {
		return state, err
	}

	if err := lp.SaveSession(); err != nil {
		lp.logger.Warn("⚠️ 登录成功后保存会话失败", zap.Error(err))
	}
	lp.logger.Info("✅ 登录成功！欢迎回来~")
	return Authenticated, nil
}

// selectQRLogin 切换到扫码登录；找不到入口时按配置继续或等待用户确认
func (lp *LoginPoller) selectQRLogin(ctx context.Context) error {
	qrLocators := append(browser.CSSList(lp.cfg.Selectors.QRLogin), browser.TextList(lp.cfg.Selectors.QRKeywords)...)
	qr, err := lp.driver.FirstVisible(qrLocators, lp.cfg.Timeouts.ElementWait)
	if err == nil {
		if err = lp.driver.Click(qr); err == nil {
			lp.logger.Info("✅ 已选择扫码登录", zap.Stringer("locator", qr))
			return nil
		}
	}

	lp.logger.Warn("⚠️ 自动选择扫码登录失败", zap.Error(err))
	if lp.cfg.Login.QRFallback != config.QRFallbackConfirm || lp.confirm == nil {
		lp.logger.Info("💡 假设页面默认显示二维码，继续等待扫码")
		return nil
	}

	ok, err := lp.confirm(ctx, "请在浏览器中选择扫码登录，选择好后确认继续")
	if err != nil {
		return errors.Wrap(err, "等待用户确认失败")
	}
	if !ok {
		return ErrLoginAborted
	}
	return nil
}

// poll 定时检查是否已跳转到创作平台。跳转出错只记录日志，继续等待。
func (lp *LoginPoller) poll(ctx context.Context) (LoginState, error) {
	interval := lp.cfg.Login.PollInterval
	deadline := time.NewTimer(lp.cfg.Login.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lp.logger.Info("⏳ 等待扫码", zap.Duration("timeout", lp.cfg.Login.Timeout))
	started := time.Now()

	for {
		select {
		case <-ctx.Done():
			lp.logger.Warn("🛑 已取消等待扫码")
			return Failed, ctx.Err()
		case <-deadline.C:
			lp.logger.Warn("❌ 登录超时，请重新尝试")
			return TimedOut, ErrLoginTimeout
		case <-ticker.C:
			if err := lp.driver.Navigate(lp.cfg.Platform.CheckPage()); err != nil {
				lp.logger.Debug("检查登录状态时出错", zap.Error(err))
				continue
			}
			if lp.authenticated() {
				return Authenticated, nil
			}
			lp.logger.Debug("⏳ 等待扫码...", zap.Duration("elapsed", time.Since(started).Round(time.Second)))
		}
	}
}

// captureQR 优先只截二维码图片，找不到时截整个页面
func (lp *LoginPoller) captureQR() {
	path := lp.cfg.Login.QRScreenshot
	saved, err := lp.screenshotQRImage(path)
	if err != nil {
		lp.logger.Debug("未能单独截取二维码，改为整页截图", zap.Error(err))
		saved, err = lp.driver.Screenshot(path)
	}
	if err != nil {
		lp.logger.Warn("⚠️ 二维码截图失败", zap.Error(err))
		return
	}
	lp.logger.Info("📱 二维码已保存，请使用小红书APP扫码登录", zap.String("path", saved))
}

func (lp *LoginPoller) screenshotQRImage(path string) (string, error) {
	qr, err := lp.driver.FirstVisible(browser.CSSList(lp.cfg.Selectors.QRImage), lp.cfg.Timeouts.ElementWait)
	if err != nil {
		return "", err
	}
	return lp.driver.ScreenshotElement(qr, path)
}

// SaveSession 把浏览器当前的Cookie写回文件
func (lp *LoginPoller) SaveSession() error {
	cookies, err := lp.driver.Cookies()
	if err != nil {
		return err
	}
	return lp.store.Save(cookies)
}
