package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// 发布策略
const (
	PublishModeBestEffort = "best-effort"
	PublishModeStrict     = "strict"
)

// 找不到扫码登录入口时的处理策略
const (
	QRFallbackProceed = "proceed"
	QRFallbackConfirm = "confirm"
)

// Config 配置结构
type Config struct {
	Platform  PlatformConfig `mapstructure:"platform" yaml:"platform" ini:"platform"`
	Browser   BrowserConfig  `mapstructure:"browser" yaml:"browser" ini:"browser"`
	Timeouts  TimeoutConfig  `mapstructure:"timeouts" yaml:"timeouts" ini:"timeouts"`
	Selectors SelectorConfig `mapstructure:"selectors" yaml:"selectors" ini:"selectors"`
	Session   SessionConfig  `mapstructure:"session" yaml:"session" ini:"session"`
	Login     LoginConfig    `mapstructure:"login" yaml:"login" ini:"login"`
	Publish   PublishConfig  `mapstructure:"publish" yaml:"publish" ini:"publish"`
	Logging   LoggingConfig  `mapstructure:"logging" yaml:"logging" ini:"logging"`
}

// PlatformConfig 创作平台地址。登录、发布、检查页可以写成相对 CreatorURL 的路径
type PlatformConfig struct {
	CreatorURL string `mapstructure:"creator_url" yaml:"creator_url" ini:"creator_url"`
	LoginURL   string `mapstructure:"login_url" yaml:"login_url" ini:"login_url"`
	PublishURL string `mapstructure:"publish_url" yaml:"publish_url" ini:"publish_url"`
	CheckURL   string `mapstructure:"check_url" yaml:"check_url" ini:"check_url"`
}

// BrowserConfig 浏览器启动参数
type BrowserConfig struct {
	Headless    bool     `mapstructure:"headless" yaml:"headless" ini:"headless"`
	Stealth     bool     `mapstructure:"stealth" yaml:"stealth" ini:"stealth"`
	AutoInstall bool     `mapstructure:"auto_install" yaml:"auto_install" ini:"auto_install"`
	UserAgent   string   `mapstructure:"user_agent" yaml:"user_agent" ini:"user_agent"`
	Width       int      `mapstructure:"width" yaml:"width" ini:"width"`
	Height      int      `mapstructure:"height" yaml:"height" ini:"height"`
	Locale      string   `mapstructure:"locale" yaml:"locale" ini:"locale"`
	Timezone    string   `mapstructure:"timezone" yaml:"timezone" ini:"timezone"`
	SlowMo      float64  `mapstructure:"slow_mo" yaml:"slow_mo" ini:"slow_mo"`
	ExtraArgs   []string `mapstructure:"extra_args" yaml:"extra_args" ini:"extra_args"`
}

// TimeoutConfig 超时与操作节奏
type TimeoutConfig struct {
	PageLoad    time.Duration `mapstructure:"page_load" yaml:"page_load" ini:"page_load"`
	ElementWait time.Duration `mapstructure:"element_wait" yaml:"element_wait" ini:"element_wait"`
	MinDelay    time.Duration `mapstructure:"min_delay" yaml:"min_delay" ini:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay" yaml:"max_delay" ini:"max_delay"`
}

// SelectorConfig 页面元素选择器，每一项按顺序尝试
type SelectorConfig struct {
	LoginButton       []string `mapstructure:"login_button" yaml:"login_button" ini:"login_button"`
	LoginKeywords     []string `mapstructure:"login_keywords" yaml:"login_keywords" ini:"login_keywords"`
	QRLogin           []string `mapstructure:"qr_login" yaml:"qr_login" ini:"qr_login"`
	QRKeywords        []string `mapstructure:"qr_keywords" yaml:"qr_keywords" ini:"qr_keywords"`
	QRImage           []string `mapstructure:"qr_image" yaml:"qr_image" ini:"qr_image"`
	FileInput         []string `mapstructure:"file_input" yaml:"file_input" ini:"file_input"`
	UploadArea        []string `mapstructure:"upload_area" yaml:"upload_area" ini:"upload_area"`
	TitleInput        []string `mapstructure:"title_input" yaml:"title_input" ini:"title_input"`
	TitlePlaceholders []string `mapstructure:"title_placeholders" yaml:"title_placeholders" ini:"title_placeholders"`
	BodyInput         []string `mapstructure:"body_input" yaml:"body_input" ini:"body_input"`
	BodyPlaceholders  []string `mapstructure:"body_placeholders" yaml:"body_placeholders" ini:"body_placeholders"`
	TagInput          []string `mapstructure:"tag_input" yaml:"tag_input" ini:"tag_input"`
	TagPlaceholders   []string `mapstructure:"tag_placeholders" yaml:"tag_placeholders" ini:"tag_placeholders"`
	PublishButton     []string `mapstructure:"publish_button" yaml:"publish_button" ini:"publish_button"`
	PublishKeywords   []string `mapstructure:"publish_keywords" yaml:"publish_keywords" ini:"publish_keywords"`
}

// SessionConfig Cookie持久化
type SessionConfig struct {
	CookieFile    string   `mapstructure:"cookie_file" yaml:"cookie_file" ini:"cookie_file"`
	DefaultDomain string   `mapstructure:"default_domain" yaml:"default_domain" ini:"default_domain"`
	ValidNames    []string `mapstructure:"valid_names" yaml:"valid_names" ini:"valid_names"`
}

// LoginConfig 扫码登录轮询参数
type LoginConfig struct {
	PollInterval        time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" ini:"poll_interval"`
	Timeout             time.Duration `mapstructure:"timeout" yaml:"timeout" ini:"timeout"`
	QRFallback          string        `mapstructure:"qr_fallback" yaml:"qr_fallback" ini:"qr_fallback"`
	LoginMarker         string        `mapstructure:"login_marker" yaml:"login_marker" ini:"login_marker"`
	AuthenticatedMarker string        `mapstructure:"authenticated_marker" yaml:"authenticated_marker" ini:"authenticated_marker"`
	QRScreenshot        string        `mapstructure:"qr_screenshot" yaml:"qr_screenshot" ini:"qr_screenshot"`
}

// PublishConfig 发布流程参数
type PublishConfig struct {
	Mode          string `mapstructure:"mode" yaml:"mode" ini:"mode"`
	ScreenshotDir string `mapstructure:"screenshot_dir" yaml:"screenshot_dir" ini:"screenshot_dir"`
	TagFallback   bool   `mapstructure:"tag_fallback" yaml:"tag_fallback" ini:"tag_fallback"`
}

// LoggingConfig 日志输出
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level" ini:"level"`
	Format     string `mapstructure:"format" yaml:"format" ini:"format"`
	File       string `mapstructure:"file" yaml:"file" ini:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size" ini:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" ini:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age" ini:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress" ini:"compress"`
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{
			CreatorURL: "https://creator.xiaohongshu.com",
			LoginURL:   "/login",
			PublishURL: "/publish/publish?from=menu&target=image",
			CheckURL:   "/new/home",
		},
		Browser: BrowserConfig{
			Headless:    false,
			Stealth:     true,
			AutoInstall: true,
			UserAgent:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			Width:       1440,
			Height:      900,
			Locale:      "zh-CN",
			Timezone:    "Asia/Shanghai",
		},
		Timeouts: TimeoutConfig{
			PageLoad:    30 * time.Second,
			ElementWait: 5 * time.Second,
			MinDelay:    500 * time.Millisecond,
			MaxDelay:    1500 * time.Millisecond,
		},
		Selectors: SelectorConfig{
			LoginButton:       []string{".beer-login-btn", ".login-btn", `[class*="login-btn"]`},
			LoginKeywords:     []string{"登 录", "登录"},
			QRLogin:           []string{`li:has-text("扫码登录")`, ".login-type-qrcode", `[class*="qrcode"]`},
			QRKeywords:        []string{"扫码登录", "二维码登录"},
			QRImage:           []string{".qrcode-img img", `[class*="qrcode"] img`, ".login-qrcode img", `img[alt*="qrcode"]`},
			FileInput:         []string{`input[type="file"]`, `.upload-input`, `[class*="upload"] input[type="file"]`},
			UploadArea:        []string{".upload-area", ".upload-container", `[class*="upload"] button`, `[class*="upload"]`},
			TitleInput:        []string{`input[placeholder*="标题"]`, `[class*="title"] input`, ".title-input input"},
			TitlePlaceholders: []string{"填写标题会有更多赞哦～", "填写标题"},
			BodyInput:         []string{`[contenteditable="true"]`, `[class*="editor"] textarea`, ".content-editor textarea"},
			BodyPlaceholders:  []string{"输入正文描述", "填写更全面的描述信息"},
			TagInput:          []string{".tag-input input", `[class*="tag"] input`, `input[placeholder*="标签"]`},
			TagPlaceholders:   []string{"添加标签", "输入标签"},
			PublishButton:     []string{".publish-btn", `[class*="publish"] button`, ".submit-btn", `button[type="submit"]`},
			PublishKeywords:   []string{"发布"},
		},
		Session: SessionConfig{
			CookieFile:    "~/.xiaohongshu_publisher/cookies.json",
			DefaultDomain: ".xiaohongshu.com",
			ValidNames:    []string{"web_session", "token", "user_id", "xhs_token_id"},
		},
		Login: LoginConfig{
			PollInterval:        3 * time.Second,
			Timeout:             300 * time.Second,
			QRFallback:          QRFallbackProceed,
			LoginMarker:         "login",
			AuthenticatedMarker: "creator",
			QRScreenshot:        filepath.Join(os.TempDir(), "xhs_qr_code.png"),
		},
		Publish: PublishConfig{
			Mode:          PublishModeBestEffort,
			ScreenshotDir: os.TempDir(),
			TagFallback:   true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// LoadConfig 加载配置文件，.ini 走 ini 解析，其余交给 viper
func LoadConfig(filename string) (*Config, error) {
	path, err := homedir.Expand(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "无法解析配置路径 %s", filename)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini":
		cfg, err = loadINI(path)
	default:
		cfg, err = loadViper(path)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadINI(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "无法读取配置文件 %s", path)
	}

	cfg := Default()
	if err := file.MapTo(cfg); err != nil {
		return nil, errors.Wrapf(err, "配置文件格式错误 %s", path)
	}
	return cfg, nil
}

func loadViper(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "无法读取配置文件 %s", path)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg, zeroFields); err != nil {
		return nil, errors.Wrapf(err, "配置文件格式错误 %s", path)
	}
	return cfg, nil
}

// FromEnv 没有配置文件时使用默认值，并应用 XHS_ 环境变量
func FromEnv() (*Config, error) {
	v := viper.New()
	bindEnv(v)

	cfg := Default()
	if err := v.Unmarshal(cfg, zeroFields); err != nil {
		return nil, errors.Wrap(err, "环境变量格式错误")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 配置文件里出现的列表整体替换默认值，而不是按下标覆盖
func zeroFields(dc *mapstructure.DecoderConfig) {
	dc.ZeroFields = true
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("XHS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv 只覆盖 viper 已知的键
	for _, key := range []string{
		"platform.creator_url",
		"platform.publish_url",
		"browser.headless",
		"session.cookie_file",
		"login.timeout",
		"publish.mode",
		"logging.level",
		"logging.file",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate 检查枚举字段与时间参数
func (c *Config) Validate() error {
	switch c.Publish.Mode {
	case PublishModeBestEffort, PublishModeStrict:
	default:
		return errors.Errorf("未知的发布模式: %q", c.Publish.Mode)
	}

	switch c.Login.QRFallback {
	case QRFallbackProceed, QRFallbackConfirm:
	default:
		return errors.Errorf("未知的扫码登录策略: %q", c.Login.QRFallback)
	}

	if !isAbsoluteURL(c.Platform.CreatorURL) {
		return errors.Errorf("platform.creator_url 必须是 http(s) 地址: %q", c.Platform.CreatorURL)
	}
	if c.Timeouts.ElementWait <= 0 {
		return errors.New("timeouts.element_wait 必须大于0")
	}
	if c.Timeouts.PageLoad <= 0 {
		return errors.New("timeouts.page_load 必须大于0")
	}
	if c.Login.PollInterval <= 0 {
		return errors.New("login.poll_interval 必须大于0")
	}
	if c.Login.Timeout < c.Login.PollInterval {
		return errors.New("login.timeout 不能小于 login.poll_interval")
	}
	if c.Timeouts.MaxDelay < c.Timeouts.MinDelay {
		return errors.New("timeouts.max_delay 不能小于 timeouts.min_delay")
	}
	return nil
}

// LoginPage 登录页完整地址
func (p PlatformConfig) LoginPage() string {
	return p.resolve(p.LoginURL)
}

// PublishPage 图文发布页完整地址
func (p PlatformConfig) PublishPage() string {
	return p.resolve(p.PublishURL)
}

// CheckPage 检查登录状态时打开的页面
func (p PlatformConfig) CheckPage() string {
	return p.resolve(p.CheckURL)
}

func (p PlatformConfig) resolve(ref string) string {
	if isAbsoluteURL(ref) {
		return ref
	}
	return strings.TrimRight(p.CreatorURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// CookiePath 返回展开后的Cookie文件路径
func (c *Config) CookiePath() (string, error) {
	path, err := homedir.Expand(c.Session.CookieFile)
	if err != nil {
		return "", errors.Wrapf(err, "无法解析Cookie路径 %s", c.Session.CookieFile)
	}
	return path, nil
}

// WriteDefault 把默认配置写成 YAML 文件
func WriteDefault(filename string) error {
	path, err := homedir.Expand(filename)
	if err != nil {
		return errors.Wrapf(err, "无法解析配置路径 %s", filename)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.Wrap(err, "序列化默认配置失败")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "创建目录失败 %s", dir)
		}
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "写入配置文件失败 %s", path)
}
