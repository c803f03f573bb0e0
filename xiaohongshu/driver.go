package xiaohongshu

import (
	"context"
	"time"

	"github.com/xhs-publisher/browser"
	"github.com/xhs-publisher/session"
)

// Driver 登录和发布流程用到的浏览器操作，*browser.Session 实现了它
type Driver interface {
	Navigate(url string) error
	CurrentURL() string
	Find(loc browser.Locator, timeout time.Duration) error
	FirstVisible(locs []browser.Locator, timeout time.Duration) (browser.Locator, error)
	Click(loc browser.Locator) error
	Fill(loc browser.Locator, text string) error
	Press(loc browser.Locator, key string) error
	UploadFile(loc browser.Locator, path string) error
	UploadViaChooser(trigger browser.Locator, path string) error
	InjectFile(loc browser.Locator, path string) error
	Screenshot(path string) (string, error)
	ScreenshotElement(loc browser.Locator, path string) (string, error)
	Cookies() ([]session.Cookie, error)
	AddCookies(cookies []session.Cookie) error
}

var _ Driver = (*browser.Session)(nil)

// ConfirmFunc 向用户确认，返回 false 表示取消
type ConfirmFunc func(ctx context.Context, message string) (bool, error)
