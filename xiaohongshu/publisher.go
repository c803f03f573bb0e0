package xiaohongshu

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xhs-publisher/browser"
	"github.com/xhs-publisher/config"
	"github.com/xhs-publisher/content"
	"github.com/xhs-publisher/logging"
	"go.uber.org/zap"
)

// 发布流程的步骤名
const (
	StepSession = "session"
	StepOpen    = "open"
	StepUpload  = "upload"
	StepTitle   = "title"
	StepBody    = "body"
	StepTags    = "tags"
	StepConfirm = "confirm"
	StepPublish = "publish"
)

var (
	// ErrStrictAbort strict 模式下关键步骤失败，没有点击发布
	ErrStrictAbort = errors.New("关键步骤失败，已停止发布")
	// ErrPublishCancelled 用户在确认时取消
	ErrPublishCancelled = errors.New("已取消发布")
)

// SessionEnsurer 保证浏览器已登录并能回写Cookie，由 LoginPoller 实现
type SessionEnsurer interface {
	EnsureSession(ctx context.Context) error
	SaveSession() error
}

// StepResult 单个步骤的结果
type StepResult struct {
	Name string
	Err  error
}

// OK 步骤是否成功
func (s StepResult) OK() bool {
	return s.Err == nil
}

// PublishResult 一次发布的结果，Success 只取决于发布按钮是否点击成功
type PublishResult struct {
	Success     bool
	Steps       []StepResult
	Title       string
	Tags        []string
	PublishedAt time.Time
	Screenshots []string
}

// Step 按名称查找步骤结果
func (r *PublishResult) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// FailedSteps 失败的步骤名
func (r *PublishResult) FailedSteps() []string {
	var names []string
	for _, s := range r.Steps {
		if !s.OK() {
			names = append(names, s.Name)
		}
	}
	return names
}

func (r *PublishResult) record(name string, err error) {
	r.Steps = append(r.Steps, StepResult{Name: name, Err: err})
}

// Publisher 小红书图文笔记发布器
type Publisher struct {
	driver  Driver
	session SessionEnsurer
	cfg     *config.Config
	logger  *zap.Logger
	confirm ConfirmFunc
}

// PublishOption 配置 Publisher
type PublishOption func(*Publisher)

// WithPublishConfirm 点击发布前向用户确认
func WithPublishConfirm(fn ConfirmFunc) PublishOption {
	return func(p *Publisher) {
		p.confirm = fn
	}
}

// NewPublisher 创建发布器
func NewPublisher(driver Driver, sess SessionEnsurer, cfg *config.Config, logger *zap.Logger, opts ...PublishOption) *Publisher {
	p := &Publisher{
		driver:  driver,
		session: sess,
		cfg:     cfg,
		logger:  logging.OrNop(logger).Named("publisher"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish 上传图片、填写标题正文标签并点击发布。
// best-effort 模式下上传、标题、正文失败仍会尝试发布；strict 模式下直接停止。
func (p *Publisher) Publish(ctx context.Context, imagePath string, c content.Content) (*PublishResult, error) {
	result := &PublishResult{Title: c.Title, Tags: c.Tags}

	if _, err := os.Stat(imagePath); err != nil {
		return result, errors.Wrapf(err, "图片不存在 %s", imagePath)
	}

	if err := p.session.EnsureSession(ctx); err != nil {
		result.record(StepSession, err)
		return result, err
	}
	result.record(StepSession, nil)

	p.logger.Info("📝 打开发布页面", zap.String("url", p.cfg.Platform.PublishPage()))
	if err := p.driver.Navigate(p.cfg.Platform.PublishPage()); err != nil {
		result.record(StepOpen, err)
		return result, errors.Wrap(err, "打开发布页面失败")
	}
	result.record(StepOpen, nil)

	steps := []struct {
		name string
		run  func() error
	}{
		{StepUpload, func() error { return p.uploadImage(imagePath) }},
		{StepTitle, func() error { return p.fillTitle(c.Title) }},
		{StepBody, func() error { return p.fillBody(c.Body) }},
		{StepTags, func() error { return p.addTags(c.Body, c.Tags) }},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		err := s.run()
		result.record(s.name, err)
		if err != nil {
			p.logger.Warn("⚠️ 步骤失败", zap.String("step", s.name), zap.Error(err))
		}
	}

	if p.cfg.Publish.Mode == config.PublishModeStrict {
		if failed := p.criticalFailures(result); len(failed) > 0 {
			p.screenshot(result, "xhs_strict_abort.png")
			return result, errors.Wrapf(ErrStrictAbort, "失败步骤: %s", strings.Join(failed, ", "))
		}
	}

	p.screenshot(result, "xhs_before_publish.png")

	if p.confirm != nil {
		ok, err := p.confirm(ctx, "确认发布这篇笔记？")
		if err != nil {
			result.record(StepConfirm, err)
			return result, errors.Wrap(err, "等待用户确认失败")
		}
		if !ok {
			result.record(StepConfirm, ErrPublishCancelled)
			p.logger.Info("🚫 用户取消发布")
			return result, ErrPublishCancelled
		}
		result.record(StepConfirm, nil)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	err := p.clickPublish()
	result.record(StepPublish, err)
	p.screenshot(result, "xhs_after_publish.png")
	if err != nil {
		p.logger.Error("❌ 点击发布失败", zap.Error(err))
		return result, errors.Wrap(err, "点击发布失败")
	}

	result.Success = true
	result.PublishedAt = time.Now()
	p.logger.Info("🎉 笔记已发布", zap.String("title", c.Title), zap.Strings("tags", c.Tags))

	if err := p.session.SaveSession(); err != nil {
		p.logger.Warn("⚠️ 发布后保存Cookie失败", zap.Error(err))
	}
	return result, nil
}

func (p *Publisher) criticalFailures(r *PublishResult) []string {
	var failed []string
	for _, name := range []string{StepUpload, StepTitle, StepBody} {
		if s, ok := r.Step(name); ok && !s.OK() {
			failed = append(failed, name)
		}
	}
	return failed
}

func (p *Publisher) titleLocators() []browser.Locator {
	return append(browser.PlaceholderList(p.cfg.Selectors.TitlePlaceholders), browser.CSSList(p.cfg.Selectors.TitleInput)...)
}

func (p *Publisher) bodyLocators() []browser.Locator {
	return append(browser.PlaceholderList(p.cfg.Selectors.BodyPlaceholders), browser.CSSList(p.cfg.Selectors.BodyInput)...)
}

func (p *Publisher) fillTitle(title string) error {
	loc, err := p.driver.FirstVisible(p.titleLocators(), p.cfg.Timeouts.ElementWait)
	if err != nil {
		return errors.Wrap(err, "未找到标题输入框")
	}
	if err := p.driver.Fill(loc, title); err != nil {
		return err
	}
	p.logger.Info("✅ 标题已填写", zap.String("title", title))
	return nil
}

func (p *Publisher) fillBody(body string) error {
	loc, err := p.driver.FirstVisible(p.bodyLocators(), p.cfg.Timeouts.ElementWait)
	if err != nil {
		return errors.Wrap(err, "未找到正文输入框")
	}
	if err := p.driver.Fill(loc, body); err != nil {
		return err
	}
	p.logger.Info("✅ 正文已填写", zap.Int("length", len([]rune(body))))
	return nil
}

// addTags 逐个输入标签并回车；找不到标签输入框时把话题追加到正文末尾
func (p *Publisher) addTags(body string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	tagLocators := append(browser.PlaceholderList(p.cfg.Selectors.TagPlaceholders), browser.CSSList(p.cfg.Selectors.TagInput)...)
	loc, err := p.driver.FirstVisible(tagLocators, p.cfg.Timeouts.ElementWait)
	if err != nil {
		if !p.cfg.Publish.TagFallback {
			return errors.Wrap(err, "未找到标签输入框")
		}
		p.logger.Info("💡 未找到标签输入框，把话题追加到正文")
		return p.fillBody(strings.TrimRight(body, "\n") + "\n\n" + content.Hashtags(tags))
	}

	var failed []string
	for _, tag := range tags {
		if err := p.driver.Fill(loc, tag); err != nil {
			failed = append(failed, tag)
			continue
		}
		if err := p.driver.Press(loc, "Enter"); err != nil {
			failed = append(failed, tag)
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("部分标签添加失败: %s", strings.Join(failed, ", "))
	}
	p.logger.Info("✅ 标签已添加", zap.Strings("tags", tags))
	return nil
}

func (p *Publisher) clickPublish() error {
	buttons := append(browser.ButtonList(p.cfg.Selectors.PublishKeywords), browser.CSSList(p.cfg.Selectors.PublishButton)...)
	loc, err := p.driver.FirstVisible(buttons, p.cfg.Timeouts.ElementWait)
	if err != nil {
		return errors.Wrap(err, "未找到发布按钮")
	}
	return p.driver.Click(loc)
}

func (p *Publisher) screenshot(r *PublishResult, name string) {
	if p.cfg.Publish.ScreenshotDir == "" {
		return
	}
	path, err := p.driver.Screenshot(filepath.Join(p.cfg.Publish.ScreenshotDir, name))
	if err != nil {
		p.logger.Debug("截图失败", zap.Error(err))
		return
	}
	r.Screenshots = append(r.Screenshots, path)
}
