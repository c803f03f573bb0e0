package xiaohongshu

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhs-publisher/browser"
	"github.com/xhs-publisher/config"
	"github.com/xhs-publisher/content"
	"github.com/xhs-publisher/session"
)

type stubSession struct {
	err   error
	calls int
	saves int
}

func (s *stubSession) EnsureSession(context.Context) error {
	s.calls++
	return s.err
}

func (s *stubSession) SaveSession() error {
	s.saves++
	return nil
}

var note = content.Content{
	Title: "周末去杭州",
	Body:  "西湖边走了一圈",
	Tags:  []string{"旅行", "杭州"},
}

func testImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "杭州风景.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG"), 0644))
	return path
}

type formLocators struct {
	fileInput browser.Locator
	area      browser.Locator
	title     browser.Locator
	body      browser.Locator
	tag       browser.Locator
	publish   browser.Locator
}

func locatorsFor(cfg *config.Config) formLocators {
	return formLocators{
		fileInput: browser.CSS(cfg.Selectors.FileInput[0]),
		area:      browser.CSS(cfg.Selectors.UploadArea[0]),
		title:     browser.ByPlaceholder(cfg.Selectors.TitlePlaceholders[0]),
		body:      browser.ByPlaceholder(cfg.Selectors.BodyPlaceholders[0]),
		tag:       browser.ByPlaceholder(cfg.Selectors.TagPlaceholders[0]),
		publish:   browser.ButtonList(cfg.Selectors.PublishKeywords)[0],
	}
}

// publishFormDriver 发布页所有元素都在
func publishFormDriver(l formLocators) *fakeDriver {
	f := newFakeDriver()
	f.attach(l.fileInput)
	f.show(l.title, l.body, l.tag, l.publish)
	return f
}

func TestPublishHappyPath(t *testing.T) {
	cfg := testConfig()
	l := locatorsFor(cfg)
	f := publishFormDriver(l)
	sess := &stubSession{}
	image := testImage(t)

	result, err := NewPublisher(f, sess, cfg, nil).Publish(context.Background(), image, note)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.PublishedAt.IsZero())
	assert.Empty(t, result.FailedSteps())
	assert.Equal(t, 1, sess.calls)
	assert.Equal(t, 1, sess.saves)
	assert.Equal(t, note.Title, result.Title)

	assert.True(t, f.called("navigate "+cfg.Platform.PublishPage()))
	assert.True(t, f.called("upload "+l.fileInput.String()+" "+image))
	assert.True(t, f.called("fill "+l.title.String()+" 周末去杭州"))
	assert.True(t, f.called("fill "+l.body.String()+" 西湖边走了一圈"))
	assert.True(t, f.called("fill "+l.tag.String()+" 旅行"))
	assert.True(t, f.called("press "+l.tag.String()+" Enter"))
	assert.True(t, f.called("click "+l.publish.String()))
	assert.Contains(t, result.Screenshots, "/shots/xhs_before_publish.png")
	assert.Contains(t, result.Screenshots, "/shots/xhs_after_publish.png")
}

func TestPublishBestEffortClicksDespiteFailures(t *testing.T) {
	cfg := testConfig()
	l := locatorsFor(cfg)
	f := newFakeDriver()
	f.show(l.body, l.publish)
	for _, sel := range cfg.Selectors.FileInput {
		f.failOn("inject", browser.CSS(sel))
	}

	result, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), testImage(t), note)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, result.FailedSteps(), StepUpload)
	assert.Contains(t, result.FailedSteps(), StepTitle)
	assert.NotContains(t, result.FailedSteps(), StepBody)
	assert.True(t, f.called("click "+l.publish.String()))
}

func TestPublishStrictAbortsBeforeClick(t *testing.T) {
	cfg := testConfig()
	cfg.Publish.Mode = config.PublishModeStrict
	l := locatorsFor(cfg)
	f := publishFormDriver(l)
	delete(f.visible, l.title.String())

	result, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), testImage(t), note)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStrictAbort))
	assert.Contains(t, err.Error(), StepTitle)
	assert.False(t, result.Success)
	assert.False(t, f.called("click "+l.publish.String()))
	_, clicked := result.Step(StepPublish)
	assert.False(t, clicked)
}

func TestPublishStrictIgnoresTagFailures(t *testing.T) {
	cfg := testConfig()
	cfg.Publish.Mode = config.PublishModeStrict
	cfg.Publish.TagFallback = false
	l := locatorsFor(cfg)
	f := publishFormDriver(l)
	delete(f.visible, l.tag.String())

	result, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), testImage(t), note)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{StepTags}, result.FailedSteps())
}

func TestPublishUploadFallbacks(t *testing.T) {
	cfg := testConfig()
	l := locatorsFor(cfg)

	t.Run("file chooser", func(t *testing.T) {
		f := publishFormDriver(l)
		f.attached = map[string]bool{}
		f.show(l.area)
		image := testImage(t)

		result, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), image, note)
		require.NoError(t, err)
		step, _ := result.Step(StepUpload)
		assert.True(t, step.OK())
		assert.True(t, f.called("chooser "+l.area.String()+" "+image))
	})

	t.Run("inject", func(t *testing.T) {
		f := publishFormDriver(l)
		f.attached = map[string]bool{}
		image := testImage(t)

		result, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), image, note)
		require.NoError(t, err)
		step, _ := result.Step(StepUpload)
		assert.True(t, step.OK())
		assert.True(t, f.called("inject "+l.fileInput.String()+" "+image))
	})

	t.Run("direct upload error falls through", func(t *testing.T) {
		f := publishFormDriver(l)
		f.failOn("upload", l.fileInput)
		f.show(l.area)
		image := testImage(t)

		_, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), image, note)
		require.NoError(t, err)
		assert.True(t, f.called("chooser "+l.area.String()+" "+image))
	})

	t.Run("all strategies fail", func(t *testing.T) {
		f := publishFormDriver(l)
		f.attached = map[string]bool{}
		for _, sel := range cfg.Selectors.FileInput {
			f.failOn("inject", browser.CSS(sel))
		}

		result, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), testImage(t), note)
		require.NoError(t, err, "best-effort still publishes")
		step, _ := result.Step(StepUpload)
		assert.False(t, step.OK())
		assert.True(t, errors.Is(step.Err, browser.ErrActionFailed))
	})
}

func TestPublishTagFallbackAppendsHashtags(t *testing.T) {
	cfg := testConfig()
	l := locatorsFor(cfg)
	f := publishFormDriver(l)
	delete(f.visible, l.tag.String())

	result, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), testImage(t), note)
	require.NoError(t, err)

	step, _ := result.Step(StepTags)
	assert.True(t, step.OK())
	assert.True(t, f.called("fill "+l.body.String()+" 西湖边走了一圈\n\n#旅行 #杭州"))
}

func TestPublishConfirmation(t *testing.T) {
	cfg := testConfig()
	l := locatorsFor(cfg)

	t.Run("declined", func(t *testing.T) {
		f := publishFormDriver(l)
		p := NewPublisher(f, &stubSession{}, cfg, nil, WithPublishConfirm(func(context.Context, string) (bool, error) {
			return false, nil
		}))

		result, err := p.Publish(context.Background(), testImage(t), note)
		assert.True(t, errors.Is(err, ErrPublishCancelled))
		assert.False(t, result.Success)
		assert.False(t, f.called("click "+l.publish.String()))
	})

	t.Run("accepted", func(t *testing.T) {
		f := publishFormDriver(l)
		p := NewPublisher(f, &stubSession{}, cfg, nil, WithPublishConfirm(func(context.Context, string) (bool, error) {
			return true, nil
		}))

		result, err := p.Publish(context.Background(), testImage(t), note)
		require.NoError(t, err)
		assert.True(t, result.Success)
		step, ok := result.Step(StepConfirm)
		assert.True(t, ok)
		assert.True(t, step.OK())
	})
}

func TestPublishSessionFailureStopsEarly(t *testing.T) {
	cfg := testConfig()
	f := publishFormDriver(locatorsFor(cfg))

	result, err := NewPublisher(f, &stubSession{err: ErrLoginTimeout}, cfg, nil).Publish(context.Background(), testImage(t), note)

	assert.True(t, errors.Is(err, ErrLoginTimeout))
	assert.Equal(t, []string{StepSession}, result.FailedSteps())
	assert.False(t, f.called("navigate "+cfg.Platform.PublishPage()))
}

func TestPublishMissingImage(t *testing.T) {
	cfg := testConfig()
	sess := &stubSession{}

	_, err := NewPublisher(newFakeDriver(), sess, cfg, nil).Publish(context.Background(), "/nope/missing.png", note)
	assert.Error(t, err)
	assert.Zero(t, sess.calls)
}

func TestPublishButtonMissing(t *testing.T) {
	cfg := testConfig()
	l := locatorsFor(cfg)
	f := publishFormDriver(l)
	delete(f.visible, l.publish.String())

	result, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(context.Background(), testImage(t), note)

	require.Error(t, err)
	assert.True(t, errors.Is(err, browser.ErrNotFound))
	assert.False(t, result.Success)
	assert.True(t, result.PublishedAt.IsZero())
}

func TestPublishRefreshesStoredCookies(t *testing.T) {
	cfg := testConfig()
	store := testStore()
	require.NoError(t, store.Save([]session.Cookie{{Name: "web_session", Value: "saved"}}))

	f := publishFormDriver(locatorsFor(cfg))
	f.cookies = []session.Cookie{{Name: "web_session", Value: "saved"}}
	// 打开发布页后服务端轮换了Cookie
	f.navigate = func(url string) (string, error) {
		if url == cfg.Platform.PublishPage() {
			f.cookies = []session.Cookie{{Name: "web_session", Value: "rotated"}}
		}
		return url, nil
	}

	lp := NewLoginPoller(f, store, cfg, nil)
	result, err := NewPublisher(f, lp, cfg, nil).Publish(context.Background(), testImage(t), note)
	require.NoError(t, err)
	require.True(t, result.Success)

	saved := store.Load()
	require.Len(t, saved, 1)
	assert.Equal(t, "rotated", saved[0].Value)
}

func TestPublishFailureKeepsStoredCookies(t *testing.T) {
	cfg := testConfig()
	l := locatorsFor(cfg)
	f := publishFormDriver(l)
	delete(f.visible, l.publish.String())
	sess := &stubSession{}

	_, err := NewPublisher(f, sess, cfg, nil).Publish(context.Background(), testImage(t), note)
	require.Error(t, err)
	assert.Zero(t, sess.saves)
}

func TestPublishCancelledContext(t *testing.T) {
	cfg := testConfig()
	f := publishFormDriver(locatorsFor(cfg))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPublisher(f, &stubSession{}, cfg, nil).Publish(ctx, testImage(t), note)
	assert.True(t, errors.Is(err, context.Canceled))
}
