package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/xhs-publisher/article"
	"github.com/xhs-publisher/content"
	"github.com/xhs-publisher/xiaohongshu"
	"go.uber.org/zap"
)

const (
	modeAuto        = "auto"
	modeInteractive = "interactive"
)

type publishOptions struct {
	image       string
	title       string
	body        string
	tags        string
	draft       string
	noPreview   bool
	noConfirm   bool
	interactive bool
	mode        string
	publishMode string
}

func newPublishCmd(a *app) *cobra.Command {
	o := &publishOptions{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "发布一篇图文笔记",
		Example: `  xhs-publisher publish -i ./poster_励志.png
  xhs-publisher publish -i cat.jpg -t "我家猫" --tags 猫咪,日常 --no-confirm
  xhs-publisher publish --draft drafts/hangzhou.md
  xhs-publisher publish --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, a, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.image, "image", "i", "", "图片路径")
	f.StringVarP(&o.title, "title", "t", "", "自定义标题")
	f.StringVarP(&o.body, "content", "c", "", "自定义正文")
	f.StringVar(&o.tags, "tags", "", "自定义标签（逗号分隔）")
	f.StringVar(&o.draft, "draft", "", "从 Markdown 草稿读取标题、正文、标签和配图")
	f.BoolVar(&o.noPreview, "no-preview", false, "不预览直接发布")
	f.BoolVar(&o.noConfirm, "no-confirm", false, "发布前不确认")
	f.BoolVar(&o.interactive, "interactive", false, "交互模式")
	f.StringVar(&o.mode, "mode", modeAuto, "运行模式: auto|interactive")
	f.StringVar(&o.publishMode, "publish-mode", "", "发布策略: best-effort|strict（默认取配置）")
	return cmd
}

func runPublish(cmd *cobra.Command, a *app, o *publishOptions) error {
	switch o.mode {
	case modeAuto:
	case modeInteractive:
		o.interactive = true
	default:
		return errors.Errorf("未知的运行模式: %q", o.mode)
	}

	if o.publishMode != "" {
		a.cfg.Publish.Mode = o.publishMode
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}

	image, overrides, err := o.resolve(cmd.OutOrStdout(), a)
	if err != nil {
		return err
	}
	if image == "" {
		return errors.New("请通过 --image、--draft 或 --interactive 指定图片")
	}
	if err := fileExists(image); err != nil {
		return errors.Wrapf(err, "图片无效 %s", image)
	}

	note := content.New(nil, a.logger).Generate(image, overrides)
	if o.interactive || !o.noPreview {
		printPreview(cmd.OutOrStdout(), note)
	}

	sess, err := a.launch()
	if err != nil {
		return err
	}
	defer sess.Close()

	store, err := a.store()
	if err != nil {
		return err
	}

	poller := xiaohongshu.NewLoginPoller(sess, store, a.cfg, a.logger, xiaohongshu.WithLoginConfirm(confirm))

	var opts []xiaohongshu.PublishOption
	if o.interactive || !o.noConfirm {
		opts = append(opts, xiaohongshu.WithPublishConfirm(confirm))
	}
	publisher := xiaohongshu.NewPublisher(sess, poller, a.cfg, a.logger, opts...)

	result, err := publisher.Publish(cmd.Context(), image, note)
	printResult(cmd.OutOrStdout(), result)
	return err
}

// resolve 合并草稿、命令行参数和交互输入，命令行参数优先
func (o *publishOptions) resolve(w io.Writer, a *app) (string, content.Overrides, error) {
	image := o.image
	var overrides content.Overrides

	if o.draft != "" {
		draft, err := article.NewParser("").ParseFile(o.draft)
		if err != nil {
			return "", overrides, err
		}
		overrides = draft.Overrides()
		if cover, ok := draft.CoverImage(); ok && image == "" {
			image = cover
		}
		a.logger.Info("📄 已读取草稿", zap.String("path", o.draft), zap.String("title", draft.Title))
	}

	if o.title != "" {
		overrides.Title = o.title
	}
	if o.body != "" {
		overrides.Body = o.body
	}
	if o.tags != "" {
		overrides.Tags = content.SplitTags(o.tags)
	}

	if !o.interactive {
		return image, overrides, nil
	}
	return o.interact(w, image, overrides)
}

func (o *publishOptions) interact(w io.Writer, image string, overrides content.Overrides) (string, content.Overrides, error) {
	fmt.Fprintln(w, cyan("💬 欢迎使用小红书发布助手（交互模式）"))

	image, err := ask("图片路径", image, fileExists)
	if err != nil {
		return "", overrides, err
	}

	choice, err := choose("标题和文案", []string{"自动生成", "自己填写"})
	if err != nil {
		return "", overrides, err
	}
	if choice == 0 {
		return image, overrides, nil
	}

	if overrides.Title, err = ask("标题", overrides.Title, nil); err != nil {
		return "", overrides, err
	}
	if overrides.Body, err = ask("正文", overrides.Body, nil); err != nil {
		return "", overrides, err
	}
	tags, err := ask("标签（逗号分隔，留空自动生成）", strings.Join(overrides.Tags, ","), nil)
	if err != nil {
		return "", overrides, err
	}
	overrides.Tags = content.SplitTags(tags)
	return image, overrides, nil
}

func printResult(w io.Writer, r *xiaohongshu.PublishResult) {
	if r == nil {
		return
	}
	fmt.Fprintln(w)
	for _, s := range r.Steps {
		if s.OK() {
			fmt.Fprintf(w, "  %s %s\n", green("✅"), s.Name)
		} else {
			fmt.Fprintf(w, "  %s %s: %v\n", red("❌"), s.Name, s.Err)
		}
	}
	if r.Success {
		fmt.Fprintf(w, "\n%s 《%s》发布于 %s\n", green("🎉 发布成功"), r.Title, r.PublishedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintf(w, "\n%s\n", red("❌ 发布未完成"))
	}
	for _, shot := range r.Screenshots {
		fmt.Fprintf(w, "  📸 %s\n", gray(shot))
	}
	if failed := r.FailedSteps(); r.Success && len(failed) > 0 {
		fmt.Fprintf(w, "%s %s\n", yellow("⚠️ 以下步骤失败，请在浏览器中检查:"), strings.Join(failed, ", "))
	}
}
