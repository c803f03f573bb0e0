package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhs-publisher/content"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		image string
		title string
		body  string
		tags  string
		count int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "根据图片文件名生成标题、正文和标签（不打开浏览器）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := content.New(nil, a.logger)
			overrides := content.Overrides{Title: title, Body: body, Tags: content.SplitTags(tags)}
			for i := 0; i < count; i++ {
				printPreview(cmd.OutOrStdout(), gen.Generate(image, overrides))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&image, "image", "i", "", "图片路径（只看文件名，不读取内容）")
	f.StringVarP(&title, "title", "t", "", "自定义标题")
	f.StringVarP(&body, "content", "c", "", "自定义正文")
	f.StringVar(&tags, "tags", "", "自定义标签（逗号分隔）")
	f.IntVarP(&count, "count", "n", 1, "生成几份")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

// printPreview 彩色版的 content.Preview
func printPreview(w io.Writer, c content.Content) {
	line := strings.Repeat("=", 50)
	fmt.Fprintln(w)
	fmt.Fprintln(w, gray(line))
	fmt.Fprintf(w, "📝 标题: %s\n", bold(c.Title))
	fmt.Fprintln(w, gray(line))
	fmt.Fprintf(w, "🏷️  标签: %s\n\n", cyan(content.Hashtags(c.Tags)))
	fmt.Fprintln(w, gray(line))
	fmt.Fprintln(w, "📄 正文:")
	fmt.Fprintln(w, gray(line))
	fmt.Fprintln(w, c.Body)
	fmt.Fprintln(w)
	fmt.Fprintln(w, gray(line))
	fmt.Fprintf(w, "📊 分析: 类型=%s, 情绪=%s, 主题=%s\n", yellow(string(c.Category)), c.Mood, c.Theme)
	fmt.Fprintln(w, gray(line))
}
