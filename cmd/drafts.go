package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xhs-publisher/article"
	"github.com/xhs-publisher/content"
)

func newDraftsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drafts [DIR]",
		Short: "列出目录下的 Markdown 草稿",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "drafts"
			if len(args) == 1 {
				dir = args[0]
			}

			drafts, err := article.NewParser(dir).ParseAllFiles()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(drafts) == 0 {
				fmt.Fprintf(w, "%s %s 下没有找到 .md 文件\n", yellow("⚠️"), dir)
				return nil
			}

			fmt.Fprintf(w, "%s 成功解析 %d 篇草稿:\n", green("✅"), len(drafts))
			for i, d := range drafts {
				cover := gray("无配图")
				if path, ok := d.CoverImage(); ok {
					cover = path
				}
				fmt.Fprintf(w, "  %d. %s (%d行) %s\n", i+1, bold(d.Title), len(d.Body), cyan(d.Path))
				fmt.Fprintf(w, "     🏷️ %s  🖼️ %s\n", content.Hashtags(d.Tags), cover)
			}
			return nil
		},
	}
}
