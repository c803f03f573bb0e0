package cmd

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrCookiesInvalid 没有找到登录态Cookie
var ErrCookiesInvalid = errors.New("Cookies可能已失效（没有找到登录态cookie）")

func newCookiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "查看、检查或清除保存的Cookie",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "显示保存的Cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			cookies := store.Load()
			if len(cookies) == 0 {
				fmt.Fprintln(w, red("❌ 没有找到保存的cookies"))
				return nil
			}

			fmt.Fprintf(w, "\n📂 保存的cookies: %s\n", store.Path())
			fmt.Fprintf(w, "数量: %d 个\n\n主要Cookies:\n", len(cookies))
			for _, c := range cookies {
				prefix := "  "
				if store.IsImportant(c) {
					prefix = "⭐"
				}
				fmt.Fprintf(w, "  %s %s: %s\n", prefix, c.Name, truncateValue(c.Value, 20))
				fmt.Fprintf(w, "      域名: %s\n", gray(c.Domain))
			}
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "检查Cookie是否包含登录态",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			if !store.IsValid(store.Load()) {
				return ErrCookiesInvalid
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("✅ Cookies看起来有效"))
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "清除保存的Cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(cmd.Context(), fmt.Sprintf("确认删除 %s", store.Path()))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), yellow("已取消"))
					return nil
				}
			}

			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("✅ 已清除保存的cookies"))
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "不再确认")

	cmd.AddCommand(show, check, clearCmd)
	cmd.Args = cobra.NoArgs
	cmd.RunE = show.RunE
	return cmd
}

func truncateValue(v string, n int) string {
	if utf8.RuneCountInString(v) <= n {
		return v
	}
	return string([]rune(v)[:n]) + "..."
}
