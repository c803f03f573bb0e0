package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/xhs-publisher/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件管理",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "写出默认配置（默认 ./config.yaml）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			expanded, err := homedir.Expand(path)
			if err != nil {
				return errors.Wrapf(err, "无法解析配置路径 %s", path)
			}
			if _, err := os.Stat(expanded); err == nil && !force {
				return errors.Errorf("%s 已存在，使用 --force 覆盖", expanded)
			}

			if err := config.WriteDefault(expanded); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("✅ 已写入默认配置"), expanded)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "覆盖已存在的文件")

	cmd.AddCommand(initCmd)
	return cmd
}
