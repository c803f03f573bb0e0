package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/xhs-publisher/xiaohongshu"
)

func newLoginCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "扫码登录并保存Cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if force {
				if _, err := poller.Login(cmd.Context()); err != nil {
					return err
				}
			} else if err := poller.EnsureSession(cmd.Context()); err != nil {
				return err
			}

			if err := poller.SaveSession(); err != nil {
				return errors.Wrap(err, "登录成功但保存Cookie失败")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Cookie已保存到 %s\n", green("✅ 登录成功"), store.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "忽略已保存的Cookie，重新扫码")
	return cmd
}
