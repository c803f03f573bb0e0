package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/xhs-publisher/browser"
	"github.com/xhs-publisher/config"
	"github.com/xhs-publisher/installer"
	"github.com/xhs-publisher/logging"
	"github.com/xhs-publisher/session"
	"go.uber.org/zap"
)

// 没有指定 --config 时依次查找
var defaultConfigPaths = []string{
	"config.yaml",
	"config.ini",
	"~/.xiaohongshu_publisher/config.yaml",
}

// app 命令之间共享的配置和日志器
type app struct {
	cfgFile  string
	logLevel string
	headless bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd 创建命令树
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "xhs-publisher",
		Short:         "小红书图文笔记自动发布工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "配置文件路径（.yaml 或 .ini）")
	flags.StringVar(&a.logLevel, "log-level", "", "日志级别: debug|info|warn|error")
	flags.BoolVar(&a.headless, "headless", false, "无界面模式运行浏览器")

	root.AddCommand(
		newPublishCmd(a),
		newLoginCmd(a),
		newCookiesCmd(a),
		newGenerateCmd(a),
		newDraftsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute 运行命令，出错时退出码为1
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "读取 .env 失败")
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = a.headless
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.cfgFile != "" {
		return config.LoadConfig(a.cfgFile)
	}
	if env := os.Getenv("XHS_CONFIG"); env != "" {
		return config.LoadConfig(env)
	}

	for _, candidate := range defaultConfigPaths {
		path, err := homedir.Expand(candidate)
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return config.LoadConfig(path)
		}
	}
	return config.FromEnv()
}

func (a *app) store() (*session.Store, error) {
	path, err := a.cfg.CookiePath()
	if err != nil {
		return nil, err
	}
	return session.NewStore(path,
		session.WithDefaultDomain(a.cfg.Session.DefaultDomain),
		session.WithValidNames(a.cfg.Session.ValidNames),
		session.WithLogger(a.logger),
	), nil
}

// launch 按需安装 Playwright 后启动浏览器
func (a *app) launch() (*browser.Session, error) {
	if a.cfg.Browser.AutoInstall {
		if err := installer.EnsurePlaywrightInstalled(a.logger); err != nil {
			return nil, err
		}
	}
	return browser.Launch(a.cfg, a.logger)
}
