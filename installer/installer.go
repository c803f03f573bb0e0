package installer

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"github.com/xhs-publisher/logging"
	"go.uber.org/zap"
)

// 只需要 Chromium
var runOptions = &playwright.RunOptions{
	Browsers: []string{"chromium"},
}

// EnsurePlaywrightInstalled 检查 Playwright 驱动和 Chromium，缺失时自动安装
func EnsurePlaywrightInstalled(logger *zap.Logger) error {
	logger = logging.OrNop(logger).Named("installer")

	err := verify()
	if err == nil {
		logger.Debug("✅ Playwright 已正确安装")
		return nil
	}
	if !needsInstall(err) {
		return errors.Wrap(err, "检查 Playwright 失败")
	}

	logger.Info("📦 检测到 Playwright 或浏览器缺失，开始安装...", zap.Error(err))
	return install(logger)
}

// needsInstall 根据错误信息判断是否是未安装
func needsInstall(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"no such file or directory",
		"could not start driver",
		"please install the driver",
		"Executable doesn't exist",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func install(logger *zap.Logger) error {
	logger.Info("⬇️ 正在安装 Playwright Chromium 浏览器...")

	if err := playwright.Install(runOptions); err != nil {
		logger.Error("❌ 安装失败", zap.Error(err))
		return errors.Wrap(err, "安装 Playwright 失败")
	}

	if err := verify(); err != nil {
		return errors.Wrap(err, "安装后验证浏览器失败")
	}

	logger.Info("✅ 浏览器安装并验证成功")
	return nil
}

// verify 启动并关闭一次 Chromium
func verify() error {
	pw, err := playwright.Run(runOptions)
	if err != nil {
		return err
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch()
	if err != nil {
		return err
	}
	return browser.Close()
}
