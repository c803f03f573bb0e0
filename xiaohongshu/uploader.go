package xiaohongshu

import (
	"github.com/pkg/errors"
	"github.com/xhs-publisher/browser"
	"go.uber.org/zap"
)

// uploadStrategy 一种上传图片的方式
type uploadStrategy struct {
	name string
	run  func(path string) error
}

// uploadImage 依次尝试：直接设置 file input、点击上传区域拦截文件选择框、脚本注入 File
func (p *Publisher) uploadImage(path string) error {
	fileInputs := browser.CSSList(p.cfg.Selectors.FileInput)

	strategies := []uploadStrategy{
		{name: "file-input", run: func(path string) error {
			return p.uploadDirect(fileInputs, path)
		}},
		{name: "file-chooser", run: p.uploadViaChooser},
		{name: "inject", run: func(path string) error {
			return p.uploadInject(fileInputs, path)
		}},
	}

	var errs []error
	for _, s := range strategies {
		err := s.run(path)
		if err == nil {
			p.logger.Info("✅ 图片上传成功", zap.String("strategy", s.name), zap.String("image", path))
			return nil
		}
		p.logger.Debug("上传方式失败，尝试下一种", zap.String("strategy", s.name), zap.Error(err))
		errs = append(errs, errors.Wrap(err, s.name))
	}

	return errors.Wrapf(errs[len(errs)-1], "所有上传方式均失败（共%d种）", len(errs))
}

func (p *Publisher) uploadDirect(inputs []browser.Locator, path string) error {
	var lastErr error = errors.New("没有配置 file input 选择器")
	for _, loc := range inputs {
		if err := p.driver.Find(loc, p.cfg.Timeouts.ElementWait); err != nil {
			lastErr = err
			continue
		}
		if err := p.driver.UploadFile(loc, path); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func (p *Publisher) uploadViaChooser(path string) error {
	area, err := p.driver.FirstVisible(browser.CSSList(p.cfg.Selectors.UploadArea), p.cfg.Timeouts.ElementWait)
	if err != nil {
		return err
	}
	return p.driver.UploadViaChooser(area, path)
}

func (p *Publisher) uploadInject(inputs []browser.Locator, path string) error {
	var lastErr error = errors.New("没有配置 file input 选择器")
	for _, loc := range inputs {
		if err := p.driver.InjectFile(loc, path); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
