package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
)

// confirm y/N 确认，Ctrl+C 返回 context.Canceled
func confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	prompt := promptui.Prompt{
		Label:     message,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, context.Canceled
	default:
		return false, errors.Wrap(err, "读取输入失败")
	}
}

// ask 读取一行输入，def 为默认值
func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	value, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) {
		return "", context.Canceled
	}
	if err != nil {
		return "", errors.Wrap(err, "读取输入失败")
	}
	return strings.TrimSpace(value), nil
}

// choose 从选项中选择一个，返回下标
func choose(label string, items []string) (int, error) {
	sel := promptui.Select{
		Label: label,
		Items: items,
	}
	i, _, err := sel.Run()
	if errors.Is(err, promptui.ErrInterrupt) {
		return 0, context.Canceled
	}
	if err != nil {
		return 0, errors.Wrap(err, "读取选择失败")
	}
	return i, nil
}

func fileExists(path string) error {
	info, err := os.Stat(strings.TrimSpace(path))
	if err != nil {
		return errors.New("文件不存在")
	}
	if info.IsDir() {
		return errors.New("这是一个目录")
	}
	return nil
}
