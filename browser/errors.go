package browser

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
)

// 浏览器操作失败的分类
var (
	ErrNotFound     = errors.New("元素未找到")
	ErrActionFailed = errors.New("操作失败")
	ErrTimeout      = errors.New("等待超时")
	ErrNavigation   = errors.New("页面跳转失败")
)

// ActionError 带分类的浏览器操作错误，调用方根据 Kind 决定是否可以忽略
type ActionError struct {
	Kind   error
	Op     string
	Target string
	Err    error
}

func (e *ActionError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, ErrNotFound) 这类判断直接作用在分类上
func (e *ActionError) Is(target error) bool {
	return target == e.Kind
}

func newActionError(kind error, op, target string, err error) *ActionError {
	if err != nil && kind != ErrNavigation && errors.Is(err, playwright.ErrTimeout) {
		kind = ErrTimeout
	}
	return &ActionError{Kind: kind, Op: op, Target: target, Err: err}
}
