package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Locator 元素定位策略，更换选择器不需要改动流程代码
type Locator interface {
	Resolve(page playwright.Page) playwright.Locator
	String() string
}

// CSS 按CSS选择器定位（也接受 Playwright 的 text= / :has-text() 扩展语法）
type CSS string

func (c CSS) Resolve(page playwright.Page) playwright.Locator {
	return page.Locator(string(c))
}

func (c CSS) String() string {
	return "css=" + string(c)
}

// ByPlaceholder 按输入框的 placeholder 定位
type ByPlaceholder string

func (p ByPlaceholder) Resolve(page playwright.Page) playwright.Locator {
	return page.GetByPlaceholder(string(p))
}

func (p ByPlaceholder) String() string {
	return fmt.Sprintf("placeholder=%q", string(p))
}

// ByVisibleText 按可见文字定位
type ByVisibleText struct {
	Text  string
	Exact bool
}

func (t ByVisibleText) Resolve(page playwright.Page) playwright.Locator {
	return page.GetByText(t.Text, playwright.PageGetByTextOptions{Exact: playwright.Bool(t.Exact)})
}

func (t ByVisibleText) String() string {
	if t.Exact {
		return fmt.Sprintf("text=%q", t.Text)
	}
	return "text=" + t.Text
}

// ByRole 按无障碍角色与名称定位
type ByRole struct {
	Role playwright.AriaRole
	Name string
}

func (r ByRole) Resolve(page playwright.Page) playwright.Locator {
	if r.Name == "" {
		return page.GetByRole(r.Role)
	}
	return page.GetByRole(r.Role, playwright.PageGetByRoleOptions{Name: r.Name})
}

func (r ByRole) String() string {
	if r.Name == "" {
		return fmt.Sprintf("role=%s", string(r.Role))
	}
	return fmt.Sprintf("role=%s[name=%q]", string(r.Role), r.Name)
}

// CSSList 把配置里的选择器列表转成定位器
func CSSList(selectors []string) []Locator {
	out := make([]Locator, 0, len(selectors))
	for _, s := range selectors {
		if s != "" {
			out = append(out, CSS(s))
		}
	}
	return out
}

// PlaceholderList 按 placeholder 文案生成定位器
func PlaceholderList(placeholders []string) []Locator {
	out := make([]Locator, 0, len(placeholders))
	for _, p := range placeholders {
		if p != "" {
			out = append(out, ByPlaceholder(p))
		}
	}
	return out
}

// ButtonList 按钮文字依次生成 role=button 和可见文字两种定位器
func ButtonList(names []string) []Locator {
	out := make([]Locator, 0, len(names)*2)
	for _, n := range names {
		if n == "" {
			continue
		}
		out = append(out,
			ByRole{Role: playwright.AriaRole("button"), Name: n},
			ByVisibleText{Text: n, Exact: true},
		)
	}
	return out
}

// TextList 按可见文字（模糊匹配）生成定位器
func TextList(texts []string) []Locator {
	out := make([]Locator, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			out = append(out, ByVisibleText{Text: t})
		}
	}
	return out
}
