package session

import (
	"github.com/playwright-community/playwright-go"
)

// Cookie 浏览器Cookie记录，字段名与Playwright导出的JSON保持一致
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path"`
	Secure   bool     `json:"secure"`
	HTTPOnly *bool    `json:"httpOnly,omitempty"`
	Expires  *float64 `json:"expires,omitempty"`
	SameSite string   `json:"sameSite,omitempty"`
}

// normalize 补全缺省字段：域名、路径"/"、httpOnly=true；
// 过期时间<=0（会话Cookie）不写入
func (c Cookie) normalize(defaultDomain string) Cookie {
	if c.Domain == "" {
		c.Domain = defaultDomain
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.HTTPOnly == nil {
		c.HTTPOnly = playwright.Bool(true)
	}
	if c.Expires != nil && *c.Expires <= 0 {
		c.Expires = nil
	}
	return c
}

// Normalize 按默认域名补全字段
func Normalize(cookies []Cookie, defaultDomain string) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" || c.Value == "" {
			continue
		}
		out = append(out, c.normalize(defaultDomain))
	}
	return out
}

// FromPlaywright 把浏览器上下文导出的Cookie转换成存储格式
func FromPlaywright(cookies []playwright.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, pc := range cookies {
		c := Cookie{
			Name:     pc.Name,
			Value:    pc.Value,
			Domain:   pc.Domain,
			Path:     pc.Path,
			Secure:   pc.Secure,
			HTTPOnly: playwright.Bool(pc.HttpOnly),
		}
		if pc.Expires > 0 {
			c.Expires = playwright.Float(pc.Expires)
		}
		if pc.SameSite != nil {
			c.SameSite = string(*pc.SameSite)
		}
		out = append(out, c)
	}
	return out
}

// ToPlaywright 转换成可以加载到浏览器上下文的Cookie
func ToPlaywright(cookies []Cookie, defaultDomain string) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range Normalize(cookies, defaultDomain) {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			Secure:   playwright.Bool(c.Secure),
			HttpOnly: c.HTTPOnly,
			Expires:  c.Expires,
		}

		switch c.SameSite {
		case "Lax":
			oc.SameSite = playwright.SameSiteAttributeLax
		case "Strict":
			oc.SameSite = playwright.SameSiteAttributeStrict
		case "None":
			oc.SameSite = playwright.SameSiteAttributeNone
		}

		out = append(out, oc)
	}
	return out
}
