package content

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xhs-publisher/logging"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

const (
	// MaxTitleLength 标题最多字符数，超出截断并加省略号
	MaxTitleLength = 20
	// MaxCustomTags 用户指定标签的上限
	MaxCustomTags = 9

	minAutoTags = 5
	maxAutoTags = 7
)

// Classification 图片分类结果
type Classification struct {
	Category Category
	Mood     string
	Theme    string
}

// Overrides 用户指定的内容，空值表示自动生成
type Overrides struct {
	Title string
	Body  string
	Tags  []string
}

// Content 一篇笔记的标题、正文和标签
type Content struct {
	Title    string
	Body     string
	Tags     []string
	Category Category
	Mood     string
	Theme    string
}

// Generator 根据图片文件名生成小红书风格文案
type Generator struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// New 创建生成器，rng 为 nil 时使用按时间播种的随机源
func New(rng *rand.Rand, logger *zap.Logger) *Generator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Generator{
		rng:    rng,
		logger: logging.OrNop(logger).Named("content"),
	}
}

// Classify 按文件名和完整路径中的关键词判断类型，默认日常
func Classify(path string) Classification {
	fold := cases.Fold()
	name := fold.String(filepath.Base(path))
	full := fold.String(path)

	category := Daily
	for _, rule := range keywordRules {
		if matchAny(name, full, rule.keywords) {
			category = rule.category
			break
		}
	}

	d := categoryDefaults[category]
	return Classification{Category: category, Mood: d.mood, Theme: d.theme}
}

func matchAny(name, full string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) || strings.Contains(full, kw) {
			return true
		}
	}
	return false
}

// Title 生成标题；override 非空时原样使用，同样受长度限制
func (g *Generator) Title(c Classification, override string) string {
	title := override
	if title == "" {
		title = substitute(g.pick(lookup(titleTemplates, c.Category)), c)
	}
	return truncateTitle(title)
}

// Body 生成正文：开头 + 主体 + 结尾；override 非空时原样返回
func (g *Generator) Body(c Classification, override string) string {
	if override != "" {
		return override
	}

	intro := g.pick(lookup(intros, c.Category))
	outro := g.pick(lookup(outros, c.Category))
	body := g.pick(lookup(bodyTemplates, c.Category))
	body = strings.ReplaceAll(body, "{saying}", g.pick(lookup(sayings, c.Category)))

	return substitute(intro+"\n\n"+body+outro, c)
}

// Tags 生成标签。override 清洗后非空时截取前9个；
// 否则从类型标签和通用标签中随机取5到7个
func (g *Generator) Tags(c Classification, override []string) []string {
	if custom := CleanTags(override); len(custom) > 0 {
		if len(custom) > MaxCustomTags {
			custom = custom[:MaxCustomTags]
		}
		return custom
	}

	pool := append(append([]string{}, lookup(tagPools, c.Category)...), GenericTags...)
	g.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	n := minAutoTags + g.rng.IntN(maxAutoTags-minAutoTags+1)
	return pool[:n]
}

// Generate 分析图片并生成完整内容
func (g *Generator) Generate(imagePath string, o Overrides) Content {
	c := Classify(imagePath)
	g.logger.Info("🖼️ 图片分析结果",
		zap.String("type", string(c.Category)),
		zap.String("mood", c.Mood),
		zap.String("theme", c.Theme),
	)

	out := Content{
		Title:    g.Title(c, o.Title),
		Body:     g.Body(c, o.Body),
		Tags:     g.Tags(c, o.Tags),
		Category: c.Category,
		Mood:     c.Mood,
		Theme:    c.Theme,
	}

	g.logger.Info("✅ 内容生成完成",
		zap.String("title", out.Title),
		zap.Int("body_len", utf8.RuneCountInString(out.Body)),
		zap.Strings("tags", out.Tags),
	)
	return out
}

// CleanTags 去掉空白和开头的#，丢弃空标签
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(t), "#"))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitTags 解析逗号分隔的标签（兼容中文逗号）
func SplitTags(s string) []string {
	return CleanTags(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，'
	}))
}

// Hashtags 把标签渲染成 "#a #b"
func Hashtags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, "#"+t)
	}
	return strings.Join(parts, " ")
}

// Preview 渲染内容预览
func Preview(c Content) string {
	line := strings.Repeat("=", 50)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n📝 标题: %s\n%s\n", line, c.Title, line)
	fmt.Fprintf(&b, "🏷️  标签: %s\n\n", Hashtags(c.Tags))
	fmt.Fprintf(&b, "%s\n📄 正文:\n%s\n%s\n\n", line, line, c.Body)
	fmt.Fprintf(&b, "%s\n📊 分析: 类型=%s, 情绪=%s, 主题=%s\n%s\n", line, c.Category, c.Mood, c.Theme, line)
	return b.String()
}

func (g *Generator) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[g.rng.IntN(len(options))]
}

func substitute(s string, c Classification) string {
	replacements := map[string]string{
		"theme":   c.Theme,
		"topic":   c.Theme,
		"emotion": c.Mood,
		"mood":    c.Mood,
	}
	for k, v := range fixedReplacements {
		replacements[k] = v
	}
	for k, v := range replacements {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:MaxTitleLength-1]) + "…"
}
