package article

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/xhs-publisher/content"
)

// Markdown图片：![alt文本](图片路径)
var imageRegex = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// Draft 一篇待发布的笔记草稿
type Draft struct {
	Title  string   `json:"title"`  // 第一行，去掉开头的 #
	Body   []string `json:"body"`   // 正文（每行一个元素），不含标签行和单独的图片行
	Tags   []string `json:"tags"`   // 形如 "#旅行 #周末" 的行
	Path   string   `json:"path"`   // 文件路径
	Images []Image  `json:"images"` // 草稿中引用的图片
}

// Image 图片信息
type Image struct {
	AltText      string `json:"alt_text"`
	RelativePath string `json:"relative_path"` // 如 ./images/example.png
	AbsolutePath string `json:"absolute_path"`
	LineIndex    int    `json:"line_index"` // 在原文件正文中的行号（不含标题行）
}

// Parser 草稿解析器
type Parser struct {
	fs  afero.Fs
	dir string
}

// NewParser 创建草稿解析器
func NewParser(dir string) *Parser {
	return NewParserFs(afero.NewOsFs(), dir)
}

// NewParserFs 使用指定文件系统创建解析器
func NewParserFs(fs afero.Fs, dir string) *Parser {
	return &Parser{fs: fs, dir: dir}
}

// ParseFile 解析单个 Markdown 文件
func (p *Parser) ParseFile(filePath string) (*Draft, error) {
	data, err := afero.ReadFile(p.fs, filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "无法打开文件 %s", filePath)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lines := make([]string, 0)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "读取文件时发生错误 %s", filePath)
	}

	if len(lines) == 0 {
		return nil, errors.Errorf("文件为空 %s", filePath)
	}

	title := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(lines[0]), "#"))
	if title == "" {
		return nil, errors.Errorf("标题不能为空 %s", filePath)
	}

	draft := &Draft{
		Title:  title,
		Body:   make([]string, 0),
		Tags:   make([]string, 0),
		Path:   filePath,
		Images: make([]Image, 0),
	}

	rest := lines[1:]
	draft.Images = p.parseImages(rest, filePath)

	for _, line := range rest {
		if tags, ok := parseTagLine(line); ok {
			draft.Tags = append(draft.Tags, tags...)
			continue
		}
		if imageRegex.ReplaceAllString(strings.TrimSpace(line), "") == "" && strings.TrimSpace(line) != "" {
			continue
		}
		draft.Body = append(draft.Body, line)
	}
	draft.Body = trimBlank(draft.Body)

	return draft, nil
}

// ParseAllFiles 解析目录下的所有 .md 文件
func (p *Parser) ParseAllFiles() ([]*Draft, error) {
	drafts := make([]*Draft, 0)

	err := afero.Walk(p.fs, p.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".md") {
			draft, parseErr := p.ParseFile(path)
			if parseErr != nil {
				return errors.Wrapf(parseErr, "解析文件 %s 失败", path)
			}
			drafts = append(drafts, draft)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return drafts, nil
}

// BodyText 正文按行连接
func (d *Draft) BodyText() string {
	return strings.Join(d.Body, "\n")
}

// CoverImage 第一张图片作为笔记配图
func (d *Draft) CoverImage() (string, bool) {
	if len(d.Images) == 0 {
		return "", false
	}
	return d.Images[0].AbsolutePath, true
}

// Overrides 草稿内容作为生成器的覆盖值，未填写的部分仍自动生成
func (d *Draft) Overrides() content.Overrides {
	return content.Overrides{
		Title: d.Title,
		Body:  d.BodyText(),
		Tags:  d.Tags,
	}
}

// parseImages 解析草稿中的图片
func (p *Parser) parseImages(lines []string, draftPath string) []Image {
	images := make([]Image, 0)
	draftDir := filepath.Dir(draftPath)

	for i, line := range lines {
		for _, match := range imageRegex.FindAllStringSubmatch(line, -1) {
			relativePath := strings.TrimSpace(match[2])

			absolutePath := relativePath
			if !filepath.IsAbs(relativePath) {
				absolutePath = filepath.Join(draftDir, relativePath)
			}
			if absPath, err := filepath.Abs(absolutePath); err == nil {
				absolutePath = absPath
			}

			images = append(images, Image{
				AltText:      match[1],
				RelativePath: relativePath,
				AbsolutePath: absolutePath,
				LineIndex:    i,
			})
		}
	}

	return images
}

// parseTagLine 整行都是 #标签 时返回标签
func parseTagLine(line string) ([]string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		tag := strings.TrimLeft(f, "#")
		if !strings.HasPrefix(f, "#") || tag == "" {
			return nil, false
		}
		tags = append(tags, tag)
	}
	return tags, true
}

func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// String 草稿的字符串表示
func (d *Draft) String() string {
	return fmt.Sprintf("标题: %s\n正文行数: %d\n标签: %s\n图片数量: %d\n文件路径: %s",
		d.Title, len(d.Body), content.Hashtags(d.Tags), len(d.Images), d.Path)
}
