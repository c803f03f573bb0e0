package article

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDraft = `# 周末去杭州
![封面](./images/cover.png)

西湖边走了一圈，风很舒服。
## 小结
值得再去 ![顺路](/abs/lake.jpg)

#旅行 #杭州
#周末
`

func newTestParser(t *testing.T, files map[string]string) *Parser {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, data := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(data), 0644))
	}
	return NewParserFs(fs, "/drafts")
}

func TestParseFile(t *testing.T) {
	p := newTestParser(t, map[string]string{"/drafts/hz.md": sampleDraft})

	d, err := p.ParseFile("/drafts/hz.md")
	require.NoError(t, err)

	assert.Equal(t, "周末去杭州", d.Title)
	assert.Equal(t, []string{"旅行", "杭州", "周末"}, d.Tags)
	assert.Equal(t, []string{
		"西湖边走了一圈，风很舒服。",
		"## 小结",
		"值得再去 ![顺路](/abs/lake.jpg)",
	}, d.Body)

	require.Len(t, d.Images, 2)
	assert.Equal(t, "封面", d.Images[0].AltText)
	assert.Equal(t, "./images/cover.png", d.Images[0].RelativePath)
	assert.Equal(t, "/drafts/images/cover.png", d.Images[0].AbsolutePath)
	assert.Equal(t, 0, d.Images[0].LineIndex)
	assert.Equal(t, "/abs/lake.jpg", d.Images[1].AbsolutePath)
	assert.Equal(t, 4, d.Images[1].LineIndex)

	cover, ok := d.CoverImage()
	assert.True(t, ok)
	assert.Equal(t, "/drafts/images/cover.png", cover)
}

func TestDraftOverrides(t *testing.T) {
	p := newTestParser(t, map[string]string{"/drafts/a.md": "标题\n正文第一行\n正文第二行\n#日常"})

	d, err := p.ParseFile("/drafts/a.md")
	require.NoError(t, err)

	o := d.Overrides()
	assert.Equal(t, "标题", o.Title)
	assert.Equal(t, "正文第一行\n正文第二行", o.Body)
	assert.Equal(t, []string{"日常"}, o.Tags)

	_, ok := d.CoverImage()
	assert.False(t, ok)
	assert.Contains(t, d.String(), "标签: #日常")
}

func TestParseFileErrors(t *testing.T) {
	p := newTestParser(t, map[string]string{
		"/drafts/empty.md":    "",
		"/drafts/notitle.md":  "   \n正文",
		"/drafts/onlyhash.md": "#\n正文",
	})

	for _, path := range []string{"/drafts/empty.md", "/drafts/notitle.md", "/drafts/onlyhash.md", "/drafts/missing.md"} {
		_, err := p.ParseFile(path)
		assert.Error(t, err, path)
	}
}

func TestParseAllFiles(t *testing.T) {
	p := newTestParser(t, map[string]string{
		"/drafts/a.md":      "A\nbody",
		"/drafts/sub/b.MD":  "B\nbody",
		"/drafts/notes.txt": "ignored",
		"/elsewhere/c.md":   "C",
	})

	drafts, err := p.ParseAllFiles()
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "A", drafts[0].Title)
	assert.Equal(t, "B", drafts[1].Title)
}

func TestParseAllFilesStopsOnBadDraft(t *testing.T) {
	p := newTestParser(t, map[string]string{
		"/drafts/a.md":   "A",
		"/drafts/bad.md": "",
	})

	_, err := p.ParseAllFiles()
	assert.Error(t, err)
}

func TestParseTagLine(t *testing.T) {
	tags, ok := parseTagLine("  #a  #b ")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)

	for _, line := range []string{"", "## 小结", "#a 普通文字", "# "} {
		_, ok := parseTagLine(line)
		assert.False(t, ok, line)
	}
}
