package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/xhs-publisher/logging"
	"go.uber.org/zap"
)

// ErrNoCookies 没有可保存的Cookie，已有文件保持不变
var ErrNoCookies = errors.New("没有可保存的cookies")

// DefaultValidNames 代表登录态的Cookie名称片段
var DefaultValidNames = []string{"web_session", "token", "user_id", "xhs_token_id"}

// Store Cookie持久化存储，一个JSON文件保存一组Cookie
type Store struct {
	fs            afero.Fs
	path          string
	defaultDomain string
	validNames    []string
	logger        *zap.Logger
}

// Option 配置 Store
type Option func(*Store)

// WithFs 替换底层文件系统（测试时使用内存文件系统）
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithDefaultDomain 设置缺省的Cookie域名
func WithDefaultDomain(domain string) Option {
	return func(s *Store) {
		s.defaultDomain = domain
	}
}

// WithValidNames 设置判断登录态用的Cookie名称片段
func WithValidNames(names []string) Option {
	return func(s *Store) {
		s.validNames = names
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore 创建Cookie存储
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		fs:            afero.NewOsFs(),
		path:          path,
		defaultDomain: ".xiaohongshu.com",
		validNames:    DefaultValidNames,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger).Named("session")
	return s
}

// Path Cookie文件路径
func (s *Store) Path() string {
	return s.path
}

// Load 读取保存的Cookie；文件不存在或格式错误时返回空列表
func (s *Store) Load() []Cookie {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("⚠️ 读取cookies失败", zap.String("path", s.path), zap.Error(err))
		}
		return []Cookie{}
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		s.logger.Warn("⚠️ cookies文件格式错误", zap.String("path", s.path), zap.Error(err))
		return []Cookie{}
	}
	if cookies == nil {
		cookies = []Cookie{}
	}

	s.logger.Debug("✅ 找到保存的cookies", zap.Int("count", len(cookies)))
	return cookies
}

// Save 过滤无效记录、补全默认字段后写入文件。
// 先写临时文件再重命名，中途崩溃不会留下半个文件。
// 过滤后为空时不写文件，返回 ErrNoCookies。
func (s *Store) Save(cookies []Cookie) error {
	valid := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" || c.Value == "" {
			continue
		}
		valid = append(valid, c.normalize(s.defaultDomain))
	}
	if len(valid) == 0 {
		s.logger.Warn("⚠️ 没有有效的cookies，保留原文件", zap.String("path", s.path))
		return ErrNoCookies
	}

	data, err := json.MarshalIndent(valid, "", "  ")
	if err != nil {
		return errors.Wrap(err, "序列化cookies失败")
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "创建目录失败 %s", dir)
	}

	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "创建临时文件失败")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return errors.Wrap(err, "写入cookies失败")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return errors.Wrap(err, "写入cookies失败")
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return errors.Wrap(err, "写入cookies失败")
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "保存cookies失败 %s", s.path)
	}

	s.logger.Info("💾 cookies已保存", zap.Int("count", len(valid)), zap.String("path", s.path))
	return nil
}

// IsValid 粗略判断是否包含登录态Cookie。只看名称，不校验过期时间。
func (s *Store) IsValid(cookies []Cookie) bool {
	for _, c := range cookies {
		name := strings.ToLower(c.Name)
		for _, valid := range s.validNames {
			if valid != "" && strings.Contains(name, strings.ToLower(valid)) {
				return true
			}
		}
	}
	return false
}

// IsImportant 是否是登录态相关的Cookie（额外包含设备标识 a1）
func (s *Store) IsImportant(c Cookie) bool {
	return s.IsValid([]Cookie{c}) || strings.Contains(strings.ToLower(c.Name), "a1")
}

// Clear 删除Cookie文件，文件不存在时什么也不做
func (s *Store) Clear() error {
	err := s.fs.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "清除cookies失败 %s", s.path)
	}
	if err == nil {
		s.logger.Info("🗑️ 已清除保存的cookies", zap.String("path", s.path))
	}
	return nil
}
