// internal/storage/style_store.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const referenceSuffix = "-reference"

// 按顺序查找的扩展名
var referenceExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// StyleReference 风格参考图
type StyleReference struct {
	Name     string
	Path     string
	Data     []byte
	MIMEType string
}

// styleEntry 缓存条目，ref 为空表示该风格没有参考图
type styleEntry struct {
	ref     *StyleReference
	modTime time.Time
	size    int64
}

// StyleStore 从本地目录加载风格参考图并做内存缓存
type StyleStore struct {
	dir   string
	cache *cache.Cache
	group singleflight.Group // 同一风格的并发读取合并为一次
}

// NewStyleStore 创建风格参考图存储
func NewStyleStore(dir string, ttl time.Duration) *StyleStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StyleStore{
		dir:   dir,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Dir 返回参考图目录
func (s *StyleStore) Dir() string {
	return s.dir
}

// ValidStyleName 风格名不允许包含路径成分
func ValidStyleName(name string) bool {
	if name == "" || name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Load 加载风格参考图；不存在时返回 nil, nil
func (s *StyleStore) Load(style string) (*StyleReference, error) {
	if !ValidStyleName(style) {
		return nil, nil
	}

	if cached, ok := s.cache.Get(style); ok {
		entry := cached.(*styleEntry)
		if entry.ref == nil {
			return nil, nil
		}
		// 检测文件是否被修改
		if info, err := os.Stat(entry.ref.Path); err == nil &&
			info.ModTime().Equal(entry.modTime) && info.Size() == entry.size {
			return entry.ref, nil
		}
		s.cache.Delete(style)
	}

	v, err, _ := s.group.Do(style, func() (interface{}, error) {
		entry, err := s.read(style)
		if err != nil {
			return nil, err
		}
		s.cache.Set(style, entry, cache.DefaultExpiration)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*styleEntry).ref, nil
}

func (s *StyleStore) read(style string) (*styleEntry, error) {
	for _, ext := range referenceExtensions {
		path := filepath.Join(s.dir, style+referenceSuffix+ext)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取风格参考图失败 %s: %w", path, err)
		}

		return &styleEntry{
			ref: &StyleReference{
				Name:     style,
				Path:     path,
				Data:     data,
				MIMEType: mimetype.Detect(data).String(),
			},
			modTime: info.ModTime(),
			size:    info.Size(),
		}, nil
	}
	return &styleEntry{}, nil
}

// List 列出目录中所有可用的风格名
func (s *StyleStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("读取风格目录失败: %w", err)
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !isReferenceExtension(ext) {
			continue
		}
		base := strings.TrimSuffix(name, ext)
		if style, ok := strings.CutSuffix(base, referenceSuffix); ok && style != "" {
			seen[style] = struct{}{}
		}
	}

	styles := make([]string, 0, len(seen))
	for style := range seen {
		styles = append(styles, style)
	}
	sort.Strings(styles)
	return styles, nil
}

// ClearCache 清空缓存
func (s *StyleStore) ClearCache() {
	s.cache.Flush()
}

func isReferenceExtension(ext string) bool {
	for _, e := range referenceExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
