// Package embedded 访问编译进二进制的 data/ 目录（默认配置）
//
// go:embed 只能引用所在包目录下的文件，所以 embed.FS 声明在根目录的 embed.go，
// 由 main 通过 Init() 交给本包。测试可以传入 fstest.MapFS。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotInitialized 在 Init() 之前访问资源
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	mu     sync.RWMutex
	dataFS fs.FS
)

// Init 初始化资源文件系统
// 必须在 main() 开始时、任何资源加载之前调用
func Init(data fs.FS) {
	mu.Lock()
	defer mu.Unlock()
	dataFS = data
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return dataFS != nil
}

// normalize 标准化路径，路径必须以 "data/" 开头
func normalize(path string) (string, error) {
	// embed.FS 使用正斜杠
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	if !strings.HasPrefix(path, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return path, nil
}

func source() (fs.FS, error) {
	mu.RLock()
	defer mu.RUnlock()
	if dataFS == nil {
		return nil, ErrNotInitialized
	}
	return dataFS, nil
}

// Open 打开嵌入的文件
func Open(path string) (fs.File, error) {
	fsys, err := source()
	if err != nil {
		return nil, err
	}
	path, err = normalize(path)
	if err != nil {
		return nil, err
	}
	return fsys.Open(path)
}

// ReadFile 读取嵌入文件的内容
func ReadFile(path string) ([]byte, error) {
	fsys, err := source()
	if err != nil {
		return nil, err
	}
	path, err = normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, path)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}
