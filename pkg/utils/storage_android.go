//go:build android

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const androidDataRoot = "/data/data"

// EnsureStorageDir 在 gdata 打开前创建 object 对应的目录并检查可写
// gdata 在 Android 上写入 /data/data/{package}/，但不会创建子目录
func EnsureStorageDir(object string) error {
	dir, err := androidObjectDir(object)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// GetStoragePath 返回 object 所在目录，取不到包名时返回空串
func GetStoragePath(object string) string {
	dir, err := androidObjectDir(object)
	if err != nil {
		return ""
	}
	return dir
}

func androidObjectDir(object string) (string, error) {
	pkg, err := androidPackage()
	if err != nil {
		return "", fmt.Errorf("detect package name: %w", err)
	}
	return filepath.Join(androidDataRoot, pkg, object), nil
}

// androidPackage 应用进程的 cmdline 就是包名
func androidPackage() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(strings.ReplaceAll(string(data), "\x00", ""))
	if name == "" {
		return "", errors.New("empty /proc/self/cmdline")
	}
	return name, nil
}
