//go:build !android

package utils

// EnsureStorageDir 桌面和 iOS 上由 gdata 自己创建目录
func EnsureStorageDir(object string) error {
	return nil
}

// GetStoragePath 桌面端的路径由 gdata 决定，这里不重复推算
func GetStoragePath(object string) string {
	return ""
}
