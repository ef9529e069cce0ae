package envloader

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	base64EnvLoader string = "base64://"
	fileEnvLoader   string = "file://"
)

// GetEnv loads a environment variable and resolves its value with Resolve
func GetEnv(key string) (string, error) {
	v, err := Resolve(os.Getenv(key))
	if err != nil {
		return "", fmt.Errorf("failed loading env %v: %w", key, err)
	}
	return v, nil
}

// Resolve decodes a configuration value based on its prefix
//
// base64://<base64-enc-val> - decodes the base64 value using base64.StdEncoding
//
// file://<path/to/file> - loads based on the relative or absolute path,
// trailing new lines are removed
//
// If none of the above prefixes are found it returns the value as it is
func Resolve(v string) (string, error) {
	switch {
	case strings.HasPrefix(v, base64EnvLoader):
		data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v, base64EnvLoader))
		if err != nil {
			return "", err
		}
		v = string(data)
	case strings.HasPrefix(v, fileEnvLoader):
		filePath := strings.TrimPrefix(v, fileEnvLoader)
		if !filepath.IsAbs(filePath) {
			pwdDir, err := os.Getwd()
			if err != nil {
				return "", err
			}
			filePath = filepath.Join(pwdDir, filePath)
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		v = strings.TrimRight(string(data), "\r\n")
	}
	return v, nil
}
