package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// ReadIntFromFile reads a single integer from a file path
func ReadIntFromFile(path string) (value int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1, err
	}
	text := string(data)
	if len(text) <= 0 {
		return -1, fmt.Errorf("file is empty: %s", path)
	}
	text = strings.TrimSpace(text)
	value, err = strconv.Atoi(text)
	return value, err
}

// WriteIntToFile writes a single integer to a file path.
// Sysfs attributes do not support rename, so this write is in place.
func WriteIntToFile(value int, path string) error {
	evaluatedPath, err := resolvePath(path)
	if len(evaluatedPath) > 0 && err == nil {
		path = evaluatedPath
	}
	valueAsString := fmt.Sprintf("%d", value)

	err = os.WriteFile(path, []byte(valueAsString), 0o644)
	return err
}

// WriteTextToFileAtomic writes the given text to a regular file,
// replacing the target atomically.
func WriteTextToFileAtomic(text string, path string) error {
	reader := strings.NewReader(text)
	return atomic.WriteFile(path, reader)
}

// ReadTextFromFile reads the whole file as trimmed text
func ReadTextFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func resolvePath(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}
