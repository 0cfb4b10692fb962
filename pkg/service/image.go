package service

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/instaintelli/cli/pkg/errors"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// openImage checks that path is an existing JPG or PNG file and opens it.
func openImage(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, errors.FileNotFoundError(path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !imageExtensions[ext] {
		if ext == "" {
			ext = "none"
		}
		return nil, errors.ImageFormatError(strings.TrimPrefix(ext, "."))
	}
	return os.Open(path)
}
