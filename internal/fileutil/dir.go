package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirMode is the permission of directories created for supervisor files.
const dirMode = 0o755

// ParentDir creates the directory that will hold filePath, including any
// missing ancestors. An existing directory is left as is.
func ParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create directory for %s: %w", filePath, err)
	}
	return nil
}
