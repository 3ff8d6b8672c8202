package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"sharpfix/internal/config"
)

// Discover lists the C# files of target. A file target is returned as is; a
// directory is walked, pruning excluded directories and keeping the files
// cfg matches. The result is sorted.
func Discover(target string, cfg *config.Config) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	if cfg == nil {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, err
		}
		cfg = config.Default(abs)
	}

	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != target && cfg.Excluded(abs) {
				return filepath.SkipDir
			}
			return nil
		}
		if cfg.Match(abs) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", target, err)
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}
