package tasks

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var packageManagers = []struct {
	binary string
	name   string
}{
	{"dpkg", "deb"},
	{"rpm", "rpm"},
	{"brew", "brew"},
}

// DetectPackageManager returns "deb", "rpm" or "brew" for the first of dpkg,
// rpm and brew found by lookPath.
func DetectPackageManager(lookPath func(string) (string, error)) (string, error) {
	for _, pm := range packageManagers {
		if _, err := lookPath(pm.binary); err == nil {
			return pm.name, nil
		}
	}
	return "", ErrUnknownPackageManager
}

// PyFiles lists the .py files under root, skipping the exclude tree. A
// missing root yields no files.
func PyFiles(root, exclude string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if exclude != "" && path == filepath.Clean(exclude) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func allFilesExist(paths ...string) bool {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
	}
	return true
}
