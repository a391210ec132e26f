package link

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ResolveUnit expands one `use <path>` into the concrete `.bc` files it
// refers to, per §4.8: a single `<dist>/<platform>/<path>.bc` file if it
// exists, else every `.bc` file directly under
// `<dist>/<platform>/<path>/`. Results are sorted so linking stays
// byte-deterministic across runs (§5's table/iteration-order requirement
// extends naturally to file inputs the link step consumes).
func ResolveUnit(distDir, platform, unitPath string) ([]string, error) {
	base := filepath.Join(distDir, platform)
	single := filepath.Join(base, unitPath+".bc")
	if info, err := os.Stat(single); err == nil && !info.IsDir() {
		return []string{single}, nil
	}

	dir := filepath.Join(base, unitPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("stdlib unit %q not found under %s (no %s.bc and no directory)", unitPath, base, unitPath)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".bc" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("stdlib unit %q resolved to directory %s but it contains no .bc files", unitPath, dir)
	}
	sort.Strings(files)
	return files, nil
}

// ResolveUnits expands every `use` path named in a compilation unit set,
// in source order, and flattens the results into one ordered file list fed
// to the bitcode linker.
func ResolveUnits(distDir, platform string, unitPaths []string) ([]string, error) {
	var all []string
	for _, p := range unitPaths {
		files, err := ResolveUnit(distDir, platform, p)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return all, nil
}
