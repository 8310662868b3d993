package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// collectReferences merges positional references with those read from path.
func collectReferences(args []string, path string) ([]string, error) {
	var refs []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			refs = append(refs, a)
		}
	}
	if path == "" {
		return refs, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	fromFile, err := readReferences(f)
	if err != nil {
		return nil, fmt.Errorf("read input %q: %w", path, err)
	}
	return append(refs, fromFile...), nil
}

// readReferences reads one reference per line. Blank lines are skipped, and
// so are lines starting with "#" that contain a space, which are comments
// rather than hashtags.
func readReferences(r io.Reader) ([]string, error) {
	var refs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") && (line == "#" || strings.ContainsAny(line, " \t")) {
			continue
		}
		refs = append(refs, line)
	}
	return refs, sc.Err()
}
