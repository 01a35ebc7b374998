package internal

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// matchAll collects the start offset of every non-overlapping match of every
// pattern. The whole file must satisfy each pattern: the first pattern with no
// match aborts the scan and nil is returned. Offsets of different patterns are
// unioned, unsorted.
func matchAll(data []byte, res []*regexp.Regexp) []int {
	var positions []int
	for i, re := range res {
		locs := re.FindAllIndex(data, -1)
		if len(locs) == 0 {
			logrus.Debugf("Pattern %d/%d matched nowhere, skipping the rest", i+1, len(res))
			return nil
		}
		for _, loc := range locs {
			positions = append(positions, loc[0])
		}
	}
	return positions
}

// LoadPatterns reads a patterns file, one regular expression per line.
// Lines:
//
//	# comment
//	error
//	re:^user=\w+$
//
// Blank lines and '#' comments are skipped; a leading "re:" is accepted and stripped.
func LoadPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ps []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		ps = append(ps, strings.TrimPrefix(line, "re:"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	logrus.Debugf("Loaded %d patterns", len(ps))
	return ps, nil
}
