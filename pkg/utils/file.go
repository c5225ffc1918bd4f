package utils

import (
	"bufio"
	"os"
	"strings"
)

// ReadFileLineByLine returns the trimmed, non-empty lines of filename.
func ReadFileLineByLine(filename string) ([]string, error) {
	var result []string

	fp, err := os.Open(filename)
	if err != nil {
		return result, err
	}
	defer fp.Close()

	buf := bufio.NewScanner(fp)
	for buf.Scan() {
		line := strings.TrimSpace(buf.Text())
		if line == "" {
			continue
		}
		result = append(result, line)
	}
	return result, buf.Err()
}
