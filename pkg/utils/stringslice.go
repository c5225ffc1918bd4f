package utils

import (
	"strconv"
	"strings"
)

// StringSlice collects target hosts in the order they were added.
type StringSlice []string

// Set appends value, ignoring blank entries.
func (s *StringSlice) Set(value string) {
	if value = strings.TrimSpace(value); value != "" {
		*s = append(*s, value)
	}
}

func (s StringSlice) String() string {
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
