package walk

import "github.com/bmatcuk/doublestar/v4"

// GlobFilter builds a Filter that accepts a path when it matches at least
// one of the given doublestar glob patterns (patterns use "**" for
// recursive matching). An empty pattern list accepts everything.
func GlobFilter(patterns []string) Filter {
	if len(patterns) == 0 {
		return nil
	}
	return func(path string) bool {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, path); ok {
				return true
			}
		}
		return false
	}
}
