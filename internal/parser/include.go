// # internal/parser/include.go
package parser

import "regexp"

var includePattern = regexp.MustCompile(`^\s*#(try)?include\s+(?:<([^>]+)>|"([^"]+)")`)

// extractInclude records the raw directive. Resolution to a file identity
// happens later in the include resolver; doing it here would re-enter the
// extractors recursively.
func extractInclude(table *FileItemTable, line string, idx int) {
	match := includePattern.FindStringSubmatch(line)
	if match == nil {
		return
	}
	inc := Include{
		Optional: match[1] == "try",
		Line:     idx,
	}
	if match[2] != "" {
		inc.Target = match[2]
	} else {
		inc.Target = match[3]
		inc.Relative = true
	}
	if inc.Target == "" {
		return
	}
	table.AddInclude(inc)
}
