package submission

import "regexp"

// driveIDPattern matches the object id in /d/<id>, folders/<id> and id=<id>
// share links. Drive ids are at least 25 characters long.
var driveIDPattern = regexp.MustCompile(`(?:/d/|folders/|id=)([a-zA-Z0-9_-]{25,})`)

// ExtractID returns the object id embedded in a share link.
func ExtractID(link string) (string, bool) {
	if link == "" {
		return "", false
	}
	m := driveIDPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}
