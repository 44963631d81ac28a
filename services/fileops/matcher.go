package fileops

import (
	"strings"

	"sftpfetchapi/models"
)

// MatchEntry returns the first regular entry, in listing order, whose name contains
// token case-insensitively. Directory entries never match.
func MatchEntry(entries []models.RemoteEntry, token string) (models.RemoteEntry, bool) {
	needle := strings.ToLower(token)
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		if strings.Contains(strings.ToLower(entry.Name), needle) {
			return entry, true
		}
	}
	return models.RemoteEntry{}, false
}

// entryNames lists at most limit names for log output.
func entryNames(entries []models.RemoteEntry, limit int) (names []string, truncated bool) {
	for i, entry := range entries {
		if i == limit {
			return names, true
		}
		names = append(names, entry.Name)
	}
	return names, false
}
