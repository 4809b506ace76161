package models

import "strings"

// NormalizeHandle приводит имя пользователя к виду "@username"
func NormalizeHandle(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return ""
	}
	if strings.HasPrefix(username, "@") {
		return username
	}
	return "@" + username
}

// NormalizeHandles нормализует список, отбрасывая пустые значения
func NormalizeHandles(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, u := range raw {
		if h := NormalizeHandle(u); h != "" {
			out = append(out, h)
		}
	}
	return out
}
