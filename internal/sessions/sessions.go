// ABOUTME: Public session list: category buttons, filtering and per-session display values.
// ABOUTME: Pure functions over the backend's public presentation list.

package sessions

import (
	"strings"

	"github.com/pyconkr/console/internal/backend"
)

// excludedCategories never get a filter button.
var excludedCategories = []string{"후원사", "Sponsor"}

// Categories returns the distinct categories of sessions in first-seen
// order, without the excluded ones.
func Categories(sessions []backend.Session) []backend.Category {
	seen := map[string]bool{}
	var out []backend.Category
	for _, s := range sessions {
		for _, c := range s.Categories {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			if excluded(c.Name) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

func excluded(name string) bool {
	for _, n := range excludedCategories {
		if n == name {
			return true
		}
	}
	return false
}

// ShowCategoryButtons reports whether filtering is worth offering.
func ShowCategoryButtons(categories []backend.Category) bool {
	return len(categories) > 1
}

// Filter keeps the sessions in any of the selected categories. An empty
// selection keeps everything.
func Filter(sessions []backend.Session, selected []string) []backend.Session {
	if len(selected) == 0 {
		return sessions
	}
	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}
	var out []backend.Session
	for _, s := range sessions {
		for _, c := range s.Categories {
			if want[c.ID] {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// Toggle adds id to selected, or removes it when already present.
func Toggle(selected []string, id string) []string {
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// DisplayTitle turns the first literal "\n" of a title into a line break.
func DisplayTitle(title string) string {
	return strings.Replace(title, `\n`, "\n", 1)
}

// Slug makes a title usable as a URL fragment.
func Slug(title string) string {
	title = strings.ReplaceAll(title, " ", "-")
	title = strings.ReplaceAll(title, ".", "_")
	return strings.Map(func(r rune) rune {
		if slugRune(r) {
			return r
		}
		return -1
	}, title)
}

func slugRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r >= 'ㄱ' && r <= 'ㅣ', r >= '가' && r <= '힣':
		return true
	case r == '-', r == '_':
		return true
	// line terminators are kept as they are
	case r == '\n', r == '\r', r == '\u2028', r == '\u2029':
		return true
	}
	return false
}

// DetailURL is the page of one session.
func DetailURL(s backend.Session) string {
	return "/presentations/" + s.ID + "#" + Slug(s.Title)
}

// Image is the session's image, or the first speaker image there is.
func Image(s backend.Session) string {
	if s.Image != nil && *s.Image != "" {
		return *s.Image
	}
	for _, sp := range s.Speakers {
		if sp.Image != nil && *sp.Image != "" {
			return *sp.Image
		}
	}
	return ""
}
