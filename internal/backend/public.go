// ABOUTME: Public event API used by the conference site.
// ABOUTME: Lists presentations with their categories, speakers and room schedules.

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Category is a presentation category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SessionSpeaker is a public speaker profile.
type SessionSpeaker struct {
	ID        string  `json:"id"`
	Nickname  string  `json:"nickname"`
	Biography string  `json:"biography"`
	Image     *string `json:"image"`
}

// RoomSchedule places a presentation in a room and time slot.
type RoomSchedule struct {
	ID       string `json:"id"`
	RoomName string `json:"room_name"`
	StartAt  string `json:"start_at"`
	EndAt    string `json:"end_at"`
}

// Session is a publicly listed presentation.
type Session struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Summary       *string          `json:"summary"`
	Description   string           `json:"description"`
	SlideshowURL  *string          `json:"slideshow_url"`
	Image         *string          `json:"image"`
	Categories    []Category       `json:"categories"`
	Speakers      []SessionSpeaker `json:"speakers"`
	RoomSchedules []RoomSchedule   `json:"room_schedules"`
}

// SessionQuery filters the public session list.
type SessionQuery struct {
	Event string
	Types []string
}

func (q SessionQuery) values() url.Values {
	v := url.Values{}
	if q.Event != "" {
		v.Set("event", q.Event)
	}
	if len(q.Types) > 0 {
		v.Set("types", strings.Join(q.Types, ","))
	}
	return v
}

// ListSessions returns public presentations matching q.
func (c *Client) ListSessions(ctx context.Context, q SessionQuery) ([]Session, error) {
	var out []Session
	if err := c.do(ctx, http.MethodGet, "v1/event/presentation/", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
