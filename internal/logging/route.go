// ABOUTME: Maps request paths to the application and resource they address.
// ABOUTME: Used to tag request logs for per-app dashboard statistics.

package logging

import "strings"

// top-level path segments that are not application names
var reserved = map[string]string{
	"logs":     "console",
	"healthz":  "console",
	"metrics":  "console",
	"static":   "console",
	"portal":   "portal",
	"sessions": "sessions",
}

// RouteFromPath returns the app and resource a path belongs to. Unknown
// paths yield empty strings.
func RouteFromPath(path string) (app, resource string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", ""
	}

	switch parts[0] {
	case "api":
		// /api/schema/{app}/{resource}
		if len(parts) >= 4 && parts[1] == "schema" {
			return parts[2], parts[3]
		}
		return "", ""
	case "v1":
		return backendRoute(parts[1:])
	}

	if app, ok := reserved[parts[0]]; ok {
		return app, ""
	}
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func backendRoute(parts []string) (string, string) {
	if len(parts) == 0 {
		return "", ""
	}
	switch parts[0] {
	case "admin-api":
		if len(parts) >= 3 {
			return parts[1], parts[2]
		}
	case "participant-portal":
		if len(parts) >= 2 {
			return "participant-portal", parts[1]
		}
		return "participant-portal", ""
	case "event":
		if len(parts) >= 2 {
			return "event", parts[1]
		}
	}
	return "", ""
}
