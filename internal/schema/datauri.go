// ABOUTME: Data URI helpers for file fields.
// ABOUTME: Encodes uploads as base64 data URIs embeddable in drafts.

package schema

import (
	"encoding/base64"
	"html/template"
	"net/http"
	"strings"
)

// EncodeDataURI returns a base64 data URI for data. An empty contentType is
// sniffed from the content.
func EncodeDataURI(contentType string, data []byte) string {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	// strip parameters like "; charset=utf-8" that sniffing adds
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its media type and payload.
func DecodeDataURI(uri string) (string, []byte, bool) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, false
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, false
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return mediaType, data, true
}

// IsImageURL reports whether v can be shown as an image source.
func IsImageURL(v string) bool {
	return strings.HasPrefix(v, "data:image/") || strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

// ImageURL passes stored image references through html/template's URL
// filter, which would otherwise reject data URIs.
func ImageURL(v string) template.URL {
	if !IsImageURL(v) {
		return template.URL("#")
	}
	return template.URL(v)
}
