package course

import "regexp"

// videoIDPattern matches the recognized YouTube URL shapes: watch?v=,
// youtu.be/<id>, /embed/<id>, and /v/<id>. A link is a video only when
// exactly eleven id characters extract.
var videoIDPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:watch\?.*v=|v/|embed/))([\w-]{11})`)

// Classify reports whether a link is a playable video or an external
// resource. Malformed or unrecognized links are external, never an error.
func Classify(link string) Kind {
	if _, ok := VideoID(link); ok {
		return KindVideo
	}
	return KindExternal
}

// VideoID extracts the eleven-character video id from a recognized video
// link.
func VideoID(link string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmbedURL maps a recognized video link to its embeddable form. Links with
// no extractable id are returned unchanged.
func EmbedURL(link string) string {
	id, ok := VideoID(link)
	if !ok {
		return link
	}
	return "https://www.youtube.com/embed/" + id
}

// ThumbnailURL returns the preview image for a recognized video link.
func ThumbnailURL(link string) (string, bool) {
	id, ok := VideoID(link)
	if !ok {
		return "", false
	}
	return "https://img.youtube.com/vi/" + id + "/maxresdefault.jpg", true
}
