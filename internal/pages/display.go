package pages

import (
	"path"
	"strings"
	"unicode"
)

// UntitledLabel is shown for videos with neither a title nor a usable file name.
const UntitledLabel = "Untitled video"

// DisplayName returns the label shown for a video. The configured title wins;
// otherwise a label is derived from the media file name, so
// "join_room-audio.webm" becomes "Join Room Audio".
func DisplayName(v Video) string {
	if title := strings.TrimSpace(v.Title); title != "" {
		return title
	}

	base := path.Base(strings.TrimSpace(v.Video))
	if base == "." || base == "/" {
		return UntitledLabel
	}
	base = strings.TrimSuffix(base, path.Ext(base))

	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return UntitledLabel
	}
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
