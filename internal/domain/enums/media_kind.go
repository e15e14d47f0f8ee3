package enums

type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

func ParseMediaKind(raw string) (MediaKind, bool) {
	switch MediaKind(raw) {
	case MediaKindPhoto:
		return MediaKindPhoto, true
	case MediaKindVideo:
		return MediaKindVideo, true
	default:
		return "", false
	}
}
