package drive

import (
	"net/url"
	"regexp"
	"strings"
)

// Kind is what a stored location points at.
type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindFolder
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// Item is a Drive id with the kind implied by its share URL.
type Item struct {
	ID   string
	Kind Kind
}

var (
	reFolderPath = regexp.MustCompile(`/folders/([A-Za-z0-9_-]+)`)
	reFilePath   = regexp.MustCompile(`/(?:file|document|spreadsheets|presentation)/d/([A-Za-z0-9_-]+)`)
	reBareID     = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)
)

// ParseItem extracts the Drive id from a share URL or a bare id.
// The bool is false when nothing id-shaped was found.
func ParseItem(raw string) (Item, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Item{}, false
	}

	if m := reFolderPath.FindStringSubmatch(raw); m != nil {
		return Item{ID: m[1], Kind: KindFolder}, true
	}
	if m := reFilePath.FindStringSubmatch(raw); m != nil {
		return Item{ID: m[1], Kind: KindFile}, true
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		if id := u.Query().Get("id"); id != "" {
			return Item{ID: id, Kind: KindUnknown}, true
		}
		return Item{}, false
	}
	if reBareID.MatchString(raw) {
		return Item{ID: raw, Kind: KindUnknown}, true
	}
	return Item{}, false
}

// FileURL is the share link stored for an uploaded file.
func FileURL(id string) string {
	return "https://drive.google.com/file/d/" + id + "/view"
}
