package news

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
)

var (
	imgTag      = regexp.MustCompile(`(?i)<img[^>]*src=["']([^"']+)["'][^>]*>`)
	srcAttr     = regexp.MustCompile(`(?i)src=["']([^"']+)["']`)
	imageURLRef = regexp.MustCompile(`(?i)https?://[^\s<>"]+\.(jpg|jpeg|png|gif|webp)`)
)

var placeholderKeywords = []string{"rain", "storm", "snow", "sun", "cloud", "wind", "heat", "cold", "flood", "drought"}

const (
	placeholderURL     = "https://source.unsplash.com/400x200/?%s,weather"
	genericPlaceholder = "https://source.unsplash.com/400x200/?weather,sky"
)

// IsPlaceholderImage reports whether image is a keyword placeholder rather than article artwork.
func IsPlaceholderImage(image string) bool {
	return strings.Contains(image, "unsplash.com")
}

// imageFor picks artwork for an item: embedded media first, then images
// referenced in the body, then a keyword placeholder. It never returns "".
func imageFor(item *gofeed.Item, title, description string) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, kind := range []string{"content", "thumbnail"} {
			for _, ext := range media[kind] {
				if u := strings.TrimSpace(ext.Attrs["url"]); u != "" {
					return u
				}
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image") && enc.URL != "" {
			return enc.URL
		}
	}

	body := item.Content
	if body == "" {
		body = description
	}
	if tag := imgTag.FindString(body); tag != "" {
		if m := srcAttr.FindStringSubmatch(tag); m != nil {
			return m[1]
		}
	}
	if u := imageURLRef.FindString(body); u != "" {
		return u
	}

	// gofeed fills Image from itunes:image or the description, ignoring content:encoded.
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	text := strings.ToLower(title + " " + description)
	for _, kw := range placeholderKeywords {
		if strings.Contains(text, kw) {
			return fmt.Sprintf(placeholderURL, kw)
		}
	}
	return genericPlaceholder
}
