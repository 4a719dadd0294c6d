package ecommerce

import (
	"net/url"
	"strings"

	"github.com/channelbridge/backend/internal/domain/integration"
)

// blockedImageHosts are hostname sentinels that mark an image as a local
// placeholder rather than a real, publicly reachable asset.
var blockedImageHosts = map[string]struct{}{
	"localhost":   {},
	"127.0.0.1":   {},
	"example.com": {},
}

// sanitizeImages drops images the remote platform would reject: empty,
// relative or non-http(s) URLs and blocklisted hosts. Duplicates are removed
// by URL, first occurrence wins. Returns nil when nothing survives so the
// field is omitted from the payload.
func sanitizeImages(images []integration.Image) []integration.Image {
	if len(images) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(images))
	out := make([]integration.Image, 0, len(images))

	for _, img := range images {
		src := strings.TrimSpace(img.Src)
		if src == "" {
			continue
		}

		u, err := url.Parse(src)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		if _, blocked := blockedImageHosts[u.Hostname()]; blocked {
			continue
		}

		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}

		img.Src = src
		out = append(out, img)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// sanitizeAttributes trims names and options, drops empty pairs, removes
// attributes with duplicate names (case-insensitive, first wins) and
// reassigns sequential position indices. Returns nil when nothing survives.
func sanitizeAttributes(attrs []integration.Attribute) []integration.Attribute {
	if len(attrs) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(attrs))
	out := make([]integration.Attribute, 0, len(attrs))

	for _, attr := range attrs {
		name := strings.TrimSpace(attr.Name)
		if name == "" {
			continue
		}

		options := make([]string, 0, len(attr.Options))
		for _, opt := range attr.Options {
			if trimmed := strings.TrimSpace(opt); trimmed != "" {
				options = append(options, trimmed)
			}
		}
		if len(options) == 0 {
			continue
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		attr.Name = name
		attr.Options = options
		attr.Position = len(out)
		out = append(out, attr)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
