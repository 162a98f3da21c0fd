package track

import (
	"net/url"
	"strings"
)

// wrapperHosts are analytics/tracking prefix services that wrap the real
// enclosure URL in their path, e.g.
// https://op3.dev/e/cdn.example.com/ep.mp3.
var wrapperHosts = map[string]bool{
	"op3.dev":         true,
	"pdst.fm":         true,
	"chrt.fm":         true,
	"pscrb.fm":        true,
	"mgln.ai":         true,
	"claritaspod.com": true,
}

// UnwrapMediaURL resolves tracking-wrapper URLs to the direct audio
// resource. Playback backends and the cast receiver are always handed
// the unwrapped URL. Unknown shapes pass through unchanged.
func UnwrapMediaURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if !wrapperHosts[strings.ToLower(u.Hostname())] {
		return raw
	}

	// Some wrappers carry the target as a query parameter.
	if target := u.Query().Get("url"); target != "" {
		if unwrapped, err := url.QueryUnescape(target); err == nil && strings.HasPrefix(unwrapped, "http") {
			return UnwrapMediaURL(unwrapped)
		}
		return UnwrapMediaURL(target)
	}

	// Most embed the target in the path, with or without its scheme:
	// /e/https://cdn.example.com/x.mp3 or /e/cdn.example.com/x.mp3.
	path := strings.TrimPrefix(u.Path, "/")
	if idx := strings.Index(path, "http://"); idx >= 0 {
		return UnwrapMediaURL(path[idx:])
	}
	if idx := strings.Index(path, "https:/"); idx >= 0 {
		rest := strings.TrimPrefix(path[idx:], "https:/")
		rest = strings.TrimPrefix(rest, "/")
		return UnwrapMediaURL("https://" + rest)
	}
	// Otherwise the first dotted path segment marks where the wrapped
	// hostname starts.
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.Contains(seg, ".") && i < len(segments)-1 {
			return UnwrapMediaURL("https://" + strings.Join(segments[i:], "/"))
		}
	}

	return raw
}
