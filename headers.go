package lens

// defaultUserAgent is the fallback User-Agent when none is configured.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const appOrigin = "https://lenster.xyz"

// apiHeaders returns the headers for a GraphQL request.
// The access token is sent only when a session exists.
func apiHeaders(accessToken, userAgent string) map[string]string {
	h := map[string]string{
		"content-type":    "application/json",
		"accept":          "application/json",
		"accept-language": "en-US,en;q=0.9",
		"user-agent":      userAgent,
		"origin":          appOrigin,
		"referer":         appOrigin + "/",
	}
	if accessToken != "" {
		h["x-access-token"] = "Bearer " + accessToken
	}
	return h
}

// mediaHeaders returns headers for fetching profile pictures.
func mediaHeaders(userAgent string) map[string]string {
	return map[string]string{
		"accept":     "image/avif,image/webp,image/png,image/jpeg,image/*;q=0.8",
		"user-agent": userAgent,
		"referer":    appOrigin + "/",
	}
}

// lensHeaderOrder keeps header order stable across requests.
var lensHeaderOrder = []string{
	"content-type",
	"x-access-token",
	"accept",
	"accept-language",
	"user-agent",
	"origin",
	"referer",
}
