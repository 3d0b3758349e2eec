package lens

import "strings"

// Gateways are the HTTP prefixes used to rewrite content-addressed URIs.
type Gateways struct {
	IPFS    string
	Arweave string
}

// URL returns a fetchable URL for the picture, or "" when there is none.
func (p Picture) URL(gw Gateways) string {
	if p.Kind == PictureNone {
		return ""
	}
	return ResolveURI(p.Source, gw)
}

// ResolveURI rewrites ipfs:// and ar:// URIs to HTTP gateway URLs.
// Anything else is returned trimmed and unchanged.
func ResolveURI(uri string, gw Gateways) string {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return ""
	case strings.HasPrefix(uri, "ipfs://ipfs/"):
		return joinGateway(gw.IPFS, strings.TrimPrefix(uri, "ipfs://ipfs/"))
	case strings.HasPrefix(uri, "ipfs://"):
		return joinGateway(gw.IPFS, strings.TrimPrefix(uri, "ipfs://"))
	case strings.HasPrefix(uri, "ar://"):
		return joinGateway(gw.Arweave, strings.TrimPrefix(uri, "ar://"))
	}
	return uri
}

func joinGateway(gateway, path string) string {
	if gateway == "" {
		return ""
	}
	return strings.TrimRight(gateway, "/") + "/" + strings.TrimLeft(path, "/")
}
