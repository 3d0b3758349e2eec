package lens

import "testing"

func TestPictureURL(t *testing.T) {
	gw := Gateways{IPFS: "https://lens.infura-ipfs.io/ipfs/", Arweave: "https://arweave.net"}

	tests := []struct {
		name string
		pic  Picture
		want string
	}{
		{"none", Picture{}, ""},
		{"https media set", Picture{Kind: PictureMediaSet, Source: "https://cdn.example/a.png"}, "https://cdn.example/a.png"},
		{"ipfs", Picture{Kind: PictureMediaSet, Source: "ipfs://bafy123"}, "https://lens.infura-ipfs.io/ipfs/bafy123"},
		{"ipfs double prefix", Picture{Kind: PictureNFT, Source: "ipfs://ipfs/bafy123"}, "https://lens.infura-ipfs.io/ipfs/bafy123"},
		{"arweave", Picture{Kind: PictureNFT, Source: "ar://tx1"}, "https://arweave.net/tx1"},
		{"whitespace", Picture{Kind: PictureNFT, Source: "  https://x.example/p.jpg "}, "https://x.example/p.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pic.URL(gw); got != tt.want {
				t.Fatalf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveURI_NoGateway(t *testing.T) {
	if got := ResolveURI("ipfs://bafy", Gateways{}); got != "" {
		t.Fatalf("expected empty without gateway, got %q", got)
	}
}
