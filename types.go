package lens

import "time"

// PictureKind tags which member of the picture union a profile carries.
type PictureKind int

const (
	PictureNone PictureKind = iota
	PictureMediaSet
	PictureNFT
)

// Picture is a profile picture: a hosted media set or an NFT-backed image.
type Picture struct {
	Kind PictureKind
	// Source is MediaSet.original.url or NftImage.uri, unresolved.
	Source string
}

// Profile represents a Lens profile as read for one render pass.
type Profile struct {
	ID            string
	Handle        string
	Name          string
	Bio           string
	OwnedBy       string
	IsDefault     bool
	HasDispatcher bool
	Followers     int
	Following     int
	Posts         int
	Picture       Picture
}

// DisplayName returns the profile name, falling back to the handle.
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Handle
}

// Publication is a single feed item: a post, a comment, or a mirror.
type Publication struct {
	ID        string
	Type      string // Post, Comment, Mirror
	Content   string
	CreatedAt time.Time
	Author    *Profile
	Comments  int
	Mirrors   int
	Collects  int

	// MirroredBy is set when the item reached the feed through a mirror.
	MirroredBy *Profile
}

// PublicationPage is one page of a paginated feed.
type PublicationPage struct {
	Items []*Publication
	Next  string
}
