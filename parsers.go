package lens

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// parseProfile parses the Profile GraphQL response.
func parseProfile(body []byte) (*Profile, error) {
	var raw struct {
		Data struct {
			Profile *profileResult `json:"profile"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal Profile: %w", err)
	}
	if len(raw.Errors) > 0 && raw.Data.Profile == nil {
		return nil, fmt.Errorf("lens API error: %s", raw.Errors[0].Message)
	}
	if raw.Data.Profile == nil {
		return nil, ErrProfileNotFound
	}
	return raw.Data.Profile.toProfile(), nil
}

// parseRecommendedProfiles parses the RecommendedProfiles response.
func parseRecommendedProfiles(body []byte) ([]*Profile, error) {
	var raw struct {
		Data struct {
			RecommendedProfiles []profileResult `json:"recommendedProfiles"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal RecommendedProfiles: %w", err)
	}
	profiles := make([]*Profile, 0, len(raw.Data.RecommendedProfiles))
	for i := range raw.Data.RecommendedProfiles {
		profiles = append(profiles, raw.Data.RecommendedProfiles[i].toProfile())
	}
	return profiles, nil
}

// parseExploreFeed parses the explorePublications response.
func parseExploreFeed(body []byte) (*PublicationPage, error) {
	var raw struct {
		Data struct {
			ExplorePublications publicationList `json:"explorePublications"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal ExploreFeed: %w", err)
	}
	return raw.Data.ExplorePublications.toPage(), nil
}

// parseFeedHighlights parses the feedHighlights response.
func parseFeedHighlights(body []byte) (*PublicationPage, error) {
	var raw struct {
		Data struct {
			FeedHighlights publicationList `json:"feedHighlights"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal FeedHighlights: %w", err)
	}
	return raw.Data.FeedHighlights.toPage(), nil
}

// parseTimeline parses the feed response. Feed items wrap the publication in "root".
func parseTimeline(body []byte) (*PublicationPage, error) {
	var raw struct {
		Data struct {
			Feed struct {
				Items []struct {
					Root publicationResult `json:"root"`
				} `json:"items"`
				PageInfo pageInfo `json:"pageInfo"`
			} `json:"feed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal Timeline: %w", err)
	}
	page := &PublicationPage{Next: raw.Data.Feed.PageInfo.Next}
	for i := range raw.Data.Feed.Items {
		if pub := raw.Data.Feed.Items[i].Root.toPublication(); pub != nil {
			page.Items = append(page.Items, pub)
		}
	}
	return page, nil
}

// parseRefresh parses the refresh mutation response.
func parseRefresh(body []byte) (access, refresh string, err error) {
	var raw struct {
		Data struct {
			Refresh *struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			} `json:"refresh"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", "", fmt.Errorf("unmarshal Refresh: %w", err)
	}
	if raw.Data.Refresh == nil || raw.Data.Refresh.AccessToken == "" {
		return "", "", fmt.Errorf("empty tokens in refresh response")
	}
	return raw.Data.Refresh.AccessToken, raw.Data.Refresh.RefreshToken, nil
}

// --- Response types ---

type pageInfo struct {
	Next string `json:"next"`
}

type profileResult struct {
	ID         string `json:"id"`
	Handle     string `json:"handle"`
	Name       string `json:"name"`
	Bio        string `json:"bio"`
	OwnedBy    string `json:"ownedBy"`
	IsDefault  bool   `json:"isDefault"`
	Dispatcher *struct {
		CanUseRelay bool `json:"canUseRelay"`
	} `json:"dispatcher"`
	Stats struct {
		TotalFollowers int `json:"totalFollowers"`
		TotalFollowing int `json:"totalFollowing"`
		TotalPosts     int `json:"totalPosts"`
	} `json:"stats"`
	Picture *pictureResult `json:"picture"`
}

type pictureResult struct {
	TypeName string `json:"__typename"`
	Original *struct {
		URL string `json:"url"`
	} `json:"original"`
	URI string `json:"uri"`
}

type publicationStats struct {
	TotalAmountOfComments int `json:"totalAmountOfComments"`
	TotalAmountOfMirrors  int `json:"totalAmountOfMirrors"`
	TotalAmountOfCollects int `json:"totalAmountOfCollects"`
}

type publicationResult struct {
	TypeName  string         `json:"__typename"`
	ID        string         `json:"id"`
	CreatedAt string         `json:"createdAt"`
	Profile   *profileResult `json:"profile"`
	Metadata  struct {
		Content string `json:"content"`
	} `json:"metadata"`
	Stats    publicationStats   `json:"stats"`
	MirrorOf *publicationResult `json:"mirrorOf"`
}

type publicationList struct {
	Items    []publicationResult `json:"items"`
	PageInfo pageInfo            `json:"pageInfo"`
}

// --- Conversion helpers ---

func (pr *profileResult) toProfile() *Profile {
	p := &Profile{
		ID:            pr.ID,
		Handle:        pr.Handle,
		Name:          pr.Name,
		Bio:           pr.Bio,
		OwnedBy:       pr.OwnedBy,
		IsDefault:     pr.IsDefault,
		HasDispatcher: pr.Dispatcher != nil,
		Followers:     pr.Stats.TotalFollowers,
		Following:     pr.Stats.TotalFollowing,
		Posts:         pr.Stats.TotalPosts,
	}
	if pr.Picture != nil {
		p.Picture = pr.Picture.toPicture()
	}
	return p
}

// toPicture resolves the union by typename, then by which member is populated.
func (pr *pictureResult) toPicture() Picture {
	switch {
	case pr.TypeName == "MediaSet" && pr.Original != nil:
		return Picture{Kind: PictureMediaSet, Source: pr.Original.URL}
	case pr.TypeName == "NftImage":
		return Picture{Kind: PictureNFT, Source: pr.URI}
	case pr.Original != nil && pr.Original.URL != "":
		return Picture{Kind: PictureMediaSet, Source: pr.Original.URL}
	case pr.URI != "":
		return Picture{Kind: PictureNFT, Source: pr.URI}
	}
	return Picture{}
}

func (l *publicationList) toPage() *PublicationPage {
	page := &PublicationPage{Next: l.PageInfo.Next}
	for i := range l.Items {
		if pub := l.Items[i].toPublication(); pub != nil {
			page.Items = append(page.Items, pub)
		}
	}
	return page
}

// toPublication flattens a publication. Mirrors are replaced by the mirrored
// publication with MirroredBy set.
func (r *publicationResult) toPublication() *Publication {
	if r.TypeName == "Mirror" {
		if r.MirrorOf == nil {
			slog.Debug("skip mirror without target", slog.String("id", r.ID))
			return nil
		}
		pub := r.MirrorOf.toPublication()
		if pub != nil && r.Profile != nil {
			pub.MirroredBy = r.Profile.toProfile()
		}
		return pub
	}
	if r.ID == "" {
		return nil
	}
	pub := &Publication{
		ID:       r.ID,
		Type:     r.TypeName,
		Content:  r.Metadata.Content,
		Comments: r.Stats.TotalAmountOfComments,
		Mirrors:  r.Stats.TotalAmountOfMirrors,
		Collects: r.Stats.TotalAmountOfCollects,
	}
	if r.Profile != nil {
		pub.Author = r.Profile.toProfile()
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		pub.CreatedAt = t
	}
	return pub
}
