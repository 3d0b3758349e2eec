package lens

import (
	"context"
	"fmt"
)

// Profile fetches a profile by its Lens handle.
func (c *Client) Profile(ctx context.Context, handle string) (*Profile, error) {
	body, err := c.doQuery(ctx, Operations["Profile"], map[string]any{
		"request": map[string]any{"handle": handle},
	})
	if err != nil {
		return nil, fmt.Errorf("Profile: %w", err)
	}
	return parseProfile(body)
}

// RecommendedProfiles fetches the curated who-to-follow list.
func (c *Client) RecommendedProfiles(ctx context.Context) ([]*Profile, error) {
	body, err := c.doQuery(ctx, Operations["RecommendedProfiles"], nil)
	if err != nil {
		return nil, fmt.Errorf("RecommendedProfiles: %w", err)
	}
	return parseRecommendedProfiles(body)
}

// ExplorePublications fetches the public explore feed.
func (c *Client) ExplorePublications(ctx context.Context, cursor string, limit int) (*PublicationPage, error) {
	request := map[string]any{
		"sortCriteria":     "CURATED_PROFILES",
		"publicationTypes": []string{"POST", "COMMENT", "MIRROR"},
		"noRandomize":      true,
		"limit":            limit,
	}
	if cursor != "" {
		request["cursor"] = cursor
	}
	body, err := c.doQuery(ctx, Operations["ExploreFeed"], map[string]any{"request": request})
	if err != nil {
		return nil, fmt.Errorf("ExploreFeed: %w", err)
	}
	return parseExploreFeed(body)
}

// Timeline fetches the home timeline of a profile.
func (c *Client) Timeline(ctx context.Context, profileID, cursor string, limit int) (*PublicationPage, error) {
	body, err := c.doQuery(ctx, Operations["Timeline"], map[string]any{
		"request": feedRequest(profileID, cursor, limit),
	})
	if err != nil {
		return nil, fmt.Errorf("Timeline: %w", err)
	}
	return parseTimeline(body)
}

// Highlights fetches the highlights feed of a profile.
func (c *Client) Highlights(ctx context.Context, profileID, cursor string, limit int) (*PublicationPage, error) {
	body, err := c.doQuery(ctx, Operations["FeedHighlights"], map[string]any{
		"request": feedRequest(profileID, cursor, limit),
	})
	if err != nil {
		return nil, fmt.Errorf("FeedHighlights: %w", err)
	}
	return parseFeedHighlights(body)
}

func feedRequest(profileID, cursor string, limit int) map[string]any {
	r := map[string]any{
		"profileId": profileID,
		"limit":     limit,
	}
	if cursor != "" {
		r["cursor"] = cursor
	}
	return r
}
