// Package home composes the Lenster home page.
package home

import (
	"strings"

	lens "github.com/anatolykoptev/go-lenster"
	"github.com/anatolykoptev/go-lenster/meta"
)

// FeedType selects the authenticated feed.
type FeedType string

const (
	FeedTimeline   FeedType = "TIMELINE"
	FeedHighlights FeedType = "HIGHLIGHTS"
)

// ParseFeedType maps a query value to a FeedType. Anything unknown is TIMELINE.
func ParseFeedType(s string) FeedType {
	if FeedType(strings.ToUpper(strings.TrimSpace(s))) == FeedHighlights {
		return FeedHighlights
	}
	return FeedTimeline
}

// Kind names a widget after the component it stands for.
type Kind string

const (
	KindNewPost             Kind = "NewPost"
	KindFeedType            Kind = "FeedType"
	KindTimeline            Kind = "Timeline"
	KindHighlights          Kind = "Highlights"
	KindExploreFeed         Kind = "ExploreFeed"
	KindEnableDispatcher    Kind = "EnableDispatcher"
	KindEnableMessages      Kind = "EnableMessages"
	KindBetaWarning         Kind = "BetaWarning"
	KindSetDefaultProfile   Kind = "SetDefaultProfile"
	KindSetProfile          Kind = "SetProfile"
	KindRecommendedProfiles Kind = "RecommendedProfiles"
	KindFooter              Kind = "Footer"
)

// Widget is one mounted component. A mounted widget may still decide not
// to draw itself; Visible records that decision.
type Widget struct {
	Kind    Kind
	Visible bool

	// FeedType is the active tab, set on the FeedType switch and on the
	// authenticated feed it selects.
	FeedType FeedType
	// Missing lists the profile fields a SetProfile prompt asks for.
	Missing []string

	// Filled by Loader.
	Feed     *Feed
	Profiles []*lens.Profile
	Err      string
}

// IsFeed reports whether the widget shows a publication feed.
func (w Widget) IsFeed() bool {
	switch w.Kind {
	case KindTimeline, KindHighlights, KindExploreFeed:
		return true
	}
	return false
}

// State is the session state the page is composed from.
type State struct {
	CurrentProfile  *lens.Profile
	MessagesEnabled bool
}

// Page is the composed home page.
type Page struct {
	Meta     meta.Meta
	Hero     bool
	Main     []Widget
	Sidebar  []Widget
	FeedType FeedType
	Profile  *lens.Profile
}

func mount(k Kind) Widget { return Widget{Kind: k, Visible: true} }

// Compose builds the page tree for a state. It does no I/O.
func Compose(s State, ft FeedType) Page {
	if ft != FeedHighlights {
		ft = FeedTimeline
	}
	p := Page{Meta: meta.Meta{}, FeedType: ft, Profile: s.CurrentProfile}

	cur := s.CurrentProfile
	if cur == nil {
		p.Hero = true
		p.Main = []Widget{mount(KindExploreFeed)}
		p.Sidebar = []Widget{mount(KindBetaWarning), mount(KindFooter)}
		return p
	}

	feed := mount(KindTimeline)
	if ft == FeedHighlights {
		feed = mount(KindHighlights)
	}
	feed.FeedType = ft
	switcher := mount(KindFeedType)
	switcher.FeedType = ft
	p.Main = []Widget{mount(KindNewPost), switcher, feed}

	dispatcher := mount(KindEnableDispatcher)
	dispatcher.Visible = !cur.HasDispatcher

	messages := mount(KindEnableMessages)
	messages.Visible = !s.MessagesEnabled

	setDefault := mount(KindSetDefaultProfile)
	setDefault.Visible = !cur.IsDefault

	setProfile := mount(KindSetProfile)
	setProfile.Missing = missingFields(cur)
	setProfile.Visible = len(setProfile.Missing) > 0

	p.Sidebar = []Widget{
		dispatcher,
		messages,
		mount(KindBetaWarning),
		setDefault,
		setProfile,
		mount(KindRecommendedProfiles),
		mount(KindFooter),
	}
	return p
}

func missingFields(p *lens.Profile) []string {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Bio == "" {
		missing = append(missing, "bio")
	}
	if p.Picture.Kind == lens.PictureNone {
		missing = append(missing, "picture")
	}
	return missing
}

// Kinds lists the widget kinds of ws in order.
func Kinds(ws []Widget) []Kind {
	out := make([]Kind, len(ws))
	for i, w := range ws {
		out[i] = w.Kind
	}
	return out
}
