package home

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/sync/errgroup"

	lens "github.com/anatolykoptev/go-lenster"
)

// FeedLimit is the page size of every feed.
const FeedLimit = 10

// Source is the subset of *lens.Client used to fill widgets.
type Source interface {
	Timeline(ctx context.Context, profileID, cursor string, limit int) (*lens.PublicationPage, error)
	Highlights(ctx context.Context, profileID, cursor string, limit int) (*lens.PublicationPage, error)
	ExplorePublications(ctx context.Context, cursor string, limit int) (*lens.PublicationPage, error)
	RecommendedProfiles(ctx context.Context) ([]*lens.Profile, error)
}

// Feed is a rendered page of publications.
type Feed struct {
	Items []FeedItem
	Next  string
}

// FeedItem is one publication ready for the template.
type FeedItem struct {
	ID         string
	Type       string
	Author     *lens.Profile
	MirroredBy *lens.Profile
	Content    template.HTML
	CreatedAt  time.Time
	Comments   int
	Mirrors    int
	Collects   int
}

// Loader fills a composed page with data from the Lens API.
type Loader struct {
	src Source
	md  goldmark.Markdown
}

// NewLoader creates a loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{
		src: src,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Load fetches widget data concurrently. A failed fetch marks its widget
// with an error and never fails the page.
func (l *Loader) Load(ctx context.Context, p *Page, cursor string) {
	var g errgroup.Group
	g.SetLimit(4)

	for i := range p.Main {
		w := &p.Main[i]
		if !w.IsFeed() {
			continue
		}
		g.Go(func() error {
			page, err := l.fetchFeed(ctx, w.Kind, p.Profile, cursor)
			if err != nil {
				slog.Warn("feed fetch failed", slog.String("widget", string(w.Kind)), slog.Any("error", err))
				w.Err = "Failed to load feed"
				return nil
			}
			w.Feed = l.render(page)
			return nil
		})
	}
	for i := range p.Sidebar {
		w := &p.Sidebar[i]
		if w.Kind != KindRecommendedProfiles || !w.Visible {
			continue
		}
		g.Go(func() error {
			profiles, err := l.src.RecommendedProfiles(ctx)
			if err != nil {
				slog.Warn("recommended profiles fetch failed", slog.Any("error", err))
				w.Err = "Failed to load recommendations"
				return nil
			}
			if len(profiles) > 5 {
				profiles = profiles[:5]
			}
			w.Profiles = profiles
			return nil
		})
	}
	_ = g.Wait()
}

func (l *Loader) fetchFeed(ctx context.Context, k Kind, cur *lens.Profile, cursor string) (*lens.PublicationPage, error) {
	switch k {
	case KindTimeline:
		return l.src.Timeline(ctx, cur.ID, cursor, FeedLimit)
	case KindHighlights:
		return l.src.Highlights(ctx, cur.ID, cursor, FeedLimit)
	default:
		return l.src.ExplorePublications(ctx, cursor, FeedLimit)
	}
}

func (l *Loader) render(page *lens.PublicationPage) *Feed {
	f := &Feed{Next: page.Next, Items: make([]FeedItem, 0, len(page.Items))}
	for _, pub := range page.Items {
		f.Items = append(f.Items, FeedItem{
			ID:         pub.ID,
			Type:       pub.Type,
			Author:     pub.Author,
			MirroredBy: pub.MirroredBy,
			Content:    l.markdown(pub.Content),
			CreatedAt:  pub.CreatedAt,
			Comments:   pub.Comments,
			Mirrors:    pub.Mirrors,
			Collects:   pub.Collects,
		})
	}
	return f
}

// markdown converts publication text. Raw HTML in the source is omitted.
func (l *Loader) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := l.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
