package home

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lens "github.com/anatolykoptev/go-lenster"
)

func currentProfile() *lens.Profile {
	return &lens.Profile{
		ID:            "0x0d",
		Handle:        "yoginth.lens",
		Name:          "Yoginth",
		IsDefault:     true,
		HasDispatcher: true,
		Picture:       lens.Picture{Kind: lens.PictureMediaSet, Source: "ipfs://a"},
	}
}

func TestParseFeedType(t *testing.T) {
	assert.Equal(t, FeedTimeline, ParseFeedType(""))
	assert.Equal(t, FeedTimeline, ParseFeedType("unknown"))
	assert.Equal(t, FeedHighlights, ParseFeedType("highlights"))
	assert.Equal(t, FeedHighlights, ParseFeedType(" HIGHLIGHTS "))
}

func TestCompose_WithProfile(t *testing.T) {
	p := Compose(State{CurrentProfile: currentProfile()}, FeedTimeline)

	assert.False(t, p.Hero)
	wantMain := []Kind{KindNewPost, KindFeedType, KindTimeline}
	if diff := cmp.Diff(wantMain, Kinds(p.Main)); diff != "" {
		t.Errorf("main mismatch (-want +got):\n%s", diff)
	}
	wantSidebar := []Kind{
		KindEnableDispatcher, KindEnableMessages, KindBetaWarning,
		KindSetDefaultProfile, KindSetProfile, KindRecommendedProfiles, KindFooter,
	}
	if diff := cmp.Diff(wantSidebar, Kinds(p.Sidebar)); diff != "" {
		t.Errorf("sidebar mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, Kinds(p.Main), KindExploreFeed)
	assert.Equal(t, FeedTimeline, p.Main[1].FeedType)
}

func TestCompose_Highlights(t *testing.T) {
	p := Compose(State{CurrentProfile: currentProfile()}, FeedHighlights)
	if diff := cmp.Diff([]Kind{KindNewPost, KindFeedType, KindHighlights}, Kinds(p.Main)); diff != "" {
		t.Errorf("main mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, FeedHighlights, p.FeedType)
}

func TestCompose_LoggedOut(t *testing.T) {
	p := Compose(State{}, FeedHighlights)

	assert.True(t, p.Hero)
	if diff := cmp.Diff([]Kind{KindExploreFeed}, Kinds(p.Main)); diff != "" {
		t.Errorf("main mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Kind{KindBetaWarning, KindFooter}, Kinds(p.Sidebar)); diff != "" {
		t.Errorf("sidebar mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, FeedTimeline, p.FeedType)
}

func TestCompose_WidgetVisibility(t *testing.T) {
	visible := func(p Page) map[Kind]bool {
		out := map[Kind]bool{}
		for _, w := range p.Sidebar {
			out[w.Kind] = w.Visible
		}
		return out
	}

	complete := Compose(State{CurrentProfile: func() *lens.Profile {
		p := currentProfile()
		p.Bio = "gm"
		return p
	}(), MessagesEnabled: true}, FeedTimeline)
	v := visible(complete)
	assert.False(t, v[KindEnableDispatcher])
	assert.False(t, v[KindEnableMessages])
	assert.False(t, v[KindSetDefaultProfile])
	assert.False(t, v[KindSetProfile])
	assert.True(t, v[KindBetaWarning])
	assert.True(t, v[KindRecommendedProfiles])

	bare := Compose(State{CurrentProfile: &lens.Profile{ID: "0x01", Handle: "new.lens"}}, FeedTimeline)
	v = visible(bare)
	assert.True(t, v[KindEnableDispatcher])
	assert.True(t, v[KindEnableMessages])
	assert.True(t, v[KindSetDefaultProfile])
	assert.True(t, v[KindSetProfile])
	if diff := cmp.Diff([]string{"name", "bio", "picture"}, bare.Sidebar[4].Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

type fakeSource struct {
	mu       sync.Mutex
	calls    []string
	cursors  []string
	feedErr  error
	recsErr  error
	page     *lens.PublicationPage
	profiles []*lens.Profile
}

func (f *fakeSource) record(name, cursor string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.cursors = append(f.cursors, cursor)
	f.mu.Unlock()
}

func (f *fakeSource) Timeline(_ context.Context, id, cursor string, limit int) (*lens.PublicationPage, error) {
	f.record("Timeline:"+id, cursor)
	return f.page, f.feedErr
}

func (f *fakeSource) Highlights(_ context.Context, id, cursor string, limit int) (*lens.PublicationPage, error) {
	f.record("Highlights:"+id, cursor)
	return f.page, f.feedErr
}

func (f *fakeSource) ExplorePublications(_ context.Context, cursor string, limit int) (*lens.PublicationPage, error) {
	f.record("Explore", cursor)
	return f.page, f.feedErr
}

func (f *fakeSource) RecommendedProfiles(context.Context) ([]*lens.Profile, error) {
	f.record("Recommended", "")
	return f.profiles, f.recsErr
}

func samplePage() *lens.PublicationPage {
	author := &lens.Profile{Handle: "stani.lens", Name: "Stani"}
	return &lens.PublicationPage{
		Items: []*lens.Publication{{
			ID:         "0x01-0x01",
			Type:       "Post",
			Content:    "gm **frens** <script>alert(1)</script>",
			CreatedAt:  time.Now().Add(-2 * time.Hour),
			Author:     author,
			Comments:   1200,
			MirroredBy: &lens.Profile{Handle: "yoginth.lens", Name: "Yoginth"},
		}},
		Next: "{\"offset\":10}",
	}
}

func TestLoader_LoggedIn(t *testing.T) {
	src := &fakeSource{page: samplePage(), profiles: make([]*lens.Profile, 8)}
	for i := range src.profiles {
		src.profiles[i] = &lens.Profile{Handle: "p.lens"}
	}
	p := Compose(State{CurrentProfile: currentProfile()}, FeedHighlights)
	NewLoader(src).Load(context.Background(), &p, "c1")

	assert.ElementsMatch(t, []string{"Highlights:0x0d", "Recommended"}, src.calls)
	assert.Contains(t, src.cursors, "c1")

	feed := p.Main[2]
	require.NotNil(t, feed.Feed)
	require.Len(t, feed.Feed.Items, 1)
	content := string(feed.Feed.Items[0].Content)
	assert.Contains(t, content, "<strong>frens</strong>")
	assert.NotContains(t, content, "<script>")
	assert.Equal(t, `{"offset":10}`, feed.Feed.Next)

	recs := p.Sidebar[5]
	assert.Equal(t, KindRecommendedProfiles, recs.Kind)
	assert.Len(t, recs.Profiles, 5)
}

func TestLoader_LoggedOutUsesExplore(t *testing.T) {
	src := &fakeSource{page: &lens.PublicationPage{}}
	p := Compose(State{}, FeedTimeline)
	NewLoader(src).Load(context.Background(), &p, "")

	assert.Equal(t, []string{"Explore"}, src.calls)
	require.NotNil(t, p.Main[0].Feed)
	assert.Empty(t, p.Main[0].Feed.Items)
}

func TestLoader_ErrorsStayInWidget(t *testing.T) {
	src := &fakeSource{feedErr: errors.New("upstream down"), recsErr: errors.New("nope")}
	p := Compose(State{CurrentProfile: currentProfile()}, FeedTimeline)
	NewLoader(src).Load(context.Background(), &p, "")

	assert.NotEmpty(t, p.Main[2].Err)
	assert.Nil(t, p.Main[2].Feed)
	assert.NotEmpty(t, p.Sidebar[5].Err)
}

func TestRender_WithProfile(t *testing.T) {
	src := &fakeSource{page: samplePage()}
	p := Compose(State{CurrentProfile: currentProfile()}, FeedTimeline)
	NewLoader(src).Load(context.Background(), &p, "")

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	doc := buf.String()

	assert.Contains(t, doc, `data-widget="NewPost"`)
	assert.Contains(t, doc, `data-widget="Timeline"`)
	assert.Contains(t, doc, `data-widget="BetaWarning"`)
	assert.Contains(t, doc, `data-widget="Footer"`)
	assert.NotContains(t, doc, `data-widget="ExploreFeed"`)
	assert.NotContains(t, doc, `data-widget="Hero"`)
	assert.NotContains(t, doc, `data-widget="EnableDispatcher"`)
	assert.Contains(t, doc, "<strong>frens</strong>")
	assert.Contains(t, doc, "1,200 comments")
	assert.Contains(t, doc, "Yoginth mirrored")
	assert.Contains(t, doc, "<title>Lenster</title>")
}

func TestRender_LoggedOut(t *testing.T) {
	p := Compose(State{}, FeedTimeline)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	doc := buf.String()

	assert.Contains(t, doc, `data-widget="Hero"`)
	assert.Contains(t, doc, `data-widget="ExploreFeed"`)
	assert.NotContains(t, doc, `data-widget="NewPost"`)
	assert.Equal(t, 1, strings.Count(doc, `data-widget="BetaWarning"`))
}

func TestRender_PaginationKeepsFeedType(t *testing.T) {
	tests := []struct {
		name  string
		state State
		ft    FeedType
		want  string
	}{
		{"highlights", State{CurrentProfile: currentProfile()}, FeedHighlights, `href="?type=HIGHLIGHTS&amp;cursor=`},
		{"timeline", State{CurrentProfile: currentProfile()}, FeedTimeline, `href="?type=TIMELINE&amp;cursor=`},
		{"explore", State{}, FeedTimeline, `href="?cursor=`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compose(tt.state, tt.ft)
			NewLoader(&fakeSource{page: samplePage()}).Load(context.Background(), &p, "")

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, p))
			doc := buf.String()
			assert.Contains(t, doc, tt.want)
			assert.Contains(t, doc, "offset")
		})
	}
}
