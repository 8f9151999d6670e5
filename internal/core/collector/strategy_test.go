package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/earnly/backend/internal/domain"
)

func TestFrameStrategyAdClassification(t *testing.T) {
	tests := []struct {
		name      string
		ancestors []domain.ElementInfo
		wantKind  domain.ContentEventKind
	}{
		{
			name:      "plain link",
			ancestors: []domain.ElementInfo{{TagName: "a", ID: "read-more"}},
			wantKind:  domain.ContentEventClick,
		},
		{
			name:      "ad id on ancestor",
			ancestors: []domain.ElementInfo{{TagName: "a"}, {TagName: "div", ID: "ad-container"}},
			wantKind:  domain.ContentEventAdClick,
		},
		{
			name:      "sponsored class",
			ancestors: []domain.ElementInfo{{TagName: "div", Classes: []string{"widget", "sponsored-block"}}},
			wantKind:  domain.ContentEventAdClick,
		},
		{
			name:      "rel sponsored link",
			ancestors: []domain.ElementInfo{{TagName: "a", Rel: "nofollow sponsored"}},
			wantKind:  domain.ContentEventAdClick,
		},
		{
			name: "marker must be a token, not a substring",
			// "shadow" and "board" contain "ad" but are not ad markers.
			ancestors: []domain.ElementInfo{{ID: "shadow-box", Classes: []string{"board"}}},
			wantKind:  domain.ContentEventClick,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := FrameStrategy{}.Classify(domain.ContentEvent{
				Kind:      domain.ContentEventClick,
				Ancestors: tt.ancestors,
			})
			assert.True(t, ok)
			assert.Equal(t, tt.wantKind, out.Kind)
		})
	}
}

func TestFrameStrategyDowngradesPreclassifiedAdClicks(t *testing.T) {
	// Same-origin clients never self-report ad clicks; the claim is not
	// trusted and the event counts as a generic click.
	out, ok := FrameStrategy{}.Classify(domain.ContentEvent{Kind: domain.ContentEventAdClick})
	assert.True(t, ok)
	assert.Equal(t, domain.ContentEventClick, out.Kind)
}

func TestFrameStrategyClampsScroll(t *testing.T) {
	out, ok := FrameStrategy{}.Classify(domain.ContentEvent{
		Kind:             domain.ContentEventScroll,
		ScrollPercentage: 140,
	})
	assert.True(t, ok)
	assert.Equal(t, 100, out.ScrollPercentage)

	_, ok = FrameStrategy{}.Classify(domain.ContentEvent{
		Kind:             domain.ContentEventScroll,
		ScrollPercentage: -5,
	})
	assert.False(t, ok)
}

func TestHostStrategyThrottlesInteractions(t *testing.T) {
	s := &HostStrategy{InteractionThrottle: 50 * time.Millisecond}

	_, ok := s.Classify(domain.ContentEvent{Kind: domain.ContentEventInteraction})
	assert.True(t, ok)

	// A burst within the throttle window is jitter, not attention.
	_, ok = s.Classify(domain.ContentEvent{Kind: domain.ContentEventInteraction})
	assert.False(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = s.Classify(domain.ContentEvent{Kind: domain.ContentEventInteraction})
	assert.True(t, ok)
}

func TestHostStrategyAdClicks(t *testing.T) {
	s := &HostStrategy{}

	// Host-side clicks carry no frame context and are never ads.
	out, ok := s.Classify(domain.ContentEvent{
		Kind:      domain.ContentEventClick,
		Ancestors: []domain.ElementInfo{{ID: "ad-banner"}},
	})
	assert.True(t, ok)
	assert.Equal(t, domain.ContentEventClick, out.Kind)

	// Only the manual affordance produces an ad click cross-origin.
	_, ok = s.Classify(domain.ContentEvent{Kind: domain.ContentEventAdClick})
	assert.False(t, ok)

	out, ok = s.Classify(domain.ContentEvent{Kind: domain.ContentEventAdClick, Manual: true})
	assert.True(t, ok)
	assert.Equal(t, domain.ContentEventAdClick, out.Kind)
}

func TestSelectStrategy(t *testing.T) {
	trusted := []string{"content.earnly.app", "media.earnly.app"}

	assert.IsType(t, FrameStrategy{},
		SelectStrategy("https://content.earnly.app/a/1", trusted, 0))
	assert.IsType(t, FrameStrategy{},
		SelectStrategy("https://MEDIA.EARNLY.APP/v/2", trusted, 0))
	assert.IsType(t, &HostStrategy{},
		SelectStrategy("https://thirdparty.example/p", trusted, 0))
	// An unparsable or empty URL falls back to the host variant.
	assert.IsType(t, &HostStrategy{},
		SelectStrategy("", trusted, 0))

	// Origins configured with the scheme attached still match by host.
	withScheme := []string{"https://content.earnly.app"}
	assert.IsType(t, FrameStrategy{},
		SelectStrategy("https://content.earnly.app/a/1", withScheme, 0))
	assert.IsType(t, &HostStrategy{},
		SelectStrategy("https://thirdparty.example/p", withScheme, 0))
}
