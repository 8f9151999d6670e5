package collector

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/earnly/backend/internal/domain"
)

// Strategy normalizes raw surface observations into content events. The
// variant is selected once at attempt start, depending on whether the
// embedded content shares an origin with the host page.
type Strategy interface {
	// Classify turns a raw event into the event actually accumulated, or
	// reports false to drop it.
	Classify(event domain.ContentEvent) (domain.ContentEvent, bool)
	CrossOrigin() bool
}

// adMarkerPattern matches id/class fragments that typically identify ad
// containers. Best-effort: markup changes will evade it, and unmatched
// clicks simply count as generic interactions.
var adMarkerPattern = regexp.MustCompile(`(?i)(^|[-_])(ad|ads|advert|adsense|sponsor|sponsored|banner|promoted|dfp)([-_]|$)`)

// FrameStrategy handles same-origin embeds: a cooperative script inside
// the frame forwards scroll, click and mousemove events over a message
// channel, including the clicked element's ancestor chain so ad clicks
// can be attributed.
type FrameStrategy struct{}

func (FrameStrategy) CrossOrigin() bool { return false }

func (FrameStrategy) Classify(event domain.ContentEvent) (domain.ContentEvent, bool) {
	switch event.Kind {
	case domain.ContentEventLoaded:
		return event, true
	case domain.ContentEventScroll:
		if event.ScrollPercentage < 0 {
			return domain.ContentEvent{}, false
		}
		if event.ScrollPercentage > 100 {
			event.ScrollPercentage = 100
		}
		return event, true
	case domain.ContentEventInteraction:
		return event, true
	case domain.ContentEventClick:
		if isAdElement(event.Ancestors) {
			event.Kind = domain.ContentEventAdClick
		}
		return event, true
	case domain.ContentEventAdClick:
		// The in-frame reporter never pre-classifies; a manual ad-click
		// assertion only exists on the cross-origin path.
		event.Kind = domain.ContentEventClick
		return event, true
	}
	return domain.ContentEvent{}, false
}

// isAdElement walks the clicked element's ancestor chain, innermost first,
// for identifying markers: an ad-ish id or class, or a sponsored link
// relation.
func isAdElement(ancestors []domain.ElementInfo) bool {
	for _, el := range ancestors {
		if adMarkerPattern.MatchString(el.ID) {
			return true
		}
		for _, class := range el.Classes {
			if adMarkerPattern.MatchString(class) {
				return true
			}
		}
		if el.Rel != "" {
			for _, rel := range strings.Fields(strings.ToLower(el.Rel)) {
				if rel == "sponsored" {
					return true
				}
			}
		}
	}
	return false
}

// HostStrategy is the cross-origin fallback: no script can run inside the
// frame, so the host page's own oversized scrollable wrapper stands in for
// reading progress, and mouse movement over the container stands in for
// attention. Ad-click attribution is structurally impossible here; the UI
// offers a manual affordance instead, which arrives as a pre-classified
// ad_click event.
type HostStrategy struct {
	// Interaction events closer together than this are treated as jitter
	// from continuous mouse movement and dropped.
	InteractionThrottle time.Duration

	lastInteraction time.Time
}

func (s *HostStrategy) CrossOrigin() bool { return true }

func (s *HostStrategy) Classify(event domain.ContentEvent) (domain.ContentEvent, bool) {
	switch event.Kind {
	case domain.ContentEventLoaded:
		return event, true
	case domain.ContentEventScroll:
		if event.ScrollPercentage < 0 {
			return domain.ContentEvent{}, false
		}
		if event.ScrollPercentage > 100 {
			event.ScrollPercentage = 100
		}
		return event, true
	case domain.ContentEventInteraction:
		now := time.Now()
		if s.InteractionThrottle > 0 && !s.lastInteraction.IsZero() &&
			now.Sub(s.lastInteraction) < s.InteractionThrottle {
			return domain.ContentEvent{}, false
		}
		s.lastInteraction = now
		return event, true
	case domain.ContentEventClick:
		// Host-container clicks carry no frame DOM context; they can
		// never be attributed to an ad.
		return event, true
	case domain.ContentEventAdClick:
		if !event.Manual {
			return domain.ContentEvent{}, false
		}
		return event, true
	}
	return domain.ContentEvent{}, false
}

// SelectStrategy picks the acquisition variant for a content URL. Content
// served from one of the trusted origins can host the cooperative in-frame
// reporter; anything else gets the host-side fallback.
func SelectStrategy(contentURL string, trustedOrigins []string, throttle time.Duration) Strategy {
	parsed, err := url.Parse(contentURL)
	if err == nil && parsed.Host != "" {
		for _, origin := range trustedOrigins {
			if strings.EqualFold(parsed.Host, originHost(origin)) {
				return FrameStrategy{}
			}
		}
	}
	return &HostStrategy{InteractionThrottle: throttle}
}

// originHost reduces a configured origin to its host. Operators write
// origins with or without a scheme; both forms must match.
func originHost(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return u.Host
	}
	return origin
}
