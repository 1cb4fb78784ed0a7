package events

import (
	"strings"

	"github.com/mistvale/navigator/internal/world"
)

// DefaultLanding is the landing-spot phrase for ground-object sentences when
// the location does not override it.
const DefaultLanding = "on the ground"

// NoOneElseSentence is the fixed sentence for an occupant snapshot that
// leaves no other players after excluding self.
const NoOneElseSentence = "No one else is here."

// JoinAnd joins display strings the way the legacy game did: two items with
// a bare "and", three or more with Oxford commas.
func JoinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// OccupantSentence builds the presence sentence for the given display names.
// Zero names produce no sentence; one name takes the singular verb.
func OccupantSentence(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0] + " is here."
	default:
		return JoinAnd(names) + " are here."
	}
}

// GroundSentence builds the ground-objects sentence for the given display
// names (already carrying their articles) and landing-spot phrase.
func GroundSentence(display []string, landing string) string {
	if landing == "" {
		landing = DefaultLanding
	}
	if len(display) == 0 {
		return "There is nothing lying " + landing + "."
	}
	return "There is " + JoinAnd(display) + " lying " + landing + "."
}

// WithArticle prefixes a display name with its indefinite article. The
// article is chosen by catalog flag, never by spelling.
func WithArticle(name string, an bool) string {
	if an {
		return "an " + name
	}
	return "a " + name
}

// GroundObjectNames resolves ground-object ids against the catalog, filters
// out objects not visible on the ground, and returns display names with
// articles. Ids missing from the catalog are skipped: the client never
// invents object identities.
func GroundObjectNames(data *world.Data, ids []string) []string {
	if data == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		obj, ok := data.Object(id)
		if !ok || !obj.VisibleOnGround() {
			continue
		}
		out = append(out, WithArticle(obj.Name, obj.RequiresAn()))
	}
	return out
}
