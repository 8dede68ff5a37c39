package platform

import "fmt"

// Platform identifies a supported social network
type Platform string

const (
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
	Facebook  Platform = "facebook"
	Instagram Platform = "instagram"
)

// All returns the supported platforms in a stable order
func All() []Platform {
	return []Platform{Twitter, LinkedIn, Facebook, Instagram}
}

func (p Platform) Valid() bool {
	switch p {
	case Twitter, LinkedIn, Facebook, Instagram:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// Constraints are the hard publishing limits of a platform
type Constraints struct {
	MinChars    int
	MaxChars    int
	MaxHashtags int
}

var constraintTable = map[Platform]Constraints{
	Twitter:   {MinChars: 1, MaxChars: 280, MaxHashtags: 5},
	LinkedIn:  {MinChars: 10, MaxChars: 3000, MaxHashtags: 10},
	Facebook:  {MinChars: 1, MaxChars: 63206, MaxHashtags: 10},
	Instagram: {MinChars: 1, MaxChars: 2200, MaxHashtags: 30},
}

// ConstraintsFor returns the publishing limits for p. Passing an unknown
// platform is a programming error and panics.
func ConstraintsFor(p Platform) Constraints {
	c, ok := constraintTable[p]
	if !ok {
		panic(fmt.Sprintf("unknown platform %q, valid platforms: %v", p, All()))
	}
	return c
}

// HourRange is a half-open [Start, End) range of hours in a local day
type HourRange struct {
	Start int
	End   int
}

// Historical engagement windows per platform, in the audience's local hours.
var engagementTable = map[Platform][]HourRange{
	Twitter:   {{Start: 9, End: 11}, {Start: 17, End: 19}},
	LinkedIn:  {{Start: 8, End: 10}, {Start: 12, End: 14}},
	Facebook:  {{Start: 13, End: 16}},
	Instagram: {{Start: 11, End: 13}, {Start: 19, End: 21}},
}

// EngagementWindows returns the preferred posting hour ranges for p.
// Panics on an unknown platform, same as ConstraintsFor.
func EngagementWindows(p Platform) []HourRange {
	w, ok := engagementTable[p]
	if !ok {
		panic(fmt.Sprintf("unknown platform %q, valid platforms: %v", p, All()))
	}
	return w
}
