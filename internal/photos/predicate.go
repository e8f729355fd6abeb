package photos

import (
	"slices"
	"time"
)

// AssetPredicate filters assets. The zero value matches everything.
type AssetPredicate struct {
	// MediaTypes restricts to the listed types; empty means any.
	MediaTypes []MediaType
	// CreatedAfter is an exclusive lower bound on the creation date.
	CreatedAfter time.Time
	// CreatedUntil is an inclusive upper bound on the creation date.
	CreatedUntil time.Time
	// CreatedWithin keeps assets created no earlier than now minus the window.
	CreatedWithin    time.Duration
	FavoritesOnly    bool
	BurstsOnly       bool
	FrontCameraOnly  bool
	RequiredSubtypes MediaSubtype
	// Never is set when a conjunction cannot match anything.
	Never bool
}

func (p AssetPredicate) Matches(a Asset, now time.Time) bool {
	if p.Never {
		return false
	}
	if len(p.MediaTypes) > 0 && !slices.Contains(p.MediaTypes, a.MediaType) {
		return false
	}
	if !p.CreatedAfter.IsZero() && !a.CreationDate.After(p.CreatedAfter) {
		return false
	}
	if !p.CreatedUntil.IsZero() && a.CreationDate.After(p.CreatedUntil) {
		return false
	}
	if p.CreatedWithin > 0 && a.CreationDate.Before(now.Add(-p.CreatedWithin)) {
		return false
	}
	if p.FavoritesOnly && !a.Favorite {
		return false
	}
	if p.BurstsOnly && a.BurstIdentifier == "" {
		return false
	}
	if p.FrontCameraOnly && !a.FrontCamera {
		return false
	}
	if p.RequiredSubtypes != 0 && a.MediaSubtypes&p.RequiredSubtypes != p.RequiredSubtypes {
		return false
	}
	return true
}

// And returns the conjunction of p and q.
func (p AssetPredicate) And(q AssetPredicate) AssetPredicate {
	out := AssetPredicate{
		CreatedAfter:     laterOf(p.CreatedAfter, q.CreatedAfter),
		CreatedUntil:     earlierOf(p.CreatedUntil, q.CreatedUntil),
		CreatedWithin:    shorterOf(p.CreatedWithin, q.CreatedWithin),
		FavoritesOnly:    p.FavoritesOnly || q.FavoritesOnly,
		BurstsOnly:       p.BurstsOnly || q.BurstsOnly,
		FrontCameraOnly:  p.FrontCameraOnly || q.FrontCameraOnly,
		RequiredSubtypes: p.RequiredSubtypes | q.RequiredSubtypes,
		Never:            p.Never || q.Never,
	}
	switch {
	case len(p.MediaTypes) == 0:
		out.MediaTypes = slices.Clone(q.MediaTypes)
	case len(q.MediaTypes) == 0:
		out.MediaTypes = slices.Clone(p.MediaTypes)
	default:
		for _, t := range p.MediaTypes {
			if slices.Contains(q.MediaTypes, t) {
				out.MediaTypes = append(out.MediaTypes, t)
			}
		}
		if len(out.MediaTypes) == 0 {
			out.Never = true
		}
	}
	return out
}

func laterOf(a, b time.Time) time.Time {
	if a.IsZero() || b.After(a) {
		return b
	}
	return a
}

func earlierOf(a, b time.Time) time.Time {
	if a.IsZero() || (!b.IsZero() && b.Before(a)) {
		return b
	}
	return a
}

func shorterOf(a, b time.Duration) time.Duration {
	if a == 0 || (b != 0 && b < a) {
		return b
	}
	return a
}
