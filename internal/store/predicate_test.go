package store

import (
	"testing"
	"time"

	"github.com/arawak/cameraroll/internal/photos"
)

func TestPredicateSQLEmpty(t *testing.T) {
	where, args := predicateSQL(photos.AssetPredicate{}, time.Now())
	if where != "1=1" || len(args) != 0 {
		t.Fatalf("unexpected empty predicate %q %v", where, args)
	}
	where, args = predicateSQL(photos.AssetPredicate{Never: true}, time.Now())
	if where != "1=0" || len(args) != 0 {
		t.Fatalf("unexpected never predicate %q %v", where, args)
	}
}

func TestPredicateSQLClauses(t *testing.T) {
	now := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := photos.AssetPredicate{
		MediaTypes:       []photos.MediaType{photos.MediaTypeImage, photos.MediaTypeVideo},
		CreatedAfter:     after,
		CreatedWithin:    24 * time.Hour,
		FavoritesOnly:    true,
		RequiredSubtypes: photos.SubtypePhotoLive,
	}
	where, args := predicateSQL(p, now)
	expect := "1=1 AND a.media_type IN (?,?) AND a.creation_date > ? AND a.creation_date >= ? AND a.favorite = TRUE AND (a.media_subtypes & ?) = ?"
	if where != expect {
		t.Fatalf("where %q, expected %q", where, expect)
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(args))
	}
	if args[0] != int(photos.MediaTypeImage) || args[1] != int(photos.MediaTypeVideo) {
		t.Fatalf("unexpected media type args %v", args[:2])
	}
	if got := args[3].(time.Time); !got.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected window start %v", got)
	}
}

func TestAssetRowRoundTrip(t *testing.T) {
	created := time.Date(2023, 6, 1, 8, 30, 0, 0, time.UTC)
	a := photos.Asset{
		LocalIdentifier: "ABC/L0/001",
		MediaType:       photos.MediaTypeVideo,
		MediaSubtypes:   photos.SubtypeVideoTimelapse,
		PixelWidth:      1920,
		PixelHeight:     1080,
		Duration:        12.5,
		CreationDate:    created,
		Location:        &photos.Location{Latitude: 1, Longitude: 2, Altitude: 3, Heading: -1, Speed: 0.5},
		Resources:       []photos.Resource{{OriginalFilename: "clip.mov", UniformTypeIdentifier: "com.apple.quicktime-movie", StorageKey: "ab/cd/abcd.mov", Bytes: 10}},
	}
	got := rowFromAsset(a).toAsset()
	if got.LocalIdentifier != a.LocalIdentifier || got.MediaType != a.MediaType || got.Duration != a.Duration {
		t.Fatalf("unexpected asset %+v", got)
	}
	if got.Location == nil || *got.Location != *a.Location {
		t.Fatalf("unexpected location %+v", got.Location)
	}
	if res, ok := got.PrimaryResource(); !ok || res != a.Resources[0] {
		t.Fatalf("unexpected resource %+v", res)
	}

	bare := rowFromAsset(photos.Asset{LocalIdentifier: "X", CreationDate: created}).toAsset()
	if bare.Location != nil || len(bare.Resources) != 0 {
		t.Fatalf("expected no location and no resources, got %+v", bare)
	}
}

func TestSortByEndDate(t *testing.T) {
	old := photos.Collection{Title: "old", EndDate: time.Unix(100, 0)}
	newer := photos.Collection{Title: "new", EndDate: time.Unix(200, 0)}
	empty := photos.Collection{Title: "empty"}
	cs := []photos.Collection{empty, old, newer}
	sortByEndDate(cs)
	if cs[0].Title != "new" || cs[1].Title != "old" || cs[2].Title != "empty" {
		t.Fatalf("unexpected order %v %v %v", cs[0].Title, cs[1].Title, cs[2].Title)
	}
}
