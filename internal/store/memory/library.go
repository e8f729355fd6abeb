package memory

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/arawak/cameraroll/internal/media"
	"github.com/arawak/cameraroll/internal/photos"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrImmutableCollection = errors.New("collection cannot be modified")
)

type album struct {
	collection photos.Collection
	// seq orders albums by creation.
	seq     int
	members []string
}

type state struct {
	assets map[string]photos.Asset
	albums map[string]*album
	seq    int
}

func (s state) clone() state {
	out := state{
		assets: maps.Clone(s.assets),
		albums: make(map[string]*album, len(s.albums)),
		seq:    s.seq,
	}
	for id, a := range s.albums {
		cp := *a
		cp.members = slices.Clone(a.members)
		out.albums[id] = &cp
	}
	return out
}

// Library is a photos.Library holding metadata in memory. Media files live
// in a media.Manager.
type Library struct {
	mu    sync.RWMutex
	st    state
	media *media.Manager
	clock photos.Clock
}

func New(mediaMgr *media.Manager, clock photos.Clock) *Library {
	if clock == nil {
		clock = photos.RealClock{}
	}
	return &Library{
		st:    state{assets: make(map[string]photos.Asset), albums: make(map[string]*album)},
		media: mediaMgr,
		clock: clock,
	}
}

// AddAsset stores a fully described asset.
func (l *Library) AddAsset(a photos.Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.st.assets[a.LocalIdentifier] = cloneAsset(a)
}

// AddCollection stores a user collection with the given members.
func (l *Library) AddCollection(c photos.Collection, members ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.st.seq++
	l.st.albums[c.LocalIdentifier] = &album{
		collection: c,
		seq:        l.st.seq,
		members:    slices.Clone(members),
	}
}

func (l *Library) Ping(context.Context) error {
	return nil
}

func (l *Library) FetchAssets(ctx context.Context, opts photos.AssetFetchOptions, fn func(photos.Asset) bool) error {
	l.mu.RLock()
	matched := l.matching(opts.Predicate)
	l.mu.RUnlock()
	return enumerate(ctx, matched, fn)
}

func (l *Library) FetchAssetsInCollection(ctx context.Context, c photos.Collection, opts photos.AssetFetchOptions, fn func(photos.Asset) bool) error {
	if smart, ok := photos.SmartAlbumFor(c); ok {
		return l.FetchAssets(ctx, photos.AssetFetchOptions{Predicate: opts.Predicate.And(smart.Predicate)}, fn)
	}
	l.mu.RLock()
	a, ok := l.st.albums[c.LocalIdentifier]
	var matched []photos.Asset
	if ok {
		matched = l.matchingMembers(opts.Predicate, a.members)
	}
	l.mu.RUnlock()
	return enumerate(ctx, matched, fn)
}

// matching returns copies of the assets matching p, newest first.
func (l *Library) matching(p photos.AssetPredicate) []photos.Asset {
	now := l.clock.Now()
	var out []photos.Asset
	for _, a := range l.st.assets {
		if p.Matches(a, now) {
			out = append(out, cloneAsset(a))
		}
	}
	sortAssets(out)
	return out
}

// matchingMembers is matching restricted to the given identifiers.
func (l *Library) matchingMembers(p photos.AssetPredicate, ids []string) []photos.Asset {
	now := l.clock.Now()
	var out []photos.Asset
	for _, id := range ids {
		if a, ok := l.st.assets[id]; ok && p.Matches(a, now) {
			out = append(out, cloneAsset(a))
		}
	}
	sortAssets(out)
	return out
}

func enumerate(ctx context.Context, assets []photos.Asset, fn func(photos.Asset) bool) error {
	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(a) {
			return nil
		}
	}
	return nil
}

func sortAssets(assets []photos.Asset) {
	sort.Slice(assets, func(i, j int) bool {
		if !assets[i].CreationDate.Equal(assets[j].CreationDate) {
			return assets[i].CreationDate.After(assets[j].CreationDate)
		}
		return assets[i].LocalIdentifier > assets[j].LocalIdentifier
	})
}

func (l *Library) FetchAssetsWithLocalIdentifiers(_ context.Context, ids []string) ([]photos.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []photos.Asset
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if a, ok := l.st.assets[id]; ok {
			out = append(out, cloneAsset(a))
		}
	}
	sortAssets(out)
	return out, nil
}

func (l *Library) FetchCollections(_ context.Context, t photos.CollectionType, st photos.CollectionSubtype, opts photos.CollectionFetchOptions) ([]photos.Collection, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if t == photos.CollectionTypeSmartAlbum {
		return l.smartCollections(st, opts.Title), nil
	}
	var found []*album
	for _, a := range l.st.albums {
		if !a.collection.Matches(t, st) {
			continue
		}
		if opts.Title != "" && a.collection.Title != opts.Title {
			continue
		}
		found = append(found, a)
	}
	return l.userCollections(found), nil
}

func (l *Library) FetchCollectionsWithLocalIdentifiers(_ context.Context, ids []string) ([]photos.Collection, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []photos.Collection
	var found []*album
	for _, id := range ids {
		if a, ok := l.st.albums[id]; ok {
			found = append(found, a)
			continue
		}
		for _, smart := range photos.SmartAlbums {
			if smart.LocalIdentifier() == id {
				out = append(out, l.smartCollection(smart))
			}
		}
	}
	return append(out, l.userCollections(found)...), nil
}

func (l *Library) smartCollections(st photos.CollectionSubtype, title string) []photos.Collection {
	var out []photos.Collection
	for _, smart := range photos.SmartAlbums {
		if st != photos.CollectionSubtypeAny && smart.Subtype != st {
			continue
		}
		if title != "" && smart.Title != title {
			continue
		}
		out = append(out, l.smartCollection(smart))
	}
	sortCollections(out, nil)
	return out
}

func (l *Library) smartCollection(smart photos.SmartAlbum) photos.Collection {
	start, end := dateBounds(l.matching(smart.Predicate))
	return smart.Collection(start, end)
}

func (l *Library) userCollections(found []*album) []photos.Collection {
	out := make([]photos.Collection, 0, len(found))
	created := make(map[string]int, len(found))
	for _, a := range found {
		c := a.collection
		c.StartDate, c.EndDate = dateBounds(l.matchingMembers(photos.AssetPredicate{}, a.members))
		created[c.LocalIdentifier] = a.seq
		out = append(out, c)
	}
	sortCollections(out, created)
	return out
}

// sortCollections orders by end date then creation time, newest first.
func sortCollections(cs []photos.Collection, created map[string]int) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].EndDate.Equal(cs[j].EndDate) {
			return cs[i].EndDate.After(cs[j].EndDate)
		}
		return created[cs[i].LocalIdentifier] > created[cs[j].LocalIdentifier]
	})
}

func dateBounds(assets []photos.Asset) (time.Time, time.Time) {
	if len(assets) == 0 {
		return time.Time{}, time.Time{}
	}
	// assets are sorted newest first
	return assets[len(assets)-1].CreationDate, assets[0].CreationDate
}

func (l *Library) PerformChanges(ctx context.Context, fn func(*photos.ChangeRequest)) error {
	req := &photos.ChangeRequest{}
	fn(req)
	changes := req.Changes()

	created, ingested, err := l.ingest(ctx, changes)
	if err != nil {
		l.mu.Lock()
		l.dropUnreferenced(ingested)
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.st.clone()
	var removed []string
	if err := apply(&next, changes, created, &removed); err != nil {
		l.dropUnreferenced(ingested)
		return err
	}
	l.st = next
	l.dropUnreferenced(removed)
	return nil
}

// ingest stores the media of every created asset. It runs without l.mu held.
func (l *Library) ingest(ctx context.Context, changes []photos.Change) (map[string]photos.Asset, []string, error) {
	now := l.clock.Now()
	created := make(map[string]photos.Asset)
	var ingested []string
	for _, ch := range changes {
		if err := ctx.Err(); err != nil {
			return nil, ingested, err
		}
		id := ch.Target.LocalIdentifier
		switch ch.Kind {
		case photos.ChangeCreateImageAsset:
			res, err := l.media.SaveImage(ctx, ch.Image)
			if err != nil {
				return nil, ingested, fmt.Errorf("store image: %w", err)
			}
			ingested = append(ingested, res.Key)
			created[id] = media.ImageAsset(id, res, now)
		case photos.ChangeCreateVideoAsset:
			path, err := media.LocalPath(ch.FileURL)
			if err != nil {
				return nil, ingested, err
			}
			res, err := l.media.ImportFile(ctx, path, -1)
			if err != nil {
				return nil, ingested, fmt.Errorf("import video: %w", err)
			}
			ingested = append(ingested, res.Key)
			created[id] = media.FileAsset(id, path, res, now, photos.MediaTypeVideo)
		}
	}
	return created, ingested, nil
}

func apply(next *state, changes []photos.Change, created map[string]photos.Asset, removed *[]string) error {
	for _, ch := range changes {
		switch ch.Kind {
		case photos.ChangeCreateImageAsset, photos.ChangeCreateVideoAsset:
			next.assets[ch.Target.LocalIdentifier] = created[ch.Target.LocalIdentifier]
		case photos.ChangeCreateCollection:
			next.seq++
			next.albums[ch.Target.LocalIdentifier] = &album{
				collection: photos.Collection{
					LocalIdentifier: ch.Target.LocalIdentifier,
					Title:           ch.Title,
					Type:            photos.CollectionTypeAlbum,
					Subtype:         photos.CollectionSubtypeAlbumRegular,
				},
				seq: next.seq,
			}
		case photos.ChangeAddAssets:
			a, ok := next.albums[ch.Target.LocalIdentifier]
			if !ok {
				return fmt.Errorf("collection %s: %w", ch.Target.LocalIdentifier, ErrNotFound)
			}
			if a.collection.Type != photos.CollectionTypeAlbum {
				return ErrImmutableCollection
			}
			for _, id := range ch.Assets {
				if _, ok := next.assets[id]; !ok {
					return fmt.Errorf("asset %s: %w", id, ErrNotFound)
				}
				if !slices.Contains(a.members, id) {
					a.members = append(a.members, id)
				}
			}
		case photos.ChangeDeleteAssets:
			for _, id := range ch.Assets {
				asset, ok := next.assets[id]
				if !ok {
					continue
				}
				if res, ok := asset.PrimaryResource(); ok {
					*removed = append(*removed, res.StorageKey)
				}
				delete(next.assets, id)
				for _, a := range next.albums {
					a.members = slices.DeleteFunc(a.members, func(m string) bool { return m == id })
				}
			}
		default:
			return fmt.Errorf("unknown change kind %d", ch.Kind)
		}
	}
	return nil
}

// dropUnreferenced removes media files no committed asset points at.
// Callers hold l.mu.
func (l *Library) dropUnreferenced(keys []string) {
	for _, key := range keys {
		referenced := false
		for _, a := range l.st.assets {
			if res, ok := a.PrimaryResource(); ok && res.StorageKey == key {
				referenced = true
				break
			}
		}
		if !referenced {
			_ = l.media.Remove(key)
		}
	}
}

func (l *Library) RequestImage(ctx context.Context, a photos.Asset, opts photos.ImageRequestOptions) (image.Image, error) {
	res, ok := a.PrimaryResource()
	if !ok {
		return nil, photos.ErrNoResource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.media.Preview(res.StorageKey, opts)
}

func (l *Library) OpenResource(_ context.Context, r photos.Resource) (io.ReadCloser, error) {
	return l.media.Open(r.StorageKey)
}

func cloneAsset(a photos.Asset) photos.Asset {
	a.Resources = slices.Clone(a.Resources)
	if a.Location != nil {
		loc := *a.Location
		a.Location = &loc
	}
	return a
}
