package store

import (
	"context"
	"fmt"
	"image"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arawak/cameraroll/internal/media"
	"github.com/arawak/cameraroll/internal/photos"
)

const assetColumns = "a.local_identifier, a.media_type, a.media_subtypes, a.burst_identifier, a.favorite, a.front_camera, " +
	"a.pixel_width, a.pixel_height, a.duration, a.creation_date, a.latitude, a.longitude, a.altitude, a.heading, a.speed, " +
	"a.resource_filename, a.resource_uti, a.resource_key, a.resource_bytes"

const assetOrder = " ORDER BY a.creation_date DESC, a.local_identifier DESC"

// Store is a photos.Library backed by MySQL and a media.Manager.
type Store struct {
	db    *sqlx.DB
	media *media.Manager
	clock photos.Clock
}

func New(db *sqlx.DB, mediaMgr *media.Manager, clock photos.Clock) *Store {
	if clock == nil {
		clock = photos.RealClock{}
	}
	return &Store{db: db, media: mediaMgr, clock: clock}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) FetchAssets(ctx context.Context, opts photos.AssetFetchOptions, fn func(photos.Asset) bool) error {
	where, args := predicateSQL(opts.Predicate, s.clock.Now())
	query := "SELECT " + assetColumns + " FROM asset a WHERE " + where + assetOrder
	return s.enumerate(ctx, query, args, fn)
}

func (s *Store) FetchAssetsInCollection(ctx context.Context, c photos.Collection, opts photos.AssetFetchOptions, fn func(photos.Asset) bool) error {
	if smart, ok := photos.SmartAlbumFor(c); ok {
		return s.FetchAssets(ctx, photos.AssetFetchOptions{Predicate: opts.Predicate.And(smart.Predicate)}, fn)
	}
	where, args := predicateSQL(opts.Predicate, s.clock.Now())
	query := "SELECT " + assetColumns + " FROM asset a JOIN collection_asset ca ON ca.asset_identifier = a.local_identifier" +
		" WHERE ca.collection_identifier = ? AND " + where + assetOrder
	return s.enumerate(ctx, query, append([]any{c.LocalIdentifier}, args...), fn)
}

func (s *Store) enumerate(ctx context.Context, query string, args []any, fn func(photos.Asset) bool) error {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r assetRow
		if err := rows.StructScan(&r); err != nil {
			return fmt.Errorf("scan asset: %w", err)
		}
		if !fn(r.toAsset()) {
			return nil
		}
	}
	return rows.Err()
}

func (s *Store) FetchAssetsWithLocalIdentifiers(ctx context.Context, ids []string) ([]photos.Asset, error) {
	return s.fetchAssetsByID(ctx, s.db, ids)
}

func (s *Store) fetchAssetsByID(ctx context.Context, q sqlx.QueryerContext, ids []string) ([]photos.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT "+assetColumns+" FROM asset a WHERE a.local_identifier IN (?)"+assetOrder, ids)
	if err != nil {
		return nil, err
	}
	var rows []assetRow
	if err := sqlx.SelectContext(ctx, q, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("fetch assets: %w", err)
	}
	assets := make([]photos.Asset, len(rows))
	for i := range rows {
		assets[i] = rows[i].toAsset()
	}
	return assets, nil
}

func (s *Store) FetchCollections(ctx context.Context, t photos.CollectionType, st photos.CollectionSubtype, opts photos.CollectionFetchOptions) ([]photos.Collection, error) {
	if t == photos.CollectionTypeSmartAlbum {
		return s.smartCollections(ctx, st, opts)
	}

	where := []string{"c.collection_type = ?"}
	args := []any{int(t)}
	if st != photos.CollectionSubtypeAny {
		where = append(where, "c.collection_subtype = ?")
		args = append(args, int(st))
	}
	if opts.Title != "" {
		where = append(where, "c.title = ?")
		args = append(args, opts.Title)
	}
	query := collectionSelect + " WHERE " + strings.Join(where, " AND ") + collectionGroupOrder
	var rows []collectionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("fetch collections: %w", err)
	}
	out := make([]photos.Collection, len(rows))
	for i := range rows {
		out[i] = rows[i].toCollection()
	}
	return out, nil
}

const collectionSelect = `SELECT c.local_identifier, c.title, c.collection_type, c.collection_subtype,
	MIN(a.creation_date) AS start_date, MAX(a.creation_date) AS end_date
	FROM asset_collection c
	LEFT JOIN collection_asset ca ON ca.collection_identifier = c.local_identifier
	LEFT JOIN asset a ON a.local_identifier = ca.asset_identifier`

const collectionGroupOrder = ` GROUP BY c.local_identifier, c.title, c.collection_type, c.collection_subtype, c.created_at
	ORDER BY end_date DESC, c.created_at DESC`

func (s *Store) smartCollections(ctx context.Context, st photos.CollectionSubtype, opts photos.CollectionFetchOptions) ([]photos.Collection, error) {
	now := s.clock.Now()
	var out []photos.Collection
	for _, smart := range photos.SmartAlbums {
		if st != photos.CollectionSubtypeAny && smart.Subtype != st {
			continue
		}
		if opts.Title != "" && smart.Title != opts.Title {
			continue
		}
		where, args := predicateSQL(smart.Predicate, now)
		var dr dateRange
		query := "SELECT MIN(a.creation_date) AS start_date, MAX(a.creation_date) AS end_date FROM asset a WHERE " + where
		if err := s.db.GetContext(ctx, &dr, query, args...); err != nil {
			return nil, fmt.Errorf("smart album %q: %w", smart.Title, err)
		}
		out = append(out, smart.Collection(dr.StartDate.Time, dr.EndDate.Time))
	}
	sortByEndDate(out)
	return out, nil
}

// sortByEndDate orders newest first; empty collections go last.
func sortByEndDate(cs []photos.Collection) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].EndDate.After(cs[j].EndDate)
	})
}

func (s *Store) FetchCollectionsWithLocalIdentifiers(ctx context.Context, ids []string) ([]photos.Collection, error) {
	var out []photos.Collection
	var stored []string
	for _, id := range ids {
		found := false
		for _, smart := range photos.SmartAlbums {
			if smart.LocalIdentifier() == id {
				cs, err := s.smartCollections(ctx, smart.Subtype, photos.CollectionFetchOptions{})
				if err != nil {
					return nil, err
				}
				out = append(out, cs...)
				found = true
				break
			}
		}
		if !found {
			stored = append(stored, id)
		}
	}
	if len(stored) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(collectionSelect+" WHERE c.local_identifier IN (?)"+collectionGroupOrder, stored)
	if err != nil {
		return nil, err
	}
	var rows []collectionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("fetch collections: %w", err)
	}
	for i := range rows {
		out = append(out, rows[i].toCollection())
	}
	return out, nil
}

func (s *Store) RequestImage(ctx context.Context, a photos.Asset, opts photos.ImageRequestOptions) (image.Image, error) {
	res, ok := a.PrimaryResource()
	if !ok {
		return nil, photos.ErrNoResource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.media.Preview(res.StorageKey, opts)
}

func (s *Store) OpenResource(_ context.Context, r photos.Resource) (io.ReadCloser, error) {
	return s.media.Open(r.StorageKey)
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}
