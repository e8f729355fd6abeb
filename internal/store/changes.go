package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arawak/cameraroll/internal/media"
	"github.com/arawak/cameraroll/internal/photos"
)

var ErrNotFound = errors.New("not found")
var ErrImmutableCollection = errors.New("collection cannot be modified")

func (s *Store) PerformChanges(ctx context.Context, fn func(*photos.ChangeRequest)) (err error) {
	req := &photos.ChangeRequest{}
	fn(req)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var removed, ingested []string
	defer func() {
		if err != nil {
			s.removeOrphans(context.WithoutCancel(ctx), ingested)
		}
	}()
	for _, ch := range req.Changes() {
		switch ch.Kind {
		case photos.ChangeCreateImageAsset:
			res, err := s.media.SaveImage(ctx, ch.Image)
			if err != nil {
				return fmt.Errorf("store image: %w", err)
			}
			ingested = append(ingested, res.Key)
			if err := insertAsset(ctx, tx, media.ImageAsset(ch.Target.LocalIdentifier, res, s.now())); err != nil {
				return err
			}
		case photos.ChangeCreateVideoAsset:
			path, err := media.LocalPath(ch.FileURL)
			if err != nil {
				return err
			}
			res, err := s.media.ImportFile(ctx, path, -1)
			if err != nil {
				return fmt.Errorf("import video: %w", err)
			}
			ingested = append(ingested, res.Key)
			asset := media.FileAsset(ch.Target.LocalIdentifier, path, res, s.now(), photos.MediaTypeVideo)
			if err := insertAsset(ctx, tx, asset); err != nil {
				return err
			}
		case photos.ChangeCreateCollection:
			_, err := tx.ExecContext(ctx, `INSERT INTO asset_collection (local_identifier, title, collection_type, collection_subtype, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				ch.Target.LocalIdentifier, ch.Title, int(photos.CollectionTypeAlbum), int(photos.CollectionSubtypeAlbumRegular), s.now())
			if err != nil {
				return fmt.Errorf("create collection: %w", err)
			}
		case photos.ChangeAddAssets:
			if err := s.addAssetsTx(ctx, tx, ch.Target.LocalIdentifier, ch.Assets); err != nil {
				return err
			}
		case photos.ChangeDeleteAssets:
			keys, err := s.deleteAssetsTx(ctx, tx, ch.Assets)
			if err != nil {
				return err
			}
			removed = append(removed, keys...)
		default:
			return fmt.Errorf("unknown change kind %d", ch.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.removeOrphans(ctx, removed)
	return nil
}

func insertAsset(ctx context.Context, tx *sqlx.Tx, a photos.Asset) error {
	query := `INSERT INTO asset (local_identifier, media_type, media_subtypes, burst_identifier, favorite, front_camera,
		pixel_width, pixel_height, duration, creation_date, latitude, longitude, altitude, heading, speed,
		resource_filename, resource_uti, resource_key, resource_bytes)
	VALUES (:local_identifier, :media_type, :media_subtypes, :burst_identifier, :favorite, :front_camera,
		:pixel_width, :pixel_height, :duration, :creation_date, :latitude, :longitude, :altitude, :heading, :speed,
		:resource_filename, :resource_uti, :resource_key, :resource_bytes)`
	if _, err := tx.NamedExecContext(ctx, query, rowFromAsset(a)); err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (s *Store) addAssetsTx(ctx context.Context, tx *sqlx.Tx, collectionID string, assetIDs []string) error {
	var ctype int
	err := tx.GetContext(ctx, &ctype, "SELECT collection_type FROM asset_collection WHERE local_identifier = ?", collectionID)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
		}
		return err
	}
	if photos.CollectionType(ctype) != photos.CollectionTypeAlbum {
		return ErrImmutableCollection
	}

	var position int
	if err := tx.GetContext(ctx, &position, "SELECT COALESCE(MAX(position), 0) FROM collection_asset WHERE collection_identifier = ?", collectionID); err != nil {
		return err
	}
	for _, id := range assetIDs {
		position++
		res, err := tx.ExecContext(ctx, `INSERT IGNORE INTO collection_asset (collection_identifier, asset_identifier, position, added_at)
			VALUES (?, ?, ?, ?)`, collectionID, id, position, s.now())
		if err != nil {
			return fmt.Errorf("add asset to collection: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			position--
		}
	}
	return nil
}

// deleteAssetsTx removes the assets that exist and returns their storage keys.
func (s *Store) deleteAssetsTx(ctx context.Context, tx *sqlx.Tx, ids []string) ([]string, error) {
	assets, err := s.fetchAssetsByID(ctx, tx, ids)
	if err != nil || len(assets) == 0 {
		return nil, err
	}
	var keys []string
	found := make([]string, 0, len(assets))
	for _, a := range assets {
		found = append(found, a.LocalIdentifier)
		if res, ok := a.PrimaryResource(); ok {
			keys = append(keys, res.StorageKey)
		}
	}
	query, args, err := sqlx.In("DELETE FROM asset WHERE local_identifier IN (?)", found)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("delete assets: %w", err)
	}
	return keys, nil
}

// removeOrphans drops media files no remaining asset points at. Content
// addressing lets several assets share one file.
func (s *Store) removeOrphans(ctx context.Context, keys []string) {
	for _, key := range keys {
		var refs int
		if err := s.db.GetContext(ctx, &refs, "SELECT COUNT(*) FROM asset WHERE resource_key = ?", key); err != nil || refs > 0 {
			continue
		}
		_ = s.media.Remove(key)
	}
}
