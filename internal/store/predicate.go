package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/arawak/cameraroll/internal/photos"
)

// predicateSQL renders p as a WHERE fragment over the asset alias "a".
func predicateSQL(p photos.AssetPredicate, now time.Time) (string, []any) {
	if p.Never {
		return "1=0", nil
	}
	where := []string{"1=1"}
	args := []any{}
	if len(p.MediaTypes) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(p.MediaTypes)), ",")
		where = append(where, "a.media_type IN ("+placeholders+")")
		for _, t := range p.MediaTypes {
			args = append(args, int(t))
		}
	}
	if !p.CreatedAfter.IsZero() {
		where = append(where, "a.creation_date > ?")
		args = append(args, p.CreatedAfter.UTC())
	}
	if !p.CreatedUntil.IsZero() {
		where = append(where, "a.creation_date <= ?")
		args = append(args, p.CreatedUntil.UTC())
	}
	if p.CreatedWithin > 0 {
		where = append(where, "a.creation_date >= ?")
		args = append(args, now.Add(-p.CreatedWithin).UTC())
	}
	if p.FavoritesOnly {
		where = append(where, "a.favorite = TRUE")
	}
	if p.BurstsOnly {
		where = append(where, "a.burst_identifier <> ''")
	}
	if p.FrontCameraOnly {
		where = append(where, "a.front_camera = TRUE")
	}
	if p.RequiredSubtypes != 0 {
		where = append(where, "(a.media_subtypes & ?) = ?")
		args = append(args, uint32(p.RequiredSubtypes), uint32(p.RequiredSubtypes))
	}
	return strings.Join(where, " AND "), args
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
