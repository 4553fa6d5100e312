package geonames

import (
	"context"
	"fmt"
	"os"

	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/store"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Counts summarises an update run.
type Counts struct {
	Files    int
	Updated  int
	Skipped  int
	NotFound int
	Errors   int
}

// Updater fills in person.origin.geonames_id in structured record files.
type Updater struct {
	geocoder Geocoder
	regions  store.RegionMapping
	logger   logging.Logger
}

// NewUpdater creates an Updater translating historical names through
// regions before searching.
func NewUpdater(geocoder Geocoder, regions store.RegionMapping, logger logging.Logger) *Updater {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Updater{geocoder: geocoder, regions: regions, logger: logger}
}

// Resolve finds the ID for a historical region name: through its modern
// name when mapped, as written otherwise. Names mapped to nothing are
// not searched.
func (u *Updater) Resolve(ctx context.Context, region string) (*int, error) {
	if region == "" {
		return nil, nil
	}
	modern, known := u.regions.Modern(region)
	if known && modern == "" {
		return nil, nil
	}
	if !known {
		modern = region
	}
	return u.geocoder.Search(ctx, modern)
}

// UpdateTree processes every .json file below dir. Records that already
// have an ID are skipped. Files are rewritten only when apply is set; a
// dry run reports what would change. maxFiles > 0 limits the run.
func (u *Updater) UpdateTree(ctx context.Context, dir string, apply bool, maxFiles int) (Counts, error) {
	files, err := fileutils.ListFiles(dir, true, ".json")
	if err != nil {
		return Counts{}, err
	}
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}

	mode := "dry-run"
	if apply {
		mode = "apply"
	}
	u.logger.Info("Updating GeoNames IDs",
		logging.F(logging.FieldDirectory, dir),
		logging.F(logging.FieldCount, len(files)),
		logging.F("mode", mode))

	var counts Counts
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		counts.Files++
		if err := u.updateFile(ctx, path, apply, &counts); err != nil {
			counts.Errors++
			u.logger.WithError(err).Error("Failed to update file", logging.F(logging.FieldFile, path))
		}
	}
	return counts, nil
}

// updateFile patches person.origin.geonames_id in place. The rest of the
// record keeps its bytes and key order.
func (u *Updater) updateFile(ctx context.Context, path string, apply bool, counts *Counts) error {
	data, err := os.ReadFile(path) // #nosec G304 -- files listed under the records directory
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("not a valid JSON record: %s", path)
	}

	origin := gjson.GetBytes(data, "person.origin")
	region := origin.Get("standardized_region")
	if region.Type != gjson.String || region.String() == "" {
		return nil
	}
	if existing := origin.Get("geonames_id"); existing.Exists() && existing.Type != gjson.Null {
		counts.Skipped++
		return nil
	}

	id, err := u.Resolve(ctx, region.String())
	if err != nil {
		return err
	}
	if id == nil {
		counts.NotFound++
		u.logger.Warn("No GeoNames ID for region",
			logging.F(logging.FieldFile, path),
			logging.F(logging.FieldRegion, region.String()))
		return nil
	}

	if apply {
		patched, err := sjson.SetBytes(data, "person.origin.geonames_id", *id)
		if err != nil {
			return fmt.Errorf("setting geonames_id: %w", err)
		}
		if err := fileutils.WriteFileAtomic(path, patched); err != nil {
			return err
		}
	}
	counts.Updated++
	u.logger.Info("Record updated",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldRegion, region.String()),
		logging.F("geonames_id", *id),
		logging.F("applied", apply))
	return nil
}
