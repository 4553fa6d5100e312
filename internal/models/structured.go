package models

// StructuredRecord is the subset of the structured-extraction JSON that the
// statistics and geocoding collaborators read. Unknown fields are ignored on
// decode; writers that must preserve them work on generic maps instead.
type StructuredRecord struct {
	Person struct {
		Origin Origin `json:"origin"`
	} `json:"person"`
	AcademiaGustavianaActivity struct {
		Gratulations []any `json:"gratulations"`
	} `json:"academia_gustaviana_activity"`
}

// Origin is where a student came from.
type Origin struct {
	StandardizedRegion string `json:"standardized_region"`
	RegionGroup        string `json:"region_group"`
	GeonamesID         *int   `json:"geonames_id,omitempty"`
}

// RegionStats is one row of the per-region summary.
type RegionStats struct {
	RegionGroup  string `csv:"region_group" json:"region_group"`
	Students     int    `csv:"students" json:"students"`
	Gratulations int    `csv:"gratulations" json:"gratulations"`
	SharePercent string `csv:"share_percent" json:"share_percent"`
}
