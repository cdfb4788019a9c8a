package pkg

const (
	// INVALID_SPEED marks a segment or way without a recorded speed.
	INVALID_SPEED uint32 = 4294967295

	// synthetic tag holding the osm way id of an indexed way
	WAY_ID_TAG = "_way_id"

	DEFAULT_SNAP_TOLERANCE_METERS = 5.0
	DEFAULT_TAG_CACHE_SIZE        = 4096

	EARTH_RADIUS_METERS = 6372795.0

	MPH_TO_KPH = 1.609
)
