package notes

// Variant names are the six recognized type-tag names. The resolved
// type tag's name selects which variant rules and construction run; a
// type tag with any other name is a client error.
const (
	VariantLife     = "Life"
	VariantHealth   = "Health"
	VariantBikeRide = "Bike Ride"
	VariantHike     = "Hike"
	VariantBook     = "Book"
	VariantWorkout  = "Workout"
)

func KnownVariant(name string) bool {
	switch name {
	case VariantLife, VariantHealth, VariantBikeRide, VariantHike, VariantBook, VariantWorkout:
		return true
	default:
		return false
	}
}

// Enum sets shared between the field validator and the persisted
// model, kept in one place so the literals never drift apart.
var (
	Bikes = []string{
		"Trek 520",
		"Specialized Roubaix",
		"Surly Long Haul Trucker",
		"Santa Cruz Hightower",
		"Brompton",
	}

	RideDataSources = []string{
		"Strava",
		"Garmin",
		"Ride with GPS",
		"Manual",
	}

	BookFormats = []string{"Book", "eBook", "Audiobook"}

	BookStatuses = []string{"Completed", "Abandoned"}
)
