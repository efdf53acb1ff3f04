package weather

// Location is a real-world city standing in for a planet.
type Location struct {
	City    string
	Country string
}

// String returns "City, CC".
func (l Location) String() string {
	return l.City + ", " + l.Country
}

// DefaultLocation is used for planets without a mapping.
var DefaultLocation = Location{City: "London", Country: "GB"}

var planetLocations = map[string]Location{
	"Tatooine":  {City: "Tunis", Country: "TN"},
	"Alderaan":  {City: "Zurich", Country: "CH"},
	"Yavin IV":  {City: "Manaus", Country: "BR"},
	"Hoth":      {City: "Vostok Station", Country: "AQ"},
	"Dagobah":   {City: "Cairns", Country: "AU"},
	"Bespin":    {City: "La Paz", Country: "BO"},
	"Endor":     {City: "Portland", Country: "US"},
	"Naboo":     {City: "Venice", Country: "IT"},
	"Coruscant": {City: "New York", Country: "US"},
	"Kamino":    {City: "Male", Country: "MV"},
}

// LocationFor maps a planet name to its stand-in location. Names are
// matched exactly; unknown planets map to DefaultLocation.
func LocationFor(planet string) Location {
	if loc, ok := planetLocations[planet]; ok {
		return loc
	}
	return DefaultLocation
}
