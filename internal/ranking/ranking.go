// Package ranking orders candidate restaurants by distance to an order.
package ranking

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"foodcart/internal/model"

	"github.com/golang/geo/s2"
)

// EarthRadiusKM is the mean earth radius used for great-circle distances.
const EarthRadiusKM = 6371.0088

// UnknownLabel is shown when either side of a distance is unknown.
const UnknownLabel = "0 км"

// Candidate is a restaurant with its resolved coordinates. Coordinates is nil
// when the restaurant address could not be geocoded.
type Candidate struct {
	Restaurant  model.RestaurantCandidate
	Coordinates *model.Coordinates
}

// Options tunes the ordering.
type Options struct {
	// NumericOrder sorts by distance value instead of by label text.
	// Unknown distances go last.
	NumericOrder bool
}

// DistanceKM returns the great-circle distance between a and b. ok is false
// for invalid coordinates or a non-finite result.
func DistanceKM(a, b model.Coordinates) (km float64, ok bool) {
	from := s2.LatLngFromDegrees(a.Lat, a.Lon)
	to := s2.LatLngFromDegrees(b.Lat, b.Lon)
	if !from.IsValid() || !to.IsValid() {
		return 0, false
	}

	km = from.Distance(to).Radians() * EarthRadiusKM
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return 0, false
	}
	return km, true
}

// Round2 rounds the exact value of v to two decimal places, ties to even.
func Round2(v float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return rounded
}

// FormatLabel renders a distance rounded to two decimals in its shortest
// form with at least one decimal digit, e.g. "2.5 км", "12.34 км", "0.0 км".
func FormatLabel(km float64) string {
	s := strings.TrimRight(strconv.FormatFloat(km, 'f', 2, 64), "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s + " км"
}

// Rank computes a distance for every candidate and sorts them. A nil origin
// labels every candidate UnknownLabel. By default candidates are ordered by
// label text, so "12.34 км" comes before "2.5 км". Ties keep input order.
func Rank(origin *model.Coordinates, candidates []Candidate, opts Options) []model.RankedRestaurant {
	ranked := make([]model.RankedRestaurant, len(candidates))
	for i, c := range candidates {
		ranked[i] = model.RankedRestaurant{
			Restaurant:  c.Restaurant,
			Coordinates: c.Coordinates,
			Distance:    UnknownLabel,
		}
		if origin == nil || c.Coordinates == nil {
			continue
		}
		km, ok := DistanceKM(*origin, *c.Coordinates)
		if !ok {
			continue
		}
		rounded := Round2(km)
		ranked[i].DistanceKM = &rounded
		ranked[i].Distance = FormatLabel(km)
	}

	if opts.NumericOrder {
		sort.SliceStable(ranked, func(i, j int) bool {
			a, b := ranked[i].DistanceKM, ranked[j].DistanceKM
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return *a < *b
			}
		})
		return ranked
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked
}
