package suggestion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tripdeck/tripdeck/internal/types"
)

// Overpass QL construction. Every template is parameterized by the same
// spatial clause (around:radius,lat,lon); multi-valued filters union their
// fragments into one combined query so a suggestion request costs exactly one
// Overpass round-trip no matter how many sub-filters were picked.

const overpassHeader = "[out:json][timeout:180];"

// exploreOutdoorTemplate combines natural and leisure features with tourism
// attractions, then subtracts anything tagged indoor or carrying a building
// tag. The subtraction is needed because the broad attraction predicate would
// otherwise match indoor venues. %[1]s is the around clause arguments.
const exploreOutdoorTemplate = `[out:json][timeout:180];
(
  node["natural"~"water|lake|waterfall|spring|gorge|peak|cliff|valley|ridge|rock|cave_entrance|forest"][name](around:%[1]s);
  way["natural"~"water|lake|waterfall|spring|gorge|peak|cliff|valley|ridge|rock|cave_entrance|forest"][name](around:%[1]s);
  relation["natural"~"water|lake|waterfall|spring|gorge|peak|cliff|valley|ridge|rock|cave_entrance|forest"][name](around:%[1]s);

  node["water"~"lake|basin"][name](around:%[1]s);
  way["water"~"lake|basin"][name](around:%[1]s);
  relation["water"~"lake|basin"][name](around:%[1]s);

  node["leisure"~"park|garden|nature_reserve"][name](around:%[1]s);
  way["leisure"~"park|garden|nature_reserve"][name](around:%[1]s);
  relation["leisure"~"park|garden|nature_reserve"][name](around:%[1]s);
)->.natural;

(
  node["tourism"~"attraction|viewpoint|picnic_site|theme_park"][name](around:%[1]s);
  way["tourism"~"attraction|viewpoint|picnic_site|theme_park"][name](around:%[1]s);
  relation["tourism"~"attraction|viewpoint|picnic_site|theme_park"][name](around:%[1]s);
)->.all;

(
  node["indoor"="yes"](around:%[1]s);
  way["indoor"="yes"](around:%[1]s);
  relation["indoor"="yes"](around:%[1]s);
  node["building"](around:%[1]s);
  way["building"](around:%[1]s);
  relation["building"](around:%[1]s);
)->.indoors;

(
  .natural;
  (.all; - .indoors;);
);
out center;`

const exploreIndoorTemplate = `[out:json][timeout:180];
(
  node["tourism"~"museum|theatre"][name](around:%[1]s);
  way["tourism"~"museum|theatre"][name](around:%[1]s);
  relation["tourism"~"museum|theatre"][name](around:%[1]s);

  node["amenity"="library"]["tourism"="attraction"][name](around:%[1]s);
  way["amenity"="library"]["tourism"="attraction"][name](around:%[1]s);
  relation["amenity"="library"]["tourism"="attraction"][name](around:%[1]s);
  node["amenity"="library"]["heritage"][name](around:%[1]s);
  way["amenity"="library"]["heritage"][name](around:%[1]s);
  relation["amenity"="library"]["heritage"][name](around:%[1]s);

  node["building"="church"]["historic"](around:%[1]s);
  way["building"="church"]["historic"](around:%[1]s);
  relation["building"="church"]["historic"](around:%[1]s);

  node["historic"][name](around:%[1]s);
  way["historic"][name](around:%[1]s);
  relation["historic"][name](around:%[1]s);
);
out center;`

const eatDrinkTemplate = `[out:json][timeout:180];
(
  node[amenity~"^(restaurant|cafe|bar|fast_food)$"][cuisine~"%[2]s",i](around:%[1]s);
  way[amenity~"^(restaurant|cafe|bar|fast_food)$"][cuisine~"%[2]s",i](around:%[1]s);
  relation[amenity~"^(restaurant|cafe|bar|fast_food)$"][cuisine~"%[2]s",i](around:%[1]s);
);
out center;`

// stayStyleKeys maps the questionnaire's accommodation style names onto the
// internal fragment keys. Unknown names are dropped before building.
var stayStyleKeys = map[string]string{
	"Camping":         "camping",
	"Hostel":          "hostel",
	"Budget Hotel":    "budget",
	"Mid-range Hotel": "midrange",
	"Luxury Hotel":    "luxury",
	"B&B":             "bnb",
	"All-inclusive":   "allinclusive",
}

// stayFragments end every statement with a bare ";" so the around clause can
// be substituted uniformly.
var stayFragments = map[string]string{
	"camping": `node[tourism=camp_site];
way[tourism=camp_site];
relation[tourism=camp_site];
node[tourism=caravan_site];
way[tourism=caravan_site];
relation[tourism=caravan_site];`,
	"hostel": `node[tourism=hostel];
way[tourism=hostel];
relation[tourism=hostel];`,
	"budget": `node[tourism=hotel][stars~"^[0-2]$"];
way[tourism=hotel][stars~"^[0-2]$"];
relation[tourism=hotel][stars~"^[0-2]$"];`,
	"midrange": `node[tourism=hotel][stars=3];
way[tourism=hotel][stars=3];
relation[tourism=hotel][stars=3];
node[tourism=hotel][stars=4];
way[tourism=hotel][stars=4];
relation[tourism=hotel][stars=4];`,
	"luxury": `node[tourism=hotel][stars=4];
way[tourism=hotel][stars=4];
relation[tourism=hotel][stars=4];
node[tourism=hotel][stars=5];
way[tourism=hotel][stars=5];
relation[tourism=hotel][stars=5];
node[tourism=resort];
way[tourism=resort];
relation[tourism=resort];`,
	"bnb": `node[tourism=guest_house];
way[tourism=guest_house];
relation[tourism=guest_house];
node[tourism=bed_and_breakfast];
way[tourism=bed_and_breakfast];
relation[tourism=bed_and_breakfast];`,
	"allinclusive": `node[tourism=resort];
way[tourism=resort];
relation[tourism=resort];`,
}

// stayStyleOrder keeps multi-style queries byte-identical across runs.
var stayStyleOrder = []string{"camping", "hostel", "budget", "midrange", "luxury", "bnb", "allinclusive"}

var essentialFragments = map[string]string{
	"supermarket": `node[shop=supermarket][name];
way[shop=supermarket][name];
relation[shop=supermarket][name];`,
	"pharmacy": `node[amenity=pharmacy][name];
way[amenity=pharmacy][name];
relation[amenity=pharmacy][name];`,
	"atm": `node[amenity=atm][name];
way[amenity=atm][name];
relation[amenity=atm][name];`,
	"hospital": `node[amenity=hospital][name];
way[amenity=hospital][name];
relation[amenity=hospital][name];`,
	"other": `node[shop~"^(convenience|general|kiosk|variety_store)$",i][name];
way[shop~"^(convenience|general|kiosk|variety_store)$",i][name];
relation[shop~"^(convenience|general|kiosk|variety_store)$",i][name];
node[amenity~"^(toilets|bank|post_office|bureau_de_change|clinic|fuel)$",i][name];
way[amenity~"^(toilets|bank|post_office|bureau_de_change|clinic|fuel)$",i][name];
relation[amenity~"^(toilets|bank|post_office|bureau_de_change|clinic|fuel)$",i][name];`,
}

var aroundTypeKeys = map[string]string{
	"Train stations":    "train",
	"Bus stops":         "bus",
	"Parking spots":     "parking",
	"Bike rentals":      "bike",
	"Charging Stations": "charging",
	"Car rental":        "car",
}

var aroundFragments = map[string]string{
	"train": `node[railway=station][name];
way[railway=station][name];
relation[railway=station][name];`,
	"bus": `node[highway=bus_stop][name];
way[highway=bus_stop][name];
relation[highway=bus_stop][name];`,
	"parking": `node[amenity=parking][name];
way[amenity=parking][name];
relation[amenity=parking][name];`,
	"bike": `node[amenity=bicycle_rental][name];
way[amenity=bicycle_rental][name];
relation[amenity=bicycle_rental][name];`,
	"charging": `node[amenity=charging_station][name];
way[amenity=charging_station][name];
relation[amenity=charging_station][name];`,
	"car": `node[amenity=car_rental][name];
way[amenity=car_rental][name];
relation[amenity=car_rental][name];`,
}

var aroundTypeOrder = []string{"train", "bus", "parking", "bike", "charging", "car"}

// aroundArgs renders the shared proximity clause arguments.
func aroundArgs(radius int, lat, lon float64) string {
	return fmt.Sprintf("%d,%s,%s",
		radius,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
	)
}

// BuildQuery constructs the Overpass query for the given category and
// filters. It is pure: identical inputs always yield byte-identical output.
// When a multi-valued filter contains no recognized values it returns
// types.ErrInvalidFilter instead of emitting an unconstrained query.
func BuildQuery(category types.Category, filters types.SuggestionFilters, lat, lon float64, radius int) (string, error) {
	around := aroundArgs(radius, lat, lon)

	switch category {
	case types.CategoryExplore:
		return buildExploreQuery(filters.ActivityType, around)
	case types.CategoryStay:
		return buildFragmentUnion(filters.Styles, stayStyleKeys, stayFragments, stayStyleOrder, around)
	case types.CategoryEatDrink:
		return buildEatDrinkQuery(filters.Cuisine, around), nil
	case types.CategoryEssentials:
		return buildEssentialsQuery(filters.EssentialType, around)
	case types.CategoryGettingAround:
		return buildFragmentUnion(filters.AroundTypes, aroundTypeKeys, aroundFragments, aroundTypeOrder, around)
	default:
		return "", fmt.Errorf("unhandled category %q: %w", category, types.ErrInvalidFilter)
	}
}

func buildExploreQuery(activityType, around string) (string, error) {
	switch activityType {
	case "Outdoor":
		return fmt.Sprintf(exploreOutdoorTemplate, around), nil
	case "Indoor":
		return fmt.Sprintf(exploreIndoorTemplate, around), nil
	default:
		return "", fmt.Errorf("unknown activity type %q: %w", activityType, types.ErrInvalidFilter)
	}
}

func buildEatDrinkQuery(cuisine, around string) string {
	if cuisine == "" {
		cuisine = ".*"
	}
	return fmt.Sprintf(eatDrinkTemplate, around, cuisine)
}

func buildEssentialsQuery(essType, around string) (string, error) {
	fragment, ok := essentialFragments[strings.ToLower(essType)]
	if !ok {
		return "", fmt.Errorf("unknown essentials type %q: %w", essType, types.ErrInvalidFilter)
	}
	return wrapFragments(fragment, around), nil
}

// buildFragmentUnion normalizes the selected display names to fragment keys,
// drops unknown values and unions the surviving fragments inside one query.
func buildFragmentUnion(selected []string, nameKeys, fragments map[string]string, order []string, around string) (string, error) {
	chosen := make(map[string]bool, len(selected))
	for _, name := range selected {
		if key, ok := nameKeys[name]; ok {
			chosen[key] = true
		}
	}
	if len(chosen) == 0 {
		return "", fmt.Errorf("no recognized filter values in %v: %w", selected, types.ErrInvalidFilter)
	}

	var combined strings.Builder
	for _, key := range order {
		if chosen[key] {
			combined.WriteString(fragments[key])
			combined.WriteString("\n")
		}
	}
	return wrapFragments(combined.String(), around), nil
}

// wrapFragments injects the proximity clause into every statement of the
// fragment body and wraps it with the Overpass header and output mode.
func wrapFragments(body, around string) string {
	body = strings.ReplaceAll(body, ";", "(around:"+around+");")
	return overpassHeader + "(" + body + ");out center;"
}
