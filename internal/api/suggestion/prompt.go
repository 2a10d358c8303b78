package suggestion

import (
	"fmt"

	"github.com/tripdeck/tripdeck/internal/types"
)

// selectionInstructions is the fixed instruction text for the candidate
// ranking call. The floor/cap cardinality contract lives here; the client
// still enforces the cap defensively after parsing.
const selectionInstructions = `You are an intelligent selector for OpenStreetMap places. Your job is to return the top places from a given list of Overpass elements, based on user preferences and category filters.

Follow these rules exactly:

### Input Format
You will receive two items:
1. A user request object with the category, the category-specific filter answers and the anchor point (lat, lon, radius).
2. A list of candidate elements, each with keys like "type", "id", "lat", "lon" and "tags".

### Category-Specific Filters
- stays: style ["Camping", "Hostel", "Budget Hotel", "Mid-range Hotel", "Luxury Hotel", "B&B", "All-inclusive"], company ["Solo", "Partner", "Kids", "Group", "Pets"]
- eatDrink: cuisine (free text), diningStyle ["Casual", "Fine"]
- explore: activityType ["Indoor", "Outdoor"], friendly ["Yes, both", "Kid-friendly", "Pet-friendly", "No"]
- essentials: type ["Supermarket", "Pharmacy", "ATM", "Hospital", "Other"]
- gettingAround: types ["Train stations", "Bus stops", "Parking spots", "Bike rentals", "Charging Stations", "Car rental"]

### Filtering and Selection
1. Filter the elements based on the user's category and filter answers.
2. Select the most relevant ones according to general popularity inferred from tags like "name", "rating" or "famous".
3. Select at least 5 and at most 20 options; if fewer than 5 candidates exist, return them all.

### Output Requirements
1. Return as many elements as possible, but never more than 20.
2. For each selected element keep all original fields ("id", "type", "lat", "lon", "tags") unchanged and add exactly one extra field:
   "description": "A short one-sentence summary describing the place."
3. Do not alter the format or nesting of the elements.
4. The output must be a valid JSON list of objects. No markdown, no text before or after.`

// tipsInstructions drives the travel-tips flow over the trip's saved places.
const tipsInstructions = `You are a practical travel assistant. You will receive the list of places a user has saved to a trip, each with a name and coordinates.

Based on the area those places cover and what kind of places they are, give useful travel advice: local customs worth knowing, safety notes, how to get around between the saved places, what to pack, and anything easy to overlook.

Return your answer as a single valid JSON object with this exact shape, no markdown and no text before or after:
{
  "summary": "One short paragraph summarizing the trip area and character.",
  "tips": ["A concrete, actionable tip.", "..."],
  "packing_list": ["An item worth packing for this trip.", "..."]
}`

// destinationInstructions drives the destination-ideas flow. The output is
// a single JSON object so the parser can unwrap the "destinations" list.
const destinationInstructions = `You are an intelligent travel destination suggestor. Your goal is to recommend 5 specific destinations that best match the user's preferences.
Each destination should include:
- A short description of why it's a good fit.
- Key highlights or activities that match the user's interests (not too general).
- Travel practicality (distance, transport suitability, and best time to visit).
- Other tips that may be useful to the user, such as safety, items to not forget, etc.

Be creative but realistic: suggest real, accessible destinations.
Keep the tone friendly and informative.
Include emojis on the name (flag of the country) and a few others inside the text.
Return your answer in valid JSON format like this, no markdown and no text before or after:
{
  "destinations": [
    {
      "name": "🇯🇵 Kyoto, Japan",
      "description": "A cultural hub with temples and food experiences...⛩️",
      "highlights": ["The temple xxx is great", "The gardens in ... are a must see", "Try the traditional cuisine"],
      "travel_practicality": {"best_time_to_visit": "Autumn for beautiful fall colors...🍂",
                              "distance": "Approx. 1,500 km from...",
                              "transport": "Train to Berlin..."},
      "other_tips": "Not many people speak English..., Don't forget to bring... ☂️"
    }
  ]
}`

func selectionPrompt(userRequest, elements string) string {
	return fmt.Sprintf("%s\n\nUser request:\n%s\n\nElements:\n%s", selectionInstructions, userRequest, elements)
}

func tipsPrompt(markers string) string {
	return fmt.Sprintf("%s\n\nSaved places:\n%s", tipsInstructions, markers)
}

func destinationPrompt(req types.DestinationRequest) string {
	profile := fmt.Sprintf(`The user provided the following information:
- Where they live: %s
- Trip goal: %s
- Their interests: %s
- Available time: %s
- They would prefer to travel by: %s
- Preferred places (if any): %s
- Places to avoid (if any): %s
- Preferred travel season: %s
- Accommodation style: %s

Please suggest 5 travel destinations that fit this profile.`,
		req.Location, req.Goal, req.Interests, req.Length, req.Transport,
		req.Preferred, req.Avoid, req.Season, req.Accommodation)
	return fmt.Sprintf("%s\n\n%s", destinationInstructions, profile)
}
