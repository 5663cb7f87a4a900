package ai

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a sustainable commute planner. You propose realistic multi-modal ` +
	`route options (metro, suburban rail, bus, cycle, e-bike, walk, carpool, auto-rickshaw) for ` +
	`trips inside a city, with honest estimates for duration, cost and CO2. You respond with a ` +
	`single JSON object and nothing else: no prose, no markdown fences.`

// buildUserPrompt renders the trip into the JSON-schema prompt. The field
// names in the schema must match the route wire format exactly, since the
// reply is unmarshalled straight into it.
func buildUserPrompt(q Query) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Plan commute route options from %q to %q in %s.\n", q.Origin, q.Destination, q.City)
	fmt.Fprintf(&sb, "Origin coordinates: %.5f,%.5f. Destination coordinates: %.5f,%.5f.\n",
		q.OriginLat, q.OriginLng, q.DestinationLat, q.DestinationLng)
	fmt.Fprintf(&sb, "All costs are in %s.\n\n", q.Currency)

	sb.WriteString(`Reply with exactly this JSON shape:
{
  "car_baseline": {
    "total_duration_minutes": <number>,
    "total_cost_currency": <number>,
    "co2_emitted_kg": <number>
  },
  "routes": [
    {
      "title": "<short route name, e.g. Metro + Walk>",
      "total_duration_minutes": <number>,
      "total_cost_currency": <number>,
      "co2_emitted_kg": <number>,
      "time_saved_minutes": <number>,
      "money_saved_currency": <number>,
      "co2_saved_kg": <number>,
      "score": <number 0-100>,
      "tags": ["Fastest" | "Cheapest" | "Greenest" | "Most Balanced"],
      "steps": [
        {"mode": "<metro|rail|bus|cycle|ebike|walk|carpool|auto>", "instruction": "<one sentence>", "duration_minutes": <number>}
      ]
    }
  ]
}

Rules:
- Propose 3 to 6 distinct route options, most sustainable trade-offs first.
- car_baseline is the same trip by private car; every *_saved field is relative to it.
- total_duration_minutes must equal the sum of the step durations.
- Walking or cycling routes may have total_cost_currency of 0.
- Every route needs a title, total_cost_currency and total_duration_minutes.`)

	return sb.String()
}
