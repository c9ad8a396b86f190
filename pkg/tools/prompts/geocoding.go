// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Names of the registered prompts.
const (
	GeocodingPrompt = "geocoding"
	KindsPrompt     = "toponym_kinds"
	GuessCityPrompt = "guess_city_host"
)

// RegisterPrompts registers all prompts with the MCP server
func RegisterPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt(GeocodingPrompt,
		mcp.WithPromptDescription("Instructions for using the geocoding and viewport tools"),
	), GeocodingPromptHandler)

	s.AddPrompt(mcp.NewPrompt(KindsPrompt,
		mcp.WithPromptDescription("Toponym kinds accepted by geocode_address and reverse_geocode"),
	), KindsPromptHandler)

	s.AddPrompt(mcp.NewPrompt(GuessCityPrompt,
		mcp.WithPromptDescription("Host a guess-the-city game with sample_obscured_viewport and static_map_url"),
		mcp.WithArgument("cities",
			mcp.ArgumentDescription("Comma-separated list of cities to play with"),
		),
	), GuessCityPromptHandler)
}

func assistant(title, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(
		title,
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(text),
			),
		},
	)
}

// GeocodingPromptHandler returns the main prompt for the geocoding tools
func GeocodingPromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := `You have access to tools that geocode addresses and compute map viewports.
When using these tools:

1. Include the city in addresses, e.g. "Москва, ул. Ак. Королева, 12" rather than "ул. Королева 12"
2. Coordinates are decimal degrees; latitude is within -90..90 and longitude within -180..180
3. geocode_address returns a viewport (ll and spn) ready for static_map_url
4. Use reverse_geocode with kind "district" to find the city district of a point
5. find_organizations marks 24/7 places green (pm2gnm), places with hours blue (pm2blm) and unknown grey (pm2grm)

ERROR HANDLING GUIDELINES:
1. Read the Guidance line of an error and follow it
2. "No results found" usually means the address needs a city or a simpler form
3. Key and rate limit errors cannot be fixed by changing the query`

	return assistant("Geocoding Tool Usage Guidelines", text), nil
}

var kinds = []struct{ name, desc string }{
	{"house", "building"},
	{"street", "street"},
	{"metro", "metro station"},
	{"district", "city district"},
	{"locality", "city, town or village"},
	{"area", "district of a region"},
	{"province", "region or republic"},
	{"country", "country"},
	{"hydro", "river, lake or sea"},
	{"railway", "railway station"},
	{"route", "highway or road"},
	{"vegetation", "forest or park"},
	{"airport", "airport"},
	{"other", "anything else"},
}

// KindsPromptHandler lists the toponym kinds
func KindsPromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	var b strings.Builder
	b.WriteString("The kind argument restricts the type of toponym returned:\n\n")
	for _, k := range kinds {
		fmt.Fprintf(&b, "- %s: %s\n", k.name, k.desc)
	}
	return assistant("Toponym Kinds", b.String()), nil
}

// GuessCityPromptHandler returns instructions for hosting the game
func GuessCityPromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	cities := strings.TrimSpace(request.Params.Arguments["cities"])
	if cities == "" {
		cities = "Москва, Санкт-Петербург, Казань, Сочи, Владивосток"
	}

	text := fmt.Sprintf(`Host a "guess the city" game with these cities: %s.

For each round:
1. Pick a city the player has not seen and keep its name secret
2. Call sample_obscured_viewport with that city
3. Call static_map_url with the returned center and span, width 600 and height 450
4. Show the player the map URL and ask which city it is
5. Compare the answer ignoring case; reveal the city after a correct guess or when the player gives up`, cities)

	return assistant("Guess the City", text), nil
}
