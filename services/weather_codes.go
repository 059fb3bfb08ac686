package services

// weatherCondition maps a WMO weather interpretation code to a coarse group
// and a readable description.
type weatherCondition struct {
	main        string
	description string
}

var wmoConditions = map[int]weatherCondition{
	0:  {"Clear", "clear sky"},
	1:  {"Clear", "mainly clear"},
	2:  {"Clouds", "partly cloudy"},
	3:  {"Clouds", "overcast"},
	45: {"Fog", "fog"},
	48: {"Fog", "depositing rime fog"},
	51: {"Drizzle", "light drizzle"},
	53: {"Drizzle", "moderate drizzle"},
	55: {"Drizzle", "dense drizzle"},
	56: {"Drizzle", "light freezing drizzle"},
	57: {"Drizzle", "dense freezing drizzle"},
	61: {"Rain", "slight rain"},
	63: {"Rain", "moderate rain"},
	65: {"Rain", "heavy rain"},
	66: {"Rain", "light freezing rain"},
	67: {"Rain", "heavy freezing rain"},
	71: {"Snow", "slight snow fall"},
	73: {"Snow", "moderate snow fall"},
	75: {"Snow", "heavy snow fall"},
	77: {"Snow", "snow grains"},
	80: {"Rain", "slight rain showers"},
	81: {"Rain", "moderate rain showers"},
	82: {"Rain", "violent rain showers"},
	85: {"Snow", "slight snow showers"},
	86: {"Snow", "heavy snow showers"},
	95: {"Thunderstorm", "thunderstorm"},
	96: {"Thunderstorm", "thunderstorm with slight hail"},
	99: {"Thunderstorm", "thunderstorm with heavy hail"},
}

func describeWeatherCode(code int) weatherCondition {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return weatherCondition{main: "Unknown", description: "Unknown"}
}
