package fusion

// Payload is the result of GetFusedData: a *FusedCharacter or a
// *FusedCharacterList.
type Payload interface {
	IsCached() bool
}

// Metadata describes how a result was produced.
type Metadata struct {
	Cached    bool   `json:"cached"`
	Timestamp string `json:"timestamp"`
}

// CharacterInfo is the character subset of a fused result.
type CharacterInfo struct {
	Name      string `json:"name"`
	Height    string `json:"height"`
	Mass      string `json:"mass"`
	Gender    string `json:"gender"`
	BirthYear string `json:"birth_year"`
	Homeworld string `json:"homeworld"`
}

// HomeworldInfo is the planet subset of a fused result.
type HomeworldInfo struct {
	Name       string `json:"name"`
	Climate    string `json:"climate"`
	Terrain    string `json:"terrain"`
	Population string `json:"population"`
}

// WeatherInfo is the weather subset of a fused result.
type WeatherInfo struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// FusedCharacter is one character with its homeworld and local weather.
// Homeworld and Weather are nil when their lookups failed.
type FusedCharacter struct {
	Character CharacterInfo  `json:"character"`
	Homeworld *HomeworldInfo `json:"homeworld,omitempty"`
	Weather   *WeatherInfo   `json:"weather,omitempty"`
	Metadata  Metadata       `json:"metadata"`
}

// IsCached reports whether the result was served from the cache.
func (f *FusedCharacter) IsCached() bool { return f.Metadata.Cached }

// ListedCharacter is one entry of a FusedCharacterList.
type ListedCharacter struct {
	CharacterInfo
	URL string `json:"url"`
}

// ListWeather is the representative weather attached to a list.
type ListWeather struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
}

// FusedCharacterList is one page of characters with representative
// weather.
type FusedCharacterList struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []ListedCharacter `json:"results"`
	Weather  *ListWeather      `json:"weather,omitempty"`
	Metadata Metadata          `json:"metadata"`
}

// IsCached reports whether the result was served from the cache.
func (f *FusedCharacterList) IsCached() bool { return f.Metadata.Cached }
