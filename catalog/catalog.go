// Package catalog is a client for the Star Wars API (SWAPI) people and
// planet resources.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonwraymond/fusionapi/upstream"
)

// DefaultBaseURL is the public SWAPI endpoint.
const DefaultBaseURL = "https://swapi.dev/api"

// ErrNotFound indicates the requested character or planet does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Character is a SWAPI person. Numeric attributes are strings upstream
// ("172", "unknown") and are kept as such.
type Character struct {
	Name      string `json:"name"`
	Height    string `json:"height"`
	Mass      string `json:"mass"`
	HairColor string `json:"hair_color"`
	SkinColor string `json:"skin_color"`
	EyeColor  string `json:"eye_color"`
	BirthYear string `json:"birth_year"`
	Gender    string `json:"gender"`
	Homeworld string `json:"homeworld"`
	URL       string `json:"url"`
}

// HomeworldID returns the planet id embedded in the Homeworld URL.
func (c Character) HomeworldID() string {
	return IDFromURL(c.Homeworld)
}

// Planet is a SWAPI planet.
type Planet struct {
	Name       string `json:"name"`
	Climate    string `json:"climate"`
	Terrain    string `json:"terrain"`
	Population string `json:"population"`
	URL        string `json:"url"`
}

// CharacterPage is one page of the people listing.
type CharacterPage struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []Character `json:"results"`
}

// Getter is the transport Client needs; *upstream.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Client reads characters and planets.
type Client struct {
	http Getter
}

// New creates a Client over an upstream getter.
func New(g Getter) *Client {
	return &Client{http: g}
}

// Character fetches /people/{id}/.
func (c *Client) Character(ctx context.Context, id string) (Character, error) {
	var out Character
	if err := c.get(ctx, "/people/"+url.PathEscape(id)+"/", nil, &out, "character "+id); err != nil {
		return Character{}, err
	}
	return out, nil
}

// Planet fetches /planets/{id}/.
func (c *Client) Planet(ctx context.Context, id string) (Planet, error) {
	var out Planet
	if err := c.get(ctx, "/planets/"+url.PathEscape(id)+"/", nil, &out, "planet "+id); err != nil {
		return Planet{}, err
	}
	return out, nil
}

// Characters fetches one page of /people/. Pages start at 1.
func (c *Client) Characters(ctx context.Context, page int) (CharacterPage, error) {
	if page < 1 {
		page = 1
	}
	var out CharacterPage
	q := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.get(ctx, "/people/", q, &out, "characters page "+strconv.Itoa(page)); err != nil {
		return CharacterPage{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any, what string) error {
	err := c.http.GetJSON(ctx, path, q, out)
	if errors.Is(err, upstream.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", what, err)
	}
	return nil
}

// IDFromURL returns the last non-empty path segment of a resource URL,
// e.g. "1" for "https://swapi.dev/api/planets/1/".
func IDFromURL(raw string) string {
	segments := strings.FieldsFunc(raw, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}
