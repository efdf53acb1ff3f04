package fusion

import (
	"context"

	"github.com/jonwraymond/fusionapi/cache"
	"github.com/jonwraymond/fusionapi/catalog"
	"github.com/jonwraymond/fusionapi/observe"
	"github.com/jonwraymond/fusionapi/weather"
)

// Character returns the fused result for one character id. A cached
// result within its lifetime is returned without contacting upstream.
func (o *Orchestrator) Character(ctx context.Context, id string) (*FusedCharacter, error) {
	canonical, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	key := cache.EntityKey(TagCharacter, canonical)

	op := observe.Operation{Name: "character", Target: key.String()}
	return observe.Observe(ctx, o.mw, op, func(ctx context.Context) (*FusedCharacter, error) {
		res, hit, err := cache.ReadThrough(ctx, o.cache, key, 0, func(ctx context.Context) (FusedCharacter, error) {
			return o.fuseCharacter(ctx, canonical)
		})
		if err != nil {
			return nil, err
		}
		if hit {
			res.Metadata.Cached = true
		}
		return &res, nil
	})
}

func (o *Orchestrator) fuseCharacter(ctx context.Context, id string) (FusedCharacter, error) {
	ch, err := o.catalog.Character(ctx, id)
	if err != nil {
		return FusedCharacter{}, primaryError("character "+id, err)
	}

	out := FusedCharacter{
		Character: CharacterInfo{
			Name:      ch.Name,
			Height:    ch.Height,
			Mass:      ch.Mass,
			Gender:    ch.Gender,
			BirthYear: ch.BirthYear,
			Homeworld: unknown,
		},
	}

	loc := weather.DefaultLocation
	if planet, ok := o.homeworld(ctx, ch); ok {
		out.Homeworld = &HomeworldInfo{
			Name:       planet.Name,
			Climate:    planet.Climate,
			Terrain:    planet.Terrain,
			Population: planet.Population,
		}
		out.Character.Homeworld = planet.Name
		loc = weather.LocationFor(planet.Name)
	}

	cond, err := o.weather.Lookup(ctx, loc.City, loc.Country)
	if err != nil {
		o.logger.Warn(ctx, "weather lookup failed, omitting section",
			observe.Field{Key: "character.id", Value: id},
			observe.Field{Key: "location", Value: loc.String()},
			observe.Err(err),
		)
	} else {
		out.Weather = &WeatherInfo{
			Location:    loc.String(),
			Temperature: cond.Temperature,
			Condition:   cond.Condition,
			Humidity:    cond.Humidity,
			WindSpeed:   cond.WindSpeed,
		}
	}

	out.Metadata = Metadata{Cached: false, Timestamp: o.timestamp()}
	return out, nil
}

func (o *Orchestrator) homeworld(ctx context.Context, ch catalog.Character) (catalog.Planet, bool) {
	planetID := ch.HomeworldID()
	if planetID == "" {
		o.logger.Warn(ctx, "character has no homeworld reference",
			observe.Field{Key: "character", Value: ch.Name})
		return catalog.Planet{}, false
	}
	planet, err := o.catalog.Planet(ctx, planetID)
	if err != nil {
		o.logger.Warn(ctx, "homeworld lookup failed, omitting section",
			observe.Field{Key: "planet.id", Value: planetID},
			observe.Err(err),
		)
		return catalog.Planet{}, false
	}
	return planet, true
}
