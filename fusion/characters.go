package fusion

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/fusionapi/cache"
	"github.com/jonwraymond/fusionapi/observe"
	"github.com/jonwraymond/fusionapi/weather"
)

// ListLocation is the stand-in location whose weather accompanies every
// character list.
var ListLocation = weather.LocationFor("Tatooine")

// ListKey returns the cache key of a list page: "LIST" for the first
// page, "LIST#<page>" otherwise.
func ListKey(page int) cache.Key {
	if page <= 1 {
		return cache.AggregateKey(TagList, "")
	}
	return cache.AggregateKey(TagList, strconv.Itoa(page))
}

// Characters returns one page of characters with their homeworld names and
// representative weather. Pages start at 1.
func (o *Orchestrator) Characters(ctx context.Context, page int) (*FusedCharacterList, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d must be at least 1", ErrInvalidInput, page)
	}
	key := ListKey(page)

	op := observe.Operation{Name: "characters", Target: key.String()}
	return observe.Observe(ctx, o.mw, op, func(ctx context.Context) (*FusedCharacterList, error) {
		res, hit, err := cache.ReadThrough(ctx, o.cache, key, 0, func(ctx context.Context) (FusedCharacterList, error) {
			return o.fuseList(ctx, page)
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

func (o *Orchestrator) fuseList(ctx context.Context, page int) (FusedCharacterList, error) {
	list, err := o.catalog.Characters(ctx, page)
	if err != nil {
		return FusedCharacterList{}, primaryError("characters page "+strconv.Itoa(page), err)
	}

	names := newPlanetNames(o)
	results := make([]ListedCharacter, len(list.Results))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, ch := range list.Results {
		g.Go(func() error {
			results[i] = ListedCharacter{
				CharacterInfo: CharacterInfo{
					Name:      ch.Name,
					Height:    ch.Height,
					Mass:      ch.Mass,
					Gender:    ch.Gender,
					BirthYear: ch.BirthYear,
					Homeworld: names.lookup(ctx, ch.HomeworldID()),
				},
				URL: ch.URL,
			}
			return nil
		})
	}
	// Workers never fail; an unresolved homeworld becomes "Unknown".
	g.Wait()

	out := FusedCharacterList{
		Count:    list.Count,
		Next:     list.Next,
		Previous: list.Previous,
		Results:  results,
		Metadata: Metadata{Cached: false, Timestamp: o.timestamp()},
	}

	cond, err := o.weather.Lookup(ctx, ListLocation.City, ListLocation.Country)
	if err != nil {
		o.logger.Warn(ctx, "list weather lookup failed, omitting section", observe.Err(err))
	} else {
		out.Weather = &ListWeather{
			Location:    ListLocation.String(),
			Temperature: cond.Temperature,
			Condition:   cond.Condition,
		}
	}
	return out, nil
}

// planetNames resolves planet names once per list request. Concurrent
// lookups of one planet share a single fetch; failures are not remembered.
type planetNames struct {
	o     *Orchestrator
	group singleflight.Group

	mu    sync.Mutex
	names map[string]string
}

func newPlanetNames(o *Orchestrator) *planetNames {
	return &planetNames{o: o, names: make(map[string]string)}
}

func (p *planetNames) lookup(ctx context.Context, id string) string {
	if id == "" {
		return unknown
	}
	p.mu.Lock()
	name, ok := p.names[id]
	p.mu.Unlock()
	if ok {
		return name
	}

	v, err, _ := p.group.Do(id, func() (any, error) {
		p.mu.Lock()
		name, ok := p.names[id]
		p.mu.Unlock()
		if ok {
			return name, nil
		}
		planet, err := p.o.catalog.Planet(ctx, id)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.names[id] = planet.Name
		p.mu.Unlock()
		return planet.Name, nil
	})
	if err != nil {
		p.o.logger.Warn(ctx, "homeworld name lookup failed",
			observe.Field{Key: "planet.id", Value: id},
			observe.Err(err),
		)
		return unknown
	}
	return v.(string)
}
