package savedview

import (
	"context"
	"math"
	"sort"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

const (
	DefaultNearbyLimit = 20
	MaxNearbyLimit     = 50

	earthRadiusKM = 6371.0
)

// NearbyLocation is a recommendation candidate with its distance from the viewer
type NearbyLocation struct {
	models.LocationResponse
	DistanceKM float64 `json:"distance_km"`
}

// Discoverer lists recommendable locations around a point
type Discoverer struct {
	locations repositories.LocationRepository
	posts     repositories.PostRepository
	log       logrus.FieldLogger
}

// NewDiscoverer creates a new Discoverer
func NewDiscoverer(locations repositories.LocationRepository, posts repositories.PostRepository, logger logrus.FieldLogger) *Discoverer {
	return &Discoverer{
		locations: locations,
		posts:     posts,
		log:       logger.WithField("component", "discover"),
	}
}

// Nearby returns up to limit recommendable locations ordered by distance.
// Locations the viewer has posted to are never recommended back to them.
func (d *Discoverer) Nearby(ctx context.Context, viewerID uint, lat, lng float64, limit int) ([]NearbyLocation, error) {
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	if limit > MaxNearbyLimit {
		limit = MaxNearbyLimit
	}

	posted, err := d.posts.LocationIDsPostedBy(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	candidates, err := d.locations.ListRecommendable(ctx, posted)
	if err != nil {
		return nil, err
	}

	results := make([]NearbyLocation, 0, len(candidates))
	for _, loc := range candidates {
		if !loc.Coordinates.Valid {
			continue
		}
		results = append(results, NearbyLocation{
			LocationResponse: loc.ToResponse(),
			DistanceKM:       haversineKM(lat, lng, loc.Coordinates.Lat(), loc.Coordinates.Lng()),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DistanceKM != results[j].DistanceKM {
			return results[i].DistanceKM < results[j].DistanceKM
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}
