package restaurants

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/UkralStul/halalyelp-service/internal/domain"
	"github.com/mmcloughlin/geohash"
)

// nearPrecision - 5 символов geohash, ячейка примерно 5x5 км.
const nearPrecision = 5

// Marker - точка ресторана на карте.
type Marker struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Geohash   string  `json:"geohash"`
}

// Markers возвращает рестораны с координатами. Если near ("lat,lng") не пуст,
// остаются только рестораны из ячейки точки и восьми соседних.
func (s *Service) Markers(ctx context.Context, near string) ([]Marker, error) {
	rests, err := s.store.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	var cells map[string]bool
	if near != "" {
		lat, lng, err := parsePoint(near)
		if err != nil {
			return nil, err
		}
		center := geohash.EncodeWithPrecision(lat, lng, nearPrecision)
		cells = map[string]bool{center: true}
		for _, n := range geohash.Neighbors(center) {
			cells[n] = true
		}
	}

	markers := make([]Marker, 0, len(rests))
	for _, r := range rests {
		if r.Latitude == 0 || r.Longitude == 0 {
			continue
		}
		hash := geohash.Encode(r.Latitude, r.Longitude)
		if cells != nil && !cells[hash[:nearPrecision]] {
			continue
		}
		markers = append(markers, Marker{
			ID:        r.ID,
			Name:      r.Name,
			Address:   r.Address,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Geohash:   hash,
		})
	}
	return markers, nil
}

func parsePoint(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, domain.NewValidationError("near", "near must look like \"lat,lng\"")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, domain.NewValidationError("near", "invalid latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, domain.NewValidationError("near", "invalid longitude %q", parts[1])
	}
	return lat, lng, nil
}
