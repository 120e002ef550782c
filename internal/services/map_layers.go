package services

import (
	"context"
	"strings"

	"github.com/stwalsh4118/wardlens/internal/boundary"
	"github.com/stwalsh4118/wardlens/internal/incident"
	"github.com/stwalsh4118/wardlens/internal/models"
	"github.com/stwalsh4118/wardlens/internal/retail"
)

// Marker kinds.
const (
	MarkerRetailer = "retailer"
	MarkerIncident = "incident"
)

func (s *analysisService) MapLayers(ctx context.Context, mode LoadMode, q MapQuery) (*MapLayersBundle, error) {
	if q.Year < 0 {
		return nil, ErrInvalidYear
	}

	retailName, incidentName, boundaryName := s.catalog.Retailers, s.catalog.Incidents, s.catalog.Boundaries
	var optional []string
	if boundaryName != "" {
		optional = []string{boundaryName}
	}

	payloads, loading, err := s.gather(ctx, mode, []string{retailName, incidentName}, optional)
	if err != nil {
		return nil, err
	}
	if loading {
		return &MapLayersBundle{IsLoading: true}, nil
	}

	retailers, err := decode[[]models.Retailer](retailName, payloads)
	if err != nil {
		return nil, err
	}
	incidents, err := decode[[]models.Incident](incidentName, payloads)
	if err != nil {
		return nil, err
	}

	bundle := &MapLayersBundle{}
	var index *boundary.Index
	if data, ok := payloads[boundaryName]; ok {
		fc, idx, err := s.boundaries(data)
		if err != nil {
			s.log.Warn("Boundary layer unusable", map[string]interface{}{
				"dataset": boundaryName,
				"error":   err.Error(),
			})
		} else {
			bundle.Boundaries = fc
			bundle.BoundariesAvailable = true
			index = idx
		}
	}

	bundle.Retailers = s.retailerMarkers(retailers, q.StoreType, index)
	bundle.Incidents = s.incidentMarkers(incidents, q, index)

	years := s.incidents.ByYear(incidents)
	bundle.AvailableYears = make([]int, len(years))
	for i, y := range years {
		bundle.AvailableYears[i] = y.Year
	}
	if q.Year != 0 {
		bundle.Year = &q.Year
	}
	return bundle, nil
}

// boundaries keeps the features of the compared districts and indexes them.
func (s *analysisService) boundaries(data []byte) (*models.BoundaryCollection, *boundary.Index, error) {
	fc, err := decode[models.BoundaryCollection]("boundaries", map[string][]byte{"boundaries": data})
	if err != nil {
		return nil, nil, err
	}

	kept := fc.Features[:0]
	for _, f := range fc.Features {
		n, ok := f.Properties.Number(boundary.DefaultProperty)
		if !ok {
			continue
		}
		if _, ours := s.districts.Get(int(n)); ours {
			kept = append(kept, f)
		}
	}
	fc.Features = kept

	idx, err := boundary.FromCollection(fc, boundary.DefaultProperty)
	if err != nil {
		return nil, nil, err
	}
	return &fc, idx, nil
}

func (s *analysisService) retailerMarkers(retailers []models.Retailer, storeType string, index *boundary.Index) []models.MapMarker {
	active := retail.FilterActive(retailers, s.clock())
	out := make([]models.MapMarker, 0, len(active))
	for _, r := range active {
		if r.Latitude == 0 && r.Longitude == 0 {
			continue
		}
		category := retail.NormalizeStoreType(r.StoreType)
		if storeType != "" &&
			!strings.EqualFold(storeType, r.StoreType) &&
			!strings.EqualFold(storeType, string(category)) {
			continue
		}

		m := models.MapMarker{
			ID:        r.ID.String(),
			Kind:      MarkerRetailer,
			Label:     r.Name,
			Category:  string(category),
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		}
		if n, ok := index.Locate(r.Latitude, r.Longitude); ok {
			m.District = &n
		}
		out = append(out, m)
	}
	return out
}

func (s *analysisService) incidentMarkers(incidents []models.Incident, q MapQuery, index *boundary.Index) []models.MapMarker {
	out := make([]models.MapMarker, 0)
	for _, inc := range incidents {
		side := s.districts.SideOf(inc.Ward.String())
		if side == models.SideNone || inc.Latitude == nil || inc.Longitude == nil {
			continue
		}
		if q.Year != 0 && s.incidents.Year(inc) != q.Year {
			continue
		}
		if q.Offense != "" && !strings.EqualFold(q.Offense, strings.TrimSpace(inc.Offense)) {
			continue
		}

		m := models.MapMarker{
			ID:        inc.CCN.String(),
			Kind:      MarkerIncident,
			Label:     incident.OffenseLabel(inc.Offense),
			Category:  string(incident.OffenseCategory(inc.Offense)),
			Latitude:  *inc.Latitude,
			Longitude: *inc.Longitude,
		}
		if index != nil {
			if n, ok := index.Locate(m.Latitude, m.Longitude); ok {
				m.District = &n
			}
		} else {
			n := s.districts.A.Number
			if side == models.SideB {
				n = s.districts.B.Number
			}
			m.District = &n
		}
		out = append(out, m)
	}
	return out
}
