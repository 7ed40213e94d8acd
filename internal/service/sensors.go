package service

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// SensorLookback is how far back a sensor must have reported to count as live.
const SensorLookback = 30 * 24 * time.Hour

// SensorInfo is one selectable sensor of the time-series dashboard.
type SensorInfo struct {
	ID        string `json:"sensor_id"`
	Zone      string `json:"zone,omitempty"`
	Reporting bool   `json:"reporting"`
}

// Sensors merges the sensors placed in the layout with those that reported
// recently, sorted by id.
func (s *DashboardService) Sensors(ctx context.Context) ([]SensorInfo, error) {
	ids, err := s.repo.ListSensors(ctx, SensorLookback)
	if err != nil {
		return nil, fmt.Errorf("listing sensors: %w", err)
	}

	byID := map[string]*SensorInfo{}
	for _, z := range s.layout.Zones {
		for _, id := range z.Sensors {
			if _, ok := byID[id]; !ok {
				byID[id] = &SensorInfo{ID: id, Zone: z.Name}
			}
		}
	}
	for _, id := range ids {
		info, ok := byID[id]
		if !ok {
			info = &SensorInfo{ID: id}
			byID[id] = info
		}
		info.Reporting = true
	}

	out := make([]SensorInfo, 0, len(byID))
	for _, info := range byID {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
