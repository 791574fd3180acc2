package upstream

import (
	"linetrack-backend/internal/platform/fields"
)

type Worker struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	GeoVictoriaID string   `json:"geovictoria_id,omitempty"`
	StationIDs    []string `json:"station_ids,omitempty"`
}

// Linked reports whether the worker has a GeoVictoria id to fetch attendance with.
func (w Worker) Linked() bool { return w.GeoVictoriaID != "" }

type Station struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	WorkerIDs []string `json:"worker_ids,omitempty"`
}

// AttendanceQuery selects either a back-window (Days) or an explicit range.
type AttendanceQuery struct {
	Days      int
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

type TaskQuery struct {
	WorkerID string
	FromDate string
	ToDate   string
	Limit    int
}

var (
	listEnvelopeKeys = []string{"data", "items", "results", "workers", "stations"}

	workerIDKeys      = []string{"id", "worker_id", "workerId"}
	workerNameKeys    = []string{"name", "full_name", "fullName", "nombre"}
	workerGeoKeys     = []string{"geovictoria_id", "geovictoria_identifier", "geovictoriaId", "geovictoria_user_id", "identifier", "rut"}
	workerStationKeys = []string{"station_ids", "stations", "assigned_stations", "assignments"}

	stationIDKeys     = []string{"id", "station_id", "stationId"}
	stationNameKeys   = []string{"name", "station_name", "nombre"}
	stationWorkerKeys = []string{"worker_ids", "workers", "assigned_workers", "assignments"}

	stationRefKeys = []string{"station_id", "stationId", "id"}
	workerRefKeys  = []string{"worker_id", "workerId", "id"}
)

func decodeWorkers(payload any) []Worker {
	rows := fields.Records(payload, listEnvelopeKeys...)
	out := make([]Worker, 0, len(rows))
	for _, r := range rows {
		m, ok := fields.Object(r)
		if !ok {
			continue
		}
		w := Worker{
			ID:            str(m, workerIDKeys),
			Name:          str(m, workerNameKeys),
			GeoVictoriaID: str(m, workerGeoKeys),
			StationIDs:    refs(m, workerStationKeys, stationRefKeys),
		}
		if w.ID == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

func decodeStations(payload any) []Station {
	rows := fields.Records(payload, listEnvelopeKeys...)
	out := make([]Station, 0, len(rows))
	for _, r := range rows {
		m, ok := fields.Object(r)
		if !ok {
			continue
		}
		s := Station{
			ID:        str(m, stationIDKeys),
			Name:      str(m, stationNameKeys),
			WorkerIDs: refs(m, stationWorkerKeys, workerRefKeys),
		}
		if s.ID == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func str(m map[string]any, keys []string) string {
	v, ok := fields.Lookup(m, keys...)
	if !ok {
		return ""
	}
	s, _ := fields.String(v)
	return s
}

// refs reads an assignment list given as ids or as objects carrying an id.
func refs(m map[string]any, keys, idKeys []string) []string {
	v, ok := fields.Lookup(m, keys...)
	if !ok {
		return nil
	}
	list, _ := fields.List(v)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if obj, ok := fields.Object(item); ok {
			if id := str(obj, idKeys); id != "" {
				out = append(out, id)
			}
			continue
		}
		if s, ok := fields.String(item); ok {
			out = append(out, s)
		}
	}
	return out
}
