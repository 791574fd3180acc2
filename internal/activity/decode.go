package activity

import (
	"linetrack-backend/internal/platform/fields"
)

var (
	envelopeKeys    = []string{"data", "items", "results", "task_instances", "tasks", "history"}
	idKeys          = []string{"task_instance_id", "id", "taskInstanceId"}
	startedKeys     = []string{"started_at", "startedAt", "start_time"}
	completedKeys   = []string{"completed_at", "completedAt", "end_time"}
	durationMinKeys = []string{"duration_minutes", "durationMinutes"}
	pausesKeys      = []string{"pauses"}
	pauseSecKeys    = []string{"duration_seconds", "durationSeconds"}
)

// DecodeTasks reads the task history payload (bare array or enveloped). Records that are not
// objects are skipped; numeric fields are parsed permissively and non-finite values dropped.
func DecodeTasks(raw []byte) []TaskInstance {
	return DecodeTaskValue(fields.Decode(raw))
}

func DecodeTaskValue(payload any) []TaskInstance {
	rows := fields.Records(payload, envelopeKeys...)
	out := make([]TaskInstance, 0, len(rows))
	for _, r := range rows {
		m, ok := fields.Object(r)
		if !ok {
			continue
		}
		out = append(out, decodeTask(m))
	}
	return out
}

func decodeTask(m map[string]any) TaskInstance {
	var t TaskInstance
	if v, ok := fields.Lookup(m, idKeys...); ok {
		t.ID, _ = fields.String(v)
	}
	if v, ok := fields.Lookup(m, startedKeys...); ok {
		t.StartedAt, _ = fields.String(v)
	}
	if v, ok := fields.Lookup(m, completedKeys...); ok {
		t.CompletedAt, _ = fields.String(v)
	}
	if v, ok := fields.Lookup(m, durationMinKeys...); ok {
		if f, ok := fields.Number(v); ok {
			t.DurationMinutes = &f
		}
	}
	t.Pauses = []Pause{}
	if v, ok := fields.Lookup(m, pausesKeys...); ok {
		list, _ := fields.List(v)
		for _, p := range list {
			pm, ok := fields.Object(p)
			if !ok {
				continue
			}
			var secs float64
			if sv, ok := fields.Lookup(pm, pauseSecKeys...); ok {
				secs, _ = fields.Number(sv)
			}
			t.Pauses = append(t.Pauses, Pause{DurationSeconds: secs})
		}
	}
	return t
}
