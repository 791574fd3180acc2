package attendance

import (
	"time"

	"linetrack-backend/internal/platform/fields"
)

// Key aliases for legacy flat rows, in priority order. fields.Key absorbs casing, accents and separators.
var (
	flatEnvelopeKeys = []string{"data", "records", "items", "rows", "results", "attendance", "asistencia"}

	flatDateKeys       = []string{"Fecha", "Date", "Day", "Dia", "FechaAsistencia", "AttendanceDate", "WorkDate"}
	flatEntryKeys      = []string{"Entrada", "HoraEntrada", "Entry", "EntryTime", "CheckIn", "ClockIn", "In"}
	flatExitKeys       = []string{"Salida", "HoraSalida", "Exit", "ExitTime", "CheckOut", "ClockOut", "Out"}
	flatLunchOutKeys   = []string{"SalidaColacion", "InicioColacion", "LunchOut", "LunchStart", "BreakStart"}
	flatLunchInKeys    = []string{"EntradaColacion", "FinColacion", "LunchIn", "LunchEnd", "BreakEnd"}
	flatWorkedMinKeys  = []string{"WorkedMinutes", "MinutosTrabajados"}
	flatDelayMinKeys   = []string{"DelayMinutes", "MinutosAtraso", "Atraso", "Delay"}
	flatWorkedFlagKeys = []string{"Worked", "Trabajado"}
	flatAbsentFlagKeys = []string{"Absent", "Ausente"}
)

// DecodeFlat normalizes legacy flat rows. Rows without a resolvable day are dropped.
func DecodeFlat(payload any, loc *time.Location) []Day {
	rows := fields.Records(payload, flatEnvelopeKeys...)
	out := make([]Day, 0, len(rows))
	for _, raw := range rows {
		row, ok := fields.Object(raw)
		if !ok {
			continue
		}
		if d, ok := decodeFlatRow(row, loc); ok {
			out = append(out, d)
		}
	}
	return out
}

type flatSlot struct {
	raw    any
	has    bool
	parsed *time.Time
}

func decodeFlatRow(row map[string]any, loc *time.Location) (Day, bool) {
	slots := [4]flatSlot{}
	for i, keys := range [][]string{flatEntryKeys, flatExitKeys, flatLunchOutKeys, flatLunchInKeys} {
		slots[i].raw, slots[i].has = fields.Lookup(row, keys...)
	}

	// full timestamps first
	var earliest *time.Time
	for i := range slots {
		if !slots[i].has {
			continue
		}
		if t, ok := ParseTimestamp(slots[i].raw, loc); ok {
			slots[i].parsed = &t
			if earliest == nil || t.Before(*earliest) {
				earliest = &t
			}
		}
	}

	day := ""
	if v, ok := fields.Lookup(row, flatDateKeys...); ok {
		day, _ = ResolveDay(v, loc)
	}
	if day == "" && earliest != nil {
		day = DayOf(*earliest, loc)
	}
	if day == "" {
		return Day{}, false
	}

	// the rest are "HH:MM" on the row's day
	for i := range slots {
		if !slots[i].has || slots[i].parsed != nil {
			continue
		}
		if t, ok := ParseClockOn(day, slots[i].raw, loc); ok {
			slots[i].parsed = &t
		}
	}

	d := Day{
		Date:       day,
		Entry:      slots[0].parsed,
		Exit:       slots[1].parsed,
		LunchStart: slots[2].parsed,
		LunchEnd:   slots[3].parsed,
	}
	if v, ok := fields.Lookup(row, flatWorkedMinKeys...); ok {
		d.WorkedMinutes = ParseDurationMinutes(v)
	}
	if v, ok := fields.Lookup(row, flatDelayMinKeys...); ok {
		d.DelayMinutes = ParseDurationMinutes(v)
	}
	if v, ok := fields.Lookup(row, flatWorkedFlagKeys...); ok {
		d.Worked = ParseFlag(v)
	}
	if v, ok := fields.Lookup(row, flatAbsentFlagKeys...); ok {
		d.Absent = ParseFlag(v)
	}
	return d, true
}
