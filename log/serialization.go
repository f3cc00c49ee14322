package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// LogMessageWire is the JSON line format of one log record.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Module    string        `json:"module,omitempty"`
	Source    string        `json:"source,omitempty"`
}

// LogAttrWire represents a single slog attribute for wire transfer.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "bool", "float64", "time", "error", "any"
	Value string `json:"value"` // String representation of the value
}

// toLogAttrWire converts a slog.Attr to LogAttrWire.
func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{
		Key: attr.Key,
	}
	// Resolve the attribute value
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = attr.Value.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = fmt.Sprintf("%d", attr.Value.Int64())
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = fmt.Sprintf("%d", attr.Value.Uint64())
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = fmt.Sprintf("%t", attr.Value.Bool())
	case slog.KindFloat64:
		wire.Type = "float64"
		wire.Value = fmt.Sprintf("%f", attr.Value.Float64())
	case slog.KindTime:
		wire.Type = "time"
		wire.Value = attr.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type = "duration"
		wire.Value = attr.Value.Duration().String()
	case slog.KindAny:
		if v := attr.Value.Any(); v != nil {
			if err, isErr := v.(error); isErr {
				wire.Type = "error"
				wire.Value = err.Error()
			} else if data, marshalErr := json.Marshal(v); marshalErr == nil {
				wire.Type = "json"
				wire.Value = string(data)
			} else {
				wire.Type = "any"
				wire.Value = fmt.Sprintf("%v", v)
			}
		} else {
			wire.Type = "any"
			wire.Value = "<nil>"
		}
	case slog.KindGroup:
		// Handler flattens groups; this only covers direct callers.
		wire.Type = "group"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	case slog.KindLogValuer:
		return toLogAttrWire(slog.Attr{Key: attr.Key, Value: attr.Value.LogValuer().LogValue()})
	default:
		wire.Type = "any"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	}
	return wire
}

// ParseLine decodes one JSON log line.
func ParseLine(line []byte) (LogMessageWire, error) {
	var msg LogMessageWire
	if err := json.Unmarshal(line, &msg); err != nil {
		return LogMessageWire{}, fmt.Errorf("parse log line: %w", err)
	}
	return msg, nil
}

// Record rebuilds a slog.Record so a host can re-emit plugin logs through
// its own handler. Typed attributes are restored where the type is known.
func (m LogMessageWire) Record() slog.Record {
	var level slog.Level
	if err := level.UnmarshalText([]byte(m.Level)); err != nil {
		level = slog.LevelInfo
	}
	r := slog.NewRecord(m.Timestamp, level, m.Message, 0)
	if m.Module != "" {
		r.AddAttrs(slog.String("module", m.Module))
	}
	if m.Source != "" {
		r.AddAttrs(slog.String("source", m.Source))
	}
	for _, a := range m.Attrs {
		r.AddAttrs(a.Attr())
	}
	return r
}

// Attr converts the wire attribute back to a slog.Attr.
func (w LogAttrWire) Attr() slog.Attr {
	switch w.Type {
	case "int64":
		if v, err := strconv.ParseInt(w.Value, 10, 64); err == nil {
			return slog.Int64(w.Key, v)
		}
	case "uint64":
		if v, err := strconv.ParseUint(w.Value, 10, 64); err == nil {
			return slog.Uint64(w.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(w.Value); err == nil {
			return slog.Bool(w.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(w.Value, 64); err == nil {
			return slog.Float64(w.Key, v)
		}
	case "time":
		if v, err := time.Parse(time.RFC3339Nano, w.Value); err == nil {
			return slog.Time(w.Key, v)
		}
	case "duration":
		if v, err := time.ParseDuration(w.Value); err == nil {
			return slog.Duration(w.Key, v)
		}
	}
	return slog.String(w.Key, w.Value)
}
