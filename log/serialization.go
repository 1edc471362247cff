package log

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/metaview-dev/mapp-sdk/wireformat"
)

// LogMessageWire is one guest log record as written to the error stream.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Source    string        `json:"source,omitempty"`
}

// LogAttrWire represents a single slog attribute for wire transfer.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "uint64", "bool", "float64", "time", "duration", "error", "json", "any"
	Value string `json:"value"` // String representation of the value
}

// toLogAttrWire converts a slog.Attr to LogAttrWire.
func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{
		Key: attr.Key,
	}
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = attr.Value.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = strconv.FormatBool(attr.Value.Bool())
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
			} else if data, marshalErr := wireformat.Marshal(v); marshalErr == nil {
				wire.Type = "json"
				wire.Value = data
			} else {
				wire.Type = "any"
				wire.Value = fmt.Sprintf("%v", v)
			}
		} else {
			wire.Type = "any"
			wire.Value = "<nil>"
		}
	default:
		wire.Type = "any"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	}
	return wire
}

// flatten appends attr to out, expanding groups into dotted keys.
func flatten(out []LogAttrWire, prefix string, attr slog.Attr) []LogAttrWire {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return out
	}
	key := attr.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, a := range attr.Value.Group() {
			out = flatten(out, key, a)
		}
		return out
	}
	attr.Key = key
	return append(out, toLogAttrWire(attr))
}

// Attr converts the wire attribute back into a slog.Attr. Values that do
// not parse as their declared type are kept as strings.
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

// Record rebuilds a slog.Record from the wire message.
func (m LogMessageWire) Record() (slog.Record, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(m.Level)); err != nil {
		return slog.Record{}, fmt.Errorf("log level %q: %w", m.Level, err)
	}
	r := slog.NewRecord(m.Timestamp, level, m.Message, 0)
	for _, a := range m.Attrs {
		r.AddAttrs(a.Attr())
	}
	if m.Source != "" {
		r.AddAttrs(slog.String(slog.SourceKey, m.Source))
	}
	return r, nil
}
