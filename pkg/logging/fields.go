package logging

import "time"

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Error renders err as a string field; a nil error yields a null value.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}

// Domain helpers

func NodeID(id string) Field {
	return String("node_id", id)
}

func Algorithm(name string) Field {
	return String("algorithm", name)
}

func Source(name string) Field {
	return String("source", name)
}

func Row(n int) Field {
	return Int("row", n)
}

func Bots(n int) Field {
	return Int("bots", n)
}

func Features(n int) Field {
	return Int("features", n)
}

func Clusters(n int) Field {
	return Int("clusters", n)
}

func RequestID(id string) Field {
	return String("request_id", id)
}
