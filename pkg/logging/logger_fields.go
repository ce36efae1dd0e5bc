package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Pipeline field helpers

func Component(name string) Field {
	return String("component", name)
}

// Category is the record category (index) being processed, e.g. "literature".
func Category(name string) Field {
	return String("category", name)
}

// Recid is the INSPIRE control number of the record being processed.
func Recid(recid string) Field {
	return String("recid", recid)
}

func UID(uid string) Field {
	return String("uid", uid)
}

func Processor(name string) Field {
	return String("processor", name)
}

// Shape identifies an export batch: a node label/property set or a relation
// type with its endpoint kinds.
func Shape(shape string) Field {
	return String("shape", shape)
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
