package nerfconf

import (
	"github.com/zclconf/go-cty/cty"
)

// Entry is a single `key = value` assignment in a configuration record.
type Entry struct {
	Key   string
	Value cty.Value

	// raw preserves the original value text from the source file, so that
	// numbers render back exactly as they were written (e.g. "5e-4").
	raw string
}

// Record is one experiment configuration: an ordered list of entries with
// last-write-wins key semantics. The zero value is not usable; call New.
type Record struct {
	// Name identifies the record's origin (usually a file path) and is used
	// in error messages. It may be empty for synthesized records.
	Name string

	entries []Entry
	index   map[string]int
}

// New creates an empty record with the given origin name.
func New(name string) *Record {
	return &Record{
		Name:  name,
		index: make(map[string]int),
	}
}

// Len returns the number of distinct keys in the record.
func (r *Record) Len() int {
	return len(r.entries)
}

// Has reports whether the record contains the given key.
func (r *Record) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Get returns the value for key. The second result is false if the key is absent.
func (r *Record) Get(key string) (cty.Value, bool) {
	i, ok := r.index[key]
	if !ok {
		return cty.NilVal, false
	}
	return r.entries[i].Value, true
}

// Set assigns a value to a key. An existing key keeps its position in the
// record; a new key is appended at the end.
func (r *Record) Set(key string, val cty.Value) {
	r.setRaw(key, val, "")
}

func (r *Record) setRaw(key string, val cty.Value, raw string) {
	if i, ok := r.index[key]; ok {
		r.entries[i].Value = val
		r.entries[i].raw = raw
		return
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, Entry{Key: key, Value: val, raw: raw})
}

// Keys returns all keys in record order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in record order.
func (r *Record) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Copy returns a deep copy of the record (cty values are immutable, so only
// the entry list and index are duplicated).
func (r *Record) Copy() *Record {
	out := New(r.Name)
	out.entries = make([]Entry, len(r.entries))
	copy(out.entries, r.entries)
	for k, v := range r.index {
		out.index[k] = v
	}
	return out
}

// Merge layers overlay on top of base. The result keeps base's key order;
// keys that exist only in the overlay are appended in overlay order. Neither
// input is modified. The result carries the overlay's name when set,
// otherwise the base's.
func Merge(base, overlay *Record) *Record {
	name := base.Name
	if overlay.Name != "" {
		name = overlay.Name
	}
	out := New(name)
	for _, e := range base.entries {
		out.setRaw(e.Key, e.Value, e.raw)
	}
	for _, e := range overlay.entries {
		out.setRaw(e.Key, e.Value, e.raw)
	}
	return out
}
