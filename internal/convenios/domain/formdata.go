package domain

import (
	"sort"
	"strings"
)

// FormData aggregates the values collected by each step of the form wizard.
// Methods never mutate the receiver; they return an updated copy.
type FormData struct {
	Steps     map[string]map[string]string `json:"steps"`
	Completed []string                     `json:"completed,omitempty"`
}

// WithStep returns a copy with fields merged into step. Empty values clear a field.
func (f FormData) WithStep(step string, fields map[string]string, complete bool) FormData {
	out := f.clone()
	merged := out.Steps[step]
	if merged == nil {
		merged = make(map[string]string, len(fields))
	}
	for k, v := range fields {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	out.Steps[step] = merged

	if complete && !out.IsComplete(step) {
		out.Completed = append(out.Completed, step)
		sort.Strings(out.Completed)
	}
	return out
}

// IsComplete reports whether step was marked valid.
func (f FormData) IsComplete(step string) bool {
	for _, s := range f.Completed {
		if s == step {
			return true
		}
	}
	return false
}

// Fields flattens every step into one key/value map. Steps are applied in
// name order, so a later step wins when two steps share a key.
func (f FormData) Fields() map[string]string {
	names := make([]string, 0, len(f.Steps))
	for name := range f.Steps {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string)
	for _, name := range names {
		for k, v := range f.Steps[name] {
			out[k] = v
		}
	}
	return out
}

func (f FormData) clone() FormData {
	out := FormData{
		Steps:     make(map[string]map[string]string, len(f.Steps)+1),
		Completed: append([]string(nil), f.Completed...),
	}
	for name, fields := range f.Steps {
		cp := make(map[string]string, len(fields))
		for k, v := range fields {
			cp[k] = v
		}
		out.Steps[name] = cp
	}
	return out
}
