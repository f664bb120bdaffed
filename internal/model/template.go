package model

import "time"

// Template describes a reusable document template. Templates are namespaced
// one level deep by category; (Category, Name) is unique. The category is
// always carried separately and never embedded in Name.
type Template struct {
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	StorageKey  string    `json:"storage_key"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// TemplateMeta carries the caller-supplied descriptive metadata attached to a
// template at add time. It is stored as out-of-band object tags, not embedded
// in the template bytes.
type TemplateMeta struct {
	Description string `json:"description"`
	Author      string `json:"author"`
}

// VariableMap is a flat placeholder-to-replacement mapping used by template
// instantiation. Values are plain strings; non-string inputs are rejected at
// the API boundary rather than coerced.
type VariableMap map[string]string
