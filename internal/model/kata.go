package model

import (
	"bytes"
	"encoding/json"
	"time"
)

type Kata struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Difficulty *string   `json:"difficulty"`
	Completed  bool      `json:"completed"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// KataPatch carries the fields of a partial update. Nil pointers and unset
// OptionalStrings leave the stored value untouched.
type KataPatch struct {
	Title      *string
	URL        *string
	Difficulty OptionalString
	Completed  *bool
	Notes      OptionalString
}

// IsEmpty reports whether the patch changes nothing.
func (p KataPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Completed == nil &&
		!p.Difficulty.Set && !p.Notes.Set
}

// OptionalString distinguishes a JSON field that was omitted from one that was
// sent as null. Set is true whenever the key appeared in the payload; Value is
// nil for an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func SomeString(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

func NullString() OptionalString {
	return OptionalString{Set: true}
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
