package models

const VariantDestructive = "destructive"

// Notification is a transient user-facing message describing an outcome.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}
