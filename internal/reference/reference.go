// Package reference defines the core domain types for migrated bibliographic items.
package reference

// Item is one bibliographic entry read from the Zotero database.
type Item struct {
	// Identity
	ID   int64  // Internal Zotero itemID (never persisted)
	Key  string // Stable external key assigned by Zotero
	Type string // Type tag after translation (e.g. "article")

	// Timestamps as stored by Zotero
	Created        string
	Modified       string
	ClientModified string
}

// FieldMap maps a canonical field name (title, date, doi, ...) to its value.
type FieldMap map[string]string

// Title returns the item title, or "" if the item has none.
func (f FieldMap) Title() string {
	return f["title"]
}

// Creator is a single person attached to an item in some role.
type Creator struct {
	GivenName string `yaml:"given_name"`
	Surname   string `yaml:"surname"`
}

// CreatorGroup holds all creators of one role in their original order.
type CreatorGroup struct {
	Role     string
	Joined   string // "Surname, Given and Surname, Given"
	Creators []Creator
}

// CreatorMap is the ordered list of creator groups, sorted by role name.
type CreatorMap []CreatorGroup

// Attachment is a file row linked to a parent item.
type Attachment struct {
	ItemID       int64  // Attachment's own itemID
	Key          string // Attachment key (names its storage subdirectory)
	Path         string // Raw path descriptor ("storage:x.pdf" or a filesystem path)
	ContentType  string
	ParentItemID int64
}

// Record is the merged per-item document written as info.yaml.
// Keys follow the papis field-name contract.
type Record map[string]any
