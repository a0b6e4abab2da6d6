package domain

import "fmt"

// TagCreator records whether a tag was typed by a person or suggested by the
// tag generation service.
type TagCreator string

const (
	// TagCreatorUser marks tags entered by the user.
	TagCreatorUser TagCreator = "USER"
	// TagCreatorService marks tags produced by the tag generator and then
	// accepted through the explicit generate operation.
	TagCreatorService TagCreator = "SERVICE"
)

// Valid reports whether c is one of the known creators.
func (c TagCreator) Valid() bool {
	switch c {
	case TagCreatorUser, TagCreatorService:
		return true
	default:
		return false
	}
}

// ParseTagCreator converts s to a TagCreator, rejecting unknown values.
func ParseTagCreator(s string) (TagCreator, error) {
	c := TagCreator(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown tag creator %q", s)
	}
	return c, nil
}

// UnmarshalText keeps invalid creators out of decoded records.
func (c *TagCreator) UnmarshalText(text []byte) error {
	parsed, err := ParseTagCreator(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c TagCreator) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown tag creator %q", string(c))
	}
	return []byte(c), nil
}

// Tag is a per-user label. (UserID, Name) is unique among live tags and Name
// is matched exactly, without case folding.
type Tag struct {
	Syncable
	UserID  string     `json:"userId"`
	Name    string     `json:"tagName"`
	Creator TagCreator `json:"creator"`
}

// NewTag builds a tag record stamped with the current time.
func NewTag(id, userID, name string, creator TagCreator) *Tag {
	t := &Tag{
		UserID:  userID,
		Name:    name,
		Creator: creator,
	}
	t.ID = id
	t.InitTimestamps()
	return t
}
