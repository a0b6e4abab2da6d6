package domain

// Reserved directory every user implicitly owns. Bookmarks without an
// explicit directory live here.
const (
	UncategorizedID   = "directory-165ee178-7c68-4134-a2f6-9455be8ec55e"
	UncategorizedName = "Uncategorized"
)

// Directory is a named folder of bookmarks owned by one user.
type Directory struct {
	Syncable
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	IsModifiable bool   `json:"isModifiable"`
}

// IsUncategorized reports whether directoryID is the reserved Uncategorized id.
func IsUncategorized(directoryID string) bool {
	return directoryID == UncategorizedID
}

// Uncategorized synthesizes the reserved directory for userID.
// It is never persisted, so it can never be renamed or deleted.
func Uncategorized(userID string) *Directory {
	d := &Directory{
		UserID:       userID,
		Name:         UncategorizedName,
		IsModifiable: false,
	}
	d.ID = UncategorizedID
	return d
}
