package artifact

import "time"

// Version is an immutable, timestamped snapshot of a document.
//
// Versions for one DocumentID form a strictly CreatedAt-ordered sequence;
// (DocumentID, CreatedAt) is the composite identity key and no two versions
// may share it. A Version is created only at stream completion, by an
// explicit save, or by a restore - never mutated afterwards.
type Version struct {
	DocumentID string    `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
	Title      string    `json:"title"`
	Kind       Kind      `json:"kind"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
}

// VersionFromDraft builds the version a finished stream persists, stamped
// with the given creation time and author.
func VersionFromDraft(d Draft, createdAt time.Time, authorID string) Version {
	return Version{
		DocumentID: d.DocumentID,
		CreatedAt:  createdAt,
		Title:      d.Title,
		Kind:       d.Kind,
		Content:    d.Content,
		AuthorID:   authorID,
	}
}
