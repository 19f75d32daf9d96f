package domain

import "time"

// Status is the lifecycle state of a saved item.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may happen from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SavedItem is one imported web page owned by a user.
type SavedItem struct {
	ID          string
	UserID      string
	URL         string
	Status      Status
	Title       *string
	Content     *string
	OGImage     *string
	Author      *string
	PublishedAt *time.Time
	Summary     *string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemUpdate carries the mutable fields of an item. Nil fields are left untouched.
type ItemUpdate struct {
	Status      *Status
	Title       *string
	Content     *string
	OGImage     *string
	Author      *string
	PublishedAt *time.Time
	Summary     *string
	Tags        []string
	SetTags     bool

	// ClearExtracted nulls every extraction-derived column.
	ClearExtracted bool
}

// CompletionUpdate builds the single update that moves an item into COMPLETED.
func CompletionUpdate(title, content, image, author *string, publishedAt *time.Time) ItemUpdate {
	status := StatusCompleted
	return ItemUpdate{
		Status:      &status,
		Title:       title,
		Content:     content,
		OGImage:     image,
		Author:      author,
		PublishedAt: publishedAt,
	}
}

// FailureUpdate moves an item into FAILED with no extracted fields.
func FailureUpdate() ItemUpdate {
	status := StatusFailed
	return ItemUpdate{Status: &status, ClearExtracted: true}
}

// SummaryUpdate stores a user summary together with generated tags.
func SummaryUpdate(summary string, tags []string) ItemUpdate {
	if tags == nil {
		tags = []string{}
	}
	return ItemUpdate{Summary: &summary, Tags: tags, SetTags: true}
}
