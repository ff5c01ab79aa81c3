package note

import (
	"context"
	"time"
)

type Note struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Content            string     `json:"content"`
	Tags               []string   `json:"tags"`
	Category           string     `json:"category,omitempty"`
	Summary            string     `json:"summary,omitempty"`
	SummaryFingerprint string     `json:"summary_fingerprint,omitempty"`
	SummaryGeneratedAt *time.Time `json:"summary_generated_at,omitempty"`
	ReminderDate       *time.Time `json:"reminder_date,omitempty"`
	IsFavorite         bool       `json:"is_favorite"`
	OwnerID            string     `json:"owner_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type CreateNoteRequest struct {
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Tags         []string   `json:"tags"`
	Category     string     `json:"category"`
	ReminderDate *time.Time `json:"reminder_date"`
	IsFavorite   bool       `json:"is_favorite"`
	OwnerID      string     `json:"owner_id"`
}

type UpdateNoteRequest struct {
	Title        *string    `json:"title"`
	Content      *string    `json:"content"`
	Tags         *[]string  `json:"tags"`
	Category     *string    `json:"category"`
	ReminderDate *time.Time `json:"reminder_date"`
	IsFavorite   *bool      `json:"is_favorite"`
}

// Reminders groups notes by how urgent their reminder date is.
type Reminders struct {
	Todays     []Note `json:"todays"`
	Tomorrows  []Note `json:"tomorrows"`
	Overdues   []Note `json:"overdues"`
	Scheduleds []Note `json:"scheduleds"`
}

type INoteUsecase interface {
	Create(ctx context.Context, req CreateNoteRequest) (Note, error)
	List(ctx context.Context, ownerID string) ([]Note, error)
	GetByID(ctx context.Context, id string) (Note, error)
	Update(ctx context.Context, id string, req UpdateNoteRequest) (Note, error)
	Delete(ctx context.Context, id string) error
	SearchByTag(ctx context.Context, ownerID, tag string) ([]Note, error)
	SearchByCategory(ctx context.Context, ownerID, category string) ([]Note, error)
	Categories(ctx context.Context, ownerID string) ([]string, error)
	DeleteByCategory(ctx context.Context, ownerID, category string) (int64, error)
	DeleteByTag(ctx context.Context, ownerID, tag string) (int64, error)
	Reminders(ctx context.Context, ownerID string) (Reminders, error)
	UpdateSummary(ctx context.Context, id, summary string, generatedAt time.Time) error
}
