package usecase

import (
	"context"
	"strings"
	"time"

	domainNote "github.com/smartnotes/summarizer/domains/note"
	pkgError "github.com/smartnotes/summarizer/pkg/error"
	"github.com/smartnotes/summarizer/pkg/fingerprint"
	"github.com/smartnotes/summarizer/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type noteModel struct {
	ID                 string     `gorm:"primaryKey;column:id"`
	Title              string     `gorm:"column:title;not null"`
	Content            string     `gorm:"column:content;type:text"`
	Tags               []string   `gorm:"column:tags;serializer:json"`
	Category           string     `gorm:"column:category"`
	Summary            string     `gorm:"column:summary;type:text"`
	SummaryFingerprint string     `gorm:"column:summary_fingerprint"`
	SummaryGeneratedAt *time.Time `gorm:"column:summary_generated_at"`
	ReminderDate       *time.Time `gorm:"column:reminder_date"`
	IsFavorite         bool       `gorm:"column:is_favorite;not null;default:false"`
	OwnerID            string     `gorm:"column:owner_id;index"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (noteModel) TableName() string {
	return "notes"
}

type noteService struct {
	db *gorm.DB
}

func NewNoteService(db *gorm.DB) domainNote.INoteUsecase {
	s := &noteService{db: db}
	if db != nil {
		if err := db.AutoMigrate(&noteModel{}); err != nil {
			logrus.WithError(err).Error("[NOTE] failed to init schema")
		}
	} else {
		logrus.Error("[NOTE] GORM DB is nil, service will be disabled")
	}
	return s
}

func (s *noteService) ensureDB() error {
	if s.db == nil {
		return pkgError.InternalServerError("note storage is not initialized")
	}
	return nil
}

func (s *noteService) Create(ctx context.Context, req domainNote.CreateNoteRequest) (domainNote.Note, error) {
	if err := s.ensureDB(); err != nil {
		return domainNote.Note{}, err
	}
	if err := validations.ValidateCreateNote(ctx, req); err != nil {
		return domainNote.Note{}, err
	}

	model := noteModel{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Content:      req.Content,
		Tags:         req.Tags,
		Category:     strings.TrimSpace(req.Category),
		ReminderDate: req.ReminderDate,
		IsFavorite:   req.IsFavorite,
		OwnerID:      req.OwnerID,
	}

	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domainNote.Note{}, err
	}

	return fromNoteModel(model), nil
}

func (s *noteService) List(ctx context.Context, ownerID string) ([]domainNote.Note, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	var models []noteModel
	query := s.db.WithContext(ctx).Order("updated_at DESC")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]domainNote.Note, len(models))
	for i, m := range models {
		result[i] = fromNoteModel(m)
	}
	return result, nil
}

func (s *noteService) GetByID(ctx context.Context, id string) (domainNote.Note, error) {
	if err := s.ensureDB(); err != nil {
		return domainNote.Note{}, err
	}

	var model noteModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainNote.Note{}, pkgError.NotFoundError("note not found")
		}
		return domainNote.Note{}, err
	}
	return fromNoteModel(model), nil
}

func (s *noteService) Update(ctx context.Context, id string, req domainNote.UpdateNoteRequest) (domainNote.Note, error) {
	if err := s.ensureDB(); err != nil {
		return domainNote.Note{}, err
	}
	if err := validations.ValidateUpdateNote(ctx, req); err != nil {
		return domainNote.Note{}, err
	}

	var model noteModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainNote.Note{}, pkgError.NotFoundError("note not found")
		}
		return domainNote.Note{}, err
	}

	if req.Title != nil {
		model.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		model.Content = *req.Content
	}
	if req.Tags != nil {
		model.Tags = *req.Tags
	}
	if req.Category != nil {
		model.Category = strings.TrimSpace(*req.Category)
	}
	if req.ReminderDate != nil {
		model.ReminderDate = req.ReminderDate
	}
	if req.IsFavorite != nil {
		model.IsFavorite = *req.IsFavorite
	}

	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return domainNote.Note{}, err
	}
	return fromNoteModel(model), nil
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return pkgError.ValidationError("id: cannot be blank.")
	}
	return s.db.WithContext(ctx).Delete(&noteModel{}, "id = ?", trimmed).Error
}

// SearchByTag matches notes whose JSON tags column contains the given tag.
func (s *noteService) SearchByTag(ctx context.Context, ownerID, tag string) ([]domainNote.Note, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return nil, pkgError.ValidationError("tag: cannot be blank.")
	}

	var models []noteModel
	query := s.db.WithContext(ctx).Where(`tags LIKE ?`, `%"`+trimmed+`"%`).Order("updated_at DESC")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]domainNote.Note, len(models))
	for i, m := range models {
		result[i] = fromNoteModel(m)
	}
	return result, nil
}

// SearchByCategory matches notes whose category contains the given text,
// case-insensitively.
func (s *noteService) SearchByCategory(ctx context.Context, ownerID, category string) ([]domainNote.Note, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return nil, pkgError.ValidationError("category: cannot be blank.")
	}

	var models []noteModel
	query := s.db.WithContext(ctx).
		Where("LOWER(category) LIKE ?", "%"+strings.ToLower(trimmed)+"%").
		Order("updated_at DESC")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]domainNote.Note, len(models))
	for i, m := range models {
		result[i] = fromNoteModel(m)
	}
	return result, nil
}

// Categories lists the distinct non-empty categories of the owner's notes.
func (s *noteService) Categories(ctx context.Context, ownerID string) ([]string, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	var categories []string
	query := s.db.WithContext(ctx).Model(&noteModel{}).
		Distinct("category").
		Where("category <> ''").
		Order("category ASC")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteByCategory removes every owner note whose category contains the given
// text, returning the number of deleted notes.
func (s *noteService) DeleteByCategory(ctx context.Context, ownerID, category string) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}

	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return 0, pkgError.ValidationError("category: cannot be blank.")
	}

	query := s.db.WithContext(ctx).Where("LOWER(category) LIKE ?", "%"+strings.ToLower(trimmed)+"%")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	res := query.Delete(&noteModel{})
	return res.RowsAffected, res.Error
}

// DeleteByTag removes every owner note carrying the given tag, returning the
// number of deleted notes.
func (s *noteService) DeleteByTag(ctx context.Context, ownerID, tag string) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}

	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return 0, pkgError.ValidationError("tag: cannot be blank.")
	}

	query := s.db.WithContext(ctx).Where(`tags LIKE ?`, `%"`+trimmed+`"%`)
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	res := query.Delete(&noteModel{})
	return res.RowsAffected, res.Error
}

// Reminders groups owner notes with reminders relative to today.
func (s *noteService) Reminders(ctx context.Context, ownerID string) (domainNote.Reminders, error) {
	if err := s.ensureDB(); err != nil {
		return domainNote.Reminders{}, err
	}

	var models []noteModel
	query := s.db.WithContext(ctx).Where("reminder_date IS NOT NULL").Order("reminder_date ASC")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.Find(&models).Error; err != nil {
		return domainNote.Reminders{}, err
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	dayAfter := today.AddDate(0, 0, 2)

	var out domainNote.Reminders
	for _, m := range models {
		n := fromNoteModel(m)
		due := m.ReminderDate.UTC()
		switch {
		case due.Before(today):
			out.Overdues = append(out.Overdues, n)
		case due.Before(tomorrow):
			out.Todays = append(out.Todays, n)
		case due.Before(dayAfter):
			out.Tomorrows = append(out.Tomorrows, n)
		default:
			out.Scheduleds = append(out.Scheduleds, n)
		}
	}
	return out, nil
}

// UpdateSummary persists a generated summary together with the fingerprint of
// the content it was generated from.
func (s *noteService) UpdateSummary(ctx context.Context, id, summary string, generatedAt time.Time) error {
	if err := s.ensureDB(); err != nil {
		return err
	}

	var model noteModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgError.NotFoundError("note not found")
		}
		return err
	}

	model.Summary = summary
	model.SummaryFingerprint = fingerprint.Compute(model.Content)
	model.SummaryGeneratedAt = &generatedAt

	return s.db.WithContext(ctx).Save(&model).Error
}

func fromNoteModel(m noteModel) domainNote.Note {
	return domainNote.Note{
		ID:                 m.ID,
		Title:              m.Title,
		Content:            m.Content,
		Tags:               m.Tags,
		Category:           m.Category,
		Summary:            m.Summary,
		SummaryFingerprint: m.SummaryFingerprint,
		SummaryGeneratedAt: m.SummaryGeneratedAt,
		ReminderDate:       m.ReminderDate,
		IsFavorite:         m.IsFavorite,
		OwnerID:            m.OwnerID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
