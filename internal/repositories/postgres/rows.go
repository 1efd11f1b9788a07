package postgres

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/yoockh/cvstudio/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type userRow struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;type:text"`
	Email        string    `gorm:"column:email;type:text;uniqueIndex:uniq_users_email"`
	PasswordHash string    `gorm:"column:password_hash;type:text"`
	Phone        string    `gorm:"column:phone;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz"`
}

func (userRow) TableName() string { return "users" }

func userToRow(u *models.User) *userRow {
	return &userRow{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *userRow) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Phone:        r.Phone,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type cvRecordRow struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey"`
	UploadedBy string `gorm:"column:uploaded_by;type:uuid;index:idx_cv_records_owner"`

	// JSONB
	Files         datatypes.JSON `gorm:"column:files;type:jsonb"`
	ExtractedText datatypes.JSON `gorm:"column:extracted_text;type:jsonb"`
	FormattedCV   datatypes.JSON `gorm:"column:formatted_cv;type:jsonb"`

	// summary columns, read by the list query instead of the jsonb blobs
	HolderName string         `gorm:"column:holder_name;type:text"`
	JobTitle   string         `gorm:"column:job_title;type:text"`
	KeySkills  pq.StringArray `gorm:"column:key_skills;type:text[]"`

	UploadedAt time.Time `gorm:"column:uploaded_at;type:timestamptz;index:idx_cv_records_owner"`
}

func (cvRecordRow) TableName() string { return "cv_records" }

type recordFiles struct {
	Resume    models.UploadedFile `json:"resume"`
	EHSForm   models.UploadedFile `json:"ehsForm"`
	UserImage models.UploadedFile `json:"userImage"`
}

func recordToRow(rec *models.CVRecord) (*cvRecordRow, error) {
	files, err := json.Marshal(recordFiles{Resume: rec.Resume, EHSForm: rec.EHSForm, UserImage: rec.UserImage})
	if err != nil {
		return nil, err
	}
	text, err := json.Marshal(rec.ExtractedText)
	if err != nil {
		return nil, err
	}
	cv, err := json.Marshal(rec.FormattedCV)
	if err != nil {
		return nil, err
	}
	return &cvRecordRow{
		ID:            rec.ID,
		UploadedBy:    rec.UploadedBy,
		Files:         datatypes.JSON(files),
		ExtractedText: datatypes.JSON(text),
		FormattedCV:   datatypes.JSON(cv),
		HolderName:    rec.FormattedCV.Header.Name,
		JobTitle:      rec.FormattedCV.Header.JobTitle,
		KeySkills:     pq.StringArray(rec.FormattedCV.KeySkills),
		UploadedAt:    rec.UploadedAt,
	}, nil
}

func (r *cvRecordRow) toModel() (*models.CVRecord, error) {
	rec := &models.CVRecord{
		ID:         r.ID,
		UploadedBy: r.UploadedBy,
		UploadedAt: r.UploadedAt,
	}

	var files recordFiles
	if len(r.Files) > 0 {
		if err := json.Unmarshal(r.Files, &files); err != nil {
			return nil, err
		}
	}
	rec.Resume, rec.EHSForm, rec.UserImage = files.Resume, files.EHSForm, files.UserImage

	if len(r.ExtractedText) > 0 {
		if err := json.Unmarshal(r.ExtractedText, &rec.ExtractedText); err != nil {
			return nil, err
		}
	}
	if len(r.FormattedCV) > 0 {
		if err := json.Unmarshal(r.FormattedCV, &rec.FormattedCV); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// summaryColumns is what ListByOwner reads; toSummary must only use these.
var summaryColumns = []string{"id", "uploaded_by", "holder_name", "job_title", "key_skills", "uploaded_at"}

func (r *cvRecordRow) toSummary() models.CVRecord {
	skills := []string(r.KeySkills)
	if skills == nil {
		skills = []string{}
	}
	return models.CVRecord{
		ID:         r.ID,
		UploadedBy: r.UploadedBy,
		UploadedAt: r.UploadedAt,
		FormattedCV: models.FormattedCV{
			Header:    models.Header{Name: r.HolderName, JobTitle: r.JobTitle},
			KeySkills: skills,
		},
	}
}

// Migrate creates or updates the tables used by this package.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &cvRecordRow{})
}
