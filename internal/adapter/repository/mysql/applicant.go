package mysql

import (
	"context"

	"gorm.io/gorm"

	"farm-loan-ledger/internal/domain/applicant"
)

// ApplicantRepository reads the identity subsystem's profile table.
type ApplicantRepository struct{ db *gorm.DB }

func NewApplicantRepository(db *gorm.DB) *ApplicantRepository { return &ApplicantRepository{db: db} }

func (r *ApplicantRepository) GetByApplicantID(ctx context.Context, applicantID string) (*applicant.Profile, error) {
	var out applicant.Profile
	if err := r.db.WithContext(ctx).Where("applicant_id = ?", applicantID).First(&out).Error; err != nil {
		return nil, notFound(err, applicant.ErrNotFound)
	}
	return &out, nil
}
