package stores

import (
	"context"
	"errors"

	"github.com/medflow/intake/models"
	"github.com/medflow/intake/utils"
	"gorm.io/gorm"
)

type RequestStore struct {
	BaseStore
}

func NewRequestStore(db *gorm.DB) *RequestStore {
	return &RequestStore{BaseStore: BaseStore{db: db}}
}

func (s *RequestStore) Create(ctx context.Context, request *models.Request) error {
	return s.GetDB(ctx).Create(request).Error
}

// Delete is the compensating delete: it removes a partially-created request
// (and its answers row, if one was attached) after a failed submission.
// Both rows go in one transaction so a crash mid-delete cannot strand an
// orphaned answers blob.
func (s *RequestStore) Delete(ctx context.Context, id string) error {
	return s.WithTransaction(ctx, func(txCtx context.Context) error {
		db := s.GetDB(txCtx)
		if err := db.Where("request_id = ?", id).Delete(&models.RequestAnswers{}).Error; err != nil {
			return err
		}
		return db.Where("id = ?", id).Delete(&models.Request{}).Error
	})
}

// GetByIDForPatient enforces ownership in the lookup predicate itself. A
// request owned by someone else is reported as not found.
func (s *RequestStore) GetByIDForPatient(ctx context.Context, id, patientID string) (*models.Request, error) {
	var request models.Request
	err := s.GetDB(ctx).
		Where("id = ? AND patient_id = ?", id, patientID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "request", ID: id}
		}
		return nil, err
	}
	return &request, nil
}

func (s *RequestStore) AttachAnswers(ctx context.Context, answers *models.RequestAnswers) error {
	return s.GetDB(ctx).Create(answers).Error
}

func (s *RequestStore) GetAnswers(ctx context.Context, requestID string) (*models.RequestAnswers, error) {
	var answers models.RequestAnswers
	err := s.GetDB(ctx).First(&answers, "request_id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "request answers", ID: requestID}
		}
		return nil, err
	}
	return &answers, nil
}

func (s *RequestStore) ListByPatient(ctx context.Context, patientID string) ([]*models.Request, error) {
	var requests []*models.Request
	err := s.GetDB(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
