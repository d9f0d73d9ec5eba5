package stores

import (
	"context"
	"errors"

	"github.com/medflow/intake/models"
	"github.com/medflow/intake/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentStore struct {
	BaseStore
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{BaseStore: BaseStore{db: db}}
}

// Upsert keeps Payment 1:1 with its request. A retry replaces the previous
// session reference instead of inserting a second row; the superseded
// gateway session simply expires unused.
func (s *PaymentStore) Upsert(ctx context.Context, payment *models.Payment) error {
	return s.GetDB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "request_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"session_id", "provider", "amount", "currency", "status", "updated_at",
		}),
	}).Create(payment).Error
}

func (s *PaymentStore) GetByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.GetDB(ctx).First(&payment, "request_id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "payment", ID: requestID}
		}
		return nil, err
	}
	return &payment, nil
}
