package testing

import (
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/providers"
)

func MockIdentity() *models.Identity {
	return &models.Identity{
		UserID:          "user_test123",
		ProfileID:       "profile_test123",
		Email:           "patient@test.com",
		ProfileComplete: true,
		CustomerRef:     "cus_test123",
	}
}

func MockAnonymousIdentity() *models.Identity {
	return nil
}

func MockSubmitRequest() *models.SubmitRequest {
	return &models.SubmitRequest{
		Category: models.CategoryMedicalCertificate,
		Type:     "work",
		Answers: models.JSON{
			"reason":     "flu symptoms",
			"days_off":   2,
			"start_date": "2026-01-12",
		},
	}
}

func MockReferralRequest(testTypes ...string) *models.SubmitRequest {
	codes := make([]interface{}, len(testTypes))
	for i, t := range testTypes {
		codes[i] = t
	}
	return &models.SubmitRequest{
		Category: models.CategoryReferral,
		Subtype:  models.SubtypePathologyImaging,
		Type:     "referral",
		Answers: models.JSON{
			"test_types": codes,
		},
	}
}

func MockCheckoutSession() *providers.CheckoutSession {
	return &providers.CheckoutSession{
		ID:          "cs_test123",
		RedirectURL: "https://checkout.test/cs_test123",
		AmountTotal: 2900,
		Currency:    "aud",
	}
}

func MockRequest() *models.Request {
	return &models.Request{
		ID:            "req_test123",
		PatientID:     "profile_test123",
		Category:      models.CategoryMedicalCertificate,
		Type:          "work",
		Status:        models.RequestStatusPending,
		Paid:          false,
		PaymentStatus: models.PaymentStatusPendingPayment,
	}
}
