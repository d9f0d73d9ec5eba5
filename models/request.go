package models

import (
	"time"
)

type RequestCategory string
type RequestStatus string
type PaymentStatus string

const (
	CategoryMedicalCertificate RequestCategory = "medical_certificate"
	CategoryPrescription       RequestCategory = "prescription"
	CategoryReferral           RequestCategory = "referral"

	SubtypePathologyImaging = "pathology-imaging"
	SubtypeSpecialist       = "specialist"

	RequestStatusPending       RequestStatus = "pending"
	RequestStatusApproved      RequestStatus = "approved"
	RequestStatusDeclined      RequestStatus = "declined"
	RequestStatusNeedsFollowUp RequestStatus = "needs_follow_up"

	PaymentStatusPendingPayment PaymentStatus = "pending_payment"
	PaymentStatusPaid           PaymentStatus = "paid"
	PaymentStatusFailed         PaymentStatus = "failed"
	PaymentStatusRefunded       PaymentStatus = "refunded"
)

// Request is the durable clinical-service record created at submission time.
// Status moves to approved/declined during clinical review; PaymentStatus
// moves to paid only via the payment provider's confirmation callback.
type Request struct {
	ID            string          `json:"id" gorm:"primaryKey;type:uuid"`
	PatientID     string          `json:"patient_id" gorm:"not null;index"`
	Category      RequestCategory `json:"category" gorm:"not null"`
	Subtype       *string         `json:"subtype"`
	Type          string          `json:"type" gorm:"not null"`
	Status        RequestStatus   `json:"status" gorm:"not null;default:'pending'"`
	Paid          bool            `json:"paid" gorm:"not null;default:false"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"not null;default:'pending_payment'"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (r *Request) SubtypeValue() string {
	if r.Subtype == nil {
		return ""
	}
	return *r.Subtype
}

// RequestAnswers holds the raw intake answers blob, 1:1 with Request.
type RequestAnswers struct {
	RequestID string    `json:"request_id" gorm:"primaryKey;type:uuid"`
	Answers   JSON      `json:"answers" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type SubmitRequest struct {
	Category RequestCategory `json:"category"`
	Subtype  string          `json:"subtype,omitempty"`
	Type     string          `json:"type"`
	Answers  JSON            `json:"answers"`
}

type SubmitResponse struct {
	RequestID   string `json:"request_id"`
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// RequestDetail is the read view of one request: the row itself plus the
// answers blob and payment record when they exist. Both side rows are
// written best-effort on submission, so either may be absent.
type RequestDetail struct {
	Request *Request `json:"request"`
	Answers JSON     `json:"answers,omitempty"`
	Payment *Payment `json:"payment,omitempty"`
}
