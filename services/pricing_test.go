package services

import (
	"errors"
	"testing"

	"github.com/medflow/intake/config"
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/utils"
)

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		"certificate":  {Ref: "price_cert", Amount: 1900, Currency: "aud"},
		"prescription": {Ref: "price_rx", Amount: 2400, Currency: "aud"},
		"imaging":      {Ref: "price_img", Amount: 4900, Currency: "aud"},
		"pathology":    {Ref: "price_path", Amount: 2900, Currency: "aud"},
	}
}

func TestResolveTier(t *testing.T) {
	tests := []struct {
		name     string
		category models.RequestCategory
		subtype  string
		answers  models.JSON
		want     PriceTier
	}{
		{
			name:     "certificate ignores subtype",
			category: models.CategoryMedicalCertificate,
			subtype:  "carer",
			want:     TierCertificate,
		},
		{
			name:     "prescription ignores subtype",
			category: models.CategoryPrescription,
			subtype:  "repeat",
			want:     TierPrescription,
		},
		{
			name:     "blood tests resolve to pathology",
			category: models.CategoryReferral,
			subtype:  models.SubtypePathologyImaging,
			answers:  models.JSON{"test_types": []interface{}{"blood"}},
			want:     TierPathology,
		},
		{
			name:     "xray resolves to imaging",
			category: models.CategoryReferral,
			subtype:  models.SubtypePathologyImaging,
			answers:  models.JSON{"test_types": []interface{}{"xray"}},
			want:     TierImaging,
		},
		{
			name:     "mixed set resolves to imaging",
			category: models.CategoryReferral,
			subtype:  models.SubtypePathologyImaging,
			answers:  models.JSON{"test_types": []interface{}{"blood", "xray"}},
			want:     TierImaging,
		},
		{
			name:     "no test types resolves to pathology",
			category: models.CategoryReferral,
			subtype:  models.SubtypePathologyImaging,
			answers:  models.JSON{},
			want:     TierPathology,
		},
		{
			name:     "specialist referral falls back to pathology",
			category: models.CategoryReferral,
			subtype:  models.SubtypeSpecialist,
			want:     TierPathology,
		},
		{
			name:     "nil answers on retry resolve to pathology",
			category: models.CategoryReferral,
			subtype:  models.SubtypePathologyImaging,
			answers:  nil,
			want:     TierPathology,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTier(tt.category, tt.subtype, tt.answers)
			if err != nil {
				t.Fatalf("ResolveTier() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveTier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTier_UnknownCategory(t *testing.T) {
	_, err := ResolveTier("massage", "", nil)

	var configErr *utils.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Errorf("ResolveTier() error = %v, want ConfigurationError", err)
	}
}

func TestPriceResolver_Resolve(t *testing.T) {
	resolver := NewPriceResolver(testPricing())

	tier, price, err := resolver.Resolve(models.CategoryMedicalCertificate, "", nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if tier != TierCertificate {
		t.Errorf("tier = %q, want %q", tier, TierCertificate)
	}
	if price.Ref != "price_cert" {
		t.Errorf("price.Ref = %q, want %q", price.Ref, "price_cert")
	}
}

func TestPriceResolver_MissingTierMapping(t *testing.T) {
	resolver := NewPriceResolver(config.PricingConfig{
		"certificate": {Ref: "price_cert"},
	})

	_, _, err := resolver.Resolve(models.CategoryPrescription, "", nil)

	var configErr *utils.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Errorf("Resolve() error = %v, want ConfigurationError", err)
	}
}
