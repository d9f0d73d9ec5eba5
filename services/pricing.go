package services

import (
	"fmt"

	"github.com/medflow/intake/config"
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/utils"
)

// PriceTier is the opaque identifier the price table maps onto a gateway
// price reference.
type PriceTier string

const (
	TierCertificate  PriceTier = "certificate"
	TierPrescription PriceTier = "prescription"
	TierImaging      PriceTier = "imaging"
	TierPathology    PriceTier = "pathology"
)

// answerKeyTestTypes is the referral flow's set of requested test codes.
const answerKeyTestTypes = "test_types"

// imagingTestCodes are the test codes billed at the imaging tier. A mixed
// selection of imaging and pathology codes bills as imaging.
var imagingTestCodes = map[string]struct{}{
	"xray":       {},
	"ultrasound": {},
	"ct":         {},
	"mri":        {},
	"dexa":       {},
	"mammogram":  {},
}

// ResolveTier maps a request classification and its answers to a price
// tier. Pure, no I/O; an unknown category fails loudly rather than
// defaulting to anything.
func ResolveTier(category models.RequestCategory, subtype string, answers models.JSON) (PriceTier, error) {
	switch category {
	case models.CategoryMedicalCertificate:
		return TierCertificate, nil
	case models.CategoryPrescription:
		return TierPrescription, nil
	case models.CategoryReferral:
		if subtype == models.SubtypePathologyImaging {
			for _, code := range answers.StringSlice(answerKeyTestTypes) {
				if _, ok := imagingTestCodes[code]; ok {
					return TierImaging, nil
				}
			}
			return TierPathology, nil
		}
		// Every other referral subtype, specialist included, currently
		// bills at the pathology tier.
		return TierPathology, nil
	default:
		return "", &utils.ConfigurationError{
			Detail: fmt.Sprintf("unknown request category %q", category),
		}
	}
}

// PriceResolver resolves a request to a concrete configured price. Tier
// resolution and the price-table lookup fail independently so a stale table
// is reported as configuration, not as a pricing rule gap.
type PriceResolver struct {
	pricing config.PricingConfig
}

func NewPriceResolver(pricing config.PricingConfig) *PriceResolver {
	return &PriceResolver{pricing: pricing}
}

func (r *PriceResolver) Resolve(category models.RequestCategory, subtype string, answers models.JSON) (PriceTier, config.Price, error) {
	tier, err := ResolveTier(category, subtype, answers)
	if err != nil {
		return "", config.Price{}, err
	}

	price, ok := r.pricing[string(tier)]
	if !ok {
		return "", config.Price{}, &utils.ConfigurationError{
			Detail: fmt.Sprintf("no price configured for tier %q", tier),
		}
	}

	return tier, price, nil
}
