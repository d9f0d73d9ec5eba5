package flow

import (
	"github.com/medflow/intake/models"
)

// Context is the read-only view a skip rule evaluates against: who the user
// is right now and what they have answered so far. Both can change mid-flow
// (signing in, picking a different test category), so the effective step
// list is recomputed on every transition.
type Context struct {
	Identity *models.Identity
	Answers  map[string]interface{}
}

// SkipRule reports whether a step should be omitted from the effective
// sequence. Rules must be pure: same context in, same answer out, so that
// forward and backward navigation agree on which steps exist.
type SkipRule func(ctx Context) bool

type Step struct {
	ID       string
	Title    string
	Fields   []FieldSpec
	SkipWhen SkipRule
}

// ServiceConfig declares the full step sequence for one intake service plus
// the request classification a completed flow submits under.
type ServiceConfig struct {
	Slug     string
	Category models.RequestCategory
	Subtype  string
	Type     string
	Steps    []Step
}

// EffectiveSteps filters the declared sequence through the skip rules,
// preserving declaration order.
func EffectiveSteps(steps []Step, ctx Context) []Step {
	effective := make([]Step, 0, len(steps))
	for _, step := range steps {
		if step.SkipWhen != nil && step.SkipWhen(ctx) {
			continue
		}
		effective = append(effective, step)
	}
	return effective
}

func stepIndex(steps []Step, id string) int {
	for i, step := range steps {
		if step.ID == id {
			return i
		}
	}
	return -1
}

// SkipWhenAuthenticated omits a sign-in step for callers who already have a
// session.
func SkipWhenAuthenticated(ctx Context) bool {
	return ctx.Identity.Authenticated()
}

// SkipWhenProfileComplete omits an onboarding step when the identity's
// profile already has everything the clinician needs.
func SkipWhenProfileComplete(ctx Context) bool {
	return ctx.Identity.Authenticated() && ctx.Identity.ProfileComplete
}

// SkipUnlessAnswerIn omits a step unless a prior answer matches one of the
// given values, e.g. a region-selection step that only applies to certain
// test categories.
func SkipUnlessAnswerIn(key string, values ...string) SkipRule {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return func(ctx Context) bool {
		answer, ok := ctx.Answers[key].(string)
		if !ok {
			return true
		}
		_, applies := allowed[answer]
		return !applies
	}
}
