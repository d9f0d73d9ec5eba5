package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/medflow/intake/models"
	"github.com/medflow/intake/utils"
)

type State string

const (
	StateActive        State = "active"
	StateSafetyBlocked State = "safety-blocked"
	StateComplete      State = "complete"
)

var (
	ErrAtFinalStep   = errors.New("already at the final step")
	ErrFlowComplete  = errors.New("flow is complete")
	ErrSafetyBlocked = errors.New("flow is blocked by a safety answer")
	ErrNoSteps       = errors.New("no applicable steps for this service")
)

const defaultDebounce = 500 * time.Millisecond

// Controller owns one intake flow: the step sequence, the collected
// answers, per-field validation state, and draft persistence. It is driven
// by a single UI session; methods are not safe for concurrent use, which is
// the ownership model drafts rely on. The debounced draft write runs on a
// timer goroutine, but only against a snapshot taken on the owning
// goroutine.
type Controller struct {
	service  ServiceConfig
	drafts   DraftStore
	identity *models.Identity

	// Debounce delays the fire-and-forget draft write after an answer
	// update. Set before Start; zero means the default.
	Debounce time.Duration

	answers     map[string]interface{}
	fieldErrors map[string]string
	currentID   string
	state       State

	timerMu sync.Mutex
	timer   *time.Timer
}

func NewController(service ServiceConfig, drafts DraftStore) *Controller {
	if drafts == nil {
		drafts = NewMemoryDraftStore()
	}
	return &Controller{
		service:     service,
		drafts:      drafts,
		Debounce:    defaultDebounce,
		answers:     make(map[string]interface{}),
		fieldErrors: make(map[string]string),
		state:       StateActive,
	}
}

// Start computes the initial effective step list for the identity and
// hydrates from a persisted draft when one exists for the same identity
// (or both are anonymous). A failed hydration read is logged and the flow
// begins fresh.
func (c *Controller) Start(ctx context.Context, identity *models.Identity) error {
	c.identity = identity
	c.answers = make(map[string]interface{})
	c.fieldErrors = make(map[string]string)
	c.state = StateActive

	draft, err := c.drafts.Get(ctx, c.service.Slug, identityRef(identity))
	if err != nil {
		utils.Warn(ctx, "failed to load flow draft", map[string]interface{}{
			"service": c.service.Slug,
			"error":   err.Error(),
		})
		draft = nil
	}
	if draft != nil && draft.IdentityRef == identityRef(identity) {
		c.answers = MergeAnswers(nil, draft.Answers)
	}

	effective := c.effectiveSteps()
	if len(effective) == 0 {
		return ErrNoSteps
	}

	c.currentID = effective[0].ID
	if draft != nil && draft.IdentityRef == identityRef(identity) {
		if stepIndex(effective, draft.CurrentStepID) >= 0 {
			c.currentID = draft.CurrentStepID
		}
	}

	c.refreshSafetyState()
	return nil
}

// SetIdentity swaps the identity mid-flow, e.g. after the user signs in on
// the auth step. The effective sequence is recomputed right away, so steps
// that no longer apply are skipped over; the draft follows the new identity
// from the next write on.
func (c *Controller) SetIdentity(identity *models.Identity) {
	c.identity = identity
	c.resyncPosition()
}

// UpdateAnswer merges one field change into the answers, clears any stale
// error for that field, and schedules a debounced draft write.
func (c *Controller) UpdateAnswer(key string, value interface{}) {
	c.answers = MergeAnswers(c.answers, map[string]interface{}{key: value})
	delete(c.fieldErrors, key)
	c.refreshSafetyState()
	c.resyncPosition()
	c.schedulePersist()
}

// ValidateCurrentStep validates the current step's schema. A non-empty
// result blocks Next.
func (c *Controller) ValidateCurrentStep() map[string]string {
	step := c.CurrentStep()
	if step == nil {
		return nil
	}
	c.fieldErrors = ValidateStep(*step, c.answers)
	return c.fieldErrors
}

// Next advances to the following step of the effective sequence. It refuses
// to move while the current step is invalid or the flow is safety-blocked.
func (c *Controller) Next(ctx context.Context) error {
	if c.state == StateComplete {
		return ErrFlowComplete
	}
	if c.BlockedBySafety() {
		return ErrSafetyBlocked
	}
	if errs := c.ValidateCurrentStep(); len(errs) > 0 {
		return validationErrors(errs)
	}

	effective := c.effectiveSteps()
	pos := c.position(effective)
	if pos >= len(effective)-1 {
		return ErrAtFinalStep
	}

	c.currentID = effective[pos+1].ID
	c.schedulePersist()
	return nil
}

// Back moves to the effective predecessor. Skip rules are recomputed here
// too, so a step skipped on the way forward is equally invisible on the way
// back.
func (c *Controller) Back(ctx context.Context) error {
	if c.state == StateComplete {
		return ErrFlowComplete
	}

	effective := c.effectiveSteps()
	pos := c.position(effective)
	if pos <= 0 {
		return nil
	}

	c.currentID = effective[pos-1].ID
	c.schedulePersist()
	return nil
}

// BlockedBySafety reports the terminal advise-emergency-care state: any
// affirmative answer to a safety-flagged field, across all steps. Purely
// local, no network involved.
func (c *Controller) BlockedBySafety() bool {
	for _, step := range c.service.Steps {
		for _, field := range step.Fields {
			if field.Safety && IsAffirmative(c.answers[field.Key]) {
				return true
			}
		}
	}
	return false
}

// AtLastStep reports whether the current step is the final effective step,
// i.e. the flow is ready for submission once valid.
func (c *Controller) AtLastStep() bool {
	effective := c.effectiveSteps()
	return c.position(effective) == len(effective)-1
}

// Complete marks the flow finished after the server accepted the
// submission, and clears the persisted draft.
func (c *Controller) Complete(ctx context.Context) {
	c.cancelPersist()
	c.state = StateComplete
	if err := c.drafts.Delete(ctx, c.service.Slug, identityRef(c.identity)); err != nil {
		utils.Warn(ctx, "failed to clear flow draft", map[string]interface{}{
			"service": c.service.Slug,
			"error":   err.Error(),
		})
	}
}

// Reset discards the draft and returns to the first applicable step.
func (c *Controller) Reset(ctx context.Context) error {
	c.cancelPersist()
	if err := c.drafts.Delete(ctx, c.service.Slug, identityRef(c.identity)); err != nil {
		return err
	}
	return c.Start(ctx, c.identity)
}

func (c *Controller) CurrentStepID() string {
	return c.currentID
}

func (c *Controller) CurrentStep() *Step {
	for i := range c.service.Steps {
		if c.service.Steps[i].ID == c.currentID {
			return &c.service.Steps[i]
		}
	}
	return nil
}

func (c *Controller) State() State {
	if c.state != StateComplete && c.BlockedBySafety() {
		return StateSafetyBlocked
	}
	return c.state
}

// Answers returns a snapshot of the collected answers.
func (c *Controller) Answers() map[string]interface{} {
	return MergeAnswers(nil, c.answers)
}

func (c *Controller) FieldErrors() map[string]string {
	return c.fieldErrors
}

// FlushDraft persists the draft immediately, bypassing the debounce.
func (c *Controller) FlushDraft(ctx context.Context) error {
	c.cancelPersist()
	return c.persistNow(ctx)
}

func (c *Controller) effectiveSteps() []Step {
	return EffectiveSteps(c.service.Steps, Context{Identity: c.identity, Answers: c.answers})
}

// position locates the current step in the effective list. When an earlier
// answer change skipped the current step out of the sequence, the flow
// lands on the next step that still applies.
func (c *Controller) position(effective []Step) int {
	if pos := stepIndex(effective, c.currentID); pos >= 0 {
		return pos
	}

	full := stepIndex(c.service.Steps, c.currentID)
	for i, step := range effective {
		if stepIndex(c.service.Steps, step.ID) >= full {
			return i
		}
	}
	return len(effective) - 1
}

// resyncPosition snaps the current step to the nearest applicable one when
// an identity or answer change has skipped it out of the sequence.
func (c *Controller) resyncPosition() {
	effective := c.effectiveSteps()
	if len(effective) == 0 {
		return
	}
	if stepIndex(effective, c.currentID) < 0 {
		c.currentID = effective[c.position(effective)].ID
	}
}

func (c *Controller) refreshSafetyState() {
	if c.state == StateComplete {
		return
	}
	if c.BlockedBySafety() {
		c.state = StateSafetyBlocked
	} else {
		c.state = StateActive
	}
}

func (c *Controller) schedulePersist() {
	// The snapshot is captured here, on the owning goroutine; the timer
	// goroutine only ever sees the snapshot, never the live fields.
	draft := c.draftSnapshot()

	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	debounce := c.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	c.timer = time.AfterFunc(debounce, func() {
		// Fire-and-forget: a failed write only costs resumability.
		if err := c.drafts.Put(context.Background(), draft); err != nil {
			utils.Warn(context.Background(), "failed to persist flow draft", map[string]interface{}{
				"service": draft.ServiceSlug,
				"error":   err.Error(),
			})
		}
	})
}

func (c *Controller) cancelPersist() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) persistNow(ctx context.Context) error {
	return c.drafts.Put(ctx, c.draftSnapshot())
}

// draftSnapshot copies the persistable state. Must be called on the
// goroutine driving the controller.
func (c *Controller) draftSnapshot() *Draft {
	return &Draft{
		ServiceSlug:   c.service.Slug,
		CurrentStepID: c.currentID,
		Answers:       MergeAnswers(nil, c.answers),
		IdentityRef:   identityRef(c.identity),
		UpdatedAt:     time.Now(),
	}
}

func identityRef(identity *models.Identity) string {
	if identity.Authenticated() {
		return identity.ProfileID
	}
	return ""
}

func validationErrors(errs map[string]string) utils.ValidationErrors {
	out := make(utils.ValidationErrors, 0, len(errs))
	for field, msg := range errs {
		out = append(out, utils.ValidationError{Field: field, Message: msg})
	}
	return out
}
