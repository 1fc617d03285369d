package cliente

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/pkg"
)

// FormConfig configures a FormController. Zero values select the defaults;
// a negative CodeDebounce runs the code check without a quiet period.
type FormConfig struct {
	CodeDebounce time.Duration
	Clock        clockwork.Clock
	Logger       *slog.Logger
}

// FormController owns the edit buffer of the new/edit view and the
// asynchronous uniqueness check of the identification code. The mode is
// fixed at construction: a non-zero id means editing.
type FormController struct {
	gateway  domain.ClienteGateway
	prompter Prompter
	nav      Navigator
	logger   *slog.Logger
	clock    clockwork.Clock
	validate *validator.Validate

	debouncer    *pkg.Debouncer
	codeDebounce time.Duration
	id           uint

	mu           sync.Mutex
	values       ClienteRequest
	touched      map[string]bool
	originalCode string
	code         ValidationOutcome
	checking     bool
	idle         chan struct{} // closed while no code check is pending
	codeVersion  uint64
}

// NewFormController creates a FormController for the record id, or for a
// new record when id is 0. Panics if gateway, prompter or nav is nil.
func NewFormController(gateway domain.ClienteGateway, prompter Prompter, nav Navigator, id uint, cfg FormConfig) *FormController {
	if gateway == nil {
		panic("cliente.NewFormController: gateway must not be nil")
	}
	if prompter == nil {
		panic("cliente.NewFormController: prompter must not be nil")
	}
	if nav == nil {
		panic("cliente.NewFormController: navigator must not be nil")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	delay := cfg.CodeDebounce
	switch {
	case delay == 0:
		delay = pkg.DefaultCodeDebounce
	case delay < 0:
		delay = 0
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	idle := make(chan struct{})
	close(idle)

	return &FormController{
		gateway:      gateway,
		prompter:     prompter,
		nav:          nav,
		logger:       log.With("component", "cliente.form"),
		clock:        clock,
		validate:     newFormValidator(),
		debouncer:    pkg.NewDebouncer(clock),
		codeDebounce: delay,
		id:           id,
		touched:      make(map[string]bool, len(formFields)),
		idle:         idle,
	}
}

// newFormValidator checks the same "binding" tags gin uses for request binding.
func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}

// Init loads the record when editing. A failed load alerts the user, returns
// to the list and is final for this form.
func (fc *FormController) Init(ctx context.Context) error {
	if fc.id == 0 {
		return nil
	}

	c, err := fc.gateway.GetByID(ctx, fc.id)
	if err != nil {
		fc.logger.ErrorContext(ctx, "load cliente failed", "id", fc.id, "error", err)
		fc.prompter.Alert(MsgLoadFailed)
		fc.nav.GoToList()
		return err
	}

	fc.mu.Lock()
	fc.values = requestFromCliente(*c)
	fc.originalCode = c.NumID
	fc.code = ValidationOutcome{Status: StatusValid}
	fc.mu.Unlock()
	return nil
}

// SetValue updates one field of the buffer. Changing the identification
// code starts the debounced uniqueness check unless the value is empty or,
// while editing, equal to the loaded code.
func (fc *FormController) SetValue(ctx context.Context, field, value string) error {
	fc.mu.Lock()
	ptr := fc.values.field(field)
	if ptr == nil {
		fc.mu.Unlock()
		return domain.NewAppError(domain.CodeValidation, fmt.Sprintf("unknown field %q", field), nil)
	}
	*ptr = value
	fc.touched[field] = true

	if field != FieldNumID {
		fc.mu.Unlock()
		return nil
	}

	defer fc.mu.Unlock()

	// Scheduling happens under the lock so concurrent edits cannot reorder
	// the pending task against its version.
	fc.codeVersion++
	version := fc.codeVersion
	outcome := CheckCode(value, CodeContext{EditMode: fc.id != 0, OriginalCode: fc.originalCode})
	fc.code = outcome
	if outcome.Status != StatusPending {
		fc.debouncer.Cancel(FieldNumID)
		fc.setCheckingLocked(false)
		return nil
	}
	fc.setCheckingLocked(true)
	fc.debouncer.Schedule(FieldNumID, fc.codeDebounce, func() {
		fc.runCodeCheck(ctx, value, version)
	})
	return nil
}

func (fc *FormController) runCodeCheck(ctx context.Context, value string, version uint64) {
	exists, err := fc.gateway.Exists(ctx, value)
	if err != nil {
		fc.logger.WarnContext(ctx, "numId check failed, accepting value", "numId", value, "error", err)
	}
	outcome := CodeOutcome(exists, err)

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if version != fc.codeVersion {
		return
	}
	fc.code = outcome
	fc.setCheckingLocked(false)
}

func (fc *FormController) setCheckingLocked(checking bool) {
	if fc.checking == checking {
		return
	}
	fc.checking = checking
	if checking {
		fc.idle = make(chan struct{})
	} else {
		close(fc.idle)
	}
}

// WaitCodeCheck blocks until no code check is pending or ctx is done.
func (fc *FormController) WaitCodeCheck(ctx context.Context) error {
	fc.mu.Lock()
	idle := fc.idle
	fc.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit validates the buffer and creates or updates the record. While a
// code check is pending it alerts the user to wait and returns
// domain.ErrPendingValidation; an invalid form returns a validation error.
// Both cases mark every field as touched and make no call.
func (fc *FormController) Submit(ctx context.Context) error {
	fc.mu.Lock()
	for _, f := range formFields {
		fc.touched[f] = true
	}
	checking := fc.checking
	errs := fc.errorsLocked()
	values := fc.values
	fc.mu.Unlock()

	if checking {
		fc.prompter.Alert(MsgWaitCodeCheck)
		return domain.ErrPendingValidation
	}
	if len(errs) > 0 {
		return domain.NewAppError(domain.CodeValidation, "invalid form", nil)
	}

	now := fc.clock.Now()
	id := fc.id
	record := domain.Cliente{
		ID:                &id,
		NumID:             values.NumID,
		Nombres:           values.Nombres,
		Apellidos:         values.Apellidos,
		Correo:            values.Correo,
		FechaCreacion:     &now,
		FechaModificacion: &now,
		Estado:            true,
	}

	if fc.id == 0 {
		if _, err := fc.gateway.Create(ctx, record); err != nil {
			fc.logger.ErrorContext(ctx, "create cliente failed", "numId", record.NumID, "error", err)
			if domain.IsAlreadyExists(err) {
				fc.prompter.Alert(MsgCodeExists)
			} else {
				fc.prompter.Alert(MsgCreateFailed)
			}
			return err
		}
		fc.prompter.Alert(MsgCreated)
	} else {
		if err := fc.gateway.Update(ctx, fc.id, record); err != nil {
			fc.logger.ErrorContext(ctx, "update cliente failed", "id", fc.id, "error", err)
			fc.prompter.Alert(MsgUpdateFailed)
			return err
		}
		fc.prompter.Alert(MsgUpdated)
	}

	fc.nav.GoToList()
	return nil
}

// GoBack returns to the list without saving.
func (fc *FormController) GoBack() {
	fc.Close()
	fc.nav.GoToList()
}

// Close abandons a pending code check and releases WaitCodeCheck callers.
func (fc *FormController) Close() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.debouncer.Stop()
	fc.codeVersion++
	fc.setCheckingLocked(false)
}

// errorsLocked returns field -> reason for every failing rule, including the
// code uniqueness result.
func (fc *FormController) errorsLocked() map[string]string {
	errs := make(map[string]string)
	if err := fc.validate.Struct(fc.values); err != nil {
		maps.Copy(errs, pkg.FieldErrors(err, &fc.values))
	}
	if _, ok := errs[FieldNumID]; !ok && fc.code.Status == StatusInvalid {
		errs[FieldNumID] = fc.code.Reason
	}
	return errs
}

// Values returns a copy of the buffer.
func (fc *FormController) Values() ClienteRequest {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.values
}

// Errors returns the current validation failures keyed by field.
func (fc *FormController) Errors() map[string]string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.errorsLocked()
}

// CodeStatus returns the state of the identification code check.
func (fc *FormController) CodeStatus() ValidationOutcome {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.code
}

// IsCheckingCode reports whether a code check is pending.
func (fc *FormController) IsCheckingCode() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.checking
}

// IsEditMode reports whether the form edits an existing record.
func (fc *FormController) IsEditMode() bool {
	return fc.id != 0
}

// ID returns the edited record id, or 0 for a new record.
func (fc *FormController) ID() uint {
	return fc.id
}

// OriginalCode returns the identification code loaded by Init.
func (fc *FormController) OriginalCode() string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.originalCode
}

// Touched reports whether field has been edited or submitted.
func (fc *FormController) Touched(field string) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.touched[field]
}
