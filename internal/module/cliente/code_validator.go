package cliente

// ReasonCodeAlreadyExists is the validation reason reported when the
// identification code is already taken by another record.
const ReasonCodeAlreadyExists = "codeAlreadyExists"

// ValidationStatus is the state of an asynchronously validated field.
type ValidationStatus int

const (
	StatusValid ValidationStatus = iota
	StatusPending
	StatusInvalid
)

func (s ValidationStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusInvalid:
		return "INVALID"
	default:
		return "VALID"
	}
}

// ValidationOutcome is the result of validating the identification code.
type ValidationOutcome struct {
	Status ValidationStatus
	Reason string
}

// Valid reports whether the outcome lets the form be submitted.
func (o ValidationOutcome) Valid() bool {
	return o.Status == StatusValid
}

// CodeContext is the snapshot of form state the code check depends on.
type CodeContext struct {
	EditMode     bool
	OriginalCode string
}

// CheckCode decides whether value needs a remote existence check. An empty
// value, or the unchanged original code while editing, is valid right away;
// anything else is pending until CodeOutcome resolves it.
func CheckCode(value string, cc CodeContext) ValidationOutcome {
	if value == "" {
		return ValidationOutcome{Status: StatusValid}
	}
	if cc.EditMode && value == cc.OriginalCode {
		return ValidationOutcome{Status: StatusValid}
	}
	return ValidationOutcome{Status: StatusPending}
}

// CodeOutcome converts the result of an existence check into an outcome.
// A failed check counts as valid so a flaky backend never blocks the form.
func CodeOutcome(exists bool, err error) ValidationOutcome {
	if err == nil && exists {
		return ValidationOutcome{Status: StatusInvalid, Reason: ReasonCodeAlreadyExists}
	}
	return ValidationOutcome{Status: StatusValid}
}
