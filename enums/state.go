package enums

type State string

const (
	StateIdle State = "idle"

	// StateSubmitting is held from the moment the trigger is disabled until
	// the outcome of the submission is known.
	StateSubmitting State = "submitting"

	StateSuccess State = "success"
	StateFailed  State = "failed"
)

type Step string

const (
	StepValidate          Step = "validate"
	StepUpdateProductLink Step = "update_product_link"
	StepScheduleEmail     Step = "schedule_email"
)
