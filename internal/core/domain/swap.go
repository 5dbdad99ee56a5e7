package domain

// State is the raw lifecycle state of a swap as reported by the swap
// processing service. The service owns all transitions, the client only
// observes snapshots.
type State string

const (
	StateCreated              State = "created"
	StateAgentMatched         State = "agent_matched"
	StateEscrowPending        State = "escrow_pending"
	StateEscrowLocked         State = "escrow_locked"
	StatePaymentInstructed    State = "payment_instructed"
	StatePaymentPending       State = "payment_pending"
	StatePaymentSubmitted     State = "payment_submitted"
	StatePaymentConfirmedUser State = "payment_confirmed_user"
	StatePaymentConfirmedAgnt State = "payment_confirmed_agent"
	StateCompleted            State = "completed"
	StateCancelled            State = "cancelled"
	StateDisputed             State = "disputed"
)

// Step is the position in the ordered progress sequence shown to the
// user. Several raw states collapse into one step.
type Step int

const (
	StepInvoicePending Step = iota
	StepAgentMatched
	StepEscrowLocked
	StepPaymentProcessing
	StepCompleted
)

var stepLabels = map[Step]string{
	StepInvoicePending:    "Invoice payment pending",
	StepAgentMatched:      "Agent matched",
	StepEscrowLocked:      "Escrow locked",
	StepPaymentProcessing: "Payment processing",
	StepCompleted:         "Completed",
}

func (s Step) String() string {
	return stepLabels[s]
}

// Branch distinguishes the three ways a swap can leave the ordered
// progress sequence. Cancelled and disputed are terminal but never map
// to a step index.
type Branch int

const (
	BranchInProgress Branch = iota
	BranchCompleted
	BranchCancelled
	BranchDisputed
)

var stepByState = map[State]Step{
	StateCreated:              StepInvoicePending,
	StateEscrowPending:        StepInvoicePending,
	StateAgentMatched:         StepAgentMatched,
	StateEscrowLocked:         StepEscrowLocked,
	StatePaymentInstructed:    StepPaymentProcessing,
	StatePaymentPending:       StepPaymentProcessing,
	StatePaymentSubmitted:     StepPaymentProcessing,
	StatePaymentConfirmedUser: StepPaymentProcessing,
	StatePaymentConfirmedAgnt: StepPaymentProcessing,
	StateCompleted:            StepCompleted,
}

// Advance maps a raw state to its progress step and branch. For
// cancelled and disputed the returned step is -1: they sit outside the
// ordered sequence and must be rendered as their own terminal message.
func Advance(s State) (Step, Branch) {
	switch s {
	case StateCancelled:
		return -1, BranchCancelled
	case StateDisputed:
		return -1, BranchDisputed
	case StateCompleted:
		return StepCompleted, BranchCompleted
	default:
		step, ok := stepByState[s]
		if !ok {
			// unknown states render as the initial step rather
			// than failing the tracker
			return StepInvoicePending, BranchInProgress
		}
		return step, BranchInProgress
	}
}

// IsTerminal reports whether polling must stop on this state.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateDisputed:
		return true
	}
	return false
}

// IsPending reports whether the swap is still in flight, i.e. not
// completed, cancelled or disputed.
func (s State) IsPending() bool {
	return !s.IsTerminal()
}
