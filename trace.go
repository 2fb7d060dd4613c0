package rsacore

// TraceEvent is one structured step of a traced operation. Callers that want
// to display progress (a UI, a verbose CLI) subscribe with WithTrace instead
// of the library building display strings inside cryptographic functions.
type TraceEvent struct {
	// Op identifies the step, one of the TraceOp constants.
	Op string
	// Attempt is the 1-based attempt counter for retried steps.
	Attempt int
	// Bits is the bit length relevant to the step, when any.
	Bits int
}

// Trace operation identifiers.
const (
	// TraceOpPrime fires after each prime of the pair is generated.
	TraceOpPrime = "keygen.prime"
	// TraceOpRetry fires when a prime pair is discarded, either because
	// p == q or because gcd(e, phi) != 1.
	TraceOpRetry = "keygen.retry"
	// TraceOpDone fires once an admissible keypair has been derived.
	TraceOpDone = "keygen.done"
)

// TraceFunc receives trace events. It must not block; it is called
// synchronously from inside the traced operation.
type TraceFunc func(TraceEvent)
