package types

// Runner executes a command against a single input payload.
//
// Implementations must never let the child outlive the command's timeout and
// must not retry. Each call spawns and reaps exactly one process.
type Runner interface {
	// Run spawns the command, writes input to its stdin and waits for exit or timeout.
	Run(command *Command, input []byte) Outcome
}
