package domain

import (
	"math/rand"

	txdomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
)

// Outcome is what a simulated operator decided for one charge.
type Outcome struct {
	Status        txdomain.Status
	FailureReason string
}

// Simulator decides the outcome of each simulated gateway call. Injectable so
// tests can force deterministic results instead of relying on randomness.
type Simulator func() Outcome

var declineReasons = []string{
	"insufficient balance",
	"incorrect PIN",
	"transaction timed out",
	"service temporarily unavailable",
	"daily limit reached",
	"invalid or inactive number",
}

// RandomSimulator approves roughly 9 out of 10 charges, declining the rest
// with an operator-style reason.
func RandomSimulator() Simulator {
	return func() Outcome {
		if rand.Float64() > 0.10 {
			return Outcome{Status: txdomain.StatusCompleted}
		}
		return Outcome{
			Status:        txdomain.StatusFailed,
			FailureReason: declineReasons[rand.Intn(len(declineReasons))],
		}
	}
}

// AlwaysApprove accepts every charge.
func AlwaysApprove() Simulator {
	return func() Outcome {
		return Outcome{Status: txdomain.StatusCompleted}
	}
}

// AlwaysDecline rejects every charge with the given reason.
func AlwaysDecline(reason string) Simulator {
	return func() Outcome {
		return Outcome{Status: txdomain.StatusFailed, FailureReason: reason}
	}
}

// Sequence replays the given outcomes in order, then repeats the last one.
func Sequence(outcomes ...Outcome) Simulator {
	i := 0
	return func() Outcome {
		out := outcomes[i]
		if i < len(outcomes)-1 {
			i++
		}
		return out
	}
}
