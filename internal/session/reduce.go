package session

import (
	"foodshare/internal/sequencer"
	"foodshare/pkg/types"
)

// Reduce applies evt to state and returns the new state. It never mutates
// its input. Results of background work carry the generation they were
// started under and are dropped once a newer submission, load or reset has
// superseded them.
func Reduce(state types.SessionState, evt Event) types.SessionState {
	switch e := evt.(type) {
	case Started:
		next := types.NewSessionState()
		next.Personalized = e.Personalized
		next.Generation = state.Generation + 1
		return next

	case Noticed:
		notice := e.Notice
		state.Notice = &notice

	case Failed:
		msg := e.Message
		state.Error = &msg
		state.IsLoading = false

	case LoadingStarted:
		state.PreviousStep = state.Step
		state.Step = types.SlideLoading
		state.TransitionDirection = types.DirectionForward
		state.IsLoading = true
		state.DonorEmail = optional(e.DonorEmail)

	case Submitted:
		state.Generation++
		state.Amount = e.Amount
		state.PreviousStep = state.Step
		state.Step = types.SlideLoading
		state.TransitionDirection = types.DirectionForward
		state.IsLoading = true
		state.Error = nil
		state.Notice = nil
		if e.Email != "" {
			state.DonorEmail = optional(e.Email)
		}

	case ImpactComputed:
		if e.Generation != state.Generation {
			return state
		}
		impact := e.Impact
		state.Amount = e.Amount
		state.Impact = &impact
		state.IsLoading = false
		state = showIntro(state)

	case LookupStarted:
		state.IsLoading = true
		state.Error = nil

	case DonorLoaded:
		if e.Generation != state.Generation {
			return state
		}
		impact := e.Impact
		state.Amount = e.Amount
		state.Impact = &impact
		state.IsLoading = false
		state.DonorEmail = optional(e.Email)
		state = showIntro(state)

	case LookupFinished:
		if e.Generation != state.Generation {
			return state
		}
		state.IsLoading = false

	case ImpactRecalculated:
		if e.Generation != state.Generation {
			return state
		}
		impact := e.Impact
		state.Impact = &impact
		state.IsLoading = false

	case RecalculationFailed:
		if e.Generation != state.Generation {
			return state
		}
		state.IsLoading = false

	case NavigatedNext:
		state, _ = sequencer.Advance(state)

	case NavigatedPrevious:
		state, _ = sequencer.Retreat(state)

	case Reset:
		return types.SessionState{
			Step:                types.SlideWelcome,
			PreviousStep:        state.Step,
			TransitionDirection: types.DirectionBackward,
			Personalized:        state.Personalized,
			Generation:          state.Generation + 1,
		}
	}

	return state
}

// showIntro moves to the donor intro slide, where every presentation starts
// once an impact is available.
func showIntro(state types.SessionState) types.SessionState {
	if state.Step == types.SlideDonorIntro {
		return state
	}
	state.PreviousStep = state.Step
	state.Step = types.SlideDonorIntro
	state.TransitionDirection = types.DirectionForward
	return state
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
