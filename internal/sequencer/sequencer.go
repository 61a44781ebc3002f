// Package sequencer decides slide order for the two presentation modes.
//
// Standard mode walks the slides in ordinal order, skipping FOOD_RESCUE.
// Personalized mode uses the shorter chain
// DONOR_INTRO -> MEALS -> PEOPLE -> FINANCIAL -> SUMMARY.
package sequencer

import "foodshare/pkg/types"

var personalizedNext = map[types.Slide]types.Slide{
	types.SlideDonorIntro: types.SlideMeals,
	types.SlideMeals:      types.SlidePeople,
	types.SlidePeople:     types.SlideFinancial,
	types.SlideFinancial:  types.SlideSummary,
}

var personalizedPrevious = map[types.Slide]types.Slide{
	types.SlideSummary:   types.SlideFinancial,
	types.SlideFinancial: types.SlidePeople,
	types.SlidePeople:    types.SlideMeals,
	types.SlideMeals:     types.SlideDonorIntro,
}

// Next returns the slide after step. It returns step unchanged at or past
// SUMMARY, and in personalized mode while WELCOME or LOADING is showing, since
// those only advance when data finishes loading.
func Next(step types.Slide, personalized bool) types.Slide {
	if step >= types.SlideSummary {
		return step
	}

	if personalized {
		switch step {
		case types.SlideWelcome, types.SlideLoading:
			return step
		}
		if next, ok := personalizedNext[step]; ok {
			return next
		}
		return step + 1
	}

	if step == types.SlideFoodRescueComparison {
		return types.SlideEnvironment
	}
	return step + 1
}

// Previous returns the slide before step. It returns step unchanged at or
// before DONOR_SUMMARY.
func Previous(step types.Slide, personalized, hasDonorEmail bool) types.Slide {
	if step <= types.SlideDonorSummary {
		return step
	}

	if personalized {
		if prev, ok := personalizedPrevious[step]; ok {
			return prev
		}
		return step - 1
	}

	switch {
	case step == types.SlideMeals && hasDonorEmail:
		return types.SlideDonorSummary
	case step == types.SlideEnvironment:
		return types.SlideFoodRescueComparison
	}
	return step - 1
}

func IsFirstSlide(step types.Slide, personalized bool) bool {
	if personalized {
		return step == types.SlideDonorIntro
	}
	return step <= types.SlideDonorSummary || step == types.SlideMeals
}

func IsLastSlide(step types.Slide) bool {
	return step >= types.SlideSummary
}

// Advance moves state forward one slide. The boolean is false, and state is
// returned untouched, when there is nowhere to go.
func Advance(state types.SessionState) (types.SessionState, bool) {
	next := Next(state.Step, state.Personalized)
	if next == state.Step {
		return state, false
	}

	state.PreviousStep = state.Step
	state.Step = next
	state.TransitionDirection = types.DirectionForward
	return state, true
}

// Retreat moves state back one slide. The boolean is false, and state is
// returned untouched, when there is nowhere to go.
func Retreat(state types.SessionState) (types.SessionState, bool) {
	prev := Previous(state.Step, state.Personalized, state.HasDonorEmail())
	if prev == state.Step {
		return state, false
	}

	state.PreviousStep = state.Step
	state.Step = prev
	state.TransitionDirection = types.DirectionBackward
	return state, true
}
