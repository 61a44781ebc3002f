package types

import (
	"fmt"
	"strings"
)

// Slide identifies a presentation slide. Ordinal order is the default
// forward order of the standard slide set.
type Slide int

const (
	SlideWelcome Slide = iota
	SlideLoading
	SlideDonorSummary
	SlideDonorIntro
	SlideMeals
	SlidePeople
	SlideTimeGiving
	SlideFoodRescueComparison
	SlideFoodRescue
	SlideEnvironment
	SlideFinancial
	SlideVolunteer
	SlideSummary
)

var slideNames = [...]string{
	SlideWelcome:              "WELCOME",
	SlideLoading:              "LOADING",
	SlideDonorSummary:         "DONOR_SUMMARY",
	SlideDonorIntro:           "DONOR_INTRO",
	SlideMeals:                "MEALS",
	SlidePeople:               "PEOPLE",
	SlideTimeGiving:           "TIME_GIVING",
	SlideFoodRescueComparison: "FOOD_RESCUE_COMPARISON",
	SlideFoodRescue:           "FOOD_RESCUE",
	SlideEnvironment:          "ENVIRONMENT",
	SlideFinancial:            "FINANCIAL",
	SlideVolunteer:            "VOLUNTEER",
	SlideSummary:              "SUMMARY",
}

func (s Slide) String() string {
	if s < SlideWelcome || s > SlideSummary {
		return fmt.Sprintf("Slide(%d)", int(s))
	}
	return slideNames[s]
}

func (s Slide) MarshalText() ([]byte, error) {
	if s < SlideWelcome || s > SlideSummary {
		return nil, fmt.Errorf("unknown slide %d", int(s))
	}
	return []byte(slideNames[s]), nil
}

func (s *Slide) UnmarshalText(text []byte) error {
	slide, err := ParseSlide(string(text))
	if err != nil {
		return err
	}
	*s = slide
	return nil
}

func ParseSlide(name string) (Slide, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range slideNames {
		if n == upper {
			return Slide(i), nil
		}
	}
	return SlideWelcome, fmt.Errorf("unknown slide %q", name)
}
