package session

import "foodshare/pkg/types"

// Event is anything the reducer knows how to apply to a session.
type Event interface {
	event()
}

// Started begins a fresh session for a page load.
type Started struct {
	Personalized bool
}

type Noticed struct {
	Notice types.Notice
}

// Failed records a user-visible error.
type Failed struct {
	Message string
}

// LoadingStarted shows the loading slide while the donor's impact is prepared.
type LoadingStarted struct {
	DonorEmail string
}

// Submitted is a donation entered on the welcome slide.
type Submitted struct {
	Amount float64
	Email  string
}

// ImpactComputed carries the locally computed impact once the loading delay
// has passed.
type ImpactComputed struct {
	Generation uint64
	Amount     float64
	Impact     types.DonationImpact
}

type LookupStarted struct{}

// DonorLoaded is a successful backend donor lookup.
type DonorLoaded struct {
	Generation uint64
	Amount     float64
	Email      string
	Impact     types.DonationImpact
}

// LookupFinished ends a lookup that found nothing usable.
type LookupFinished struct {
	Generation uint64
}

type ImpactRecalculated struct {
	Generation uint64
	Impact     types.DonationImpact
}

type RecalculationFailed struct {
	Generation uint64
}

type NavigatedNext struct{}

type NavigatedPrevious struct{}

type Reset struct{}

func (Started) event()             {}
func (Noticed) event()             {}
func (Failed) event()              {}
func (LoadingStarted) event()      {}
func (Submitted) event()           {}
func (ImpactComputed) event()      {}
func (LookupStarted) event()       {}
func (DonorLoaded) event()         {}
func (LookupFinished) event()      {}
func (ImpactRecalculated) event()  {}
func (RecalculationFailed) event() {}
func (NavigatedNext) event()       {}
func (NavigatedPrevious) event()   {}
func (Reset) event()               {}
