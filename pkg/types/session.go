package types

type TransitionDirection string

const (
	DirectionForward  TransitionDirection = "forward"
	DirectionBackward TransitionDirection = "backward"
)

type NoticeVariant string

const (
	NoticeDefault     NoticeVariant = "default"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice is a user-visible, non-blocking message.
type Notice struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Variant     NoticeVariant `json:"variant"`
}

// SessionState is the state of one donor's presentation session. It is owned by
// the session controller and only changes through its reducer.
type SessionState struct {
	Amount              float64             `json:"amount"`
	Step                Slide               `json:"step"`
	PreviousStep        Slide               `json:"previousStep"`
	Impact              *DonationImpact     `json:"impact"`
	IsLoading           bool                `json:"isLoading"`
	Error               *string             `json:"error"`
	DonorEmail          *string             `json:"donorEmail"`
	TransitionDirection TransitionDirection `json:"transitionDirection"`

	// Personalized selects the shorter donor slide chain (donorUI=true).
	Personalized bool    `json:"personalized"`
	Notice       *Notice `json:"notice,omitempty"`

	// Generation increases with every submission, load and reset. Async results
	// carry the generation they were started under and are dropped when stale.
	Generation uint64 `json:"generation"`
}

func NewSessionState() SessionState {
	return SessionState{
		Step:                SlideWelcome,
		PreviousStep:        SlideWelcome,
		TransitionDirection: DirectionForward,
	}
}

func (s SessionState) HasDonorEmail() bool {
	return s.DonorEmail != nil && *s.DonorEmail != ""
}
