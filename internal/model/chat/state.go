package chat

// State 是问卷状态机的显式状态。
type State int

const (
	StateName State = iota
	StateImage
	StateSynopsis
	StatePercentage
	StateYear
	StateAuthor
	StateTemplate
	StateColor
	StateCustomColor
	StateFont
	StateCustomFont
	StateBranding
	StateConfirmation
	StateDone
)

var stateNames = map[State]string{
	StateName:         "name",
	StateImage:        "image",
	StateSynopsis:     "synopsis",
	StatePercentage:   "percentage",
	StateYear:         "year",
	StateAuthor:       "author",
	StateTemplate:     "template",
	StateColor:        "color",
	StateCustomColor:  "custom_color",
	StateFont:         "font",
	StateCustomFont:   "custom_font",
	StateBranding:     "branding",
	StateConfirmation: "confirmation",
	StateDone:         "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the questionnaire has finished.
func (s State) Terminal() bool {
	return s == StateDone
}
