package domain

// QueryState tracks a chat query through the retrieval-and-generation flow.
type QueryState string

const (
	QuerySubmitted   QueryState = "QUERY_SUBMITTED"
	Retrieving       QueryState = "RETRIEVING"
	ContextAssembled QueryState = "CONTEXT_ASSEMBLED"
	Generating       QueryState = "GENERATING"
	ResponseReady    QueryState = "RESPONSE_READY"
	NoteSaved        QueryState = "NOTE_SAVED"
	RetrievalFailed  QueryState = "RETRIEVAL_FAILED"
	GenerationFailed QueryState = "GENERATION_FAILED"
)

var queryTransitions = map[QueryState][]QueryState{
	QuerySubmitted:   {Retrieving},
	Retrieving:       {ContextAssembled, RetrievalFailed},
	ContextAssembled: {Generating},
	Generating:       {ResponseReady, GenerationFailed},
	ResponseReady:    {NoteSaved},
	// RetrievalFailed and GenerationFailed are terminal; a retry starts a
	// fresh flow from QuerySubmitted.
}

// CanTransition reports whether moving from one query state to another is
// allowed by the flow.
func CanTransition(from, to QueryState) bool {
	for _, next := range queryTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the state accepts no further transitions except a
// user-initiated note save.
func (s QueryState) Terminal() bool {
	return s == RetrievalFailed || s == GenerationFailed || s == NoteSaved
}

// Failed reports whether the state is a failure terminal.
func (s QueryState) Failed() bool {
	return s == RetrievalFailed || s == GenerationFailed
}
