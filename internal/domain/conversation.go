package domain

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one utterance in a conversation. Ordered, append-only.
type Turn struct {
	Role Role
	Text string
}

// History is the ordered turn sequence for one session. It starts empty
// and is mutated only by the answer generator: a full exchange appends the
// standalone query as a user turn and the response as a model turn, so the
// visible history always ends in a model turn and has even length.
//
// A History is owned by exactly one session and is not safe for concurrent
// use; callers that serve multiple sessions give each its own History.
type History struct {
	turns []Turn
}

// NewHistory returns an empty conversation history.
func NewHistory() *History {
	return &History{}
}

// Turns returns a copy of the recorded turns. The snapshot is safe to
// extend (e.g. with a provisional turn for rewriting) without touching the
// real history.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	return len(h.turns)
}

// AppendExchange records one completed exchange: the standalone query as a
// user turn followed by the model's response. Called only after generation
// succeeds, so a failed turn leaves the history untouched.
func (h *History) AppendExchange(query, response string) {
	h.turns = append(h.turns,
		Turn{Role: RoleUser, Text: query},
		Turn{Role: RoleModel, Text: response},
	)
}
