package multired

import "time"

// Target identifies one social network reachable through the backend.
type Target string

// Supported targets, in display order.
const (
	Facebook  Target = "facebook"
	Instagram Target = "instagram"
	LinkedIn  Target = "linkedin"
	WhatsApp  Target = "whatsapp"
	TikTok    Target = "tiktok"
)

// AllTargets lists every supported target in display order.
var AllTargets = []Target{Facebook, Instagram, LinkedIn, WhatsApp, TikTok}

// ParseTarget maps a user-supplied name to a Target.
func ParseTarget(name string) (Target, bool) {
	for _, t := range AllTargets {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// PublishRequest is one submission: the text to adapt and the targets chosen
// at the moment of dispatch. Immutable once built.
type PublishRequest struct {
	Text    string
	Targets []Target
}

// Validation carries the backend's content verdict. A negative verdict is
// metadata on a successful publish, never a Failure.
type Validation struct {
	Academic bool   `json:"es_academico"`
	Reason   string `json:"razon"`
}

// Result is the canonical, network-agnostic outcome of publishing to one
// target. Exactly one of Success or Failure semantics applies: Err is empty
// for a success and non-empty for a failure.
type Result struct {
	Target Target

	// success fields
	AdaptedText string
	Hashtags    []string
	PublishedID string
	PublicLink  string
	Extra       map[string]string
	Validation  *Validation
	Message     string

	// failure field
	Err string
}

// OK reports whether the publish attempt itself completed.
func (r Result) OK() bool { return r.Err == "" }

// Summary is the backend-computed tally for a multi-target publish. The
// client trusts these numbers instead of recomputing them, so the two sides
// can never disagree.
type Summary struct {
	TotalNetworks int
	ValidNetworks int
	Succeeded     int
	Failed        int
	SuccessRate   float64 // parsed from the backend's "tasa_exito" percentage
	RawRate       string  // the backend string, e.g. "50.0%"
	Elapsed       float64 // seconds
}

// Outcome is the combined result of one multi-target publish. Derived once
// all per-target results are known, never mutated afterwards.
type Outcome struct {
	PerTarget  map[Target]Result
	Summary    Summary
	Validation *Validation
}

// Report is what one publish cycle returns: a single canonical Result or, in
// multi-target mode, an aggregate Outcome.
type Report struct {
	Single *Result
	Multi  *Outcome
}

// Conversation is one chat thread owned by the authenticated user.
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role of a chat message author.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation's append-only sequence. ID is zero
// for optimistic local messages that have not been acknowledged yet.
type Message struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
