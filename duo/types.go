package duo

import "time"

// Role 标识一次调用的角色。
type Role string

const (
	RoleWriter   Role = "writer"
	RoleReviewer Role = "reviewer"
)

// DefaultMaxRounds is used when the caller does not pick a round limit.
const DefaultMaxRounds = 3

// Turn records one exchange with the completion service.
type Turn struct {
	Role      Role      `json:"role"`
	Round     int       `json:"round"`
	Prompt    string    `json:"prompt"`
	Reply     string    `json:"reply"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is the outcome of a finished collaboration.
type Result struct {
	Task       string `json:"task"`
	Model      string `json:"model,omitempty"`
	FinalCode  string `json:"final_code"`
	Transcript []Turn `json:"transcript"`
	Iterations int    `json:"iterations"`
	Satisfied  bool   `json:"satisfied"`
}
