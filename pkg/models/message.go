package models

// Message roles. A user message carries only Content; an assistant message
// carries the three stage projections and no Content.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation. The role discriminates which of
// the optional fields are populated.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`

	Stage1 []Stage1Response `json:"stage1,omitempty"` // council answers
	Stage2 []Stage2Ranking  `json:"stage2,omitempty"` // peer evaluations
	Stage3 *Stage3Synthesis `json:"stage3,omitempty"` // chairman synthesis
}

// Stage1Response is one council model's independent answer. Response is nil
// when the model failed or returned nothing.
type Stage1Response struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
}

// Stage2Ranking is one evaluator's raw ranking text plus the labels parsed
// from it, in ranked order.
type Stage2Ranking struct {
	Model         string   `json:"model"`
	Ranking       string   `json:"ranking"`
	ParsedRanking []string `json:"parsedRanking"`
}

// Stage3Synthesis is the chairman's final answer.
type Stage3Synthesis struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// NewUserMessage builds a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an assistant message from the three stage
// projections.
func NewAssistantMessage(stage1 []Stage1Response, stage2 []Stage2Ranking, stage3 *Stage3Synthesis) Message {
	return Message{Role: RoleAssistant, Stage1: stage1, Stage2: stage2, Stage3: stage3}
}
