package models

// Persona is a conversational identity: who the companion is, plus the
// system prompt that makes the model speak as them. The descriptive
// fields are used for display and prompt composition only.
type Persona struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Role               string   `json:"role"`
	Gender             string   `json:"gender"`
	Age                int      `json:"age"`
	Background         string   `json:"background"`
	Personality        string   `json:"personality"`
	Interests          []string `json:"interests"`
	CommunicationStyle string   `json:"communicationStyle"`
	DistinctiveTraits  []string `json:"distinctiveTraits"`
	Prompt             string   `json:"prompt"`
	BuiltIn            bool     `json:"builtIn,omitempty"`
}
