package models

// Settings is the user-entered process configuration for talking to the
// completion provider. It lives in the persistence store and is re-read
// on every send, so edits take effect without a restart.
type Settings struct {
	APIKey       string   `json:"apiKey"`
	BaseURL      string   `json:"baseURL"`
	Model        string   `json:"model"`
	Temperature  float64  `json:"temperature"`
	CustomModels []string `json:"customModels"`
}

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// DefaultSettings are the values assumed when nothing has been stored
// yet: no credential, the public OpenAI endpoint and a stock model.
func DefaultSettings() Settings {
	return Settings{
		APIKey:       "",
		BaseURL:      DefaultBaseURL,
		Model:        DefaultModel,
		Temperature:  0.7,
		CustomModels: []string{},
	}
}
