package llm

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskFeatures TaskType = "features"
	TaskPRD      TaskType = "prd"
)

// Provider selects the completion backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Provider   Provider
	LogCalls   bool
	Endpoint   string // Ollama base URL, or an Anthropic base URL override
	APIKey     string
	Model      string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns the Ollama configuration used when nothing is set.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:   ProviderOllama,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  60000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskFeatures: {Temperature: 0.4, MaxTokens: 2048, TimeoutMs: 60000},
			TaskPRD:      {Temperature: 0.3, MaxTokens: 4096, TimeoutMs: 120000},
		},
	}
}

// DefaultAnthropicModel is used when the anthropic provider has no model set.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// taskParams resolves temperature and max tokens, request overrides first.
func (c LLMConfig) taskParams(req GenerateRequest) (float64, int) {
	tc := c.Tasks[req.Task]
	temp, maxTok := tc.Temperature, tc.MaxTokens
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	if maxTok <= 0 {
		maxTok = 1024
	}
	return temp, maxTok
}
