package config

const (
	KeyLLMBackend       = "llm_backend"
	KeyLLMModel         = "llm_model"
	KeyGeminiAPIKey     = "gemini_api_key"
	KeyOllamaURL        = "ollama_url"
	KeyTemperature      = "temperature"
	KeyMaxOutputTokens  = "max_output_tokens"
	KeyMaxPromptTokens  = "max_prompt_tokens"
	KeyLLMCallTimeout   = "llm_call_timeout"
	KeyStructuredOutput = "structured_output"
	KeyRequestMode      = "request_mode"
	KeyPromptProfile    = "prompt_profile"
	KeyProfilesFile     = "profiles_file"
	KeyLogLevel         = "log_level"
	KeyHost             = "host"
	KeyPort             = "port"
)
