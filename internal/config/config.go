package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envFile = "config.env"

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(envFile)
	if root != nil {
		// flags use dashes, keys use underscores
		root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLLMBackend, "gemini")
	viper.SetDefault(KeyLLMModel, "gemini-2.5-flash-lite")
	viper.SetDefault(KeyOllamaURL, "http://localhost:11434")
	viper.SetDefault(KeyTemperature, 0.4)
	viper.SetDefault(KeyMaxOutputTokens, 1024)
	viper.SetDefault(KeyMaxPromptTokens, 0)
	viper.SetDefault(KeyLLMCallTimeout, "2m")
	viper.SetDefault(KeyStructuredOutput, false)
	viper.SetDefault(KeyRequestMode, "required")
	viper.SetDefault(KeyPromptProfile, "classic")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyHost, "0.0.0.0")
	viper.SetDefault(KeyPort, 8080)
}

func LLMBackend() string     { return viper.GetString(KeyLLMBackend) }
func LLMModel() string       { return viper.GetString(KeyLLMModel) }
func GeminiAPIKey() string   { return viper.GetString(KeyGeminiAPIKey) }
func OllamaURL() string      { return viper.GetString(KeyOllamaURL) }
func Temperature() float64   { return viper.GetFloat64(KeyTemperature) }
func MaxOutputTokens() int   { return viper.GetInt(KeyMaxOutputTokens) }
func MaxPromptTokens() int   { return viper.GetInt(KeyMaxPromptTokens) }
func LLMCallTimeout() string { return viper.GetString(KeyLLMCallTimeout) }
func StructuredOutput() bool { return viper.GetBool(KeyStructuredOutput) }
func RequestMode() string    { return viper.GetString(KeyRequestMode) }
func PromptProfile() string  { return viper.GetString(KeyPromptProfile) }
func ProfilesFile() string   { return viper.GetString(KeyProfilesFile) }
func LogLevel() string       { return viper.GetString(KeyLogLevel) }
func Host() string           { return viper.GetString(KeyHost) }
func Port() int              { return viper.GetInt(KeyPort) }
