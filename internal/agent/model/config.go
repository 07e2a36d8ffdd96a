package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	TTL         string `envconfig:"CONVERSATION_TTL" default:"24h"`
	MaxMessages int    `envconfig:"CONVERSATION_MAX_MESSAGES" default:"40"`
	Tools       struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"20"`
	}
}

// SessionTTL parses TTL, returning zero (no expiry) for an empty value.
func (c ConversationConfig) SessionTTL() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TTL)
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"4000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0"`
}

type FredConfig struct {
	APIKey        string        `envconfig:"FRED_API_KEY" required:"true"`
	BaseURL       string        `envconfig:"FRED_BASE_URL" default:"https://api.stlouisfed.org/fred"`
	ChartURL      string        `envconfig:"FRED_CHART_URL" default:"https://fred.stlouisfed.org/graph/fredgraph.png"`
	ChartWidth    int           `envconfig:"FRED_CHART_WIDTH" default:"670"`
	ChartHeight   int           `envconfig:"FRED_CHART_HEIGHT" default:"445"`
	Timeout       time.Duration `envconfig:"FRED_TIMEOUT" default:"10s"`
	RatePerSecond float64       `envconfig:"FRED_RATE_PER_SECOND" default:"2"`
}

type SearchConfig struct {
	URL     string        `envconfig:"HYBRID_SEARCH_URL"`
	Token   string        `envconfig:"HYBRID_SEARCH_TOKEN"`
	Timeout time.Duration `envconfig:"HYBRID_SEARCH_TIMEOUT" default:"30s"`
}

type HTTPConfig struct {
	Addr           string   `envconfig:"HTTP_ADDR" default:":8000"`
	AllowedOrigins []string `envconfig:"HTTP_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
