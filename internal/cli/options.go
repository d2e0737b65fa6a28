package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"store_assistant/internal/config"
)

type Options struct {
	Query        string
	UserID       string
	Area         string
	From         string
	To           string
	JSON         bool
	Debug        bool
	LogFile      string
	Timeout      time.Duration
	Backend      string
	InferenceURL string
	LLMBaseURL   string
	LLMAPIKey    string
	LLMModel     string
}

// ParseOptions reads command line flags. It returns flag.ErrHelp after printing usage for -h.
func ParseOptions(args []string, output io.Writer) (Options, error) {
	var opts Options
	var timeoutSeconds int

	fs := flag.NewFlagSet("store-assistant", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s [flags] [message]\n", fs.Name())
		fmt.Fprintln(output, "Without a message an interactive session starts. Type /help inside it for commands.")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.UserID, "user", "", "User id (USER_ID)")
	fs.StringVar(&opts.Area, "area", "", "App area: main or misc (AREA)")
	fs.StringVar(&opts.From, "from", "", "Summary start date (YYYY-MM-DD)")
	fs.StringVar(&opts.To, "to", "", "Summary end date (YYYY-MM-DD)")
	fs.BoolVar(&opts.JSON, "json", false, "Output JSON format")
	fs.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&opts.LogFile, "log-file", "", "Log file path (LOG_FILE)")
	fs.IntVar(&timeoutSeconds, "timeout", 0, "Timeout in seconds (TIMEOUT)")
	fs.StringVar(&opts.Backend, "backend", "", "Assistant backend: inference or llm (ASSISTANT_BACKEND)")
	fs.StringVar(&opts.InferenceURL, "inference-url", "", "Inference service base URL (INFERENCE_BASE_URL)")
	fs.StringVar(&opts.LLMBaseURL, "llm-base-url", "", "LLM base URL (LLM_BASE_URL)")
	fs.StringVar(&opts.LLMAPIKey, "llm-api-key", "", "LLM API key (LLM_API_KEY)")
	fs.StringVar(&opts.LLMModel, "llm-model", "", "LLM model (LLM_MODEL)")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	switch b := strings.ToLower(strings.TrimSpace(opts.Backend)); b {
	case "", config.BackendInference, config.BackendLLM:
		opts.Backend = b
	default:
		return Options{}, fmt.Errorf("unsupported backend %q", opts.Backend)
	}
	if timeoutSeconds > 0 {
		opts.Timeout = time.Duration(timeoutSeconds) * time.Second
	}

	rest := fs.Args()
	if len(rest) > 1 {
		return Options{}, errors.New("only one message argument is supported; quote it")
	}
	if len(rest) == 1 {
		opts.Query = strings.TrimSpace(rest[0])
	}
	return opts, nil
}

// Apply overlays the flags that were given on top of the loaded configuration.
func (o Options) Apply(cfg config.Config) config.Config {
	override := func(dst *string, value string) {
		if v := strings.TrimSpace(value); v != "" {
			*dst = v
		}
	}
	override(&cfg.UserID, o.UserID)
	override(&cfg.Area, o.Area)
	override(&cfg.LogFile, o.LogFile)
	override(&cfg.InferenceBaseURL, o.InferenceURL)
	override(&cfg.LLMBaseURL, o.LLMBaseURL)
	override(&cfg.LLMAPIKey, o.LLMAPIKey)
	override(&cfg.LLMModel, o.LLMModel)
	override(&cfg.AssistantBackend, o.Backend)
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.Debug {
		cfg.Debug = true
	}
	return cfg
}
