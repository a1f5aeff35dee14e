package answer

import (
	"fmt"

	"github.com/j0lvera/mica/internal/ask"
	"github.com/j0lvera/mica/internal/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	BackendGTS = "gts"
	BackendLLM = "llm"
)

// Params for creating an answer service
type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

// Result of creating an answer service
type Result struct {
	fx.Out

	Answerer ask.Answerer
}

// New creates the answer service selected by ANSWER_BACKEND
func New(p Params) (Result, error) {
	switch p.Config.AnswerBackend {
	case BackendGTS, "":
		p.Logger.Info().Str("base_url", p.Config.AnswerBaseURL).Msg("using gts answer backend")
		return Result{
			Answerer: NewGTS(p.Config.AnswerBaseURL, p.Config.AnswerTimeout),
		}, nil
	case BackendLLM:
		if p.Config.APIKey == "" {
			return Result{}, fmt.Errorf("OPENROUTER_API_KEY is required for the %s backend", BackendLLM)
		}
		service, err := NewLLM(p.Config.APIKey, p.Config.BaseURL, p.Config.Model, p.Config.HistoryLimit)
		if err != nil {
			return Result{}, err
		}
		p.Logger.Info().Str("model", p.Config.Model).Msg("using llm answer backend")
		return Result{
			Answerer: service,
		}, nil
	default:
		return Result{}, fmt.Errorf("unknown answer backend %q", p.Config.AnswerBackend)
	}
}

// Module provides the answer service
func Module() fx.Option {
	return fx.Module(
		"answer",
		fx.Provide(
			New,
		),
	)
}
