package usecase

import (
	"strings"

	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
)

type UseCases struct {
	repo    interfaces.Repository
	strava  interfaces.StravaClient
	peloton interfaces.PelotonClient
	slack   interfaces.SlackGateway
	posting *model.PostingConfig
	baseURL string
}

type Option func(*UseCases)

func WithStravaClient(client interfaces.StravaClient) Option {
	return func(uc *UseCases) {
		uc.strava = client
	}
}

func WithPelotonClient(client interfaces.PelotonClient) Option {
	return func(uc *UseCases) {
		uc.peloton = client
	}
}

func WithSlackGateway(gateway interfaces.SlackGateway) Option {
	return func(uc *UseCases) {
		uc.slack = gateway
	}
}

func WithPostingConfig(cfg *model.PostingConfig) Option {
	return func(uc *UseCases) {
		uc.posting = cfg
	}
}

// WithBaseURL sets the public URL of this service, used to build
// verification and reconnect links in DMs.
func WithBaseURL(baseURL string) Option {
	return func(uc *UseCases) {
		uc.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.posting == nil {
		uc.posting = &model.PostingConfig{
			Disciplines: model.DefaultDisciplines(),
		}
	}

	return uc
}
