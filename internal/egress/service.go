package egress

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/model"
	"github.com/rocksoncodes/market-scout/internal/store"
)

// Channel selects which publishers a run dispatches to.
type Channel string

const (
	ChannelNotion Channel = "notion"
	ChannelEmail  Channel = "email"
	ChannelAll    Channel = "all"
)

// ParseChannel validates a configured channel name.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelNotion, ChannelEmail, ChannelAll:
		return Channel(s), nil
	default:
		return "", eris.Errorf("egress: unknown channel %q (want notion, email or all)", s)
	}
}

// Publisher is one delivery channel for a brief.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, brief *model.CuratedBrief) error
}

// Service runs the egress stage: read the first stored brief and dispatch it.
type Service struct {
	store      store.Store
	channel    Channel
	publishers []Publisher
}

// NewService creates the egress stage over the given publishers.
func NewService(st store.Store, channel Channel, publishers ...Publisher) *Service {
	return &Service{store: st, channel: channel, publishers: publishers}
}

// Run publishes the brief to every selected channel. A missing brief is a
// logged no-op, not an error. Channel failures are independent: each selected
// publisher gets its attempt and the errors are joined.
func (s *Service) Run(ctx context.Context) error {
	brief, err := s.store.FirstBrief(ctx)
	if err != nil {
		return eris.Wrap(err, "egress: query brief")
	}
	if brief == nil {
		zap.L().Warn("egress: no brief stored, skipping publication")
		return nil
	}

	var errs []error
	for _, pub := range s.publishers {
		if !s.selected(pub.Name()) {
			continue
		}
		zap.L().Info("publishing brief",
			zap.Int64("brief_id", brief.ID),
			zap.String("channel", pub.Name()),
		)
		if err := pub.Publish(ctx, brief); err != nil {
			zap.L().Error("channel publication failed",
				zap.String("channel", pub.Name()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) selected(name string) bool {
	return s.channel == ChannelAll || string(s.channel) == name
}
