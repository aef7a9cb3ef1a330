package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"weekly/internal/export/infrastructure"
	reconciledomain "weekly/internal/reconcile/domain"
)

// WeeklyFactPublisher destination SQL du fait hebdomadaire
type WeeklyFactPublisher interface {
	EnsureSchema(ctx context.Context) error
	ReplaceWeeks(ctx context.Context, facts []*reconciledomain.WeeklyFact) (int, error)
}

// PublishResult résumé d'une publication
type PublishResult struct {
	Weeks []int
	Rows  int
}

// PublishService recopie le snapshot du fait hebdomadaire dans l'entrepôt SQL
// Le CSV reste la source de vérité; la table est un miroir reconstruit semaine par semaine
type PublishService struct {
	store     *infrastructure.SnapshotStore[*reconciledomain.WeeklyFact]
	publisher WeeklyFactPublisher
	logger    *zap.Logger
}

// NewPublishService crée le service de publication
func NewPublishService(
	store *infrastructure.SnapshotStore[*reconciledomain.WeeklyFact],
	publisher WeeklyFactPublisher,
	logger *zap.Logger,
) *PublishService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishService{store: store, publisher: publisher, logger: logger}
}

// Publish publie les semaines demandées; weeks vide = toutes les semaines du snapshot
func (s *PublishService) Publish(ctx context.Context, weeks []int) (PublishResult, error) {
	facts, dropped, err := s.store.Load()
	if err != nil {
		return PublishResult{}, err
	}
	if dropped > 0 {
		s.logger.Warn("weekly fact rows skipped on load", zap.Int("dropped", dropped))
	}

	selected := filterWeeks(facts, weeks)
	if len(selected) == 0 {
		return PublishResult{}, fmt.Errorf("no weekly facts to publish for weeks %v", weeks)
	}

	if err := s.publisher.EnsureSchema(ctx); err != nil {
		return PublishResult{}, fmt.Errorf("ensure schema: %w", err)
	}
	n, err := s.publisher.ReplaceWeeks(ctx, selected)
	if err != nil {
		return PublishResult{}, err
	}

	res := PublishResult{Weeks: weeksOf(selected), Rows: n}
	s.logger.Info("weekly facts published", zap.Ints("weeks", res.Weeks), zap.Int("rows", n))
	return res, nil
}

func filterWeeks(facts []*reconciledomain.WeeklyFact, weeks []int) []*reconciledomain.WeeklyFact {
	if len(weeks) == 0 {
		return facts
	}
	keep := make(map[int]struct{}, len(weeks))
	for _, w := range weeks {
		keep[w] = struct{}{}
	}
	out := make([]*reconciledomain.WeeklyFact, 0, len(facts))
	for _, f := range facts {
		if _, ok := keep[f.Week]; ok {
			out = append(out, f)
		}
	}
	return out
}

func weeksOf(facts []*reconciledomain.WeeklyFact) []int {
	var out []int
	seen := make(map[int]struct{})
	for _, f := range facts {
		if _, ok := seen[f.Week]; ok {
			continue
		}
		seen[f.Week] = struct{}{}
		out = append(out, f.Week)
	}
	return out
}
