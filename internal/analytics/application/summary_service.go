package application

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"weekly/internal/analytics/domain"
	reconciledomain "weekly/internal/reconcile/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// SummaryTTL durée de vie d'une synthèse en cache
const SummaryTTL = 5 * time.Minute

// topModelsLimit nombre de models retenus dans le classement
const topModelsLimit = 10

// SnapshotSource lecture d'un snapshot CSV
type SnapshotSource[T any] interface {
	Path() string
	Load() ([]T, int, error)
}

// SummaryService calcule la synthèse d'une semaine à partir des snapshots publiés
type SummaryService struct {
	weekly   SnapshotSource[*reconciledomain.WeeklyFact]
	sales    SnapshotSource[reconciledomain.SalesRow]
	cache    sharedinfra.Cache
	cacheTTL time.Duration
}

// NewSummaryService crée le service; cache peut être nil
func NewSummaryService(
	weekly SnapshotSource[*reconciledomain.WeeklyFact],
	sales SnapshotSource[reconciledomain.SalesRow],
	cache sharedinfra.Cache,
) *SummaryService {
	return &SummaryService{
		weekly:   weekly,
		sales:    sales,
		cache:    cache,
		cacheTTL: SummaryTTL,
	}
}

// Summarize retourne la synthèse d'une semaine; week 0 = dernière semaine du fait hebdomadaire
func (s *SummaryService) Summarize(ctx context.Context, week int) (*domain.WeeklySummary, error) {
	cacheKey := s.buildCacheKey(week)
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey); found {
			return cached.(*domain.WeeklySummary), nil
		}
	}

	facts, _, err := s.weekly.Load()
	if err != nil {
		return nil, err
	}
	if week == 0 {
		week = latestWeek(facts)
	}
	if week == 0 {
		return nil, fmt.Errorf("no weekly facts in %s", s.weekly.Path())
	}
	facts = factsOfWeek(facts, week)

	summary, err := s.calculate(ctx, week, facts)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(cacheKey, summary, s.cacheTTL)
	}
	return summary, nil
}

// calculate lance les agrégations indépendantes en parallèle
func (s *SummaryService) calculate(ctx context.Context, week int, facts []*reconciledomain.WeeklyFact) (*domain.WeeklySummary, error) {
	summary := domain.NewWeeklySummary(week)
	var wg sync.WaitGroup
	errChan := make(chan error, 1)

	var total domain.Totals
	for _, f := range facts {
		total = total.Add(factTotals(f))
	}
	summary.SetTotals(total)

	wg.Add(3)
	go func() {
		defer wg.Done()
		summary.SetBrandStats(groupFacts(facts, func(f *reconciledomain.WeeklyFact) string { return f.Brand }, 0))
	}()
	go func() {
		defer wg.Done()
		summary.SetCategoryStats(groupFacts(facts, func(f *reconciledomain.WeeklyFact) string { return f.Category.L0 }, 0))
	}()
	go func() {
		defer wg.Done()
		models := make([]*reconciledomain.WeeklyFact, 0, len(facts))
		for _, f := range facts {
			if f.Model != reconciledomain.SBModel {
				models = append(models, f)
			}
		}
		summary.SetTopModels(groupFacts(models, func(f *reconciledomain.WeeklyFact) string { return f.Model }, topModelsLimit))
	}()

	if s.sales != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, _, err := s.sales.Load()
			if err != nil {
				errChan <- fmt.Errorf("sales snapshot: %w", err)
				return
			}
			summary.SetChannelStats(channelStats(rows, week))
		}()
	}

	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return summary, nil
}

// buildCacheKey inclut la date de modification des snapshots: un nouveau run invalide la synthèse
func (s *SummaryService) buildCacheKey(week int) string {
	b := sharedinfra.NewCacheKeyBuilder().Add("summary").AddInt(int64(week)).Add(s.weekly.Path()).AddInt(modTime(s.weekly.Path()))
	if s.sales != nil {
		b.Add(s.sales.Path()).AddInt(modTime(s.sales.Path()))
	}
	return b.Build()
}

// InvalidateCache retire la synthèse d'une semaine du cache
func (s *SummaryService) InvalidateCache(week int) {
	if s.cache != nil {
		s.cache.Delete(s.buildCacheKey(week))
	}
}

func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

func factTotals(f *reconciledomain.WeeklyFact) domain.Totals {
	return domain.Totals{GMV: f.GMV, Units: f.Units, Spend: f.Spend, AttributedSales: f.AttributedSales}
}

func latestWeek(facts []*reconciledomain.WeeklyFact) int {
	latest := 0
	for _, f := range facts {
		if f.Week > latest {
			latest = f.Week
		}
	}
	return latest
}

func factsOfWeek(facts []*reconciledomain.WeeklyFact, week int) []*reconciledomain.WeeklyFact {
	out := make([]*reconciledomain.WeeklyFact, 0, len(facts))
	for _, f := range facts {
		if f.Week == week {
			out = append(out, f)
		}
	}
	return out
}

// groupFacts cumule par clé, trié par GMV décroissant puis par nom; limit 0 = tous
func groupFacts(facts []*reconciledomain.WeeklyFact, key func(*reconciledomain.WeeklyFact) string, limit int) []*domain.GroupStats {
	sums := make(map[string]domain.Totals)
	for _, f := range facts {
		k := key(f)
		sums[k] = sums[k].Add(factTotals(f))
	}
	return rank(sums, limit)
}

func channelStats(rows []reconciledomain.SalesRow, week int) []*domain.GroupStats {
	sums := make(map[string]domain.Totals)
	for _, r := range rows {
		if r.Week != week {
			continue
		}
		sums[r.Channel] = sums[r.Channel].Add(domain.Totals{GMV: r.GrossSales, Units: r.Units})
	}
	return rank(sums, 0)
}

func rank(sums map[string]domain.Totals, limit int) []*domain.GroupStats {
	out := make([]*domain.GroupStats, 0, len(sums))
	for name, t := range sums {
		out = append(out, domain.NewGroupStats(name, t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Totals().GMV != out[j].Totals().GMV {
			return out[i].Totals().GMV > out[j].Totals().GMV
		}
		return out[i].Name() < out[j].Name()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
