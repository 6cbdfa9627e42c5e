package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/repositories"
	"ordem-servico/internal/statusflow"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"
	"ordem-servico/pkg/utils"

	"go.uber.org/zap"
)

const (
	dashboardCacheKey = "dashboard:summary"
	dashboardCacheTTL = 30 * time.Second
)

type DashboardServiceInterface interface {
	Summary(ctx context.Context) (*dto.DashboardStatsDTO, error)
}

type DashboardService struct {
	*BaseService
	repo     repositories.DashboardRepositoryInterface
	settings SettingsServiceInterface
	logger   *zap.Logger
}

func NewDashboardService(
	repo repositories.DashboardRepositoryInterface,
	settings SettingsServiceInterface,
	cache repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		BaseService: NewBaseService(cache, logger),
		repo:        repo,
		settings:    settings,
		logger:      logger,
	}
}

func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	var cached dto.DashboardStatsDTO
	if s.CacheGet(ctx, dashboardCacheKey, &cached) {
		return &cached, nil
	}

	now := time.Now()
	var (
		wg        sync.WaitGroup
		kpis      *types.DashboardKPIs
		cntStatus []types.DashboardCountByGroup
		lastAct   []types.DashboardActivityItem

		errs []error
		mu   sync.Mutex
	)

	addTask := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	addTask(func() (err error) { kpis, err = s.repo.GetKPIs(ctx, now); return })
	addTask(func() (err error) { cntStatus, err = s.repo.GetCountByStatus(ctx); return })
	addTask(func() (err error) { lastAct, err = s.repo.GetLastActivity(ctx); return })

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("Erro ao carregar o painel", zap.Error(errs[0]))
		return nil, apperrors.NewHttpError(http.StatusInternalServerError, "Erro ao carregar o painel", errs[0], nil)
	}

	// все статусы в порядке графа, даже с нулём
	flow := s.settings.StatusFlow(ctx)
	counts := make(map[string]int64, len(cntStatus))
	for _, c := range cntStatus {
		counts[c.Key] = c.Count
	}
	byStatus := make([]types.DashboardCountByGroup, 0, len(statusflow.All))
	for _, st := range statusflow.All {
		byStatus = append(byStatus, types.DashboardCountByGroup{
			Key:   st.String(),
			Label: flow.Label(st),
			Count: counts[st.String()],
		})
	}

	out := &dto.DashboardStatsDTO{
		KPIs:          kpis,
		CountByStatus: byStatus,
		LastActivity:  lastAct,
		GeneratedAt:   utils.FormatDateTimeBR(now),
	}
	s.CacheSet(ctx, dashboardCacheKey, out, dashboardCacheTTL)
	return out, nil
}
