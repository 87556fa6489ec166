package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CHART DATA (Графики дашборда)
// ══════════════════════════════════════════════════════════════════════════════

// Размеры окон графиков.
const (
	// WeeklyChartDays - недельный график: последние 7 календарных дней.
	WeeklyChartDays = 7
	// MonthlyChartMonths - месячный график: последние 12 месяцев.
	MonthlyChartMonths = 12
)

// chartsCacheTTL - время жизни закешированных графиков.
const chartsCacheTTL = 5 * time.Minute

// viewCharts - ключ представления в кеше статистики.
const viewCharts = "charts"

// Period - запрошенный набор графиков.
type Period string

const (
	// PeriodWeekly - только недельный график.
	PeriodWeekly Period = "weekly"
	// PeriodMonthly - только месячный график.
	PeriodMonthly Period = "monthly"
	// PeriodBoth - оба графика.
	PeriodBoth Period = "both"
)

// ChartPoint - одна корзина гистограммы.
type ChartPoint struct {
	// Label - короткая подпись корзины ("Mon", "Jan 2026").
	Label string `json:"label"`

	// Value - количество сессий в корзине.
	Value int `json:"value"`
}

// ChartData - данные графиков. Корзины упорядочены хронологически
// по возрастанию; пустые корзины присутствуют со значением 0.
type ChartData struct {
	Weekly  []ChartPoint `json:"weekly,omitempty"`
	Monthly []ChartPoint `json:"monthly,omitempty"`
}

// GetChartDataHandler отвечает на запрос графиков.
type GetChartDataHandler struct {
	store progress.Store
	cache progress.StatsCache
	clock timeutil.Clock
	log   *logger.Logger
}

// NewGetChartDataHandler создаёт обработчик. Кеш опционален.
func NewGetChartDataHandler(store progress.Store, cache progress.StatsCache, clock timeutil.Clock, log *logger.Logger) *GetChartDataHandler {
	return &GetChartDataHandler{store: store, cache: cache, clock: clock, log: log}
}

// Handle возвращает графики пользователя за указанный период.
// Пустой период трактуется как PeriodBoth.
func (h *GetChartDataHandler) Handle(ctx context.Context, userID string, period Period) (*ChartData, error) {
	if userID == "" {
		return nil, shared.ErrEmptyUserID
	}
	if period == "" {
		period = PeriodBoth
	}
	if period != PeriodWeekly && period != PeriodMonthly && period != PeriodBoth {
		return nil, shared.NewDomainError("progress", "GetChartData",
			shared.ErrInvalidInput, "unknown chart period")
	}

	// Корзины привязаны к текущей дате UTC, поэтому ключ кеша включает её:
	// запись, закешированная до полуночи, не должна пережить смену дня.
	now := h.clock.Now()
	view := chartsView(now)

	full := h.fromCache(ctx, userID, view)
	if full == nil {
		record, err := loadOrZero(ctx, h.store, userID)
		if err != nil {
			return nil, err
		}
		full = &ChartData{
			Weekly:  weeklyChart(record, now),
			Monthly: monthlyChart(record, now),
		}
		h.toCache(ctx, userID, view, full)
	}

	switch period {
	case PeriodWeekly:
		return &ChartData{Weekly: full.Weekly}, nil
	case PeriodMonthly:
		return &ChartData{Monthly: full.Monthly}, nil
	default:
		return full, nil
	}
}

// weeklyChart строит гистограмму по 7 последним календарным дням,
// заканчивая сегодняшним. Дни без сессий присутствуют с нулём.
func weeklyChart(record *progress.GamificationRecord, now time.Time) []ChartPoint {
	points := make([]ChartPoint, 0, WeeklyChartDays)
	for i := WeeklyChartDays - 1; i >= 0; i-- {
		day := timeutil.DateOf(now).AddDate(0, 0, -i)
		points = append(points, ChartPoint{
			Label: timeutil.WeekdayLabel(day),
			Value: record.SessionsOnDay(day),
		})
	}
	return points
}

// monthlyChart строит гистограмму по 12 последним календарным месяцам,
// заканчивая текущим. Месяцы без сессий присутствуют с нулём.
func monthlyChart(record *progress.GamificationRecord, now time.Time) []ChartPoint {
	counts := make(map[string]int, MonthlyChartMonths)
	for _, s := range record.SessionHistory {
		counts[timeutil.MonthKey(s.Timestamp)]++
	}

	points := make([]ChartPoint, 0, MonthlyChartMonths)
	for i := MonthlyChartMonths - 1; i >= 0; i-- {
		month := timeutil.StartOfMonth(now).AddDate(0, -i, 0)
		points = append(points, ChartPoint{
			Label: timeutil.MonthLabel(month),
			Value: counts[timeutil.MonthKey(month)],
		})
	}
	return points
}

// chartsView возвращает ключ представления графиков, датированный
// текущим днём UTC.
func chartsView(now time.Time) string {
	return viewCharts + ":" + timeutil.DateOf(now).Format("2006-01-02")
}

// fromCache пытается достать полные графики из кеша.
func (h *GetChartDataHandler) fromCache(ctx context.Context, userID, view string) *ChartData {
	if h.cache == nil {
		return nil
	}
	payload, err := h.cache.Get(ctx, userID, view)
	if err != nil {
		return nil
	}
	var data ChartData
	if err := json.Unmarshal(payload, &data); err != nil {
		h.log.Warn("corrupt charts cache entry", logger.UserID(userID), logger.Err(err))
		return nil
	}
	return &data
}

// toCache кладёт полные графики в кеш, best effort.
func (h *GetChartDataHandler) toCache(ctx context.Context, userID, view string, data *ChartData) {
	if h.cache == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, userID, view, payload, chartsCacheTTL); err != nil {
		h.log.Debug("failed to cache charts", logger.UserID(userID), logger.Err(err))
	}
}
