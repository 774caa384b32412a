package analysis

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/brvalue/fleuriet/internal/clients/marketdata"
	"github.com/brvalue/fleuriet/internal/config"
	"github.com/brvalue/fleuriet/internal/domain"
	"github.com/brvalue/fleuriet/internal/modules/fleuriet"
	"github.com/brvalue/fleuriet/internal/modules/portfolio"
	"github.com/brvalue/fleuriet/internal/modules/ranking"
	"github.com/brvalue/fleuriet/internal/modules/reclassification"
	"github.com/brvalue/fleuriet/internal/modules/risk"
	"github.com/brvalue/fleuriet/internal/modules/universe"
	"github.com/brvalue/fleuriet/internal/modules/valuation"
	"github.com/brvalue/fleuriet/internal/utils"
)

// benchmarkTicker is the index the beta regression runs against.
const benchmarkTicker = "IBOV"

// RateSource supplies the risk-free rate for one run, falling back to a
// static default when the upstream is unreachable.
type RateSource interface {
	SelicRateOrDefault(ctx context.Context, fallback float64) float64
}

// Service runs the batch analysis across the company universe.
type Service struct {
	companies  *universe.CompanyRepository
	statements *universe.StatementRepository
	prices     *universe.PriceRepository
	provider   marketdata.Provider
	rates      RateSource
	rankingSvc *ranking.Service
	allocator  *portfolio.Allocator
	results    *Repository
	cfg        *config.Config
	log        zerolog.Logger

	excluded map[string]bool
}

// NewService wires the batch orchestrator.
func NewService(
	companies *universe.CompanyRepository,
	statements *universe.StatementRepository,
	prices *universe.PriceRepository,
	provider marketdata.Provider,
	rates RateSource,
	rankingSvc *ranking.Service,
	allocator *portfolio.Allocator,
	results *Repository,
	cfg *config.Config,
	log zerolog.Logger,
) *Service {
	excluded := make(map[string]bool, len(cfg.ExcludedTickers))
	for _, ticker := range cfg.ExcludedTickers {
		excluded[ticker] = true
	}

	return &Service{
		companies:  companies,
		statements: statements,
		prices:     prices,
		provider:   provider,
		rates:      rates,
		rankingSvc: rankingSvc,
		allocator:  allocator,
		results:    results,
		cfg:        cfg,
		log:        log.With().Str("component", "analysis").Logger(),
		excluded:   excluded,
	}
}

// Run executes one full batch. Companies are processed sequentially; a
// single company's failure never aborts the run. Ranking, clustering and
// allocation run only after the whole collection is processed, since
// scaling and clustering must be fit on the full set.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Rankings:  make(map[string][]ranking.Entry),
	}

	log := s.log.With().Str("run_id", result.RunID).Logger()
	log.Info().Msg("Starting analysis run")
	timer := utils.NewTimer("analysis_run", log)
	defer timer.Stop()

	companies, err := s.companies.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	// Run-scoped fetches: risk-free rate and benchmark history are
	// resolved once, never per company.
	provider := marketdata.NewRunCache(s.provider)
	result.RiskFreeRate = s.rates.SelicRateOrDefault(ctx, s.cfg.Valuation.RiskFreeDefault)

	betaStart := time.Now().UTC().AddDate(-s.cfg.Valuation.BetaLookbackYears, 0, 0)
	benchmark, err := provider.History(ctx, benchmarkTicker, betaStart)
	if err != nil {
		log.Warn().Err(err).Msg("Benchmark history unavailable, betas default to 1.0")
	}
	benchmarkCloses := marketdata.Closes(benchmark)

	calculator := valuation.NewCalculator(valuation.Params{
		TaxRate:           s.cfg.Valuation.TaxRate,
		RiskFreeRate:      result.RiskFreeRate,
		MarketRiskPremium: s.cfg.Valuation.MarketRiskPremium,
		PerpetuityGrowth:  s.cfg.Valuation.PerpetuityGrowth,
	})

	var metrics []ranking.CompanyMetrics
	for i, company := range companies {
		if s.excluded[company.Ticker] {
			log.Debug().Str("ticker", company.Ticker).Msg("Ticker excluded from analysis")
			continue
		}

		// Pace external fetches to stay under upstream rate limits
		if i > 0 && s.cfg.Fetch.PacingDelay > 0 {
			select {
			case <-time.After(s.cfg.Fetch.PacingDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		analysis, companyMetrics, failure := s.analyzeCompany(ctx, provider, calculator, company, benchmarkCloses, betaStart)
		if failure != nil {
			log.Warn().
				Str("ticker", failure.Ticker).
				Str("stage", failure.Stage).
				Str("reason", failure.Reason).
				Msg("Company excluded from run")
			result.Failures = append(result.Failures, *failure)
			continue
		}

		result.Companies = append(result.Companies, *analysis)
		metrics = append(metrics, *companyMetrics)
	}

	if len(result.Companies) == 0 {
		result.Status = StatusEmpty
		result.Reason = emptyReason(len(companies), len(result.Failures))
		result.FinishedAt = time.Now().UTC()
		log.Warn().Str("reason", result.Reason).Msg("Analysis run produced no companies")
		return result, s.persist(result)
	}

	// Barrier: the full collection is required from here on
	s.aggregate(result, metrics)

	result.Status = StatusCompleted
	result.FinishedAt = time.Now().UTC()

	s.logFootprint(log)
	log.Info().
		Int("companies", len(result.Companies)).
		Int("failures", len(result.Failures)).
		Dur("elapsed", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Analysis run completed")

	return result, s.persist(result)
}

// analyzeCompany runs the per-company pipeline. Exactly one of the
// returns is non-nil alongside its pair: (analysis, metrics) on success,
// failure otherwise.
func (s *Service) analyzeCompany(
	ctx context.Context,
	provider marketdata.Provider,
	calculator *valuation.Calculator,
	company domain.Company,
	benchmarkCloses []float64,
	betaStart time.Time,
) (*CompanyAnalysis, *ranking.CompanyMetrics, *Failure) {
	companyID, err := s.companies.IDByTicker(company.Ticker)
	if err != nil {
		return nil, nil, &Failure{Ticker: company.Ticker, Stage: StageStatements, Reason: err.Error()}
	}

	dates, err := s.statements.ReferenceDates(companyID)
	if err != nil {
		return nil, nil, &Failure{Ticker: company.Ticker, Stage: StageStatements, Reason: err.Error()}
	}
	if len(dates) == 0 {
		return nil, nil, &Failure{Ticker: company.Ticker, Stage: StageStatements, Reason: "no statement periods available"}
	}

	analysis := &CompanyAnalysis{Ticker: company.Ticker, Sector: company.Sector}

	var latestPeriod reclassification.ReclassifiedPeriod
	for i, date := range dates {
		rows, err := s.statements.RowsForPeriod(companyID, date)
		if err != nil {
			return nil, nil, &Failure{Ticker: company.Ticker, Stage: StageStatements, Reason: err.Error()}
		}
		period := reclassification.ReclassifyPeriod(rows)
		analysis.Periods = append(analysis.Periods, fleuriet.Calculate(period))
		if i == 0 {
			latestPeriod = period
		}
	}

	analysis.Risk = risk.Classify(latestPeriod, analysis.Periods[0])

	quote, err := provider.Snapshot(ctx, company.Ticker)
	if err != nil {
		return nil, nil, &Failure{Ticker: company.Ticker, Stage: StageMarketData, Reason: err.Error()}
	}
	if quote.MarketCap <= 0 {
		return nil, nil, &Failure{Ticker: company.Ticker, Stage: StageValuation, Reason: "market capitalization not positive"}
	}

	beta := valuation.EstimateBeta(s.stockCloses(ctx, provider, company.Ticker, betaStart), benchmarkCloses)

	data := buildFinancialData(company, latestPeriod, quote)
	analysis.Valuation = calculator.Calculate(data, beta)

	metrics := ranking.CompanyMetrics{
		Ticker:          company.Ticker,
		Sector:          company.Sector,
		EVAPct:          analysis.Valuation.EVAPct,
		EFVPct:          analysis.Valuation.EFVPct,
		UpsidePct:       analysis.Valuation.UpsidePct,
		ROIC:            analysis.Valuation.ROIC,
		Liquidity:       analysis.Periods[0].ILD,
		PresentWealth:   analysis.Valuation.PresentWealth,
		FutureWealth:    analysis.Valuation.FutureWealth,
		EVA:             analysis.Valuation.EVA,
		CapitalEmployed: analysis.Valuation.CapitalEmployed,
	}

	return analysis, &metrics, nil
}

// stockCloses loads the local price history for beta estimation, falling
// back to the provider when the local store has too little history.
func (s *Service) stockCloses(ctx context.Context, provider marketdata.Provider, ticker string, from time.Time) []float64 {
	closes, err := s.prices.ClosesSince(ticker, from)
	if err == nil && len(closes) > 0 {
		return closes
	}

	points, err := provider.History(ctx, ticker, from)
	if err != nil {
		s.log.Debug().Str("ticker", ticker).Err(err).Msg("No price history for beta, using default")
		return nil
	}
	return marketdata.Closes(points)
}

// buildFinancialData merges the reclassified fundamentals with the market
// snapshot into the valuation input.
func buildFinancialData(company domain.Company, period reclassification.ReclassifiedPeriod, quote marketdata.Quote) domain.CompanyFinancialData {
	return domain.CompanyFinancialData{
		Company:           company,
		MarketCap:         quote.MarketCap,
		StockPrice:        quote.Price,
		SharesOutstanding: quote.SharesOutstanding,
		Revenue:           period.Revenue,
		EBIT:              period.EBIT,
		NetIncome:         period.NetIncome,
		PretaxIncome:      period.PretaxIncome,
		IncomeTax:         period.IncomeTax,
		FinancialExpenses: period.FinancialExpenses,
		TotalAssets:       period.TotalAssets,
		NonCurrentAssets:  period.NonCurrentAssets,
		TotalDebt:         quote.TotalDebt,
		Equity:            period.Equity,
		Cash:              quote.Cash,
		Receivables:       period.Receivables,
		Inventory:         period.Inventory,
		Payables:          period.Payables,
		CollectedAt:       quote.CollectedAt,
	}
}

func (s *Service) rankingCriteria() ranking.Criteria {
	return ranking.Criteria{
		ValueCreation: s.cfg.Ranking.ValueCreation,
		FutureValue:   s.cfg.Ranking.FutureValue,
		Upside:        s.cfg.Ranking.Upside,
		Profitability: s.cfg.Ranking.Profitability,
		Liquidity:     s.cfg.Ranking.Liquidity,
	}
}

// aggregate computes the collection-level outputs over the analyzed
// companies: composite and per-metric rankings, sector rankings,
// opportunity buckets, clusters, allocation and summary statistics.
func (s *Service) aggregate(result *Result, metrics []ranking.CompanyMetrics) {
	if result.Rankings == nil {
		result.Rankings = make(map[string][]ranking.Entry)
	}
	result.Composite = s.rankingSvc.CompositeRanking(metrics, s.rankingCriteria())
	for _, metric := range []string{ranking.MetricEVAPct, ranking.MetricEFVPct, ranking.MetricUpsidePct, ranking.MetricROIC} {
		result.Rankings[metric] = s.rankingSvc.RankBy(metrics, metric)
	}
	result.SectorRanks = s.rankingSvc.SectorRankings(metrics)
	result.Opportunities = s.rankingSvc.FindOpportunities(metrics)
	result.Clusters = s.rankingSvc.Cluster(metrics)
	result.Allocation = s.allocator.Allocate(metrics)
	result.Summary = summarize(metrics, result.Rankings, len(result.Failures))
}

// Hydrate recomputes the collection-level outputs of a persisted run.
// Storage keeps per-company payloads only; everything above the company
// level is derived, so it is rebuilt on read.
func (s *Service) Hydrate(result *Result) {
	if result == nil || len(result.Companies) == 0 {
		return
	}
	s.aggregate(result, MetricsFrom(result))
}

// MetricsFrom rebuilds the ranking inputs from a run's companies.
func MetricsFrom(result *Result) []ranking.CompanyMetrics {
	metrics := make([]ranking.CompanyMetrics, 0, len(result.Companies))
	for _, company := range result.Companies {
		m := ranking.CompanyMetrics{
			Ticker:          company.Ticker,
			Sector:          company.Sector,
			EVAPct:          company.Valuation.EVAPct,
			EFVPct:          company.Valuation.EFVPct,
			UpsidePct:       company.Valuation.UpsidePct,
			ROIC:            company.Valuation.ROIC,
			PresentWealth:   company.Valuation.PresentWealth,
			FutureWealth:    company.Valuation.FutureWealth,
			EVA:             company.Valuation.EVA,
			CapitalEmployed: company.Valuation.CapitalEmployed,
		}
		if len(company.Periods) > 0 {
			m.Liquidity = company.Periods[0].ILD
		}
		metrics = append(metrics, m)
	}
	return metrics
}

// summarize computes headline statistics over the analyzed collection.
// The best-by-metric tickers come straight off the heads of the rankings.
func summarize(metrics []ranking.CompanyMetrics, rankings map[string][]ranking.Entry, failed int) Summary {
	summary := Summary{
		CompaniesAnalyzed: len(metrics),
		CompaniesFailed:   failed,
	}

	var evaSum, efvSum, upSum float64
	var evaN, efvN, upN int
	for _, m := range metrics {
		if eva, ok := m.EVAPct.Float(); ok {
			evaSum += eva
			evaN++
			if eva > 0 {
				summary.PositiveEVA++
			}
		}
		if efv, ok := m.EFVPct.Float(); ok {
			efvSum += efv
			efvN++
			if efv > 0 {
				summary.PositiveEFV++
			}
		}
		if up, ok := m.UpsidePct.Float(); ok {
			upSum += up
			upN++
		}
	}
	if evaN > 0 {
		summary.AvgEVAPct = evaSum / float64(evaN)
	}
	if efvN > 0 {
		summary.AvgEFVPct = efvSum / float64(efvN)
	}
	if upN > 0 {
		summary.AvgUpsidePct = upSum / float64(upN)
	}

	if entries := rankings[ranking.MetricEVAPct]; len(entries) > 0 {
		summary.BestEVA = entries[0].Ticker
	}
	if entries := rankings[ranking.MetricEFVPct]; len(entries) > 0 {
		summary.BestEFV = entries[0].Ticker
	}
	if entries := rankings[ranking.MetricUpsidePct]; len(entries) > 0 {
		summary.BestUpside = entries[0].Ticker
	}

	return summary
}

// emptyReason explains why a run produced no companies.
func emptyReason(total, failed int) string {
	switch {
	case total == 0:
		return "no companies registered"
	case failed == total:
		return fmt.Sprintf("all %d companies failed", total)
	default:
		return "all companies excluded or failed"
	}
}

// persist stores the run, tolerating a nil repository (used by tests and
// one-off runs).
func (s *Service) persist(result *Result) error {
	if s.results == nil {
		return nil
	}
	if err := s.results.SaveRun(result); err != nil {
		return fmt.Errorf("failed to persist run %s: %w", result.RunID, err)
	}
	return nil
}

// logFootprint records the process memory footprint after a batch.
func (s *Service) logFootprint(log zerolog.Logger) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		log.Debug().Uint64("rss_mb", memInfo.RSS/1024/1024).Msg("Process memory after run")
	}
}
