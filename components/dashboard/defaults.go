package dashboard

import "strconv"

// Panel bindings.
const (
	BindingCurrentPrice           = "current-price"
	BindingPriceChange            = "price-change"
	BindingCurrentVolume          = "current-volume"
	BindingHighLowRange           = "high-low-range"
	BindingMarketCap              = "market-cap"
	BindingRSIValue               = "rsi-value"
	BindingRSIFill                = "rsi-fill"
	BindingRSIStatus              = "rsi-status"
	BindingVolatilityValue        = "volatility-value"
	BindingVolatilityFill         = "volatility-fill"
	BindingVolatilityStatus       = "volatility-status"
	BindingSupportLevel           = "support-level"
	BindingResistanceLevel        = "resistance-level"
	BindingTradingSignals         = "trading-signals-container"
	BindingCorrelationHeatmap     = "correlation-heatmap"
	BindingNewsHeadlines          = "news-headlines"
	BindingModelPerformanceTable  = "model-performance-table"
	BindingPredictionTable        = "prediction-table"
	BindingHistoricalDataTable    = "historical-data-table"
	BindingMarketSummary          = "market-summary"
	BindingTradingRecommendations = "trading-recommendations"
	BindingRiskAnalysis           = "risk-analysis"
	BindingKeyLevels              = "key-levels"

	// BindingLastUpdated is stamped after every load, whatever the section.
	BindingLastUpdated = "last-updated-time"
)

// SparklinePoints is how many trailing prices the sparkline shows.
const SparklinePoints = 10

// DefaultSectionPlans returns the built-in plan for every section.
func DefaultSectionPlans() []SectionPlan {
	return []SectionPlan{
		{
			Section: SectionOverview,
			Requirements: []Requirement{
				{Kind: KindStockData, Policy: PolicyForce},
				{Kind: KindTechnicalIndicators, Policy: PolicyForce},
				{Kind: KindTradingSignals, Policy: PolicyForce},
			},
			Charts: []ChartBinding{
				{Mount: MountMainStockChart, Build: mainStockChart},
				{Mount: MountPriceSparkline, Build: priceSparkline},
			},
			Panels: []PanelBinding{
				{Binding: BindingCurrentPrice, Build: currentPriceCard},
				{Binding: BindingPriceChange, Build: priceChangeCard},
				{Binding: BindingCurrentVolume, Build: volumeCard},
				{Binding: BindingHighLowRange, Build: highLowCard},
				{Binding: BindingMarketCap, Build: marketCapCard},
				{Binding: BindingRSIValue, Build: rsiValue},
				{Binding: BindingRSIFill, Build: rsiFill},
				{Binding: BindingRSIStatus, Build: rsiStatus},
				{Binding: BindingVolatilityValue, Build: volatilityValue},
				{Binding: BindingVolatilityFill, Build: volatilityFill},
				{Binding: BindingVolatilityStatus, Build: volatilityStatus},
				{Binding: BindingSupportLevel, Build: supportLevel},
				{Binding: BindingResistanceLevel, Build: resistanceLevel},
				{Binding: BindingTradingSignals, Build: tradingSignalsPanel},
			},
		},
		{
			Section: SectionAnalysis,
			Requirements: []Requirement{
				{Kind: KindStockData, Policy: PolicyReuse},
				{Kind: KindNewsSentiment, Policy: PolicyForce},
				{Kind: KindCorrelationMatrix, Policy: PolicyForce},
			},
			Charts: []ChartBinding{
				{Mount: MountVolumeChart, Build: volumeChart},
				{Mount: MountSentimentChart, Build: sentimentChart},
			},
			Panels: []PanelBinding{
				{Binding: BindingCorrelationHeatmap, Build: correlationPanel},
				{Binding: BindingNewsHeadlines, Build: headlinesPanel},
			},
		},
		{
			Section: SectionModels,
			Requirements: []Requirement{
				{Kind: KindModelPerformance, Policy: PolicyForce},
			},
			Charts: []ChartBinding{
				{Mount: MountModelComparisonChart, Build: modelComparisonChart},
			},
			Panels: []PanelBinding{
				{Binding: BindingModelPerformanceTable, Build: modelPerformanceTable},
			},
		},
		{
			Section: SectionPredictions,
			Requirements: []Requirement{
				{Kind: KindPredictions, Policy: PolicyForce, Params: predictionParams},
			},
			Charts: []ChartBinding{
				{Mount: MountPredictionChart, Build: predictionChart},
			},
			Panels: []PanelBinding{
				{Binding: BindingPredictionTable, Build: predictionTable},
			},
		},
		{
			Section: SectionDataTables,
			Requirements: []Requirement{
				{Kind: KindStockData, Policy: PolicyReuse},
			},
			Panels: []PanelBinding{
				{Binding: BindingHistoricalDataTable, Build: historicalTable},
			},
		},
		{
			Section: SectionInsights,
			Requirements: []Requirement{
				{Kind: KindStockData, Policy: PolicyReuse},
				{Kind: KindTechnicalIndicators, Policy: PolicyForce},
				{Kind: KindTradingSignals, Policy: PolicyForce},
				{Kind: KindModelPerformance, Policy: PolicyForce},
			},
			Panels: []PanelBinding{
				{Binding: BindingMarketSummary, Build: marketSummary},
				{Binding: BindingTradingRecommendations, Build: tradingRecommendations},
				{Binding: BindingRiskAnalysis, Build: riskAnalysis},
				{Binding: BindingKeyLevels, Build: keyLevels},
			},
		},
	}
}

// DefaultBindings lists every binding owned by the default plans plus the shared stamp.
func DefaultBindings() []string {
	out := []string{BindingLastUpdated}
	for _, plan := range DefaultSectionPlans() {
		out = append(out, plan.Bindings()...)
	}
	return out
}

func predictionParams(pc PlanContext) map[string]string {
	days := pc.Days
	if days <= 0 {
		days = DefaultPredictionDays
	}
	return map[string]string{"days": strconv.Itoa(days)}
}

// Chart builders.

func mainStockChart(res Results, pc PlanContext) (Dataset, bool) {
	stock, ok := res.Stock()
	if !ok {
		return Dataset{}, false
	}
	data := stock.ChartData
	start := 0
	if pc.Timeframe > 0 && len(data.Prices) > pc.Timeframe {
		start = len(data.Prices) - pc.Timeframe
	}
	series := []Series{{Name: pc.company() + " Price", Values: tail(data.Prices, start), Smooth: true}}
	if len(data.MA10) > 0 {
		series = append(series, Series{Name: "MA 10", Values: tail(data.MA10, start), Dashed: true, Smooth: true})
	}
	if len(data.MA30) > 0 {
		series = append(series, Series{Name: "MA 30", Values: tail(data.MA30, start), Dashed: true, Smooth: true})
	}
	return Dataset{
		Type:   ChartLine,
		Title:  "Stock Price",
		Labels: formatLabels(tailStrings(data.Dates, start)),
		Series: series,
	}, true
}

func priceSparkline(res Results, _ PlanContext) (Dataset, bool) {
	stock, ok := res.Stock()
	if !ok || len(stock.ChartData.Prices) == 0 {
		return Dataset{}, false
	}
	start := max(0, len(stock.ChartData.Prices)-SparklinePoints)
	return Dataset{
		Type:    ChartLine,
		Labels:  tailStrings(stock.ChartData.Dates, start),
		Series:  []Series{{Name: "Price", Values: tail(stock.ChartData.Prices, start), Smooth: true}},
		Compact: true,
	}, true
}

func volumeChart(res Results, _ PlanContext) (Dataset, bool) {
	stock, ok := res.Stock()
	if !ok || len(stock.ChartData.Volumes) == 0 {
		return Dataset{}, false
	}
	return Dataset{
		Type:   ChartBar,
		Title:  "Trading Volume",
		Labels: formatLabels(stock.ChartData.Dates),
		Series: []Series{{Name: "Volume", Values: stock.ChartData.Volumes}},
	}, true
}

func sentimentChart(res Results, _ PlanContext) (Dataset, bool) {
	sentiment, ok := res.Sentiment()
	if !ok || len(sentiment.SentimentScores) == 0 {
		return Dataset{}, false
	}
	return Dataset{
		Type:   ChartLine,
		Title:  "News Sentiment",
		Labels: formatLabels(sentiment.Dates),
		Series: []Series{{Name: "Sentiment Score", Values: sentiment.SentimentScores, Smooth: true}},
		YMin:   Float(-1),
		YMax:   Float(1),
	}, true
}

func modelComparisonChart(res Results, _ PlanContext) (Dataset, bool) {
	models, ok := res.Models()
	if !ok || len(models.Models) == 0 {
		return Dataset{}, false
	}
	labels := make([]string, 0, len(models.Models))
	mse := make([]float64, 0, len(models.Models))
	mae := make([]float64, 0, len(models.Models))
	r2 := make([]float64, 0, len(models.Models))
	for _, m := range models.Models {
		labels = append(labels, m.Name)
		mse = append(mse, valueOr(m.MSE, 0))
		mae = append(mae, valueOr(m.MAE, 0))
		r2 = append(r2, valueOr(m.R2, 0))
	}
	return Dataset{
		Type:   ChartBar,
		Title:  "Model Comparison",
		Labels: labels,
		Series: []Series{
			{Name: "MSE", Values: mse},
			{Name: "MAE", Values: mae},
			{Name: "R²", Values: r2, Axis: 1},
		},
		SecondAxis: "R²",
	}, true
}

func predictionChart(res Results, _ PlanContext) (Dataset, bool) {
	pred, ok := res.Predictions()
	if !ok || len(pred.Dates) == 0 {
		return Dataset{}, false
	}
	series := []Series{
		{Name: "LSTM", Values: pred.LSTM, Smooth: true},
		{Name: "ARIMA", Values: pred.ARIMA, Smooth: true},
		{Name: "Hybrid", Values: pred.Hybrid, Smooth: true},
	}
	if len(pred.ConfidenceIntervals.Upper) > 0 {
		series = append(series, Series{Name: "Upper CI", Values: pred.ConfidenceIntervals.Upper, Dashed: true})
	}
	if len(pred.ConfidenceIntervals.Lower) > 0 {
		series = append(series, Series{Name: "Lower CI", Values: pred.ConfidenceIntervals.Lower, Dashed: true})
	}
	return Dataset{
		Type:   ChartLine,
		Title:  "Price Predictions",
		Labels: formatLabels(pred.Dates),
		Series: series,
	}, true
}

func formatLabels(dates []string) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		if t, ok := parseDate(d); ok {
			out[i] = t.Format("Jan 2")
			continue
		}
		out[i] = d
	}
	return out
}

func tail(values []float64, start int) []float64 {
	if start <= 0 {
		return values
	}
	if start >= len(values) {
		return nil
	}
	return values[start:]
}

func tailStrings(values []string, start int) []string {
	if start <= 0 {
		return values
	}
	if start >= len(values) {
		return nil
	}
	return values[start:]
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
