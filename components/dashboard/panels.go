package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Results are the snapshots available to one section render.
type Results map[Kind]Snapshot

// Stock returns the stock-data snapshot.
func (r Results) Stock() (*StockData, bool) {
	s, ok := r[KindStockData].(*StockData)
	return s, ok && s != nil
}

// Indicators returns the technical-indicators snapshot.
func (r Results) Indicators() (*TechnicalIndicators, bool) {
	s, ok := r[KindTechnicalIndicators].(*TechnicalIndicators)
	return s, ok && s != nil
}

// Signals returns the trading-signals snapshot.
func (r Results) Signals() (*TradingSignals, bool) {
	s, ok := r[KindTradingSignals].(*TradingSignals)
	return s, ok && s != nil
}

// Models returns the model-performance snapshot.
func (r Results) Models() (*ModelPerformance, bool) {
	s, ok := r[KindModelPerformance].(*ModelPerformance)
	return s, ok && s != nil
}

// Predictions returns the predictions snapshot.
func (r Results) Predictions() (*Predictions, bool) {
	s, ok := r[KindPredictions].(*Predictions)
	return s, ok && s != nil
}

// Correlation returns the correlation-matrix snapshot.
func (r Results) Correlation() (*CorrelationMatrix, bool) {
	s, ok := r[KindCorrelationMatrix].(*CorrelationMatrix)
	return s, ok && s != nil
}

// Sentiment returns the news-sentiment snapshot.
func (r Results) Sentiment() (*NewsSentiment, bool) {
	s, ok := r[KindNewsSentiment].(*NewsSentiment)
	return s, ok && s != nil
}

// PlanContext carries view settings into chart and panel builders.
type PlanContext struct {
	Company   string
	Timeframe int
	Days      int
}

// Status helpers.

// RSIStatus classifies an RSI reading.
func RSIStatus(rsi float64) string {
	switch {
	case rsi < 30:
		return "Oversold"
	case rsi > 70:
		return "Overbought"
	default:
		return "Neutral"
	}
}

// VolatilityStatus classifies daily volatility.
func VolatilityStatus(v float64) string {
	switch {
	case v > 0.05:
		return "High"
	case v < 0.02:
		return "Low"
	default:
		return "Normal"
	}
}

// RiskLevel classifies volatility for the insights panel.
func RiskLevel(v float64) string {
	switch {
	case v > 0.05:
		return "High"
	case v > 0.03:
		return "Medium"
	default:
		return "Low"
	}
}

// ModelStatus grades a model by its R² score.
func ModelStatus(r2 float64) string {
	switch {
	case r2 > 0:
		return "Excellent"
	case r2 > -0.3:
		return "Good"
	default:
		return "Average"
	}
}

// PredictionConfidence decays by ten points per forecast day.
func PredictionConfidence(index int) int {
	return max(0, 100-index*10)
}

// PredictionRisk maps a confidence percentage to a risk label.
func PredictionRisk(confidence int) string {
	switch {
	case confidence > 80:
		return "Low"
	case confidence > 60:
		return "Medium"
	default:
		return "High"
	}
}

// Recommendation derives the primary signal from RSI.
func Recommendation(rsi float64) (signal, class string) {
	switch {
	case rsi < 30:
		return "BUY", "positive"
	case rsi > 70:
		return "SELL", "negative"
	default:
		return "HOLD", "neutral"
	}
}

// Metric cards.

func currentPriceCard(res Results, _ PlanContext) (any, bool) {
	stock, ok := res.Stock()
	if !ok {
		return nil, false
	}
	return Text{Value: orPlaceholder(stock.CurrentPrice, FormatCurrency)}, true
}

func priceChangeCard(res Results, _ PlanContext) (any, bool) {
	stock, ok := res.Stock()
	if !ok {
		return nil, false
	}
	if stock.PriceChangePct == nil {
		return Text{Value: Placeholder, Class: "metric-change"}, true
	}
	pct := *stock.PriceChangePct
	return Text{Value: FormatPercent(pct), Class: "metric-change " + ChangeClass(pct)}, true
}

func volumeCard(res Results, _ PlanContext) (any, bool) {
	stock, ok := res.Stock()
	if !ok {
		return nil, false
	}
	return Text{Value: orPlaceholder(stock.Volume, FormatNumber)}, true
}

func highLowCard(res Results, _ PlanContext) (any, bool) {
	stock, ok := res.Stock()
	if !ok {
		return nil, false
	}
	return Text{Value: orPlaceholder(stock.High52w, FormatCurrency) + " / " + orPlaceholder(stock.Low52w, FormatCurrency)}, true
}

func marketCapCard(res Results, _ PlanContext) (any, bool) {
	stock, ok := res.Stock()
	if !ok {
		return nil, false
	}
	return Text{Value: orPlaceholder(stock.MarketCap, FormatCurrency)}, true
}

// Technical indicators.

func rsiValue(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	return Text{Value: orPlaceholder(ind.RSI, fixed(2))}, true
}

func rsiFill(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	if ind.RSI == nil {
		return Meter{}, true
	}
	return Meter{Percent: clamp(*ind.RSI, 0, 100)}, true
}

func rsiStatus(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	if ind.RSI == nil {
		return Text{Value: Placeholder, Class: "indicator-status"}, true
	}
	status := RSIStatus(*ind.RSI)
	return Text{Value: status, Class: "indicator-status " + strings.ToLower(status)}, true
}

func volatilityValue(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	return Text{Value: orPlaceholder(ind.Volatility, percentOf(2))}, true
}

func volatilityFill(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	if ind.Volatility == nil {
		return Meter{}, true
	}
	return Meter{Percent: clamp(*ind.Volatility*1000, 0, 100)}, true
}

func volatilityStatus(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	if ind.Volatility == nil {
		return Text{Value: Placeholder, Class: "indicator-status"}, true
	}
	status := VolatilityStatus(*ind.Volatility)
	return Text{Value: status, Class: "indicator-status " + strings.ToLower(status)}, true
}

func supportLevel(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	return Text{Value: orPlaceholder(ind.SupportLevel, FormatCurrency)}, true
}

func resistanceLevel(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	return Text{Value: orPlaceholder(ind.ResistanceLevel, FormatCurrency)}, true
}

func tradingSignalsPanel(res Results, _ PlanContext) (any, bool) {
	signals, ok := res.Signals()
	if !ok {
		return nil, false
	}
	list := SignalList{Items: make([]SignalItem, 0, len(signals.Signals))}
	for _, s := range signals.Signals {
		list.Items = append(list.Items, SignalItem{
			Type:      s.Type,
			Class:     strings.ToLower(s.Type),
			Indicator: s.Indicator,
			Strength:  s.Strength,
			Message:   s.Message,
		})
	}
	if len(list.Items) == 0 {
		list.Empty = "No active trading signals"
	}
	return list, true
}

// Analysis.

func correlationPanel(res Results, _ PlanContext) (any, bool) {
	matrix, ok := res.Correlation()
	if !ok {
		return nil, false
	}
	return BuildCorrelationGrid(matrix), true
}

// BuildCorrelationGrid renders a square matrix. Rows or columns without a label are skipped.
func BuildCorrelationGrid(m *CorrelationMatrix) CorrelationGrid {
	grid := CorrelationGrid{Labels: append([]string(nil), m.Labels...)}
	n := len(m.Labels)
	for i := 0; i < n && i < len(m.Data); i++ {
		row := make([]CorrelationCell, 0, n)
		for j := 0; j < n && j < len(m.Data[i]); j++ {
			v := m.Data[i][j]
			class := "negative"
			if v > 0 {
				class = "positive"
			}
			row = append(row, CorrelationCell{
				Row:     m.Labels[i],
				Column:  m.Labels[j],
				Value:   v,
				Text:    FormatFixed(v, 2),
				Title:   fmt.Sprintf("%s vs %s: %s", m.Labels[i], m.Labels[j], FormatFixed(v, 3)),
				Class:   class,
				Opacity: math.Abs(v),
			})
		}
		grid.Cells = append(grid.Cells, row)
	}
	return grid
}

func headlinesPanel(res Results, _ PlanContext) (any, bool) {
	sentiment, ok := res.Sentiment()
	if !ok {
		return nil, false
	}
	return Headlines{Items: append([]string(nil), sentiment.RecentHeadlines...)}, true
}

// Models.

var modelColumns = []Column{
	{Key: "model", Label: "Model", Sortable: true},
	{Key: "mse", Label: "MSE", Sortable: true},
	{Key: "mae", Label: "MAE", Sortable: true},
	{Key: "rmse", Label: "RMSE", Sortable: true},
	{Key: "r2", Label: "R²", Sortable: true},
	{Key: "mape", Label: "MAPE", Sortable: true},
	{Key: "status", Label: "Status", Sortable: true},
}

func modelPerformanceTable(res Results, _ PlanContext) (any, bool) {
	models, ok := res.Models()
	if !ok {
		return nil, false
	}
	table := Table{Columns: modelColumns, SortBy: -1}
	for i, m := range models.Models {
		status := Cell{Text: Placeholder, Badge: true, Class: "status-badge"}
		if m.R2 != nil {
			label := ModelStatus(*m.R2)
			status = Cell{Text: label, Badge: true, Class: "status-badge " + strings.ToLower(label)}
		}
		rowClass := "model-row"
		if strings.EqualFold(m.Name, "hybrid") {
			rowClass += " best-model"
		}
		table.Rows = append(table.Rows, Row{
			Index: i,
			Class: rowClass,
			Cells: []Cell{
				{Text: m.Name, Class: "model-name", Icon: modelIcon(m.Name)},
				{Text: orPlaceholder(m.MSE, fixed(2))},
				{Text: orPlaceholder(m.MAE, fixed(2))},
				{Text: orPlaceholder(m.RMSE, fixed(2))},
				{Text: orPlaceholder(m.R2, fixed(4))},
				{Text: orPlaceholder(m.MAPE, func(v float64) string { return FormatFixed(v, 2) + "%" })},
				status,
			},
		})
	}
	return table, true
}

func modelIcon(name string) string {
	switch strings.ToLower(name) {
	case "lstm":
		return "brain"
	case "arima":
		return "chart-line"
	default:
		return "trophy"
	}
}

// Predictions.

var predictionColumns = []Column{
	{Key: "date", Label: "Date", Sortable: true},
	{Key: "lstm", Label: "LSTM", Sortable: true},
	{Key: "arima", Label: "ARIMA", Sortable: true},
	{Key: "hybrid", Label: "Hybrid", Sortable: true},
	{Key: "confidence", Label: "Confidence", Sortable: true},
	{Key: "risk", Label: "Risk", Sortable: true},
}

func predictionTable(res Results, _ PlanContext) (any, bool) {
	pred, ok := res.Predictions()
	if !ok {
		return nil, false
	}
	table := Table{Columns: predictionColumns, SortBy: -1}
	for i, date := range pred.Dates {
		confidence := PredictionConfidence(i)
		risk := PredictionRisk(confidence)
		table.Rows = append(table.Rows, Row{
			Index: i,
			Cells: []Cell{
				{Text: FormatDate(date)},
				{Text: valueAt(pred.LSTM, i, FormatCurrency)},
				{Text: valueAt(pred.ARIMA, i, FormatCurrency)},
				{Text: valueAt(pred.Hybrid, i, FormatCurrency), Class: "strong"},
				{Text: strconv.Itoa(confidence) + "%"},
				{Text: risk, Badge: true, Class: "risk-badge " + strings.ToLower(risk)},
			},
		})
	}
	return table, true
}

// Data tables.

// HistoricalRows is the number of trailing days shown in the history table.
const HistoricalRows = 30

var historicalColumns = []Column{
	{Key: "date", Label: "Date", Sortable: true},
	{Key: "open", Label: "Open", Sortable: true},
	{Key: "high", Label: "High", Sortable: true},
	{Key: "low", Label: "Low", Sortable: true},
	{Key: "close", Label: "Close", Sortable: true},
	{Key: "volume", Label: "Volume", Sortable: true},
	{Key: "rsi", Label: "RSI", Sortable: true},
	{Key: "volatility", Label: "Volatility", Sortable: true},
	{Key: "change", Label: "Change %", Sortable: true},
}

func historicalTable(res Results, _ PlanContext) (any, bool) {
	stock, ok := res.Stock()
	if !ok {
		return nil, false
	}
	data := stock.ChartData
	total := len(data.Dates)
	count := min(HistoricalRows, total)
	table := Table{Columns: historicalColumns, SortBy: -1}
	for i := 0; i < count; i++ {
		idx := total - count + i
		open, change := Placeholder, FormatPercent(0)
		changeClass := ChangeClass(0)
		if idx > 0 && idx < len(data.Prices) {
			prev := data.Prices[idx-1]
			open = FormatCurrency(prev)
			if prev != 0 {
				pct := (data.Prices[idx] - prev) / prev * 100
				change = FormatPercent(pct)
				changeClass = ChangeClass(pct)
			}
		}
		rsi := Placeholder
		if idx < len(data.RSI) && data.RSI[idx] != 0 {
			rsi = FormatFixed(data.RSI[idx], 2)
		}
		table.Rows = append(table.Rows, Row{
			Index: i,
			Cells: []Cell{
				{Text: FormatDate(data.Dates[idx])},
				{Text: open},
				{Text: valueAt(data.Highs, idx, FormatCurrency)},
				{Text: valueAt(data.Lows, idx, FormatCurrency)},
				{Text: valueAt(data.Prices, idx, FormatCurrency)},
				{Text: valueAt(data.Volumes, idx, FormatNumber)},
				{Text: rsi},
				{Text: valueAt(data.Volatility, idx, percentOf(2))},
				{Text: change, Class: changeClass},
			},
		})
	}
	return table, true
}

// Insights.

func marketSummary(res Results, pc PlanContext) (any, bool) {
	stock, ok := res.Stock()
	if !ok {
		return nil, false
	}
	trend, icon := "bearish", "📉"
	if stock.PriceChangePct != nil && *stock.PriceChangePct > 0 {
		trend, icon = "bullish", "📈"
	}
	interest := "normal"
	if stock.Volume != nil && *stock.Volume > 1e8 {
		interest = "high"
	}
	items := []Insight{
		{
			Icon:  icon,
			Title: "Current Trend:",
			Body: fmt.Sprintf("%s is showing a %s trend with a %s change. Current price is %s.",
				pc.company(), trend, orPlaceholder(stock.PriceChangePct, FormatPercent), orPlaceholder(stock.CurrentPrice, FormatCurrency)),
		},
		{
			Icon:  "📊",
			Title: "Volume Analysis:",
			Body: fmt.Sprintf("Trading volume is %s, indicating %s market interest.",
				orPlaceholder(stock.Volume, FormatNumber), interest),
		},
	}
	if models, ok := res.Models(); ok {
		if best, ok := bestModel(models); ok {
			items = append(items, Insight{
				Icon:  "🏆",
				Title: "Model Outlook:",
				Body: fmt.Sprintf("%s leads with RMSE %s (R² %s).",
					best.Name, orPlaceholder(best.RMSE, fixed(2)), orPlaceholder(best.R2, fixed(4))),
			})
		}
	}
	return InsightList{Items: items}, true
}

func tradingRecommendations(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	signal, class, icon := "HOLD", "neutral", "⚖️"
	if ind.RSI != nil {
		signal, class = Recommendation(*ind.RSI)
		switch signal {
		case "BUY":
			icon = "🟢"
		case "SELL":
			icon = "🔴"
		}
	}
	items := []Insight{
		{
			Icon:       icon,
			Title:      "Primary Signal: " + signal,
			TitleClass: class,
			Body:       fmt.Sprintf("Based on RSI (%s) and current market conditions.", orPlaceholder(ind.RSI, fixed(2))),
		},
		{
			Icon:  "🎯",
			Title: "Price Targets:",
			Body: fmt.Sprintf("Support at %s, Resistance at %s.",
				orPlaceholder(ind.SupportLevel, FormatCurrency), orPlaceholder(ind.ResistanceLevel, FormatCurrency)),
		},
	}
	if signals, ok := res.Signals(); ok && len(signals.Signals) > 0 {
		parts := make([]string, 0, len(signals.Signals))
		for _, s := range signals.Signals {
			parts = append(parts, fmt.Sprintf("%s (%s)", s.Type, s.Indicator))
		}
		items = append(items, Insight{
			Icon:  "📡",
			Title: "Active Signals:",
			Body:  strings.Join(parts, ", ") + ".",
		})
	}
	return InsightList{Items: items}, true
}

func riskAnalysis(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	level, icon, advice := Placeholder, "⚡", ""
	if ind.Volatility != nil {
		level = RiskLevel(*ind.Volatility)
		switch level {
		case "High":
			icon, advice = "⚠️", "Exercise caution with position sizing."
		case "Medium":
			icon, advice = "⚡", "Moderate risk - suitable for balanced portfolios."
		default:
			icon, advice = "✅", "Low risk environment - favorable for conservative investors."
		}
	}
	stopLoss := Placeholder
	if stock, ok := res.Stock(); ok && stock.CurrentPrice != nil {
		stopLoss = FormatCurrency(*stock.CurrentPrice * 0.95)
	}
	body := fmt.Sprintf("Current volatility is %s.", orPlaceholder(ind.Volatility, percentOf(2)))
	if advice != "" {
		body += " " + advice
	}
	return InsightList{Items: []Insight{
		{Icon: icon, Title: "Risk Level: " + level, Body: body},
		{
			Icon:  "🛡️",
			Title: "Stop Loss Recommendation:",
			Body:  fmt.Sprintf("Set stop loss at %s (-5%%) to manage downside risk.", stopLoss),
		},
	}}, true
}

func keyLevels(res Results, _ PlanContext) (any, bool) {
	ind, ok := res.Indicators()
	if !ok {
		return nil, false
	}
	return InsightList{Items: []Insight{
		{
			Icon:  "🔺",
			Title: "Resistance Level: " + orPlaceholder(ind.ResistanceLevel, FormatCurrency),
			Body:  "Break above this level could signal further upside.",
		},
		{
			Icon:  "🔻",
			Title: "Support Level: " + orPlaceholder(ind.SupportLevel, FormatCurrency),
			Body:  "Watch for potential bounce or breakdown at this level.",
		},
	}}, true
}

func bestModel(m *ModelPerformance) (ModelMetrics, bool) {
	var (
		best  ModelMetrics
		found bool
	)
	for _, model := range m.Models {
		if model.RMSE == nil {
			continue
		}
		if !found || *model.RMSE < *best.RMSE {
			best, found = model, true
		}
	}
	return best, found
}

func (pc PlanContext) company() string {
	if pc.Company == "" {
		return "Tesla"
	}
	return pc.Company
}

func valueAt(values []float64, i int, format func(float64) string) string {
	if i < 0 || i >= len(values) {
		return Placeholder
	}
	return format(values[i])
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
