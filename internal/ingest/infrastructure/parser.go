package infrastructure

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"weekly/internal/config"
	"weekly/internal/ingest/domain"
	shareddomain "weekly/internal/shared/domain"
	"weekly/internal/shared/infrastructure"
)

// Parser extrait les lignes structurées de chaque forme de tableur
// Une erreur retournée est fatale au fichier; le reste passe par issues
type Parser struct {
	aliases infrastructure.AliasTable
	logger  *zap.Logger
}

// NewParser crée un parseur avec une table d'alias
func NewParser(aliases infrastructure.AliasTable, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{aliases: aliases, logger: logger}
}

// AmazonSales lit la première feuille d'amazon_sales.xlsx (grain Model)
func (p *Parser) AmazonSales(src domain.Source, issues *shareddomain.Issues) ([]domain.AmazonModelRow, error) {
	issues = ensure(issues)
	table, err := infrastructure.ReadFirstSheet(src.Path)
	if err != nil {
		return nil, err
	}
	r := newSheetReader(table, p.aliases, issues, src)
	modelIdx, err := r.identity(config.FieldAmazonModel)
	if err != nil {
		return nil, err
	}
	unitsIdx := r.metric(config.FieldAmazonUnits)
	salesIdx := r.metric(config.FieldAmazonSales)

	rows := make([]domain.AmazonModelRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		model, ok := shareddomain.NormalizeModel(r.text(row, modelIdx))
		if !ok {
			r.dropRow(config.FieldAmazonModel, "blank model")
			continue
		}
		rows = append(rows, domain.AmazonModelRow{
			Model: model,
			Units: r.number(row, unitsIdx),
			Sales: r.number(row, salesIdx),
		})
	}
	r.flush()
	p.logger.Debug("amazon sales parsed", zap.String("path", src.Path), zap.Int("rows", len(rows)))
	return rows, nil
}

// OtherChannels lit other_channels.xlsx: une feuille par canal, grain SKU
// Une feuille sans colonne SKU est ignorée avec un incident
func (p *Parser) OtherChannels(src domain.Source, issues *shareddomain.Issues) ([]domain.ChannelSKURow, error) {
	issues = ensure(issues)
	wb, err := infrastructure.OpenWorkbook(src.Path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	var rows []domain.ChannelSKURow
	for _, name := range wb.SheetNames() {
		table, err := wb.Sheet(name)
		if err != nil {
			issues.Add(fileIssue(src, name, shareddomain.SeverityFatalFile, err))
			continue
		}
		if table.Empty() {
			continue
		}
		r := newSheetReader(table, p.aliases, issues, src)
		skuIdx, err := r.identity(config.FieldChannelSKU)
		if err != nil {
			issues.Add(fileIssue(src, table.Sheet, shareddomain.SeverityFatalFile, err))
			p.logger.Warn("channel sheet skipped", zap.String("path", src.Path), zap.String("sheet", table.Sheet), zap.Error(err))
			continue
		}
		qtyIdx := r.metric(config.FieldChannelQty)
		amountIdx := r.metric(config.FieldChannelAmount)
		channel := strings.TrimSpace(table.Sheet)

		for _, row := range table.Rows {
			sku, ok := shareddomain.NormalizeSKU(r.text(row, skuIdx))
			if !ok {
				r.dropRow(config.FieldChannelSKU, "blank sku")
				continue
			}
			rows = append(rows, domain.ChannelSKURow{
				Channel: channel,
				SKU:     sku,
				Units:   r.number(row, qtyIdx),
				Sales:   r.number(row, amountIdx),
			})
		}
		r.flush()
	}
	return rows, nil
}

// BusinessReport lit business_report_week<N>.xlsx (grain ASIN enfant)
func (p *Parser) BusinessReport(src domain.Source, issues *shareddomain.Issues) ([]domain.BusinessRow, error) {
	issues = ensure(issues)
	table, err := infrastructure.ReadFirstSheet(src.Path)
	if err != nil {
		return nil, err
	}
	r := newSheetReader(table, p.aliases, issues, src)
	asinIdx, err := r.identity(config.FieldBusinessASIN)
	if err != nil {
		return nil, err
	}
	parentIdx := r.lookup(config.FieldBusinessParent)
	if parentIdx == asinIdx {
		parentIdx = -1
	}
	modelIdx := r.lookup(config.FieldBusinessModel)
	sessionsIdx := r.metric(config.FieldBusinessSessions)
	buyBoxIdx := r.metric(config.FieldBusinessBuyBox)
	unitsIdx := r.metric(config.FieldBusinessUnits)
	gmvIdx := r.metric(config.FieldBusinessGMV)

	rows := make([]domain.BusinessRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		asin, ok := shareddomain.NormalizeASIN(r.text(row, asinIdx))
		if !ok {
			r.dropRow(config.FieldBusinessASIN, "blank asin")
			continue
		}
		parent, _ := shareddomain.NormalizeASIN(r.text(row, parentIdx))
		model, _ := shareddomain.NormalizeModel(r.text(row, modelIdx))
		rows = append(rows, domain.BusinessRow{
			ASIN:       asin,
			ParentASIN: parent,
			Model:      model,
			Sessions:   r.number(row, sessionsIdx),
			BuyBox:     r.number(row, buyBoxIdx),
			Units:      r.number(row, unitsIdx),
			GMV:        r.number(row, gmvIdx),
		})
	}
	r.flush()
	return rows, nil
}

// adSheetType reconnaît le type d'une feuille de rapport publicitaire
func adSheetType(sheet string) (domain.AdType, bool) {
	s := strings.ToLower(strings.TrimSpace(sheet))
	switch {
	case s == "sp" || strings.Contains(s, "sponsored product"):
		return domain.AdTypeSP, true
	case s == "sd" || strings.Contains(s, "sponsored display"):
		return domain.AdTypeSD, true
	case s == "sb" || strings.Contains(s, "sponsored brand"):
		return domain.AdTypeSB, true
	}
	return "", false
}

// AdsReport lit les feuilles SP, SD et SB d'un rapport publicitaire, indépendamment
// SP et SD sont indexées par ASIN; SB par campagne (sans campagne: "SB")
func (p *Parser) AdsReport(src domain.Source, issues *shareddomain.Issues) (domain.AdsReport, error) {
	issues = ensure(issues)
	var report domain.AdsReport
	wb, err := infrastructure.OpenWorkbook(src.Path)
	if err != nil {
		return report, err
	}
	defer wb.Close()

	seen := make(map[domain.AdType]bool)
	for _, name := range wb.SheetNames() {
		adType, ok := adSheetType(name)
		if !ok {
			continue
		}
		table, err := wb.Sheet(name)
		if err != nil {
			issues.Add(fileIssue(src, name, shareddomain.SeverityFatalFile, err))
			continue
		}
		seen[adType] = true
		if table.Empty() {
			continue
		}
		r := newSheetReader(table, p.aliases, issues, src)

		if adType == domain.AdTypeSB {
			report.Brands = append(report.Brands, p.sponsoredBrands(r)...)
			continue
		}
		asinIdx, err := r.identity(config.FieldAdsASIN)
		if err != nil {
			issues.Add(fileIssue(src, table.Sheet, shareddomain.SeverityFatalFile, err))
			continue
		}
		m := adMetricColumns(r)
		for _, row := range table.Rows {
			asin, ok := shareddomain.NormalizeASIN(r.text(row, asinIdx))
			if !ok {
				r.dropRow(config.FieldAdsASIN, "blank advertised asin")
				continue
			}
			report.Products = append(report.Products, domain.AdRow{Type: adType, ASIN: asin, AdMetrics: m.read(r, row)})
		}
		r.flush()
	}

	for _, t := range []domain.AdType{domain.AdTypeSP, domain.AdTypeSD, domain.AdTypeSB} {
		if !seen[t] {
			issues.Add(fileIssue(src, string(t), shareddomain.SeverityDiagnostic,
				fmt.Errorf("%w: sheet %s", infrastructure.ErrSheetNotFound, t)))
		}
	}
	return report, nil
}

func (p *Parser) sponsoredBrands(r *sheetReader) []domain.SponsoredBrandRow {
	campaignIdx := r.lookup(config.FieldAdsCampaign)
	m := adMetricColumns(r)
	rows := make([]domain.SponsoredBrandRow, 0, len(r.table.Rows))
	for _, row := range r.table.Rows {
		campaign := strings.TrimSpace(r.text(row, campaignIdx))
		if shareddomain.IsBlank(campaign) {
			campaign = string(domain.AdTypeSB)
		}
		rows = append(rows, domain.SponsoredBrandRow{Campaign: campaign, AdMetrics: m.read(r, row)})
	}
	r.flush()
	return rows
}

type adColumns struct {
	spend, clicks, impressions, sales, orders int
}

func adMetricColumns(r *sheetReader) adColumns {
	return adColumns{
		spend:       r.metric(config.FieldAdsSpend),
		clicks:      r.metric(config.FieldAdsClicks),
		impressions: r.metric(config.FieldAdsImpressions),
		sales:       r.metric(config.FieldAdsSales),
		orders:      r.metric(config.FieldAdsOrders),
	}
}

func (c adColumns) read(r *sheetReader, row []string) domain.AdMetrics {
	return domain.AdMetrics{
		Spend:           r.number(row, c.spend),
		Clicks:          r.number(row, c.clicks),
		Impressions:     r.number(row, c.impressions),
		AttributedSales: r.number(row, c.sales),
		Orders:          r.number(row, c.orders),
	}
}

// Inventory lit un fichier d'inventaire par Model
// La semaine vient de la colonne week si présente, sinon de src.Week (dossier)
func (p *Parser) Inventory(src domain.Source, issues *shareddomain.Issues) ([]domain.InventoryRow, error) {
	issues = ensure(issues)
	table, err := infrastructure.ReadFirstSheet(src.Path)
	if err != nil {
		return nil, err
	}
	r := newSheetReader(table, p.aliases, issues, src)
	modelIdx, err := r.identity(config.FieldInventoryModel)
	if err != nil {
		return nil, err
	}
	qtyIdx := r.metric(config.FieldInventoryQty)
	weekIdx := r.lookup(config.FieldInventoryWeek)
	if weekIdx < 0 && src.Week <= 0 {
		return nil, fmt.Errorf("%w: no week column and no week folder for %s", shareddomain.ErrInvalidWeekFormat, src.Path)
	}

	rows := make([]domain.InventoryRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		model, ok := shareddomain.NormalizeModel(r.text(row, modelIdx))
		if !ok {
			r.dropRow(config.FieldInventoryModel, "blank model")
			continue
		}
		week, err := r.week(row, weekIdx)
		if err != nil {
			r.dropRow(config.FieldInventoryWeek, err.Error())
			continue
		}
		rows = append(rows, domain.InventoryRow{Week: week, Model: model, Qty: r.number(row, qtyIdx)})
	}
	r.flush()
	return rows, nil
}

// InventoryPositions lit "Inventory Snapshot.xlsx" (Model, canal, type de stock)
func (p *Parser) InventoryPositions(src domain.Source, issues *shareddomain.Issues) ([]domain.InventoryPositionRow, error) {
	issues = ensure(issues)
	table, err := infrastructure.ReadFirstSheet(src.Path)
	if err != nil {
		return nil, err
	}
	r := newSheetReader(table, p.aliases, issues, src)
	modelIdx, err := r.identity(config.FieldInventoryModel)
	if err != nil {
		return nil, err
	}
	qtyIdx := r.metric(config.FieldInventoryQty)
	channelIdx := r.lookup(config.FieldInventoryChannel)
	typeIdx := r.lookup(config.FieldInventoryType)
	weekIdx := r.lookup(config.FieldInventoryWeek)
	if weekIdx < 0 && src.Week <= 0 {
		return nil, fmt.Errorf("%w: no week column and no week folder for %s", shareddomain.ErrInvalidWeekFormat, src.Path)
	}

	rows := make([]domain.InventoryPositionRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		model, ok := shareddomain.NormalizeModel(r.text(row, modelIdx))
		if !ok {
			r.dropRow(config.FieldInventoryModel, "blank model")
			continue
		}
		week, err := r.week(row, weekIdx)
		if err != nil {
			r.dropRow(config.FieldInventoryWeek, err.Error())
			continue
		}
		rows = append(rows, domain.InventoryPositionRow{
			Week:    week,
			Model:   model,
			Channel: strings.ToUpper(strings.TrimSpace(r.text(row, channelIdx))),
			Type:    strings.ToUpper(strings.TrimSpace(r.text(row, typeIdx))),
			Qty:     r.number(row, qtyIdx),
		})
	}
	r.flush()
	return rows, nil
}

// week lit la semaine d'une ligne, ou celle du dossier si la colonne est absente
func (r *sheetReader) week(row []string, idx int) (int, error) {
	if idx < 0 {
		return r.src.Week, nil
	}
	raw := r.text(row, idx)
	if shareddomain.IsBlank(raw) {
		if r.src.Week > 0 {
			return r.src.Week, nil
		}
		return 0, fmt.Errorf("%w: blank week", shareddomain.ErrInvalidWeekFormat)
	}
	return shareddomain.ExtractWeek(raw)
}

func ensure(issues *shareddomain.Issues) *shareddomain.Issues {
	if issues == nil {
		return shareddomain.NewIssues()
	}
	return issues
}
