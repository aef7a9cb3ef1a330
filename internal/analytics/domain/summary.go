package domain

// Totals mesures cumulées d'un périmètre (semaine, marque, catégorie, model)
type Totals struct {
	GMV             float64
	Units           float64
	Spend           float64
	AttributedSales float64
}

// Add additionne deux cumuls
func (t Totals) Add(o Totals) Totals {
	return Totals{
		GMV:             t.GMV + o.GMV,
		Units:           t.Units + o.Units,
		Spend:           t.Spend + o.Spend,
		AttributedSales: t.AttributedSales + o.AttributedSales,
	}
}

// Metrics ratios du cumul; la contribution est rapportée à weekGMV
func (t Totals) Metrics(weekGMV float64) DerivedMetricSet {
	return ComputeMetrics(MetricInputs{
		Spend:           t.Spend,
		AttributedSales: t.AttributedSales,
		GMV:             t.GMV,
		Units:           t.Units,
	}, weekGMV)
}

// GroupStats cumul d'un groupe nommé (marque, catégorie L0, model, canal)
type GroupStats struct {
	name   string
	totals Totals
}

// NewGroupStats crée les statistiques d'un groupe
func NewGroupStats(name string, totals Totals) *GroupStats {
	return &GroupStats{name: name, totals: totals}
}

// Name retourne le nom du groupe
func (g *GroupStats) Name() string {
	return g.name
}

// Totals retourne le cumul du groupe
func (g *GroupStats) Totals() Totals {
	return g.totals
}

// WeeklySummary synthèse d'une semaine publiée
type WeeklySummary struct {
	week          int
	totals        Totals
	brandStats    []*GroupStats
	categoryStats []*GroupStats
	topModels     []*GroupStats
	channelStats  []*GroupStats
}

// NewWeeklySummary crée une synthèse vide
func NewWeeklySummary(week int) *WeeklySummary {
	return &WeeklySummary{
		week:          week,
		brandStats:    make([]*GroupStats, 0),
		categoryStats: make([]*GroupStats, 0),
		topModels:     make([]*GroupStats, 0),
		channelStats:  make([]*GroupStats, 0),
	}
}

// Week retourne la semaine
func (s *WeeklySummary) Week() int {
	return s.week
}

// Totals retourne le cumul de la semaine
func (s *WeeklySummary) Totals() Totals {
	return s.totals
}

// Metrics retourne les ratios de la semaine
func (s *WeeklySummary) Metrics() DerivedMetricSet {
	return s.totals.Metrics(s.totals.GMV)
}

// BrandStats retourne les cumuls par marque
func (s *WeeklySummary) BrandStats() []*GroupStats {
	return append([]*GroupStats{}, s.brandStats...)
}

// CategoryStats retourne les cumuls par catégorie L0
func (s *WeeklySummary) CategoryStats() []*GroupStats {
	return append([]*GroupStats{}, s.categoryStats...)
}

// TopModels retourne les models au plus fort GMV
func (s *WeeklySummary) TopModels() []*GroupStats {
	return append([]*GroupStats{}, s.topModels...)
}

// ChannelStats retourne les ventes par canal (snapshot de ventes)
func (s *WeeklySummary) ChannelStats() []*GroupStats {
	return append([]*GroupStats{}, s.channelStats...)
}

// SetTotals définit le cumul de la semaine
func (s *WeeklySummary) SetTotals(t Totals) {
	s.totals = t
}

// SetBrandStats définit les cumuls par marque
func (s *WeeklySummary) SetBrandStats(stats []*GroupStats) {
	s.brandStats = stats
}

// SetCategoryStats définit les cumuls par catégorie
func (s *WeeklySummary) SetCategoryStats(stats []*GroupStats) {
	s.categoryStats = stats
}

// SetTopModels définit les meilleurs models
func (s *WeeklySummary) SetTopModels(stats []*GroupStats) {
	s.topModels = stats
}

// SetChannelStats définit les ventes par canal
func (s *WeeklySummary) SetChannelStats(stats []*GroupStats) {
	s.channelStats = stats
}
