package domain

// Source identifie l'unité de travail d'un fichier parsé, pour les incidents
type Source struct {
	Stage string
	Week  int
	Brand string
	Path  string
}

// AmazonModelRow ligne du rapport de ventes Amazon, indexée par Model
type AmazonModelRow struct {
	Model string
	Units float64
	Sales float64
}

// ChannelSKURow ligne d'une feuille "autres canaux", indexée par SKU
type ChannelSKURow struct {
	Channel string
	SKU     string
	Units   float64
	Sales   float64
}

// BusinessRow ligne du business report, indexée par ASIN enfant
type BusinessRow struct {
	ASIN       string
	ParentASIN string
	Model      string
	Sessions   float64
	BuyBox     float64
	Units      float64
	GMV        float64
}

// AdType type de campagne publicitaire
type AdType string

const (
	AdTypeSP   AdType = "SP"
	AdTypeSD   AdType = "SD"
	AdTypeSB   AdType = "SB"
	AdTypeSPSD AdType = "SP_SD"
)

// SBEntity pseudo-ASIN des lignes Sponsored Brands, jamais joint à un Model
const SBEntity = "__SB__"

// AdMetrics mesures additives d'une ligne publicitaire
type AdMetrics struct {
	Spend           float64
	Clicks          float64
	Impressions     float64
	AttributedSales float64
	Orders          float64
}

// Add additionne deux jeux de mesures
func (m AdMetrics) Add(o AdMetrics) AdMetrics {
	return AdMetrics{
		Spend:           m.Spend + o.Spend,
		Clicks:          m.Clicks + o.Clicks,
		Impressions:     m.Impressions + o.Impressions,
		AttributedSales: m.AttributedSales + o.AttributedSales,
		Orders:          m.Orders + o.Orders,
	}
}

// AdRow ligne SP ou SD, indexée par ASIN annoncé
type AdRow struct {
	Type AdType
	ASIN string
	AdMetrics
}

// SponsoredBrandRow ligne SB, indexée par campagne
type SponsoredBrandRow struct {
	Campaign string
	AdMetrics
}

// AdsReport contenu d'un rapport publicitaire, par type de feuille
type AdsReport struct {
	Products []AdRow
	Brands   []SponsoredBrandRow
}

// InventoryRow ligne d'un fichier d'inventaire par Model
type InventoryRow struct {
	Week  int
	Model string
	Qty   float64
}

// InventoryPositionRow ligne du snapshot d'inventaire par canal et type de stock
type InventoryPositionRow struct {
	Week    int
	Model   string
	Channel string
	Type    string
	Qty     float64
}
