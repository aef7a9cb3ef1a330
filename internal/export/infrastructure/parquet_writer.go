package infrastructure

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	reconciledomain "weekly/internal/reconcile/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// WeeklyFactParquet ligne Parquet du fait hebdomadaire; les ratios indéfinis restent NULL
type WeeklyFactParquet struct {
	Week               int32    `parquet:"name=week, type=INT32"`
	Brand              string   `parquet:"name=brand, type=BYTE_ARRAY, convertedtype=UTF8"`
	Model              string   `parquet:"name=model, type=BYTE_ARRAY, convertedtype=UTF8"`
	Channel            string   `parquet:"name=channel, type=BYTE_ARRAY, convertedtype=UTF8"`
	Units              float64  `parquet:"name=units, type=DOUBLE"`
	GMV                float64  `parquet:"name=gmv, type=DOUBLE"`
	Sessions           float64  `parquet:"name=sessions, type=DOUBLE"`
	BuyBoxPct          float64  `parquet:"name=buy_box_pct, type=DOUBLE"`
	Spend              float64  `parquet:"name=spend, type=DOUBLE"`
	Clicks             float64  `parquet:"name=clicks, type=DOUBLE"`
	Impressions        float64  `parquet:"name=impressions, type=DOUBLE"`
	AttributedSales    float64  `parquet:"name=attributed_sales, type=DOUBLE"`
	AMSOrders          float64  `parquet:"name=ams_orders, type=DOUBLE"`
	InventoryUnits     *float64 `parquet:"name=inventory_units, type=DOUBLE, repetitiontype=OPTIONAL"`
	CategoryL0         string   `parquet:"name=category_l0, type=BYTE_ARRAY, convertedtype=UTF8"`
	CategoryL1         string   `parquet:"name=category_l1, type=BYTE_ARRAY, convertedtype=UTF8"`
	CategoryL2         string   `parquet:"name=category_l2, type=BYTE_ARRAY, convertedtype=UTF8"`
	ACOS               *float64 `parquet:"name=acos, type=DOUBLE, repetitiontype=OPTIONAL"`
	TACOS              *float64 `parquet:"name=tacos, type=DOUBLE, repetitiontype=OPTIONAL"`
	ROAS               *float64 `parquet:"name=roas, type=DOUBLE, repetitiontype=OPTIONAL"`
	CAC                *float64 `parquet:"name=cac, type=DOUBLE, repetitiontype=OPTIONAL"`
	ConversionPct      *float64 `parquet:"name=conversion_pct, type=DOUBLE, repetitiontype=OPTIONAL"`
	CPC                *float64 `parquet:"name=cpc, type=DOUBLE, repetitiontype=OPTIONAL"`
	ContributionPct    *float64 `parquet:"name=contribution_to_sales_pct, type=DOUBLE, repetitiontype=OPTIONAL"`
	AttributedSalesPct *float64 `parquet:"name=attributed_sales_pct, type=DOUBLE, repetitiontype=OPTIONAL"`
	OrganicSalesPct    *float64 `parquet:"name=organic_sales_pct, type=DOUBLE, repetitiontype=OPTIONAL"`
	SellThroughPct     *float64 `parquet:"name=sell_through_pct, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// NewWeeklyFactParquet convertit un fait hebdomadaire
func NewWeeklyFactParquet(f *reconciledomain.WeeklyFact) *WeeklyFactParquet {
	row := &WeeklyFactParquet{
		Week:               int32(f.Week),
		Brand:              f.Brand,
		Model:              f.Model,
		Channel:            f.Channel,
		Units:              f.Units,
		GMV:                f.GMV,
		Sessions:           f.Sessions,
		BuyBoxPct:          f.BuyBox,
		Spend:              f.Spend,
		Clicks:             f.Clicks,
		Impressions:        f.Impressions,
		AttributedSales:    f.AttributedSales,
		AMSOrders:          f.Orders,
		CategoryL0:         f.Category.L0,
		CategoryL1:         f.Category.L1,
		CategoryL2:         f.Category.L2,
		ACOS:               f.Metrics.ACOS.Ptr(),
		TACOS:              f.Metrics.TACOS.Ptr(),
		ROAS:               f.Metrics.ROAS.Ptr(),
		CAC:                f.Metrics.CAC.Ptr(),
		ConversionPct:      f.Metrics.ConversionPct.Ptr(),
		CPC:                f.Metrics.CPC.Ptr(),
		ContributionPct:    f.Metrics.ContributionPct.Ptr(),
		AttributedSalesPct: f.Metrics.AttributedSalesPct.Ptr(),
		OrganicSalesPct:    f.Metrics.OrganicSalesPct.Ptr(),
		SellThroughPct:     f.Metrics.SellThroughPct.Ptr(),
	}
	if f.HasInventory {
		units := f.InventoryUnits
		row.InventoryUnits = &units
	}
	return row
}

// WriteWeeklyFactParquet écrit le fait hebdomadaire en Parquet (snappy), par remplacement atomique
func WriteWeeklyFactParquet(path string, facts []*reconciledomain.WeeklyFact) error {
	return sharedinfra.WriteFileAtomic(path, func(w io.Writer) error {
		return EncodeWeeklyFactParquet(w, facts)
	})
}

// EncodeWeeklyFactParquet écrit les faits dans w
func EncodeWeeklyFactParquet(w io.Writer, facts []*reconciledomain.WeeklyFact) error {
	fw := writerfile.NewWriterFile(w)
	pw, err := writer.NewParquetWriter(fw, new(WeeklyFactParquet), 1)
	if err != nil {
		return fmt.Errorf("parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, f := range facts {
		if err := pw.Write(NewWeeklyFactParquet(f)); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("parquet flush: %w", err)
	}
	return nil
}
