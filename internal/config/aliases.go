package config

import "weekly/internal/shared/infrastructure"

// Champs logiques résolus par les parseurs
const (
	FieldMasterModel = "master_model"
	FieldMasterSKU   = "master_sku"
	FieldMasterASIN  = "master_asin"
	FieldMasterBrand = "master_brand"
	FieldMasterNLC   = "master_nlc"
	FieldCategoryL0  = "category_l0"
	FieldCategoryL1  = "category_l1"
	FieldCategoryL2  = "category_l2"

	FieldAmazonModel = "amazon_model"
	FieldAmazonUnits = "amazon_units"
	FieldAmazonSales = "amazon_sales"

	FieldChannelSKU    = "channel_sku"
	FieldChannelQty    = "channel_qty"
	FieldChannelAmount = "channel_amount"

	FieldBusinessASIN     = "business_asin"
	FieldBusinessParent   = "business_parent_asin"
	FieldBusinessModel    = "business_model"
	FieldBusinessSessions = "business_sessions"
	FieldBusinessBuyBox   = "business_buy_box"
	FieldBusinessUnits    = "business_units"
	FieldBusinessGMV      = "business_gmv"

	FieldAdsASIN        = "ads_asin"
	FieldAdsCampaign    = "ads_campaign"
	FieldAdsSpend       = "ads_spend"
	FieldAdsClicks      = "ads_clicks"
	FieldAdsImpressions = "ads_impressions"
	FieldAdsSales       = "ads_sales"
	FieldAdsOrders      = "ads_orders"

	FieldInventoryModel   = "inventory_model"
	FieldInventoryQty     = "inventory_qty"
	FieldInventoryWeek    = "inventory_week"
	FieldInventoryChannel = "inventory_channel"
	FieldInventoryType    = "inventory_type"
)

// DefaultAliases retourne la table d'alias par défaut, par ordre de priorité
func DefaultAliases() infrastructure.AliasTable {
	return infrastructure.AliasTable{
		FieldMasterModel: {"model", "model_no", "model_number"},
		FieldMasterSKU:   {"sku", "fba_sku", "seller_sku"},
		FieldMasterASIN:  {"asin", "child_asin"},
		FieldMasterBrand: {"brand", "brand_name"},
		FieldMasterNLC:   {"nlc", "net_landed_cost", "landed_cost"},
		FieldCategoryL0:  {"category_l0", "l0", "category"},
		FieldCategoryL1:  {"category_l1", "l1", "sub_category"},
		FieldCategoryL2:  {"category_l2", "l2"},

		FieldAmazonModel: {"model", "model_no", "parent_asin"},
		FieldAmazonUnits: {"units_ordered", "units", "total_units", "quantity"},
		FieldAmazonSales: {"ordered_product_sales", "gross_sales", "sales"},

		FieldChannelSKU:    {"sku", "seller_sku", "fba_sku"},
		FieldChannelQty:    {"qty", "quantity", "units"},
		FieldChannelAmount: {"sale_amount", "sales", "amount", "gross_sales"},

		FieldBusinessASIN:     {"child_asin", "asin", "parent_asin"},
		FieldBusinessParent:   {"parent_asin"},
		FieldBusinessModel:    {"model", "model_no"},
		FieldBusinessSessions: {"sessions_total", "sessions"},
		FieldBusinessBuyBox:   {"featured_offer_percentage", "featured_offer_buy_box_percentage", "buy_box_percentage", "buy_box_pct"},
		FieldBusinessUnits:    {"units_ordered", "units", "total_order_items"},
		FieldBusinessGMV:      {"ordered_product_sales", "gmv", "sales"},

		FieldAdsASIN:        {"advertised_asin", "asin"},
		FieldAdsCampaign:    {"campaign_name", "campaign"},
		FieldAdsSpend:       {"spend", "cost"},
		FieldAdsClicks:      {"clicks"},
		FieldAdsImpressions: {"impressions", "impression"},
		FieldAdsSales:       {"14_day_total_sales", "7_day_total_sales", "attributed_sales", "sales"},
		FieldAdsOrders:      {"14_day_total_units", "7_day_total_units", "14_day_total_orders", "7_day_total_orders", "ams_orders", "orders"},

		FieldInventoryModel:   {"model", "model_no"},
		FieldInventoryQty:     {"qty", "quantity", "units", "count"},
		FieldInventoryWeek:    {"week"},
		FieldInventoryChannel: {"channel"},
		FieldInventoryType:    {"type", "inventory_type"},
	}
}

// DefaultBrandCandidates motifs de détection de marque, testés dans l'ordre
func DefaultBrandCandidates() []BrandPattern {
	return []BrandPattern{
		{Brand: "Nexlev", Patterns: []string{"nexlev"}},
		{Brand: "White Mulberry", Patterns: []string{"white", "mulberry"}},
		{Brand: "Audio Array", Patterns: []string{"audio", "array"}},
		{Brand: "AMPM", Patterns: []string{"ampm", "am"}},
	}
}
