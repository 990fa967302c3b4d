package domain

// Column names of the raw MATT extract. The extract carries more columns
// than the transform touches; unknown columns pass through unchanged.
const (
	ColDivision         = "DIV_CODE_DESC"
	ColProject          = "PROJECT"
	ColBuyerName        = "BUYER_NAME"
	ColCommunity        = "COMMUNITY"
	ColPlanCode         = "PLAN_CODE"
	ColSaleDate         = "SALE_DATE"
	ColNHCName          = "NHC_NAME"
	ColCancellationDate = "SALES_CANCELLATION_DATE"
	ColEstCOEDate       = "EST_COE_DATE"
	ColCobroke          = "COBROKE_Y_N"
	ColTextbox4         = "Textbox4"
	ColTextbox22        = "Textbox22"

	// Pricing columns used by the plan pricing aggregation.
	ColBasePrice          = "BASE_PRICE"
	ColHomesitePremium    = "HOMESITE_PREMIUM"
	ColPriceReduction     = "PRICE_REDUCTION_INCENTIVES"
	ColOptionRevenue      = "OPTION_REVENUE"
	ColTotalSqft          = "TOTAL_SQFT"
)

// Reference table column names.
const (
	ColCommunityNumber = "Community Number"
	ColCommunityName   = "Community Name"
	ColHub             = "Hub"
	ColRefPlanCode     = "Plan Code"
	ColPlanName        = "Plan Name"
	ColCollection      = "Collection"
	ColCore            = "Core"
)

// Columns derived or renamed by the enrichment pass.
const (
	ColCommNumber              = "Comm_#"
	ColHSType                  = "HS_TYPE"
	ColNetSalesPrice           = "Net_Sales_Price"
	ColDOWSale                 = "DOW_Sale"
	ColWeekdayGroup            = "Weekday_Group"
	ColInvestorSale            = "Investor Sale"
	ColNHCNameClean            = "NHC_NAME_CLEAN"
	ColCancellationDateParsed  = "SALES_CANCELLATION_DATE_PARSED"
	ColHSTypeLabel             = "HS_TYPE_LABEL"
	ColRealtorDirect           = "Realtor/Direct"
)

// RequiredSalesColumns are the columns the enrichment itself depends on.
var RequiredSalesColumns = []string{
	ColCommunity,
	ColPlanCode,
	ColSaleDate,
	ColCancellationDate,
	ColNHCName,
}

// RequiredUploadColumns is the fuller header set a raw MATT upload must
// carry before it is accepted, matching the portal export.
var RequiredUploadColumns = []string{
	ColDivision,
	ColProject,
	ColBuyerName,
	ColCommunity,
	ColPlanCode,
	ColSaleDate,
	ColNHCName,
	ColCancellationDate,
}

// RequiredHubColumns are the columns of the hub/community reference table.
var RequiredHubColumns = []string{
	ColCommunityNumber,
	ColCommunityName,
	ColHub,
}

// RequiredPlanColumns are the columns of the plan reference table.
var RequiredPlanColumns = []string{
	ColRefPlanCode,
	ColPlanName,
	ColCollection,
	ColCore,
	ColTextbox4,
}

// Weekday group labels.
const (
	GroupWeekend = "Sat-Sun"
	GroupWeekday = "M-F"
)

// Sales channel labels.
const (
	ChannelInvestor = "Investor"
	ChannelRetail   = "Retail"
)

// Buyer representation labels derived from COBROKE_Y_N.
const (
	RepRealtor = "Realtor"
	RepDirect  = "Direct"
)

// Homesite status codes as they appear in the HS_TYPE column.
const (
	StatusBacklog = "B"
	StatusUnsold  = "S"
	StatusClosed  = "Z"
	StatusModel   = "M"
)

// HomesiteStatusLabels maps raw HS_TYPE codes to display labels. Codes
// outside the map keep their raw value.
var HomesiteStatusLabels = map[string]string{
	StatusBacklog: "Backlog",
	StatusUnsold:  "Unsold",
	StatusClosed:  "Closed",
	StatusModel:   "Model",
}

// DefaultInvestorNames is the embedded investor allowlist. Matching is
// byte-for-byte, padding included, because that is how the names arrive in
// the extract. Callers may supply their own set instead.
var DefaultInvestorNames = []string{
	"Chanin, Kristian                   (DFW)",
	"PEREZ, LARRY",
	"LAWRENCE PETER                          ",
	"Perez, Larry                       (DFW)",
	"Stierwalt, Tanner                  (DFW)",
	"Krueger, Cole                      (HOU)",
	"Shackelford, Leah                  (HOU)",
	"Batchelor, Christina               (HOU)",
}
