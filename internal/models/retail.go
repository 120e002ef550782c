package models

// Retailer is one row of the SNAP retailer extract. JSON keys follow the extract.
type Retailer struct {
	ID                Code    `json:"Record ID"`
	Name              string  `json:"Store Name"`
	StoreType         string  `json:"Store Type"`
	StreetNumber      Code    `json:"Street Number,omitempty"`
	StreetName        string  `json:"Street Name,omitempty"`
	AdditionalAddress string  `json:"Additional Address,omitempty"`
	City              string  `json:"City,omitempty"`
	State             string  `json:"State,omitempty"`
	PostalCode        Code    `json:"Zip Code"`
	Zip4              Code    `json:"Zip4,omitempty"`
	County            string  `json:"County,omitempty"`
	Latitude          float64 `json:"Latitude"`
	Longitude         float64 `json:"Longitude"`
	AuthorizationDate string  `json:"Authorization Date,omitempty"`
	EndDate           string  `json:"End Date,omitempty"`
}

// StoreCategory is the normalized retailer type.
type StoreCategory string

const (
	CategorySupermarket   StoreCategory = "Supermarket"
	CategoryGrocery       StoreCategory = "Grocery"
	CategoryConvenience   StoreCategory = "Convenience"
	CategoryFarmersMarket StoreCategory = "Farmers Market"
	CategoryOther         StoreCategory = "Other"
)

// StoreCategories lists every category in presentation order.
var StoreCategories = []StoreCategory{
	CategorySupermarket,
	CategoryGrocery,
	CategoryConvenience,
	CategoryFarmersMarket,
	CategoryOther,
}

// PostalCodeSummary counts active retailers in one postal code.
type PostalCodeSummary struct {
	PostalCode    string `json:"postalCode"`
	Total         int    `json:"total"`
	Supermarkets  int    `json:"supermarkets"`
	Grocery       int    `json:"grocery"`
	Convenience   int    `json:"convenience"`
	FarmersMarket int    `json:"farmersMarket"`
	Other         int    `json:"other"`
}

// CategoryShare is one slice of the store-type distribution.
type CategoryShare struct {
	Category   StoreCategory `json:"type"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
}

// RetailerSummary holds the headline food-access figures.
type RetailerSummary struct {
	TotalRetailers     int     `json:"totalRetailers"`
	SupermarketCount   int     `json:"supermarketCount"`
	SupermarketPercent float64 `json:"supermarketPercent"`
	ConvenienceCount   int     `json:"convenienceCount"`
	ConveniencePercent float64 `json:"conveniencePercent"`
	// ConveniencePerSupermarket is nil when there are no supermarkets.
	ConveniencePerSupermarket *float64 `json:"conveniencePerSupermarket"`
}
