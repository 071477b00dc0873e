package models

import (
	"strings"
	"time"
)

// PricePoint is a single dated mandi price observation. Immutable once ingested.
type PricePoint struct {
	Commodity  string    `json:"commodity"`
	Region     string    `json:"region"`
	Market     string    `json:"market"`
	Date       time.Time `json:"date"`
	MinPrice   float64   `json:"min_price"`
	MaxPrice   float64   `json:"max_price"`
	ModalPrice float64   `json:"modal_price"`
}

// DatedPrice is a (date, price) pair used for modeling after aggregation
// across markets.
type DatedPrice struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// SeriesKey identifies a forecastable price series. Matching is
// case-insensitive and whitespace-normalized; an unset market means
// "all markets in the region".
type SeriesKey struct {
	Commodity string `json:"commodity"`
	Region    string `json:"region"`
	Market    string `json:"market"`
}

// NewSeriesKey builds a normalized SeriesKey.
func NewSeriesKey(commodity, region, market string) SeriesKey {
	return SeriesKey{
		Commodity: normalizeToken(commodity),
		Region:    normalizeToken(region),
		Market:    normalizeToken(market),
	}
}

// String renders the key in its canonical cache-addressable form.
func (k SeriesKey) String() string {
	market := k.Market
	if market == "" {
		market = "all"
	}
	return k.Commodity + "|" + k.Region + "|" + market
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
