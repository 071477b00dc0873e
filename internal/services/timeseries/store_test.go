package timeseries

import (
	"testing"
	"time"

	"AgriPulse/internal/domain/models"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func testStore() *Store {
	return NewStore(WithNowFunc(fixedNow))
}

func day(offset int) time.Time {
	return fixedNow().AddDate(0, 0, offset)
}

func TestQueryFiltersAndSorts(t *testing.T) {
	s := testStore()
	s.Ingest(
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Ludhiana", Date: day(-2), ModalPrice: 2100},
		models.PricePoint{Commodity: "wheat", Region: "punjab", Market: "Amritsar", Date: day(-5), ModalPrice: 2050},
		models.PricePoint{Commodity: "Rice", Region: "Punjab", Market: "Ludhiana", Date: day(-3), ModalPrice: 3200},
		models.PricePoint{Commodity: "WHEAT", Region: "Haryana", Market: "Karnal", Date: day(-1), ModalPrice: 2150},
	)

	got := s.Query("wheat", "Punjab", "", 30)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Errorf("points not sorted ascending: %v then %v", got[0].Date, got[1].Date)
	}
	if got[0].ModalPrice != 2050 {
		t.Errorf("expected oldest point first (2050), got %v", got[0].ModalPrice)
	}
}

func TestQueryMarketFilter(t *testing.T) {
	s := testStore()
	s.Ingest(
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Ludhiana", Date: day(-2), ModalPrice: 2100},
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Amritsar", Date: day(-2), ModalPrice: 2050},
	)

	got := s.Query("wheat", "punjab", "ludhiana", 30)
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got))
	}
	if got[0].Market != "Ludhiana" {
		t.Errorf("expected Ludhiana, got %s", got[0].Market)
	}
}

func TestQueryNoMatchReturnsEmpty(t *testing.T) {
	s := testStore()
	s.Ingest(
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Ludhiana", Date: day(-2), ModalPrice: 2100},
	)

	got := s.Query("onion", "Nashik", "", 30)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d points", len(got))
	}
}

func TestQueryWindowCutoff(t *testing.T) {
	s := testStore()
	s.Ingest(
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Ludhiana", Date: day(-40), ModalPrice: 2000},
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Ludhiana", Date: day(-5), ModalPrice: 2100},
	)

	got := s.Query("wheat", "punjab", "", 30)
	if len(got) != 1 {
		t.Fatalf("expected 1 point within window, got %d", len(got))
	}
	if got[0].ModalPrice != 2100 {
		t.Errorf("expected recent point 2100, got %v", got[0].ModalPrice)
	}
}

func TestAggregateAveragesAcrossMarkets(t *testing.T) {
	s := testStore()
	d := day(-3)
	s.Ingest(
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Ludhiana", Date: d, ModalPrice: 2000},
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Amritsar", Date: d, ModalPrice: 2200},
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Ludhiana", Date: day(-2), ModalPrice: 2100},
	)

	got := s.AggregateForModeling("wheat", "punjab", "", 365)
	if len(got) != 2 {
		t.Fatalf("expected 2 daily points, got %d", len(got))
	}
	if got[0].Price != 2100 {
		t.Errorf("expected cross-market mean 2100, got %v", got[0].Price)
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Errorf("aggregated points not sorted ascending")
	}
}

func TestAggregateSingleMarket(t *testing.T) {
	s := testStore()
	d := day(-3)
	s.Ingest(
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Ludhiana", Date: d, ModalPrice: 2000},
		models.PricePoint{Commodity: "Wheat", Region: "Punjab", Market: "Amritsar", Date: d, ModalPrice: 2200},
	)

	got := s.AggregateForModeling("wheat", "punjab", "amritsar", 365)
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got))
	}
	if got[0].Price != 2200 {
		t.Errorf("expected 2200, got %v", got[0].Price)
	}
}
