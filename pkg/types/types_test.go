package types

import (
	"encoding/json"
	"math"
	"testing"
)

func TestLocationJSONRoundTripsGeoJSON(t *testing.T) {
	loc := DefaultLocation()
	raw, err := json.Marshal(loc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"Point","coordinates":[77.1025,28.7041],"address":"Delhi","state":"Delhi","district":"New Delhi","pincode":"110001"}`
	if string(raw) != want {
		t.Fatalf("unexpected json %s", raw)
	}

	var decoded Location
	if err := json.Unmarshal([]byte(`{"type":"Polygon","coordinates":[1,2]}`), &decoded); err == nil {
		t.Fatal("expected non-point type to be rejected")
	}
}

func TestLocationValidate(t *testing.T) {
	if err := (Location{Lng: 181}).Validate(); err == nil {
		t.Fatal("expected longitude error")
	}
	if err := (Location{Lat: -91}).Validate(); err == nil {
		t.Fatal("expected latitude error")
	}
	if err := DefaultLocation().Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDistanceAndBoundingBox(t *testing.T) {
	delhi := DefaultLocation()
	mumbai := Location{Lng: 72.8777, Lat: 19.0760}

	d := delhi.DistanceMeters(mumbai)
	if math.Abs(d-1_150_000) > 30_000 {
		t.Fatalf("unexpected Delhi-Mumbai distance %.0f", d)
	}

	box := delhi.BoundingBox(10_000)
	if len(box.Lng) != 1 || !box.Contains(delhi) {
		t.Fatalf("bounding box should be one range around the center, got %+v", box)
	}
	if box.Contains(mumbai) {
		t.Fatal("Mumbai should fall outside a 10km box around Delhi")
	}
}

func TestBoundingBoxWrapsAntimeridian(t *testing.T) {
	east := Location{Lng: 179.99, Lat: -17}
	west := Location{Lng: -179.99, Lat: -17}

	for _, center := range []Location{east, west} {
		box := center.BoundingBox(10_000)
		if len(box.Lng) != 2 {
			t.Fatalf("expected split longitude ranges around %v, got %+v", center.Lng, box.Lng)
		}
		for _, r := range box.Lng {
			if r.Min < -180 || r.Max > 180 || r.Min > r.Max {
				t.Fatalf("range out of bounds %+v", r)
			}
		}
		if !box.Contains(east) || !box.Contains(west) {
			t.Fatalf("box around %v should contain both sides of the meridian", center.Lng)
		}
		if box.Contains(Location{Lng: 0, Lat: -17}) {
			t.Fatal("box should not cover the prime meridian")
		}
	}

	polar := Location{Lng: 10, Lat: 89.95}.BoundingBox(10_000)
	if polar.MaxLat != 90 || len(polar.Lng) != 1 || polar.Lng[0] != (LngRange{Min: -180, Max: 180}) {
		t.Fatalf("polar box should span every longitude, got %+v", polar)
	}
}

func TestLocationValidateRejectsNonFinite(t *testing.T) {
	for _, loc := range []Location{{Lng: math.NaN()}, {Lat: math.Inf(-1)}} {
		if err := loc.Validate(); err == nil {
			t.Fatalf("expected error for %+v", loc)
		}
	}
}

func TestShippingAddressDefaultsCountry(t *testing.T) {
	v, err := ShippingAddress{City: "Pune"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var decoded ShippingAddress
	if err := decoded.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if decoded.Country != DefaultCountry || decoded.City != "Pune" {
		t.Fatalf("unexpected address %+v", decoded)
	}
}
