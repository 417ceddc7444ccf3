package analysis

import (
	"testing"

	"pixelwatch/internal/domain"
)

func pixel(id, vendorID, url string, typ domain.VendorRequestType) domain.RequestRecord {
	rec := domain.RequestRecord{ID: id, URL: url, VendorRequestType: typ}
	if vendorID != "" {
		rec.Vendor = &domain.Vendor{ID: vendorID, Name: vendorID}
	}
	return rec
}

func TestSignatureSortsPlacementParams(t *testing.T) {
	a, ok := Signature(pixel("a", "v1", "https://ads.example.com/imp?sz=300x250&pid=5&foo=bar", domain.RequestTypeImpression))
	if !ok {
		t.Fatalf("expected signature")
	}
	b, ok := Signature(pixel("b", "v1", "https://ads.example.com/imp?pid=5&sz=300x250&cachebust=99", domain.RequestTypeImpression))
	if !ok {
		t.Fatalf("expected signature")
	}
	if a != b {
		t.Fatalf("param order and non-placement params must not matter: %q vs %q", a, b)
	}
	if a != "v1:/imp:pid=5&sz=300x250" {
		t.Fatalf("unexpected signature %q", a)
	}
}

func TestSignatureWithoutIdentifiersFallsBackToPath(t *testing.T) {
	sig, ok := Signature(pixel("a", "v1", "https://ads.example.com/imp?cb=123", domain.RequestTypeImpression))
	if !ok || sig != "v1:/imp" {
		t.Fatalf("unexpected: ok=%v sig=%q", ok, sig)
	}
}

func TestSignatureUnknownVendor(t *testing.T) {
	sig, ok := Signature(pixel("a", "", "https://ads.example.com/view?tagid=9", domain.RequestTypeViewability))
	if !ok || sig != "unknown:/view:tagid=9" {
		t.Fatalf("unexpected: ok=%v sig=%q", ok, sig)
	}
}

func TestSignatureIneligibleAndMalformed(t *testing.T) {
	if _, ok := Signature(pixel("a", "v1", "https://ads.example.com/x", domain.RequestTypeUnknown)); ok {
		t.Fatalf("unknown request type must not produce a signature")
	}
	if _, ok := Signature(pixel("b", "v1", "https://ads.example.com/x", domain.RequestTypeClick)); ok {
		t.Fatalf("click beacons are excluded from duplicate analysis")
	}
	if _, ok := Signature(pixel("c", "v1", "http://bad url\x7f%zz", domain.RequestTypeImpression)); ok {
		t.Fatalf("malformed URL must degrade to no signature")
	}
}
