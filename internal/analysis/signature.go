package analysis

import (
	"net/url"
	"sort"
	"strings"

	"pixelwatch/internal/domain"
)

// placementParams are the query parameter names that identify a concrete ad
// placement across common ad-serving conventions. Two beacons that agree on
// vendor, path and these parameters are considered fires of the same pixel.
var placementParams = []string{
	// network / placement
	"network_id", "networkid", "nid",
	"placement_id", "placementid", "pid", "plc",
	"slot", "slotname", "adunit", "ad_unit", "iu",
	// creative / ad
	"creative_id", "creativeid", "crid",
	"ad_id", "adid", "aid",
	// line item / campaign
	"lineitem_id", "line_item_id", "liid",
	"campaign_id", "campaignid", "cmp", "cid",
	// tag
	"tag_id", "tagid", "tid",
	// size
	"sz", "size", "w", "h",
}

var placementParamSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(placementParams))
	for _, p := range placementParams {
		m[p] = struct{}{}
	}
	return m
}()

// Signature derives the grouping key used for duplicate-pixel analysis:
// vendorId:path, extended with the sorted placement-identifier parameters
// present in the query string. Only impression and viewability beacons are
// eligible; everything else (and any record whose URL does not parse) yields
// ("", false) and is excluded from duplicate analysis.
//
// Without identifier params the signature degrades to vendor+path, which can
// over-merge distinct placements; that coarser grouping is accepted.
func Signature(rec domain.RequestRecord) (string, bool) {
	switch rec.VendorRequestType {
	case domain.RequestTypeImpression, domain.RequestTypeViewability:
	default:
		return "", false
	}
	u, err := url.Parse(rec.URL)
	if err != nil {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(rec.VendorID())
	sb.WriteByte(':')
	sb.WriteString(u.Path)

	var ids []string
	for name, values := range u.Query() {
		if _, ok := placementParamSet[strings.ToLower(name)]; !ok {
			continue
		}
		if len(values) == 0 {
			continue
		}
		ids = append(ids, strings.ToLower(name)+"="+values[0])
	}
	if len(ids) > 0 {
		sort.Strings(ids)
		sb.WriteByte(':')
		sb.WriteString(strings.Join(ids, "&"))
	}
	return sb.String(), true
}
