package clcdkutil

import (
	"slices"
	"strings"
)

// RegionIdents maps AWS region codes to the 4-character identifiers used in stack
// names: 2-letter geo, 1-letter direction, 1-digit number.
var RegionIdents = map[string]string{
	"us-east-1":      "Use1",
	"us-east-2":      "Use2",
	"us-west-1":      "Usw1",
	"us-west-2":      "Usw2",
	"eu-west-1":      "Euw1",
	"eu-west-2":      "Euw2",
	"eu-central-1":   "Euc1",
	"eu-north-1":     "Eun1",
	"ap-northeast-1": "Apn1",
	"ap-northeast-2": "Apn2",
	"ap-northeast-3": "Apn3",
	"ap-southeast-1": "Ase1",
	"ap-southeast-2": "Ase2",
	"ap-south-1":     "Aps1",
	"ca-central-1":   "Cac1",
	"sa-east-1":      "Sae1",
}

// RegionIdentFor returns the identifier for a region and panics for unknown regions.
func RegionIdentFor(region string) string {
	ident, ok := RegionIdents[region]
	if !ok {
		panic("unknown AWS region: " + region + ". Please add it to clcdkutil.RegionIdents")
	}
	return ident
}

// IsKnownRegion returns true if the region has a known identifier.
func IsKnownRegion(region string) bool {
	_, ok := RegionIdents[region]
	return ok
}

// RegionIdentLower returns the lowercase region identifier.
func RegionIdentLower(region string) string {
	return strings.ToLower(RegionIdentFor(region))
}

// AllKnownRegions returns the known region codes, sorted.
func AllKnownRegions() []string {
	regions := make([]string, 0, len(RegionIdents))
	for region := range RegionIdents {
		regions = append(regions, region)
	}
	slices.Sort(regions)
	return regions
}
