package geography

import (
	dErrors "epiaudit/pkg/domain-errors"
)

// AbstractionLevel is the geographic granularity KPI statistics are reported
// at. The ordering matches the reporting hierarchy, organisation first.
type AbstractionLevel int

const (
	LevelOrganisation AbstractionLevel = iota
	LevelTrust
	LevelLocalHealthBoard
	LevelICB
	LevelNHSEnglandRegion
	LevelOpenUKNetwork
	LevelCountry
	LevelNational
)

// levelSpec gathers everything level-dependent in one place: how to reach the
// parent key from an organisation, and which country is administratively
// absent at the level. Every consumer goes through this table rather than
// switching on the level locally.
type levelSpec struct {
	name string
	// keyOf resolves the natural key of the level's parent entity. ok is
	// false when the organisation's country has no such entity.
	keyOf func(*Organisation) (key string, ok bool)
	// excludeCountry names a country whose patients are excluded from the
	// level after grouping, by boundary identifier. Empty means no exclusion.
	excludeCountry string
}

var levelTable = map[AbstractionLevel]levelSpec{
	LevelOrganisation: {
		name:  "organisation",
		keyOf: func(o *Organisation) (string, bool) { return o.ODSCode, o.ODSCode != "" },
	},
	LevelTrust: {
		name: "trust",
		keyOf: func(o *Organisation) (string, bool) {
			if o.Trust == nil {
				return "", false
			}
			return o.Trust.ODSCode, true
		},
		excludeCountry: CountryWales,
	},
	LevelLocalHealthBoard: {
		name: "local_health_board",
		keyOf: func(o *Organisation) (string, bool) {
			if o.LocalHealthBoard == nil {
				return "", false
			}
			return o.LocalHealthBoard.ODSCode, true
		},
		excludeCountry: CountryEngland,
	},
	LevelICB: {
		name: "icb",
		keyOf: func(o *Organisation) (string, bool) {
			if o.IntegratedCareBoard == nil {
				return "", false
			}
			return o.IntegratedCareBoard.ODSCode, true
		},
		excludeCountry: CountryWales,
	},
	LevelNHSEnglandRegion: {
		name: "nhs_england_region",
		keyOf: func(o *Organisation) (string, bool) {
			if o.NHSEnglandRegion == nil {
				return "", false
			}
			return o.NHSEnglandRegion.RegionCode, true
		},
		excludeCountry: CountryWales,
	},
	LevelOpenUKNetwork: {
		name: "open_uk_network",
		keyOf: func(o *Organisation) (string, bool) {
			if o.OpenUKNetwork == nil {
				return "", false
			}
			return o.OpenUKNetwork.BoundaryIdentifier, true
		},
	},
	LevelCountry: {
		name:  "country",
		keyOf: func(o *Organisation) (string, bool) { return o.Country.BoundaryIdentifier, o.Country.BoundaryIdentifier != "" },
	},
	LevelNational: {
		// National has no parent entity; aggregation treats it as one group.
		name: "national",
	},
}

// Levels returns every abstraction level in reporting order.
func Levels() []AbstractionLevel {
	return []AbstractionLevel{
		LevelOrganisation,
		LevelTrust,
		LevelLocalHealthBoard,
		LevelICB,
		LevelNHSEnglandRegion,
		LevelOpenUKNetwork,
		LevelCountry,
		LevelNational,
	}
}

// ParseAbstractionLevel maps a level name to its AbstractionLevel.
func ParseAbstractionLevel(s string) (AbstractionLevel, error) {
	for level, spec := range levelTable {
		if spec.name == s {
			return level, nil
		}
	}
	return 0, dErrors.Newf(dErrors.CodeInvalidInput, "unknown abstraction level %q", s)
}

func (l AbstractionLevel) String() string {
	spec, ok := levelTable[l]
	if !ok {
		return "unknown"
	}
	return spec.name
}

// Valid reports whether l is a known abstraction level.
func (l AbstractionLevel) Valid() bool {
	_, ok := levelTable[l]
	return ok
}

// KeyFor resolves the natural key of the level's parent entity for an
// organisation. ok is false when the organisation's country has no entity at
// this level (Welsh organisation at trust/ICB/region, English at health
// board); callers must treat that as "exclude", not as an error. National has
// no key and always returns false.
func KeyFor(org *Organisation, level AbstractionLevel) (string, bool) {
	spec, ok := levelTable[level]
	if !ok || spec.keyOf == nil || org == nil {
		return "", false
	}
	return spec.keyOf(org)
}

// ExcludesCountry returns the boundary identifier of the country excluded
// from this level after grouping, or "" when the level spans both countries.
func (l AbstractionLevel) ExcludesCountry() string {
	return levelTable[l].excludeCountry
}
