package geography

import (
	id "epiaudit/pkg/domain"
)

// ONS boundary identifiers for the two participating countries. Organisations
// in other countries (e.g. Jersey) carry their own identifiers and fall
// outside every country-specific level.
const (
	CountryEngland = "E92000001"
	CountryWales   = "W92000004"
)

// Country is the national boundary an organisation sits in.
type Country struct {
	BoundaryIdentifier string
	Name               string
}

// Trust is an English NHS trust. Welsh organisations have no trust.
type Trust struct {
	ODSCode string
	Name    string
}

// LocalHealthBoard is a Welsh health board. English organisations have none.
type LocalHealthBoard struct {
	ODSCode string
	Name    string
}

// IntegratedCareBoard is an English ICB.
type IntegratedCareBoard struct {
	ODSCode string
	Name    string
}

// NHSEnglandRegion is one of the NHS England commissioning regions.
type NHSEnglandRegion struct {
	RegionCode string
	Name       string
}

// OpenUKNetwork is a paediatric neurology clinical network. Both English and
// Welsh organisations belong to one.
type OpenUKNetwork struct {
	BoundaryIdentifier string
	Name               string
}

// Organisation is a hospital site together with the geographic parents
// reachable from it. Exactly one of Trust and LocalHealthBoard is set;
// IntegratedCareBoard and NHSEnglandRegion are set only for English
// organisations.
type Organisation struct {
	ID      id.OrganisationID
	ODSCode string
	Name    string

	Trust               *Trust
	LocalHealthBoard    *LocalHealthBoard
	IntegratedCareBoard *IntegratedCareBoard
	NHSEnglandRegion    *NHSEnglandRegion
	OpenUKNetwork       *OpenUKNetwork
	Country             Country
}

// Entity is a geographic entity resolved from reference data by its natural
// key, used when linking aggregation rows to the geography they describe.
type Entity struct {
	Level AbstractionLevel
	Key   string
	Name  string
}
