package geography

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func englishOrg() *Organisation {
	return &Organisation{
		ODSCode: "RGT01",
		Name:    "Addenbrooke's Hospital",
		Trust:   &Trust{ODSCode: "RGT", Name: "Cambridge University Hospitals NHS Foundation Trust"},
		IntegratedCareBoard: &IntegratedCareBoard{
			ODSCode: "QUE", Name: "NHS Cambridgeshire and Peterborough",
		},
		NHSEnglandRegion: &NHSEnglandRegion{RegionCode: "Y61", Name: "East of England"},
		OpenUKNetwork:    &OpenUKNetwork{BoundaryIdentifier: "EPEN", Name: "Eastern Paediatric Epilepsy Network"},
		Country:          Country{BoundaryIdentifier: CountryEngland, Name: "England"},
	}
}

func welshOrg() *Organisation {
	return &Organisation{
		ODSCode:          "7A1A1",
		Name:             "Ysbyty Gwynedd",
		LocalHealthBoard: &LocalHealthBoard{ODSCode: "7A1", Name: "Betsi Cadwaladr University Health Board"},
		OpenUKNetwork:    &OpenUKNetwork{BoundaryIdentifier: "NWEN", Name: "North Wales Epilepsy Network"},
		Country:          Country{BoundaryIdentifier: CountryWales, Name: "Wales"},
	}
}

func TestKeyFor(t *testing.T) {
	english := englishOrg()
	welsh := welshOrg()

	tests := []struct {
		name    string
		org     *Organisation
		level   AbstractionLevel
		wantKey string
		wantOK  bool
	}{
		{"english organisation", english, LevelOrganisation, "RGT01", true},
		{"english trust", english, LevelTrust, "RGT", true},
		{"english has no health board", english, LevelLocalHealthBoard, "", false},
		{"english icb", english, LevelICB, "QUE", true},
		{"english region", english, LevelNHSEnglandRegion, "Y61", true},
		{"english network", english, LevelOpenUKNetwork, "EPEN", true},
		{"english country", english, LevelCountry, CountryEngland, true},
		{"welsh has no trust", welsh, LevelTrust, "", false},
		{"welsh health board", welsh, LevelLocalHealthBoard, "7A1", true},
		{"welsh has no icb", welsh, LevelICB, "", false},
		{"welsh has no region", welsh, LevelNHSEnglandRegion, "", false},
		{"welsh country", welsh, LevelCountry, CountryWales, true},
		{"national has no key", english, LevelNational, "", false},
		{"nil organisation", nil, LevelTrust, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := KeyFor(tt.org, tt.level)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestCountryExclusions(t *testing.T) {
	assert.Equal(t, CountryWales, LevelTrust.ExcludesCountry())
	assert.Equal(t, CountryWales, LevelICB.ExcludesCountry())
	assert.Equal(t, CountryWales, LevelNHSEnglandRegion.ExcludesCountry())
	assert.Equal(t, CountryEngland, LevelLocalHealthBoard.ExcludesCountry())

	assert.Empty(t, LevelOrganisation.ExcludesCountry())
	assert.Empty(t, LevelOpenUKNetwork.ExcludesCountry())
	assert.Empty(t, LevelCountry.ExcludesCountry())
	assert.Empty(t, LevelNational.ExcludesCountry())
}

func TestParseAbstractionLevel(t *testing.T) {
	for _, level := range Levels() {
		parsed, err := ParseAbstractionLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
		assert.True(t, level.Valid())
	}

	_, err := ParseAbstractionLevel("postcode")
	assert.Error(t, err)
	assert.False(t, AbstractionLevel(99).Valid())
	assert.Equal(t, "unknown", AbstractionLevel(99).String())
}
