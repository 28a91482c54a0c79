package geography

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type placedOrg struct {
	org *Organisation
}

func (p placedOrg) CareOrganisation() *Organisation { return p.org }

func TestFilterByLevel(t *testing.T) {
	english := englishOrg()
	welsh := welshOrg()
	otherTrust := englishOrg()
	otherTrust.ODSCode = "RBS01"
	otherTrust.Trust = &Trust{ODSCode: "RBS", Name: "Alder Hey Children's NHS Foundation Trust"}

	cases := []placedOrg{{english}, {english}, {welsh}, {otherTrust}}

	t.Run("keeps cases sharing the trust", func(t *testing.T) {
		got := FilterByLevel(cases, LevelTrust, english)
		require.Len(t, got, 2)
		for _, c := range got {
			assert.Equal(t, "RGT", c.CareOrganisation().Trust.ODSCode)
		}
	})

	t.Run("organisation without a key matches nothing", func(t *testing.T) {
		got := FilterByLevel(cases, LevelTrust, welsh)
		assert.Empty(t, got)
	})

	t.Run("national keeps everything", func(t *testing.T) {
		got := FilterByLevel(cases, LevelNational, welsh)
		assert.Len(t, got, len(cases))
	})

	t.Run("country level groups by boundary", func(t *testing.T) {
		got := FilterByLevel(cases, LevelCountry, welsh)
		require.Len(t, got, 1)
		assert.Equal(t, CountryWales, got[0].CareOrganisation().Country.BoundaryIdentifier)
	})
}

func TestExcludeCountry(t *testing.T) {
	cases := []placedOrg{{englishOrg()}, {welshOrg()}, {englishOrg()}}

	t.Run("drops the named country", func(t *testing.T) {
		got := ExcludeCountry(cases, CountryWales)
		require.Len(t, got, 2)
		for _, c := range got {
			assert.NotEqual(t, CountryWales, c.CareOrganisation().Country.BoundaryIdentifier)
		}
	})

	t.Run("empty identifier keeps everything", func(t *testing.T) {
		got := ExcludeCountry(cases, "")
		assert.Len(t, got, len(cases))
	})
}
