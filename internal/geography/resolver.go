package geography

// Placed is any case-like value that can name the organisation leading its
// care. Defined here so filtering stays free of a dependency on the clinical
// record package.
type Placed interface {
	CareOrganisation() *Organisation
}

// FilterByLevel keeps the cases that share the given organisation's parent
// entity at the level. At national level everything is kept. When the
// organisation has no entity at the level the result is empty: the
// organisation simply does not appear at that abstraction.
func FilterByLevel[T Placed](cases []T, level AbstractionLevel, org *Organisation) []T {
	if level == LevelNational {
		out := make([]T, len(cases))
		copy(out, cases)
		return out
	}

	key, ok := KeyFor(org, level)
	if !ok {
		return nil
	}

	var out []T
	for _, c := range cases {
		candidate, candidateOK := KeyFor(c.CareOrganisation(), level)
		if candidateOK && candidate == key {
			out = append(out, c)
		}
	}
	return out
}

// ExcludeCountry drops cases whose care organisation sits in the named
// country. Used as the post-grouping country exclusion: the same scored
// records feed several levels, so the exclusion is never baked into grouping.
func ExcludeCountry[T Placed](cases []T, boundaryIdentifier string) []T {
	if boundaryIdentifier == "" {
		return cases
	}
	var out []T
	for _, c := range cases {
		if org := c.CareOrganisation(); org != nil && org.Country.BoundaryIdentifier == boundaryIdentifier {
			continue
		}
		out = append(out, c)
	}
	return out
}
