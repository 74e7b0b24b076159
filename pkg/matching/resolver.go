package matching

// Resolve fills every participant's MutualFriends with the potential friends
// who are themselves participants and said yes back. Existing mutual sets are
// cleared first, so calling Resolve again yields the same result. It returns
// the number of unordered mutual pairs.
//
// A potential friend with no participant record never reciprocates.
func Resolve(ps Participants) int {
	for _, p := range ps {
		p.MutualFriends = make(NameSet)
	}

	pairs := 0
	for _, name := range ps.Names() {
		p := ps[name]
		for friend := range p.PotentialFriends {
			if friend == name {
				continue
			}
			other, ok := ps[friend]
			if !ok || !other.PotentialFriends.Has(name) {
				continue
			}
			p.MutualFriends.Add(friend)
			if name < friend {
				pairs++
			}
		}
	}
	return pairs
}

// Pair is an unordered mutual match with A < B.
type Pair struct {
	A string `json:"a" yaml:"a"`
	B string `json:"b" yaml:"b"`
}

// Pairs lists every mutual match once, sorted by A then B.
// Resolve must have been called first.
func (ps Participants) Pairs() []Pair {
	var out []Pair
	for _, name := range ps.Names() {
		for _, friend := range ps[name].MutualFriends.Sorted() {
			if name < friend {
				out = append(out, Pair{A: name, B: friend})
			}
		}
	}
	return out
}
