package team

import "sort"

// All is the static directory of current NBA franchises keyed by the
// stats API team ID. The league has had the same 30 teams since the
// earliest supported season, so no remote lookup is needed.
var All = map[int64]Team{
	1610612737: {ID: 1610612737, Tricode: "ATL", Name: "Hawks", City: "Atlanta", Conf: "East", Division: "Southeast"},
	1610612738: {ID: 1610612738, Tricode: "BOS", Name: "Celtics", City: "Boston", Conf: "East", Division: "Atlantic"},
	1610612739: {ID: 1610612739, Tricode: "CLE", Name: "Cavaliers", City: "Cleveland", Conf: "East", Division: "Central"},
	1610612740: {ID: 1610612740, Tricode: "NOP", Name: "Pelicans", City: "New Orleans", Conf: "West", Division: "Southwest"},
	1610612741: {ID: 1610612741, Tricode: "CHI", Name: "Bulls", City: "Chicago", Conf: "East", Division: "Central"},
	1610612742: {ID: 1610612742, Tricode: "DAL", Name: "Mavericks", City: "Dallas", Conf: "West", Division: "Southwest"},
	1610612743: {ID: 1610612743, Tricode: "DEN", Name: "Nuggets", City: "Denver", Conf: "West", Division: "Northwest"},
	1610612744: {ID: 1610612744, Tricode: "GSW", Name: "Warriors", City: "Golden State", Conf: "West", Division: "Pacific"},
	1610612745: {ID: 1610612745, Tricode: "HOU", Name: "Rockets", City: "Houston", Conf: "West", Division: "Southwest"},
	1610612746: {ID: 1610612746, Tricode: "LAC", Name: "Clippers", City: "Los Angeles", Conf: "West", Division: "Pacific"},
	1610612747: {ID: 1610612747, Tricode: "LAL", Name: "Lakers", City: "Los Angeles", Conf: "West", Division: "Pacific"},
	1610612748: {ID: 1610612748, Tricode: "MIA", Name: "Heat", City: "Miami", Conf: "East", Division: "Southeast"},
	1610612749: {ID: 1610612749, Tricode: "MIL", Name: "Bucks", City: "Milwaukee", Conf: "East", Division: "Central"},
	1610612750: {ID: 1610612750, Tricode: "MIN", Name: "Timberwolves", City: "Minnesota", Conf: "West", Division: "Northwest"},
	1610612751: {ID: 1610612751, Tricode: "BKN", Name: "Nets", City: "Brooklyn", Conf: "East", Division: "Atlantic"},
	1610612752: {ID: 1610612752, Tricode: "NYK", Name: "Knicks", City: "New York", Conf: "East", Division: "Atlantic"},
	1610612753: {ID: 1610612753, Tricode: "ORL", Name: "Magic", City: "Orlando", Conf: "East", Division: "Southeast"},
	1610612754: {ID: 1610612754, Tricode: "IND", Name: "Pacers", City: "Indiana", Conf: "East", Division: "Central"},
	1610612755: {ID: 1610612755, Tricode: "PHI", Name: "76ers", City: "Philadelphia", Conf: "East", Division: "Atlantic"},
	1610612756: {ID: 1610612756, Tricode: "PHX", Name: "Suns", City: "Phoenix", Conf: "West", Division: "Pacific"},
	1610612757: {ID: 1610612757, Tricode: "POR", Name: "Trail Blazers", City: "Portland", Conf: "West", Division: "Northwest"},
	1610612758: {ID: 1610612758, Tricode: "SAC", Name: "Kings", City: "Sacramento", Conf: "West", Division: "Pacific"},
	1610612759: {ID: 1610612759, Tricode: "SAS", Name: "Spurs", City: "San Antonio", Conf: "West", Division: "Southwest"},
	1610612760: {ID: 1610612760, Tricode: "OKC", Name: "Thunder", City: "Oklahoma City", Conf: "West", Division: "Northwest"},
	1610612761: {ID: 1610612761, Tricode: "TOR", Name: "Raptors", City: "Toronto", Conf: "East", Division: "Atlantic"},
	1610612762: {ID: 1610612762, Tricode: "UTA", Name: "Jazz", City: "Utah", Conf: "West", Division: "Northwest"},
	1610612763: {ID: 1610612763, Tricode: "MEM", Name: "Grizzlies", City: "Memphis", Conf: "West", Division: "Southwest"},
	1610612764: {ID: 1610612764, Tricode: "WAS", Name: "Wizards", City: "Washington", Conf: "East", Division: "Southeast"},
	1610612765: {ID: 1610612765, Tricode: "DET", Name: "Pistons", City: "Detroit", Conf: "East", Division: "Central"},
	1610612766: {ID: 1610612766, Tricode: "CHA", Name: "Hornets", City: "Charlotte", Conf: "East", Division: "Southeast"},
}

// Lookup returns the franchise for a stats API team ID.
func Lookup(id int64) (Team, bool) {
	t, ok := All[id]
	return t, ok
}

// IDs returns every franchise ID in ascending order.
func IDs() []int64 {
	out := make([]int64, 0, len(All))
	for id := range All {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
