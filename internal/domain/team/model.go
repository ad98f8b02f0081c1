package team

import "fmt"

// Team is an NBA franchise. ID is the league-wide numeric identifier
// used by the stats API (e.g. 1610612738 for Boston).
type Team struct {
	ID       int64
	Tricode  string
	Name     string
	City     string
	Conf     string
	Division string
}

func (t Team) Validate() error {
	if t.ID == 0 {
		return fmt.Errorf("team id is required")
	}
	if len(t.Tricode) != 3 {
		return fmt.Errorf("team tricode must be 3 letters")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
