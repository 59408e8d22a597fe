package brackets

import "fmt"

// RoundName returns the display label of round r in a bracket with totalRounds rounds.
func RoundName(round, totalRounds int) string {
	switch totalRounds - round + 1 {
	case 1:
		return "Finals"
	case 2:
		return "Semi-Finals"
	case 3:
		return "Quarter-Finals"
	case 4:
		return "Round of 16"
	case 5:
		return "Round of 32"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}
