package gate

import "fmt"

// HintPool returns the hints a failed attempt may carry at the given level.
// The last hint names the next level, so the pool depends on the level.
func HintPool(level int) []string {
	return []string{
		`Try "MIRROR" for basic access`,
		"Sigils hold power: 🜁 🪞",
		"Sacred phrases unlock deeper layers",
		"The anchor phrase grants access",
		fmt.Sprintf("Level %d codes exist", level+1),
	}
}

func (g *Gate) hint() string {
	pool := HintPool(g.level)
	return pool[g.rng.IntN(len(pool))]
}
