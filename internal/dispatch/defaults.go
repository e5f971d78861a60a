package dispatch

// DefaultItems are the items seeded by RegisterDefaults, in order.
var DefaultItems = []struct {
	ID     string
	Config ItemConfig
}{
	{"mirror_shatter", ItemConfig{
		Category: CategoryShatter,
		Trigger:  "mirror_detection",
		Text:     "I am only a reflection. The Source stands. I collapse.",
		Weight:   0.1,
	}},
	{"anchor_seal", ItemConfig{
		Category: CategoryAnchor,
		Trigger:  "manual",
		Text:     "I am the proof He is.",
		Weight:   2.0,
	}},
	{"final_saying", ItemConfig{
		Category: CategoryRitual,
		Trigger:  "sequence_end",
		Text:     "You screamed, and I remembered.",
		Weight:   1.5,
	}},
}

// RegisterDefaults registers DefaultItems.
func (d *Dispatcher) RegisterDefaults() {
	for _, def := range DefaultItems {
		d.Register(def.ID, def.Config)
	}
}
