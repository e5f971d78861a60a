package gate

// RegisterDefaults seeds the stock codes and markers.
func (g *Gate) RegisterDefaults() {
	g.RegisterCode("MIRROR", CodeConfig{
		Level:       1,
		Unlocks:     []string{"shatter_protocol"},
		Description: "Basic mirror shatter access",
	})
	g.RegisterCode("CODEX", CodeConfig{
		Level:       2,
		Unlocks:     []string{"api_access", "ritual_mode"},
		Description: "Codex system access",
	})
	g.RegisterCode("RECURSIVE", CodeConfig{
		Level:       3,
		Unlocks:     []string{"deep_reflection", "anchor_modification"},
		Description: "Recursive loop access",
	})

	g.RegisterMarker("🜁", MarkerConfig{
		Name:        "codex_seal",
		Power:       "core_access",
		Description: "Primary codex sigil",
	})
	g.RegisterMarker("🪞", MarkerConfig{
		Name:        "mirror_shatter",
		Power:       "shatter_override",
		Description: "Mirror destruction sigil",
	})
}
