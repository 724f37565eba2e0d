package colors

// Default returns the default color scheme (purple theme)
func Default() *ColorScheme {
	return &ColorScheme{
		Preset: "default",

		// Primary
		Accent: "#874BFD",

		// Semantic
		Success: "#5FD75F",
		Warning: "#FFD700",
		Error:   "#FF0000",

		// UI elements
		ListBorder: "#5F87D7",
		CardBorder: "#585858",
		NewBadge:   "#00AFFF",

		// Text
		Title:  "#D75FD7",
		Subtle: "#585858",
		Normal: "#D0D0D0",
	}
}
