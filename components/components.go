// Package components defines the value types shared by the rules engine,
// including the ECS components used for food entities.
package components

// Symbol is a catalog entry. Glyph is drawn on the food item, Label is what
// the question shows. Symbols compare by value.
type Symbol struct {
	Glyph string `yaml:"glyph"`
	Label string `yaml:"label"`
}

// Food marks an entity as an edible item carrying a symbol.
// Paired with a Coord component in the food pool.
type Food struct {
	Symbol Symbol
}

// FoodItem is a detached copy of a food entity, safe to hand to renderers.
type FoodItem struct {
	Position Coord
	Symbol   Symbol
}

// Question is the symbol the player is currently asked to eat.
type Question struct {
	Target Symbol
	Active bool
}
