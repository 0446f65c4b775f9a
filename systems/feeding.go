package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/quizsnake/components"
)

// Occupier reports cells that food must not be placed on.
type Occupier interface {
	Occupies(c components.Coord) bool
}

// EatResult describes what happened when the head entered a cell.
type EatResult struct {
	Ate     bool
	Correct bool
	Item    components.FoodItem
}

// FoodPool keeps the active food items and the current question.
//
// Items live as entities in an ECS world carrying a Coord and a Food
// component. Spawn order is tracked separately so snapshots and question
// selection are reproducible for a given random sequence.
//
// Whenever the question is active at least one item carries its target.
type FoodPool struct {
	grid    Grid
	target  int
	catalog []components.Symbol
	rng     Rand

	world  *ecs.World
	mapper *ecs.Map2[components.Coord, components.Food]
	filter *ecs.Filter2[components.Coord, components.Food]
	order  []ecs.Entity

	question components.Question
}

// NewFoodPool creates an empty pool. Call Reset to populate it.
func NewFoodPool(grid Grid, target int, catalog []components.Symbol, rng Rand) *FoodPool {
	world := ecs.NewWorld()
	return &FoodPool{
		grid:    grid,
		target:  target,
		catalog: catalog,
		rng:     rng,
		world:   world,
		mapper:  ecs.NewMap2[components.Coord, components.Food](world),
		filter:  ecs.NewFilter2[components.Coord, components.Food](world),
		order:   make([]ecs.Entity, 0, target),
	}
}

// Target returns the configured pool size.
func (p *FoodPool) Target() int {
	return p.target
}

// Count returns the number of active items.
func (p *FoodPool) Count() int {
	return len(p.order)
}

// Question returns the current question.
func (p *FoodPool) Question() components.Question {
	return p.question
}

// Items returns the active items in spawn order.
func (p *FoodPool) Items() []components.FoodItem {
	items := make([]components.FoodItem, 0, len(p.order))
	for _, e := range p.order {
		pos, food := p.mapper.Get(e)
		items = append(items, components.FoodItem{Position: *pos, Symbol: food.Symbol})
	}
	return items
}

// Occupies reports whether an item sits on c.
func (p *FoodPool) Occupies(c components.Coord) bool {
	_, _, ok := p.at(c)
	return ok
}

// Solvable reports whether the question can currently be answered.
// An inactive question is trivially solvable.
func (p *FoodPool) Solvable() bool {
	return !p.question.Active || p.hasSymbol(p.question.Target)
}

// Reset clears the pool and the question, refills it and picks a question.
func (p *FoodPool) Reset(occ Occupier) {
	for _, e := range p.order {
		p.world.RemoveEntity(e)
	}
	p.order = p.order[:0]
	p.question = components.Question{}

	p.Replenish(occ)
	p.SelectQuestion()
}

// Replenish spawns items until the pool reaches its target size or the board
// has no free cell left. Returns the number of items spawned.
func (p *FoodPool) Replenish(occ Occupier) int {
	spawned := 0
	free := p.freeCells(occ)
	for len(p.order) < p.target && free > 0 {
		pos := p.samplePosition(occ)
		p.spawn(pos, p.nextSymbol())
		free--
		spawned++
	}
	return spawned
}

// ResolveEat removes the item at head, if any. When the pool drops below its
// target it is refilled first and then a new question is chosen from it.
func (p *FoodPool) ResolveEat(head components.Coord, occ Occupier) EatResult {
	e, item, ok := p.at(head)
	if !ok {
		return EatResult{}
	}

	result := EatResult{
		Ate:     true,
		Correct: p.question.Active && item.Symbol == p.question.Target,
		Item:    item,
	}
	p.remove(e)

	if len(p.order) < p.target {
		p.Replenish(occ)
		p.SelectQuestion()
	}
	return result
}

// SelectQuestion sets the question to the symbol of a uniformly chosen item.
// The symbol just eaten may be asked again. With an empty pool the previous
// question is kept and false is returned.
func (p *FoodPool) SelectQuestion() bool {
	if len(p.order) == 0 {
		return false
	}
	idx := p.rng.RandInt(0, len(p.order)-1)
	_, food := p.mapper.Get(p.order[idx])
	p.question = components.Question{Target: food.Symbol, Active: true}
	return true
}

// nextSymbol forces the question target when no item carries it yet,
// otherwise draws uniformly from the catalog.
func (p *FoodPool) nextSymbol() components.Symbol {
	if p.question.Active && !p.hasSymbol(p.question.Target) {
		return p.question.Target
	}
	return p.catalog[p.rng.RandInt(0, len(p.catalog)-1)]
}

// samplePosition rejection-samples a free cell. Callers must ensure one exists.
func (p *FoodPool) samplePosition(occ Occupier) components.Coord {
	for {
		c := components.Coord{
			X: p.rng.RandInt(0, p.grid.Width-1),
			Y: p.rng.RandInt(0, p.grid.Height-1),
		}
		if occ != nil && occ.Occupies(c) {
			continue
		}
		if p.Occupies(c) {
			continue
		}
		return c
	}
}

func (p *FoodPool) freeCells(occ Occupier) int {
	free := 0
	for y := 0; y < p.grid.Height; y++ {
		for x := 0; x < p.grid.Width; x++ {
			c := components.Coord{X: x, Y: y}
			if occ != nil && occ.Occupies(c) {
				continue
			}
			free++
		}
	}
	return free - len(p.order)
}

func (p *FoodPool) spawn(pos components.Coord, sym components.Symbol) {
	e := p.mapper.NewEntity(&pos, &components.Food{Symbol: sym})
	p.order = append(p.order, e)
}

func (p *FoodPool) remove(e ecs.Entity) {
	p.world.RemoveEntity(e)
	for i, o := range p.order {
		if o == e {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// at finds the item on c. The query is always run to completion so the
// world is unlocked before the caller mutates it.
func (p *FoodPool) at(c components.Coord) (ecs.Entity, components.FoodItem, bool) {
	var (
		found ecs.Entity
		item  components.FoodItem
		ok    bool
	)
	query := p.filter.Query()
	for query.Next() {
		pos, food := query.Get()
		if !ok && *pos == c {
			found = query.Entity()
			item = components.FoodItem{Position: *pos, Symbol: food.Symbol}
			ok = true
		}
	}
	return found, item, ok
}

func (p *FoodPool) hasSymbol(sym components.Symbol) bool {
	has := false
	query := p.filter.Query()
	for query.Next() {
		_, food := query.Get()
		if food.Symbol == sym {
			has = true
		}
	}
	return has
}
