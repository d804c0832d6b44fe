package archetypes

import (
	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var (
	Eye = newArchetype(
		tags.Eye,
		components.Eye,
	)
	Gaze = newArchetype(
		components.Gaze,
		components.Blink,
	)
	Status = newArchetype(
		components.Status,
	)
	Input = newArchetype(
		components.Input,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(ecs *ecs.ECS, cs ...donburi.IComponentType) *donburi.Entry {
	e := ecs.World.Entry(ecs.Create(
		cfg.Default,
		append(a.components, cs...)...,
	))
	return e
}
