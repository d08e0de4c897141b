package mirror

import (
	"strconv"

	"mirror-ca/internal/core"
)

func (w *World) Parameters() core.ParameterSnapshot {
	params := w.cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "Lattice",
			Params: []core.Parameter{
				intParam("n", "Side length", w.cfg.N),
				stringParam("mode", "Conflict resolution", string(w.cfg.Mode)),
				int64Param("seed", "Seed", w.cfg.Seed),
				intParam("workers", "Workers", w.cfg.Workers),
				boolParam("mirrored", "Spawn rows swapped", w.cfg.Mirrored),
			},
		},
		{
			Name: "Particles",
			Params: []core.Parameter{
				intParam("spawn_rate", "Spawn rate (per mille)", params.SpawnRate),
				intParam("lifespan", "Lifespan", params.Lifespan),
				floatParam("initial_density", "Initial density", params.InitialDensity),
			},
		},
		{
			Name: "Annihilation",
			Params: []core.Parameter{
				intParam("annihilation_life", "Annihilation life", params.AnnihilationLife),
				intParam("annihilation_decay", "Annihilation decay", params.AnnihilationDecay),
			},
			Summary: "lasts " + strconv.Itoa(params.AnnihilationTicks()) + " ticks",
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeString,
		Value: value,
	}
}
