package app

import (
	"context"
	"fmt"

	"github.com/mz/nerfnavgo/internal/nerfconf"
)

// trainConfigArgs mirrors the trainconfig runner's input surface for
// validate-only decoding.
type trainConfigArgs struct {
	Path      string            `nng:"path"`
	Profile   string            `nng:"profile"`
	Overrides map[string]string `nng:"overrides"`
}

// validateMission resolves every training configuration the mission
// references, without running any step. Arguments of trainconfig steps must
// be literal here: a path computed from another step's output cannot be
// checked before execution.
func (a *App) validateMission(ctx context.Context) error {
	def, ok := a.registry.DefinitionRegistry["trainconfig"]
	if !ok {
		a.logger.Debug("No trainconfig runner defined, nothing to validate.")
		return nil
	}

	checked := 0
	for _, step := range a.model.Mission.Steps {
		if step.RunnerType != "trainconfig" {
			continue
		}
		stepID := fmt.Sprintf("step.%s.%s", step.RunnerType, step.Name)

		args := &trainConfigArgs{}
		if err := a.converter.DecodeBody(ctx, args, step.Arguments, def.Inputs, nil); err != nil {
			return fmt.Errorf("%s: cannot decode arguments statically: %w", stepID, err)
		}

		profile := a.registry.Profile(args.Profile)
		if profile == nil {
			return fmt.Errorf("%s: no profile named %q is loaded", stepID, args.Profile)
		}

		rec, err := nerfconf.ParseFile(args.Path)
		if err != nil {
			return fmt.Errorf("%s: %w", stepID, err)
		}
		if len(args.Overrides) > 0 {
			overlay := nerfconf.New(rec.Name)
			for key, raw := range args.Overrides {
				overlay.Set(key, nerfconf.ParseValue(raw))
			}
			rec = nerfconf.Merge(rec, overlay)
		}
		if _, err := nerfconf.Resolve(ctx, rec, profile); err != nil {
			return fmt.Errorf("%s: %w", stepID, err)
		}

		a.logger.Info("Training configuration is valid.", "step", stepID, "path", args.Path, "profile", args.Profile)
		checked++
	}

	a.logger.Debug("Mission validation finished.", "trainconfigs_checked", checked)
	return nil
}
