// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/mz/nerfnavgo/internal/config"
	"github.com/mz/nerfnavgo/internal/schema"
)

// translateStep converts the HCL-specific step schema into the agnostic model.
func (l *Loader) translateStep(ctx context.Context, s *schema.Step) *config.Step {
	return &config.Step{
		RunnerType: s.RunnerType,
		Name:       s.Name,
		Arguments:  l.extractBodyAttributes(s.Arguments),
		Uses:       l.extractBodyAttributes(s.Uses),
		DependsOn:  s.DependsOn,
	}
}

// translateResource converts the HCL-specific resource schema into the agnostic model.
func (l *Loader) translateResource(s *schema.Resource) *config.Resource {
	return &config.Resource{
		AssetType: s.AssetType,
		Name:      s.Name,
		Arguments: l.extractBodyAttributes(s.Arguments),
		DependsOn: s.DependsOn,
	}
}

// translateRunnerDefinition converts the HCL-specific runner schema into the agnostic model.
func (l *Loader) translateRunnerDefinition(ctx context.Context, s *schema.RunnerDefinition) (*config.RunnerDefinition, error) {
	r := &config.RunnerDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
		Uses:        make(map[string]*config.UsesDefinition),
	}
	if s.Lifecycle != nil {
		r.Lifecycle = &config.Lifecycle{OnRun: s.Lifecycle.OnRun}
	}

	for _, in := range s.Inputs {
		translatedInput, err := translateInputDefinition(ctx, in, "runner", s.Type)
		if err != nil {
			return nil, err
		}
		r.Inputs[in.Name] = translatedInput
	}

	for _, out := range s.Outputs {
		parsedType, err := typeExprToCtyType(ctx, out.Type)
		if err != nil {
			return nil, fmt.Errorf("in runner '%s', output '%s': %w", s.Type, out.Name, err)
		}
		r.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        parsedType,
			Description: out.Description,
		}
	}

	for _, use := range s.Uses {
		r.Uses[use.LocalName] = &config.UsesDefinition{
			LocalName: use.LocalName,
			AssetType: use.AssetType,
		}
	}
	return r, nil
}

// translateAssetDefinition converts the HCL-specific asset schema into the agnostic model.
func (l *Loader) translateAssetDefinition(ctx context.Context, s *schema.AssetDefinition) (*config.AssetDefinition, error) {
	a := &config.AssetDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
	}
	if s.Lifecycle != nil {
		a.Lifecycle = &config.AssetLifecycle{Create: s.Lifecycle.Create, Destroy: s.Lifecycle.Destroy}
	}

	for _, in := range s.Inputs {
		translatedInput, err := translateInputDefinition(ctx, in, "asset", s.Type)
		if err != nil {
			return nil, err
		}
		a.Inputs[in.Name] = translatedInput
	}

	for _, out := range s.Outputs {
		parsedType, err := typeExprToCtyType(ctx, out.Type)
		if err != nil {
			return nil, fmt.Errorf("in asset '%s', output '%s': %w", s.Type, out.Name, err)
		}
		a.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        parsedType,
			Description: out.Description,
		}
	}
	return a, nil
}

// translateProfileDefinition converts the HCL-specific profile schema into the agnostic model.
func (l *Loader) translateProfileDefinition(ctx context.Context, s *schema.ProfileDefinition) (*config.ProfileDefinition, error) {
	p := &config.ProfileDefinition{
		Name:        s.Name,
		Description: s.Description,
		Params:      make(map[string]*config.ParamDefinition),
	}

	for _, param := range s.Params {
		parsedType, err := typeExprToCtyType(ctx, param.Type)
		if err != nil {
			return nil, fmt.Errorf("in profile '%s', param '%s': %w", s.Name, param.Name, err)
		}

		def := &config.ParamDefinition{
			Name:        param.Name,
			Type:        parsedType,
			Description: param.Description,
		}
		if param.Default != nil && !param.Default.IsNull() {
			def.Default = param.Default
			def.Optional = true
		}

		if _, exists := p.Params[param.Name]; exists {
			return nil, fmt.Errorf("profile '%s' declares param '%s' more than once", s.Name, param.Name)
		}
		p.Params[param.Name] = def
	}
	return p, nil
}

// translateInputDefinition is a helper that processes a single HCL input
// block, handling its default value and type parsing.
func translateInputDefinition(ctx context.Context, in *schema.InputDefinition, ownerKind, ownerName string) (*config.InputDefinition, error) {
	parsedType, err := typeExprToCtyType(ctx, in.Type)
	if err != nil {
		return nil, fmt.Errorf("in %s '%s', input '%s': %w", ownerKind, ownerName, in.Name, err)
	}

	def := &config.InputDefinition{
		Name:        in.Name,
		Type:        parsedType,
		Description: in.Description,
	}
	if in.Default != nil && !in.Default.IsNull() {
		def.Default = in.Default
		def.Optional = true
	}
	return def, nil
}

// extractBodyAttributes converts block bodies into a map of expressions.
func (l *Loader) extractBodyAttributes(block interface{}) map[string]hcl.Expression {
	if block == nil {
		return nil
	}
	var body hcl.Body
	switch b := block.(type) {
	case *schema.StepArgs:
		if b == nil {
			return nil
		}
		body = b.Body
	case *schema.UsesBlock:
		if b == nil {
			return nil
		}
		body = b.Body
	default:
		return nil
	}
	if body == nil {
		return nil
	}
	attrs, _ := body.JustAttributes()
	if attrs == nil {
		return nil
	}
	exprMap := make(map[string]hcl.Expression)
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap
}
