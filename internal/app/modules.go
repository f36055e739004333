package app

import (
	"github.com/mz/nerfnavgo/internal/registry"
	"github.com/mz/nerfnavgo/modules/artifacts"
	"github.com/mz/nerfnavgo/modules/dashboard"
	"github.com/mz/nerfnavgo/modules/envinfo"
	"github.com/mz/nerfnavgo/modules/plan"
	"github.com/mz/nerfnavgo/modules/report"
	"github.com/mz/nerfnavgo/modules/simulate"
	"github.com/mz/nerfnavgo/modules/trainconfig"
)

// coreModules is the definitive list of all modules that are compiled into
// the nerfnavgo binary.
var coreModules = []registry.Module{
	&trainconfig.Module{},
	&plan.Module{},
	&simulate.Module{},
	&report.Module{},
	&envinfo.Module{},
	&artifacts.Module{},
	&dashboard.Module{},
}
