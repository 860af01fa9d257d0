// Package probes provides the built-in probe registry.
package probes

import (
	"github.com/jandubois/check-zpools/internal/probe"
	"github.com/jandubois/check-zpools/internal/probes/zpools"
)

// GetAllDescriptions returns descriptions of all built-in probes.
func GetAllDescriptions() []probe.Description {
	return []probe.Description{
		zpools.GetDescription(),
	}
}
