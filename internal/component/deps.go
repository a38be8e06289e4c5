// internal/component/deps.go
package component

import (
	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/api"
	"github.com/yanizio/studentdesk/internal/config"
	"github.com/yanizio/studentdesk/internal/form"
	"github.com/yanizio/studentdesk/internal/view"
)

// Deps exposes process-wide resources to Components during Init.
type Deps struct {
	Config   *config.Config
	API      *api.Client
	Views    *view.Engine
	Forms    *form.Kit
	Activity activity.Recorder
}
