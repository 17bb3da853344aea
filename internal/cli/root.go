package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/unipilot-backend/internal/modules/roadmap"
)

// App holds what the roadmapctl commands need.
type App struct {
	Roadmaps  roadmap.Service
	Migrate   func() error
	JWTSecret string
}

// NewRootCmd creates the top-level "roadmapctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "roadmapctl",
		Short:         "Operate on stored study roadmaps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newIngestCmd(app),
		newTreeCmd(app),
		newTokenCmd(app),
	)
	return root
}
