package cli

import (
	"errors"

	"github.com/alexanderramin/casework/internal/api"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local store as a REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.LocalStore {
				return errors.New("serve needs the local SQLite store; unset remote_url")
			}
			srv := api.NewServer(app.Records, api.Config{
				Logger:         app.logger(),
				Registry:       app.Registry,
				MaxUploadBytes: app.MaxUploadBytes,
			})
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.ListenAddr, "Listen address")

	return cmd
}
